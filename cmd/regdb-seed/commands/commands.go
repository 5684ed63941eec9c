// Package commands implements the regdb-seed CLI commands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/regdb/regdb/pkg/fixture"
	"github.com/regdb/regdb/pkg/store"
)

// RunLoad validates the YAML descriptions in fixtures and seeds each into
// the store at dbPath, creating and initializing the store when it does not
// exist. Each description is seeded in its own transaction.
func RunLoad(ctx context.Context, dbPath string, fixtures []string, logger *slog.Logger) error {
	_, statErr := os.Stat(dbPath)
	repo, err := store.Open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	if errors.Is(statErr, os.ErrNotExist) {
		if err := repo.Init(ctx); err != nil {
			return fmt.Errorf("initializing %s: %w", dbPath, err)
		}
		logger.Info("created store", "path", dbPath)
	}

	for _, path := range fixtures {
		d, err := fixture.Load(path)
		if err != nil {
			return err
		}
		if err := d.Validate(); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		id, err := fixture.Seed(ctx, repo, d, path)
		if err != nil {
			return fmt.Errorf("seeding %s: %w", path, err)
		}
		logger.Info("seeded description", "file", path, "component", d.Component.Name, "metadata_id", id)
	}
	return nil
}

// RunExport writes the stored description of component as YAML.
func RunExport(ctx context.Context, dbPath, component string, w io.Writer) error {
	repo, err := store.OpenReadOnly(ctx, dbPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	d, err := fixture.Export(ctx, repo, component)
	if err != nil {
		return err
	}
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// RunChecksum prints the content checksum of each description.
func RunChecksum(fixtures []string, w io.Writer) error {
	for _, path := range fixtures {
		d, err := fixture.Load(path)
		if err != nil {
			return err
		}
		sum, err := d.Checksum()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s  %s\n", sum, path)
	}
	return nil
}
