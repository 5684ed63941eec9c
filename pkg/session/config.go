package session

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/regdb/regdb/pkg/log"
)

// Config configures a Session.
type Config struct {
	// StorePath is the SQLite register description to open.
	StorePath string `yaml:"store"`

	// CreateIfMissing creates the store and applies the schema when the file
	// does not exist. Otherwise a missing file is a connection error.
	CreateIfMissing bool `yaml:"create_if_missing,omitempty"`

	// ReadOnly opens the store without write access.
	ReadOnly bool `yaml:"read_only,omitempty"`

	// DiagnosticsPath, when set, appends CBOR diagnostics to this file.
	DiagnosticsPath string `yaml:"diagnostics,omitempty"`

	// MinSeverity drops diagnostics below this severity.
	MinSeverity string `yaml:"min_severity,omitempty"`

	// Suppress drops diagnostics carrying these codes, e.g. layout_overlap.
	Suppress []string `yaml:"suppress,omitempty"`
}

// DefaultConfig returns a configuration keeping every diagnostic.
func DefaultConfig() Config {
	return Config{
		MinSeverity: "debug",
	}
}

// LoadConfig reads a YAML configuration file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration on top of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if _, err := cfg.predicate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// predicate builds the diagnostic filter described by the configuration.
func (c Config) predicate() (log.Predicate, error) {
	var preds []log.Predicate
	if c.MinSeverity != "" {
		sev, err := log.ParseSeverity(c.MinSeverity)
		if err != nil {
			return nil, fmt.Errorf("config min_severity: %w", err)
		}
		preds = append(preds, log.MinSeverity(sev))
	}
	if len(c.Suppress) > 0 {
		codes := make([]log.Code, 0, len(c.Suppress))
		for _, s := range c.Suppress {
			code, err := log.ParseCode(s)
			if err != nil {
				return nil, fmt.Errorf("config suppress: %w", err)
			}
			codes = append(codes, code)
		}
		preds = append(preds, log.Suppress(codes...))
	}
	return log.All(preds...), nil
}
