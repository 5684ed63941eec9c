package loader

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseTestCase parses a scenario from YAML bytes.
func ParseTestCase(data []byte) (*TestCase, error) {
	var tc TestCase
	if err := yaml.Unmarshal(data, &tc); err != nil {
		le := &LoadError{
			Message: "failed to parse YAML",
			Cause:   err,
		}
		var te *yaml.TypeError
		if errors.As(err, &te) {
			le.Message = "invalid scenario structure"
		}
		return nil, le
	}

	// Validate required fields
	if tc.ID == "" {
		return nil, &LoadError{
			Message: "scenario ID is required",
		}
	}

	if len(tc.Steps) == 0 {
		return nil, &LoadError{
			Message: "scenario must have at least one step",
		}
	}

	for i, step := range tc.Steps {
		if step.Action == "" {
			return nil, &LoadError{
				Message: "step " + strconv.Itoa(i+1) + " has no action",
			}
		}
	}

	return &tc, nil
}

// LoadTestCase loads a scenario from a file.
func LoadTestCase(path string) (*TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	tc, err := ParseTestCase(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{
			File:    path,
			Message: err.Error(),
		}
	}

	tc.Dir = filepath.Dir(path)
	return tc, nil
}

// LoadDirectory loads all scenarios from a directory, sorted by file name.
// Only files with .yaml or .yml extensions are loaded.
func LoadDirectory(dir string) ([]*TestCase, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{
			File:    dir,
			Message: "failed to read directory",
			Cause:   err,
		}
	}

	var cases []*TestCase
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		tc, err := LoadTestCase(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		cases = append(cases, tc)
	}
	return cases, nil
}

// LoadDirectoryRecursive loads all scenarios under dir. Directories named
// "fixtures" hold register descriptions, not scenarios, and are skipped.
func LoadDirectoryRecursive(dir string) ([]*TestCase, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "fixtures" {
				return filepath.SkipDir
			}
			return nil
		}
		if isYAML(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, &LoadError{
			File:    dir,
			Message: "failed to walk directory",
			Cause:   err,
		}
	}

	sort.Strings(paths)
	cases := make([]*TestCase, 0, len(paths))
	for _, p := range paths {
		tc, err := LoadTestCase(p)
		if err != nil {
			return nil, err
		}
		cases = append(cases, tc)
	}
	return cases, nil
}

// FilterByTags returns the scenarios carrying at least one of tags. No tags
// keeps every scenario.
func FilterByTags(cases []*TestCase, tags []string) []*TestCase {
	if len(tags) == 0 {
		return cases
	}
	var out []*TestCase
	for _, tc := range cases {
		for _, t := range tc.Tags {
			if slices.Contains(tags, t) {
				out = append(out, tc)
				break
			}
		}
	}
	return out
}

// FilterByID returns the scenarios whose ID starts with one of the prefixes.
func FilterByID(cases []*TestCase, prefixes []string) []*TestCase {
	if len(prefixes) == 0 {
		return cases
	}
	var out []*TestCase
	for _, tc := range cases {
		for _, p := range prefixes {
			if strings.HasPrefix(tc.ID, p) {
				out = append(out, tc)
				break
			}
		}
	}
	return out
}

// FixturePath returns the scenario's fixture path resolved against its
// directory, or "" when it has none.
func (tc *TestCase) FixturePath() string {
	if tc.Fixture == "" {
		return ""
	}
	if filepath.IsAbs(tc.Fixture) || tc.Dir == "" {
		return tc.Fixture
	}
	return filepath.Join(tc.Dir, tc.Fixture)
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
