package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/okian/fplsquad/internal/adapters/fpl"
)

// FileSource serves payloads saved from the FPL API.
type FileSource struct {
	bootstrap *fpl.Bootstrap
	fixtures  []fpl.Fixture
}

// LoadFiles reads a bootstrap-static dump and an optional fixtures dump.
func LoadFiles(bootstrapPath, fixturesPath string) (*FileSource, error) {
	src := &FileSource{}
	if err := readJSON(bootstrapPath, &src.bootstrap); err != nil {
		return nil, err
	}
	if src.bootstrap == nil {
		return nil, fmt.Errorf("%s: %w", bootstrapPath, ErrNoBootstrap)
	}
	if fixturesPath != "" {
		if err := readJSON(fixturesPath, &src.fixtures); err != nil {
			return nil, err
		}
	}
	return src, nil
}

func readJSON(path string, out interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Bootstrap implements Source.
func (f *FileSource) Bootstrap(context.Context) (*fpl.Bootstrap, error) {
	return f.bootstrap, nil
}

// Fixtures implements Source.
func (f *FileSource) Fixtures(context.Context) ([]fpl.Fixture, error) {
	return f.fixtures, nil
}
