package sampledata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/fplsquad/internal/adapters/fpl"
)

// File names and permissions for written payloads.
const (
	BootstrapFile = "bootstrap-static.json"
	FixturesFile  = "fixtures.json"

	filePermission = 0o600
	dirPermission  = 0o750
)

// WriteFiles stores the payloads under dir in the same shape the FPL API serves them.
func WriteFiles(dir string, b *fpl.Bootstrap, fx []fpl.Fixture) (string, string, error) {
	if err := os.MkdirAll(dir, dirPermission); err != nil {
		return "", "", fmt.Errorf("create %s: %w", dir, err)
	}
	bootstrapPath := filepath.Join(dir, BootstrapFile)
	fixturesPath := filepath.Join(dir, FixturesFile)
	if err := writeJSON(bootstrapPath, b); err != nil {
		return "", "", err
	}
	if err := writeJSON(fixturesPath, fx); err != nil {
		return "", "", err
	}
	return bootstrapPath, fixturesPath, nil
}

func writeJSON(path string, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, raw, filePermission); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
