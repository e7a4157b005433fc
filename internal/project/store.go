package project

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Files kept in the per-user settings directory.
const (
	configFile    = "config.json"
	templatesFile = "templates.json"
	profilesFile  = "profiles.json"
)

// DefaultConfigDir is ~/.circlepack, or ./.circlepack when the home
// directory is unknown.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".circlepack")
}

// DefaultConfigPath returns the path of the preferences file.
func DefaultConfigPath() string { return filepath.Join(DefaultConfigDir(), configFile) }

// DefaultTemplatePath returns the path of the template store.
func DefaultTemplatePath() string { return filepath.Join(DefaultConfigDir(), templatesFile) }

// DefaultProfilesPath returns the path of the custom G-code profiles.
func DefaultProfilesPath() string { return filepath.Join(DefaultConfigDir(), profilesFile) }

// readJSON decodes path into v. A missing file leaves v untouched and
// reports false with no error.
func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(data, v)
}

// writeJSON writes v as indented JSON, creating parent directories.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
