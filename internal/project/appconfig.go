// Package project persists projects, templates, G-code profiles and
// application preferences as JSON files.
package project

import (
	"slices"

	"github.com/piwi3910/circlepack/internal/model"
)

// MaxRecentProjects bounds the recent projects list.
const MaxRecentProjects = 10

// SaveAppConfig writes the preferences to path.
func SaveAppConfig(path string, config model.AppConfig) error {
	return writeJSON(path, config)
}

// LoadAppConfig reads preferences from path. Keys missing from the file
// keep their default, and a missing file yields DefaultAppConfig.
func LoadAppConfig(path string) (model.AppConfig, error) {
	config := model.DefaultAppConfig()
	if _, err := readJSON(path, &config); err != nil {
		return model.AppConfig{}, err
	}
	if config.RecentProjects == nil {
		config.RecentProjects = []string{}
	}
	return config, nil
}

// AddRecentProject moves projectPath to the front of the recent list.
func AddRecentProject(config *model.AppConfig, projectPath string) {
	recent := slices.DeleteFunc(slices.Clone(config.RecentProjects), func(p string) bool {
		return p == projectPath
	})
	recent = append([]string{projectPath}, recent...)
	if len(recent) > MaxRecentProjects {
		recent = recent[:MaxRecentProjects]
	}
	config.RecentProjects = recent
}
