package project

import (
	"errors"
	"fmt"
	"time"

	"github.com/piwi3910/circlepack/internal/model"
)

// BackupVersion is written into every backup file.
const BackupVersion = "1.0.0"

// ErrNoBackupVersion marks a JSON file that is not a backup.
var ErrNoBackupVersion = errors.New("invalid backup file: missing version field")

// BackupData bundles preferences, custom profiles and templates so they
// can move between machines as one file.
type BackupData struct {
	Version   string                  `json:"version"`
	CreatedAt string                  `json:"created_at"`
	Config    model.AppConfig         `json:"config"`
	Profiles  []model.GCodeProfile    `json:"profiles"`
	Templates []model.ProjectTemplate `json:"templates"`
}

// ExportAllData writes a backup to exportPath. Nil collections are stored
// as empty lists.
func ExportAllData(exportPath string, config model.AppConfig, profiles []model.GCodeProfile, templates model.TemplateStore) error {
	backup := BackupData{
		Version:   BackupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    config,
		Profiles:  append([]model.GCodeProfile{}, profiles...),
		Templates: append([]model.ProjectTemplate{}, templates.Templates...),
	}
	if err := writeJSON(exportPath, backup); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	return nil
}

// ImportAllData reads a backup. Applying it is up to the caller.
func ImportAllData(importPath string) (BackupData, error) {
	backup := BackupData{Config: model.DefaultAppConfig()}
	found, err := readJSON(importPath, &backup)
	switch {
	case err != nil:
		return BackupData{}, fmt.Errorf("reading backup: %w", err)
	case !found:
		return BackupData{}, fmt.Errorf("backup file %s not found", importPath)
	case backup.Version == "":
		return BackupData{}, ErrNoBackupVersion
	}

	if backup.Config.RecentProjects == nil {
		backup.Config.RecentProjects = []string{}
	}
	if backup.Profiles == nil {
		backup.Profiles = []model.GCodeProfile{}
	}
	if backup.Templates == nil {
		backup.Templates = []model.ProjectTemplate{}
	}
	for i := range backup.Profiles {
		backup.Profiles[i].IsBuiltIn = false
	}
	return backup, nil
}
