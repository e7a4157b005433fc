package project

import (
	"errors"
	"fmt"

	"github.com/piwi3910/circlepack/internal/model"
)

// ErrUnnamedProfile is returned when an imported profile has no name.
var ErrUnnamedProfile = errors.New("imported profile has no name")

// SaveCustomProfiles writes profiles to path.
func SaveCustomProfiles(path string, profiles []model.GCodeProfile) error {
	return writeJSON(path, profiles)
}

// LoadCustomProfiles reads user profiles from path; none when the file is
// missing. Whatever the file claims, a loaded profile is never built-in.
func LoadCustomProfiles(path string) ([]model.GCodeProfile, error) {
	profiles := []model.GCodeProfile{}
	if _, err := readJSON(path, &profiles); err != nil {
		return nil, err
	}
	for i := range profiles {
		profiles[i].IsBuiltIn = false
	}
	return profiles, nil
}

// LoadCustomProfilesFromDefault loads the saved profiles and registers
// them so GetProfile can resolve their names.
func LoadCustomProfilesFromDefault() ([]model.GCodeProfile, error) {
	profiles, err := LoadCustomProfiles(DefaultProfilesPath())
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		if err := model.AddCustomProfile(p); err != nil {
			return nil, fmt.Errorf("profile %q: %w", p.Name, err)
		}
	}
	return profiles, nil
}

// SaveCustomProfilesToDefault persists model.CustomProfiles.
func SaveCustomProfilesToDefault() error {
	return SaveCustomProfiles(DefaultProfilesPath(), model.CustomProfiles)
}

// ExportProfile writes a single profile for sharing.
func ExportProfile(path string, profile model.GCodeProfile) error {
	profile.IsBuiltIn = false
	return writeJSON(path, profile)
}

// ImportProfile reads a profile written by ExportProfile.
func ImportProfile(path string) (model.GCodeProfile, error) {
	var profile model.GCodeProfile
	found, err := readJSON(path, &profile)
	switch {
	case err != nil:
		return model.GCodeProfile{}, err
	case !found:
		return model.GCodeProfile{}, fmt.Errorf("profile file %s not found", path)
	case profile.Name == "":
		return model.GCodeProfile{}, ErrUnnamedProfile
	}
	profile.IsBuiltIn = false
	return profile, nil
}
