package project

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/piwi3910/circlepack/internal/model"
)

// Extension is the file suffix of saved projects.
const Extension = ".circlepack.json"

// Save writes a project to path.
func Save(path string, p model.Project) error {
	if err := writeJSON(path, p); err != nil {
		return fmt.Errorf("saving project: %w", err)
	}
	return nil
}

// Load reads a project from path. Settings missing from older files are
// filled with their defaults.
func Load(path string) (model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Project{}, fmt.Errorf("reading project: %w", err)
	}
	p := model.NewProject()
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Project{}, fmt.Errorf("parsing project %s: %w", path, err)
	}
	if p.Config.Rectangles == nil {
		p.Config.Rectangles = []model.Rectangle{}
	}
	if err := p.Solver.Validate(); err != nil {
		return model.Project{}, fmt.Errorf("project %s: %w", path, err)
	}
	return p, nil
}

// NameFromPath derives a project name from its file name.
func NameFromPath(path string) string {
	base := path
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimSuffix(base, Extension)
	return strings.TrimSuffix(base, ".json")
}

// ExportGCode writes generated G-code to path.
func ExportGCode(path string, code string) error {
	return os.WriteFile(path, []byte(code), 0644)
}
