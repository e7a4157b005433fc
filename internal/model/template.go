package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// ProjectTemplate is a reusable packing problem: rectangles, paddings,
// target and solver settings, without a result.
type ProjectTemplate struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
	Config      PackingConfig  `json:"config"`
	MultiStage  bool           `json:"multi_stage"`
	Mode        RotationMode   `json:"mode"`
	Solver      SolverSettings `json:"solver"`
}

// NewProjectTemplate captures the problem definition of p.
func NewProjectTemplate(name, description string, p Project) ProjectTemplate {
	now := time.Now().UTC().Format(time.RFC3339)
	return ProjectTemplate{
		ID:          uuid.New().String()[:8],
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Config:      copyConfig(p.Config),
		MultiStage:  p.MultiStage,
		Mode:        p.Mode,
		Solver:      p.Solver,
	}
}

// ToProject creates a new Project from this template.
// Rectangles get fresh IDs so they are independent of the template.
func (t ProjectTemplate) ToProject(projectName string) Project {
	p := NewProject()
	p.Name = projectName
	p.Config = copyConfig(t.Config)
	for i, r := range p.Config.Rectangles {
		p.Config.Rectangles[i] = NewRectangle(r.Label, r.Width, r.Height)
	}
	p.MultiStage = t.MultiStage
	p.Mode = t.Mode
	p.Solver = t.Solver
	return p
}

// TemplateStore is the saved template list. Lookups return pointers into
// Templates, or nil.
type TemplateStore struct {
	Templates []ProjectTemplate `json:"templates"`
}

func NewTemplateStore() TemplateStore {
	return TemplateStore{Templates: []ProjectTemplate{}}
}

func (ts *TemplateStore) Add(t ProjectTemplate) {
	ts.Templates = append(ts.Templates, t)
}

func (ts *TemplateStore) find(match func(ProjectTemplate) bool) *ProjectTemplate {
	if i := slices.IndexFunc(ts.Templates, match); i >= 0 {
		return &ts.Templates[i]
	}
	return nil
}

// Remove deletes the template with the given ID and reports whether it existed.
func (ts *TemplateStore) Remove(id string) bool {
	n := len(ts.Templates)
	ts.Templates = slices.DeleteFunc(ts.Templates, func(t ProjectTemplate) bool { return t.ID == id })
	return len(ts.Templates) < n
}

func (ts *TemplateStore) FindByID(id string) *ProjectTemplate {
	return ts.find(func(t ProjectTemplate) bool { return t.ID == id })
}

// FindByName returns the first template called name.
func (ts *TemplateStore) FindByName(name string) *ProjectTemplate {
	return ts.find(func(t ProjectTemplate) bool { return t.Name == name })
}

// Names lists template names in store order.
func (ts *TemplateStore) Names() []string {
	names := make([]string, 0, len(ts.Templates))
	for _, t := range ts.Templates {
		names = append(names, t.Name)
	}
	return names
}

// copyConfig deep-copies the rectangle slice and target pointer.
func copyConfig(c PackingConfig) PackingConfig {
	c.Rectangles = append([]Rectangle{}, c.Rectangles...)
	if c.TargetRadius != nil {
		c.SetTarget(*c.TargetRadius)
	}
	return c
}
