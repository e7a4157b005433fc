package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/circlepack/internal/model"
)

func TestSaveAndLoadTemplates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "templates.json")

	p := model.NewProject()
	p.Config.Rectangles = []model.Rectangle{
		model.NewRectangle("Bar A", 20, 10),
		model.NewRectangle("Bar B", 20, 10),
	}
	p.Config.PaddingInner = 1
	p.Config.SetTarget(15)

	store := model.NewTemplateStore()
	store.Add(model.NewProjectTemplate("Bars", "two bars in a small circle", p))

	if err := SaveTemplates(path, store); err != nil {
		t.Fatalf("SaveTemplates error: %v", err)
	}

	loaded, err := LoadTemplates(path)
	if err != nil {
		t.Fatalf("LoadTemplates error: %v", err)
	}

	if len(loaded.Templates) != 1 {
		t.Fatalf("expected 1 template, got %d", len(loaded.Templates))
	}
	tmpl := loaded.Templates[0]
	if tmpl.Name != "Bars" {
		t.Errorf("expected 'Bars', got %q", tmpl.Name)
	}
	if len(tmpl.Config.Rectangles) != 2 {
		t.Errorf("expected 2 rectangles, got %d", len(tmpl.Config.Rectangles))
	}
	if !tmpl.Config.HasTarget() || tmpl.Config.Target() != 15 {
		t.Errorf("expected target 15 to survive the round trip")
	}
	if tmpl.Config.PaddingInner != 1 {
		t.Errorf("expected padding 1, got %f", tmpl.Config.PaddingInner)
	}
}

func TestLoadTemplatesNonexistent(t *testing.T) {
	store, err := LoadTemplates(filepath.Join(t.TempDir(), "nonexistent.json"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if len(store.Templates) != 0 {
		t.Errorf("expected empty store, got %d templates", len(store.Templates))
	}
}

func TestLoadTemplatesInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.json")
	if err := os.WriteFile(path, []byte("{{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTemplates(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestDefaultTemplatePath(t *testing.T) {
	path := DefaultTemplatePath()
	if filepath.Base(path) != "templates.json" {
		t.Errorf("expected templates.json, got %s", filepath.Base(path))
	}
}
