package export

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/circlepack/internal/model"
)

// buildTestConfig returns two stacked bars and a small rotated tile.
func buildTestConfig() model.PackingConfig {
	cfg := model.PackingConfig{
		Rectangles: []model.Rectangle{
			{ID: "r1", Label: "Bar A", Width: 20, Height: 10},
			{ID: "r2", Label: "Bar B", Width: 20, Height: 10},
			{ID: "r3", Label: "", Width: 6, Height: 3},
		},
		PaddingInner: 1,
		PaddingOuter: 1,
	}
	cfg.SetTarget(20)
	return cfg
}

// buildTestResult places the rectangles of buildTestConfig inside R = 18.
func buildTestResult() model.PackingResult {
	cfg := buildTestConfig()
	return model.PackingResult{
		Radius: 18,
		Placements: []model.Placement{
			{Rectangle: cfg.Rectangles[0], X: 0, Y: 5.5},
			{Rectangle: cfg.Rectangles[1], X: 0, Y: -5.5},
			{Rectangle: cfg.Rectangles[2], X: 13.5, Y: 0, Angle: 90},
		},
		Success:    true,
		Valid:      true,
		FitsTarget: true,
		Mode:       model.RotationDiscrete90,
		Message:    "Optimization terminated successfully.",
		Outcomes: []model.ModeOutcome{
			{Mode: model.RotationFixed0, Radius: 19, Valid: true, FitsTarget: true, ElapsedMS: 12},
			{Mode: model.RotationDiscrete90, Radius: 18, Valid: true, FitsTarget: true, ElapsedMS: 40},
		},
	}
}

func TestExportPDF_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test_output.pdf")

	err := ExportPDF(path, buildTestConfig(), buildTestResult())
	if err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if info.Size() < 500 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestExportPDF_EmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	err := ExportPDF(path, buildTestConfig(), model.PackingResult{Radius: 5})
	if !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("expected ErrNothingToExport, got %v", err)
	}
	if _, statErr := os.Stat(path); statErr == nil {
		t.Error("no file should be written for an empty result")
	}
}

func TestExportPDF_NoPaddingNoTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.pdf")

	cfg := buildTestConfig()
	cfg.PaddingInner, cfg.PaddingOuter = 0, 0
	cfg.ClearTarget()
	result := buildTestResult()
	result.Outcomes = nil

	if err := ExportPDF(path, cfg, result); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("PDF file is empty")
	}
}

func TestExportPDF_ManyPlacements(t *testing.T) {
	path := filepath.Join(t.TempDir(), "many.pdf")

	// 40 rows overflow the placement table onto a third page
	var result model.PackingResult
	result.Radius = 100
	for i := 0; i < 40; i++ {
		result.Placements = append(result.Placements, model.Placement{
			Rectangle: model.Rectangle{Label: model.DefaultLabel(i), Width: 5, Height: 5},
			X:         float64(i%8)*12 - 42,
			Y:         float64(i/8)*12 - 24,
		})
	}

	if err := ExportPDF(path, model.PackingConfig{}, result); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
}

func TestLabelFontSize(t *testing.T) {
	if labelFontSize(50) <= labelFontSize(10) {
		t.Error("larger rectangles should get larger labels")
	}
	if labelFontSize(1) != 5 {
		t.Errorf("expected minimum font size 5, got %f", labelFontSize(1))
	}
}
