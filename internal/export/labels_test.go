package export

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/circlepack/internal/model"
)

func TestExportLabels_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")

	if err := ExportLabels(path, buildTestResult()); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if info.Size() < 500 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestExportLabels_NoPlacements(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no_placements.pdf")

	err := ExportLabels(path, model.PackingResult{Radius: 10})
	if !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("expected ErrNothingToExport, got %v", err)
	}
}

func TestCollectLabelInfos(t *testing.T) {
	labels := CollectLabelInfos(buildTestResult())

	if len(labels) != 3 {
		t.Fatalf("expected 3 labels, got %d", len(labels))
	}
	if labels[0].Label != "Bar A" || labels[0].ID != "r1" {
		t.Errorf("unexpected first label %+v", labels[0])
	}
	if labels[0].Width != 20 || labels[0].Height != 10 {
		t.Errorf("wrong dimensions: got %.0fx%.0f, want 20x10", labels[0].Width, labels[0].Height)
	}
	if labels[1].Y != -5.5 {
		t.Errorf("expected y -5.5, got %f", labels[1].Y)
	}
	// Empty labels fall back to the positional identifier
	if labels[2].Label != "Rect_3" {
		t.Errorf("expected Rect_3, got %q", labels[2].Label)
	}
	if labels[2].Angle != 90 {
		t.Errorf("expected angle 90, got %f", labels[2].Angle)
	}
}

func TestLabelInfo_JSONKeys(t *testing.T) {
	data, err := json.Marshal(LabelInfo{ID: "a", Label: "L", Width: 3, Height: 4, X: 1, Y: 2, Angle: 45})
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	for _, key := range []string{"id", "label", "w", "h", "x", "y", "angle"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
}

func TestExportLabels_ManyRectangles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "many_labels.pdf")

	// 35 labels span two pages
	result := model.PackingResult{Radius: 500}
	for i := 0; i < 35; i++ {
		result.Placements = append(result.Placements, model.Placement{
			Rectangle: model.NewRectangle(model.DefaultLabel(i), 10+float64(i), 5),
			X:         float64(i * 11),
		})
	}

	if err := ExportLabels(path, result); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
}

func TestLabelSheetCell(t *testing.T) {
	s := avery5160
	x, y := s.cell(0)
	if x != s.left || y != s.top {
		t.Errorf("first label at (%g, %g), want (%g, %g)", x, y, s.left, s.top)
	}
	x, y = s.cell(4)
	if x != s.left+s.cellW || y != s.top+s.cellH {
		t.Errorf("fifth label at (%g, %g), want second column of second row", x, y)
	}
	// A new page starts over at the top left.
	x, y = s.cell(s.perPage())
	if x != s.left || y != s.top {
		t.Errorf("first label of page two at (%g, %g)", x, y)
	}
}
