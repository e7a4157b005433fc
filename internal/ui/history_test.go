package ui

import (
	"testing"

	"github.com/piwi3910/circlepack/internal/model"
)

// configWith builds a config with n square rectangles.
func configWith(n int) model.PackingConfig {
	cfg := model.PackingConfig{}
	for i := 0; i < n; i++ {
		cfg.Rectangles = append(cfg.Rectangles, model.NewRectangle(model.DefaultLabel(i), 10, 10))
	}
	return cfg
}

func TestNewHistory(t *testing.T) {
	h := NewHistory()
	if h.maxDepth != defaultMaxDepth {
		t.Errorf("expected maxDepth %d, got %d", defaultMaxDepth, h.maxDepth)
	}
	if h.CanUndo() {
		t.Error("new history should not be undoable")
	}
	if h.CanRedo() {
		t.Error("new history should not be redoable")
	}
}

func TestUndoRedo(t *testing.T) {
	h := NewHistory()
	h.Push(MakeSnapshot(configWith(0), "empty"))
	h.Push(MakeSnapshot(configWith(1), "one rectangle"))

	current := MakeSnapshot(configWith(2), "two rectangles")

	restored, ok := h.Undo(current)
	if !ok {
		t.Fatal("first undo should succeed")
	}
	if len(restored.Config.Rectangles) != 1 {
		t.Errorf("expected 1 rectangle, got %d", len(restored.Config.Rectangles))
	}
	if restored.Label != "one rectangle" {
		t.Errorf("expected label 'one rectangle', got %q", restored.Label)
	}

	if !h.CanRedo() {
		t.Fatal("should be able to redo")
	}
	redone, ok := h.Redo(restored)
	if !ok {
		t.Fatal("redo should succeed")
	}
	if len(redone.Config.Rectangles) != 2 {
		t.Errorf("expected 2 rectangles after redo, got %d", len(redone.Config.Rectangles))
	}
}

func TestPushClearsRedo(t *testing.T) {
	h := NewHistory()
	h.Push(MakeSnapshot(configWith(0), "empty"))

	if _, ok := h.Undo(MakeSnapshot(configWith(1), "one")); !ok {
		t.Fatal("undo should succeed")
	}
	if !h.CanRedo() {
		t.Fatal("should be able to redo after undo")
	}

	h.Push(MakeSnapshot(configWith(0), "new action"))
	if h.CanRedo() {
		t.Error("redo stack should be cleared after push")
	}
}

func TestMaxDepth(t *testing.T) {
	h := &History{maxDepth: 3}
	for i := 0; i < 5; i++ {
		h.Push(MakeSnapshot(configWith(i), ""))
	}

	if len(h.undoStack) != 3 {
		t.Fatalf("expected undo stack length 3, got %d", len(h.undoStack))
	}
	// The oldest entries are dropped.
	if n := len(h.undoStack[0].Config.Rectangles); n != 2 {
		t.Errorf("expected oldest kept snapshot to have 2 rectangles, got %d", n)
	}
}

func TestUndoRedoEmpty(t *testing.T) {
	h := NewHistory()
	current := MakeSnapshot(configWith(1), "current")
	if _, ok := h.Undo(current); ok {
		t.Error("undo on empty history should return false")
	}
	if _, ok := h.Redo(current); ok {
		t.Error("redo on empty history should return false")
	}
}

func TestClear(t *testing.T) {
	h := NewHistory()
	h.Push(MakeSnapshot(configWith(1), "a"))
	h.Push(MakeSnapshot(configWith(2), "b"))
	h.Undo(MakeSnapshot(configWith(3), "current"))

	h.Clear()
	if h.CanUndo() || h.CanRedo() {
		t.Error("after clear, should not be able to undo or redo")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	cfg := configWith(1)
	cfg.SetTarget(20)
	snap := MakeSnapshot(cfg, "test")

	cfg.Rectangles[0].Label = "Modified"
	cfg.SetTarget(5)
	*cfg.TargetRadius = 7

	if snap.Config.Rectangles[0].Label != "Rect_1" {
		t.Error("snapshot rectangles should be independent of the original")
	}
	if snap.Config.Target() != 20 {
		t.Errorf("snapshot target should stay 20, got %v", snap.Config.Target())
	}
}

func TestSnapshotKeepsNilTarget(t *testing.T) {
	snap := MakeSnapshot(configWith(0), "nil test")
	if snap.Config.HasTarget() {
		t.Error("a config without target should stay without target")
	}
}
