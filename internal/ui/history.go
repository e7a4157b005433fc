package ui

import (
	"slices"

	"github.com/piwi3910/circlepack/internal/model"
)

const defaultMaxDepth = 50

// Snapshot is the packing problem at one point of the edit history.
// Results are not recorded; a restored problem is solved again.
type Snapshot struct {
	Config model.PackingConfig
	Label  string // e.g. "Add Rectangle"
}

// MakeSnapshot deep-copies cfg so later edits do not leak into the history.
func MakeSnapshot(cfg model.PackingConfig, label string) Snapshot {
	cfg.Rectangles = slices.Clone(cfg.Rectangles)
	if cfg.TargetRadius != nil {
		target := *cfg.TargetRadius
		cfg.TargetRadius = &target
	}
	return Snapshot{Config: cfg, Label: label}
}

type snapshotStack []Snapshot

func (s *snapshotStack) pop() (Snapshot, bool) {
	n := len(*s)
	if n == 0 {
		return Snapshot{}, false
	}
	top := (*s)[n-1]
	*s = (*s)[:n-1]
	return top, true
}

// History is a bounded undo/redo list. Push before applying an edit; Undo
// and Redo trade the current state for the stored one.
type History struct {
	undoStack snapshotStack
	redoStack snapshotStack
	maxDepth  int
}

func NewHistory() *History {
	return &History{maxDepth: defaultMaxDepth}
}

// Push records s and forgets everything that could be redone. The oldest
// snapshots are dropped beyond the depth limit.
func (h *History) Push(s Snapshot) {
	h.undoStack = append(h.undoStack, s)
	if over := len(h.undoStack) - h.maxDepth; over > 0 {
		h.undoStack = slices.Delete(h.undoStack, 0, over)
	}
	h.redoStack = nil
}

func (h *History) Undo(current Snapshot) (Snapshot, bool) {
	return swap(&h.undoStack, &h.redoStack, current)
}

func (h *History) Redo(current Snapshot) (Snapshot, bool) {
	return swap(&h.redoStack, &h.undoStack, current)
}

// swap pops from src and, if there was something, parks current on dst.
func swap(src, dst *snapshotStack, current Snapshot) (Snapshot, bool) {
	s, ok := src.pop()
	if ok {
		*dst = append(*dst, current)
	}
	return s, ok
}

func (h *History) CanUndo() bool { return len(h.undoStack) > 0 }

func (h *History) CanRedo() bool { return len(h.redoStack) > 0 }

func (h *History) Clear() {
	h.undoStack, h.redoStack = nil, nil
}
