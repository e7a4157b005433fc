package gcode

import (
	"fmt"
	"math"

	"github.com/piwi3910/circlepack/internal/model"
)

// ClearanceKind tells which gap a warning is about.
type ClearanceKind int

const (
	// BetweenRectangles is the gap separating two rectangles.
	BetweenRectangles ClearanceKind = iota
	// ToBoundary is the gap between a rectangle and the circle blank.
	ToBoundary
)

// ClearanceWarning reports a gap the tool cannot pass through without
// cutting into a neighbouring part.
type ClearanceWarning struct {
	Kind     ClearanceKind
	Required float64 // mm
	Actual   float64 // mm
	Source   string  // "padding" or "layout"
}

func (w ClearanceWarning) String() string {
	what := "between rectangles"
	if w.Kind == ToBoundary {
		what = "between rectangles and the circle"
	}
	return fmt.Sprintf("tool needs %.2f mm %s but the %s leaves %.2f mm", w.Required, what, w.Source, w.Actual)
}

// CheckClearance verifies that a tool of the configured diameter fits the
// layout. Rectangles are cut from outside, so two neighbours need a full tool
// diameter between them and a rectangle needs a tool radius to the blank,
// whose own cut runs outside the circle. Both the configured paddings and the
// measured gaps of the result are checked.
func CheckClearance(cfg model.PackingConfig, result model.PackingResult, settings model.CNCSettings) []ClearanceWarning {
	tool := settings.ToolDiameter
	if tool <= 0 {
		return nil
	}
	var warnings []ClearanceWarning

	needInner := tool
	needOuter := tool / 2
	if len(cfg.Rectangles) > 1 && cfg.PaddingInner < needInner {
		warnings = append(warnings, ClearanceWarning{BetweenRectangles, needInner, cfg.PaddingInner, "padding"})
	}
	if cfg.PaddingOuter < needOuter {
		warnings = append(warnings, ClearanceWarning{ToBoundary, needOuter, cfg.PaddingOuter, "padding"})
	}

	if len(result.Placements) == 0 {
		return warnings
	}
	stats := model.ComputeStats(result, 0, 0)
	const slack = 1e-6
	if len(result.Placements) > 1 && stats.MinGap+slack < needInner && !hasWarning(warnings, BetweenRectangles) {
		warnings = append(warnings, ClearanceWarning{BetweenRectangles, needInner, math.Max(stats.MinGap, 0), "layout"})
	}
	if stats.MinClearance+slack < needOuter && !hasWarning(warnings, ToBoundary) {
		warnings = append(warnings, ClearanceWarning{ToBoundary, needOuter, math.Max(stats.MinClearance, 0), "layout"})
	}
	return warnings
}

func hasWarning(ws []ClearanceWarning, kind ClearanceKind) bool {
	for _, w := range ws {
		if w.Kind == kind {
			return true
		}
	}
	return false
}

// FormatClearanceWarnings produces human-readable warning messages.
func FormatClearanceWarnings(ws []ClearanceWarning) []string {
	var out []string
	for _, w := range ws {
		out = append(out, w.String())
	}
	return out
}
