package ui

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/circlepack/internal/engine"
	"github.com/piwi3910/circlepack/internal/export"
	"github.com/piwi3910/circlepack/internal/model"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	application := test.NewTempApp(t)
	window := application.NewWindow("circlepack test")
	a := NewApp(application, window)
	a.SetupMenus()
	window.SetContent(a.Build())
	return a
}

func TestNewAppStartsWithDefaultRectangles(t *testing.T) {
	a := newTestApp(t)

	require.Len(t, a.project.Config.Rectangles, defaultRectangleCount)
	for i, r := range a.project.Config.Rectangles {
		assert.Equal(t, model.DefaultLabel(i), r.Label)
		assert.Equal(t, defaultRectangleSide, r.Width)
		assert.Equal(t, defaultRectangleSide, r.Height)
	}
	assert.Len(t, a.tabs.Items, 5)
	assert.True(t, a.project.MultiStage)
	assert.True(t, a.cancelBtn.Disabled())
}

func TestUndoRestoresClearedRectangles(t *testing.T) {
	a := newTestApp(t)

	a.pushHistory("Clear Rectangles")
	a.project.Config.Rectangles = []model.Rectangle{}
	a.refreshRectangles()

	a.undo()
	assert.Len(t, a.project.Config.Rectangles, defaultRectangleCount)

	a.redo()
	assert.Empty(t, a.project.Config.Rectangles)
}

func TestResetProjectClearsPath(t *testing.T) {
	a := newTestApp(t)
	a.projectPath = "/tmp/old" + ".circlepack.json"
	a.pushHistory("edit")

	p := model.NewProject()
	p.Name = "Fresh"
	a.resetProject(p)

	assert.Empty(t, a.projectPath)
	assert.False(t, a.history.CanUndo())
	assert.Equal(t, "circlepack - Fresh", a.windowTitle())
}

func TestPreviewLayoutFallsBackToSquare(t *testing.T) {
	a := newTestApp(t)

	cfg, result := a.previewLayout()
	require.Len(t, result.Placements, 1)
	assert.Len(t, cfg.Rectangles, 1)
	assert.Equal(t, defaultRectangleSide, result.Radius)

	solved := model.PackingResult{
		Radius:     20,
		Placements: []model.Placement{{Rectangle: a.project.Config.Rectangles[0]}},
	}
	a.project.Result = &solved
	_, result = a.previewLayout()
	assert.Equal(t, 20.0, result.Radius)
}

func TestFormatTitle(t *testing.T) {
	assert.Equal(t, "PNG Image...", formatTitle(export.FormatPNG))
	assert.Equal(t, "SVG Image...", formatTitle(export.FormatSVG))
	assert.Equal(t, "QR Labels (PDF)...", formatTitle(export.FormatLabels))
	assert.Equal(t, "DXF Drawing...", formatTitle(export.FormatDXF))
}

func TestSolveSummary(t *testing.T) {
	assert.Equal(t, "Valid layout", solveSummary(model.PackingResult{Valid: true, FitsTarget: true}))
	assert.Equal(t, "Valid layout above target", solveSummary(model.PackingResult{Valid: true}))
	assert.Equal(t, "No valid layout", solveSummary(model.PackingResult{}))
}

func TestShowProgressThrottlesUpdates(t *testing.T) {
	shown := 0
	for i := 1; i <= 1000; i++ {
		if showProgress(engine.Progress{Iteration: i, MaxIter: 1000}) {
			shown++
		}
	}
	// first generation plus every 25th
	assert.Equal(t, 41, shown)

	assert.True(t, showProgress(engine.Progress{Iteration: 1, MaxIter: 60}))
	assert.False(t, showProgress(engine.Progress{Iteration: 2, MaxIter: 60}))
	assert.True(t, showProgress(engine.Progress{Iteration: 60, MaxIter: 60}))
	assert.False(t, showProgress(engine.Progress{Iteration: 1, MaxIter: 0}))
}
