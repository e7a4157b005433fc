package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/piwi3910/circlepack/internal/model"
	"github.com/piwi3910/circlepack/internal/ui/widgets"
)

// ShowResult opens a window with a solved layout and blocks until it is
// closed. The CLI uses it for --gui and for problem files requesting GUI
// output.
func ShowResult(cfg model.PackingConfig, result model.PackingResult) error {
	application := app.NewWithID(AppID)
	window := application.NewWindow(fmt.Sprintf("circlepack - R=%.4f mm", result.Radius))
	window.SetContent(widgets.RenderResult(cfg, &result))
	window.Resize(fyne.NewSize(800, 800))
	window.CenterOnScreen()
	window.ShowAndRun()
	return nil
}
