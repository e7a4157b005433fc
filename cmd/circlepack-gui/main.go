// circlepack-gui is the desktop front end for the circle packer.
//
// Build:
//   go build -o circlepack-gui ./cmd/circlepack-gui
//
// Using fyne-cross (recommended for proper packaging):
//   go install github.com/fyne-io/fyne-cross@latest
//   fyne-cross windows -arch=amd64
//   fyne-cross darwin  -arch=amd64,arm64

package main

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/piwi3910/circlepack/internal/ui"
)

func main() {
	application := app.NewWithID(ui.AppID)
	window := application.NewWindow("circlepack - Rectangle Circle Packing")

	appUI := ui.NewApp(application, window)
	appUI.SetupMenus()
	window.SetContent(appUI.Build())
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()
	window.ShowAndRun()
}
