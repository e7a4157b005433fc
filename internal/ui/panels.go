package ui

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/circlepack/internal/gcode"
	"github.com/piwi3910/circlepack/internal/model"
	"github.com/piwi3910/circlepack/internal/ui/widgets"
)

// modeMulti is the mode selector entry for the escalating search.
const modeMulti = "Multi-stage (FIXED_0 → FREE)"

// ─── Rectangles Panel ──────────────────────────────────────

func (a *App) buildRectanglePanel() fyne.CanvasObject {
	a.rectContainer = container.NewVBox()
	a.refreshRectangles()

	addBtn := widget.NewButtonWithIcon("Add Rectangle", theme.ContentAddIcon(), func() {
		a.showRectangleDialog(-1)
	})

	return container.NewBorder(
		container.NewHBox(
			widget.NewLabelWithStyle("Rectangles (mm)", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			layout.NewSpacer(),
			addBtn,
		),
		nil, nil, nil,
		container.NewVScroll(a.rectContainer),
	)
}

func (a *App) refreshRectangles() {
	a.rectContainer.RemoveAll()

	rects := a.project.Config.Rectangles
	if len(rects) == 0 {
		a.rectContainer.Add(widget.NewLabel("No rectangles yet. Click 'Add Rectangle' or import a file."))
		a.rectContainer.Refresh()
		return
	}

	bold := fyne.TextStyle{Bold: true}
	a.rectContainer.Add(container.NewGridWithColumns(5,
		widget.NewLabelWithStyle("Label", fyne.TextAlignLeading, bold),
		widget.NewLabelWithStyle("Width", fyne.TextAlignLeading, bold),
		widget.NewLabelWithStyle("Height", fyne.TextAlignLeading, bold),
		widget.NewLabel(""),
		widget.NewLabel(""),
	))
	a.rectContainer.Add(widget.NewSeparator())

	for i := range rects {
		idx := i
		r := rects[idx]
		label := r.Label
		if label == "" {
			label = model.DefaultLabel(idx)
		}
		a.rectContainer.Add(container.NewGridWithColumns(5,
			widget.NewLabel(label),
			widget.NewLabel(fmt.Sprintf("%g", r.Width)),
			widget.NewLabel(fmt.Sprintf("%g", r.Height)),
			widget.NewButtonWithIcon("", theme.DocumentCreateIcon(), func() {
				a.showRectangleDialog(idx)
			}),
			widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
				a.pushHistory("Delete Rectangle")
				a.project.Config.Rectangles = append(a.project.Config.Rectangles[:idx], a.project.Config.Rectangles[idx+1:]...)
				a.refreshRectangles()
			}),
		))
	}

	if n := len(rects); n != defaultRectangleCount {
		note := widget.NewLabel(fmt.Sprintf("%d rectangles: the solver is tuned for %d but will try.", n, defaultRectangleCount))
		note.Importance = widget.WarningImportance
		a.rectContainer.Add(note)
	}
	a.rectContainer.Refresh()
}

// showRectangleDialog adds a rectangle (idx < 0) or edits rectangle idx.
func (a *App) showRectangleDialog(idx int) {
	title, confirm := "Add Rectangle", "Add"
	r := model.NewRectangle(model.DefaultLabel(len(a.project.Config.Rectangles)), defaultRectangleSide, defaultRectangleSide)
	if idx >= 0 {
		title, confirm = "Edit Rectangle", "Save"
		r = a.project.Config.Rectangles[idx]
	}

	labelEntry := widget.NewEntry()
	labelEntry.SetText(r.Label)
	widthEntry := widget.NewEntry()
	widthEntry.SetText(fmt.Sprintf("%g", r.Width))
	heightEntry := widget.NewEntry()
	heightEntry.SetText(fmt.Sprintf("%g", r.Height))

	form := dialog.NewForm(title, confirm, "Cancel",
		[]*widget.FormItem{
			widget.NewFormItem("Label", labelEntry),
			widget.NewFormItem("Width (mm)", widthEntry),
			widget.NewFormItem("Height (mm)", heightEntry),
		},
		func(ok bool) {
			if !ok {
				return
			}
			w, errW := strconv.ParseFloat(widthEntry.Text, 64)
			h, errH := strconv.ParseFloat(heightEntry.Text, 64)
			if errW != nil || errH != nil || w <= 0 || h <= 0 {
				dialog.ShowError(fmt.Errorf("width and height must be numbers > 0"), a.window)
				return
			}

			a.pushHistory(title)
			r.Label = labelEntry.Text
			r.Width = w
			r.Height = h
			if idx < 0 {
				a.project.Config.Rectangles = append(a.project.Config.Rectangles, r)
			} else {
				a.project.Config.Rectangles[idx] = r
			}
			a.refreshRectangles()
		},
		a.window,
	)
	form.Resize(fyne.NewSize(400, 260))
	form.Show()
}

// ─── Settings Panel ────────────────────────────────────────

func (a *App) buildSettingsPanel() fyne.CanvasObject {
	a.settingsContainer = container.NewVBox()
	a.refreshSettings()
	return container.NewVScroll(a.settingsContainer)
}

// refreshSettings rebuilds the settings form from the project so loaded
// projects and undo show their values.
func (a *App) refreshSettings() {
	c := &a.project.Config
	s := &a.project.Solver
	cnc := &a.project.CNC

	// Target radius: empty means no target.
	targetEntry := widget.NewEntry()
	targetEntry.SetPlaceHolder("none")
	if c.HasTarget() {
		targetEntry.SetText(fmt.Sprintf("%g", c.Target()))
	}
	targetEntry.OnChanged = func(text string) {
		if text == "" {
			c.ClearTarget()
			return
		}
		if v, err := strconv.ParseFloat(text, 64); err == nil {
			c.SetTarget(v)
		}
	}

	modeOptions := []string{modeMulti}
	for _, m := range model.AllRotationModes() {
		modeOptions = append(modeOptions, m.String())
	}
	modeSelect := widget.NewSelect(modeOptions, func(selected string) {
		if selected == modeMulti {
			a.project.MultiStage = true
			return
		}
		if m, err := model.ParseRotationMode(selected); err == nil {
			a.project.MultiStage = false
			a.project.Mode = m
		}
	})
	if a.project.MultiStage {
		modeSelect.SetSelected(modeMulti)
	} else {
		modeSelect.SetSelected(a.project.Mode.String())
	}

	polishCheck := widget.NewCheck("", func(b bool) { s.Polish = b })
	polishCheck.Checked = s.Polish

	problemSection := widget.NewCard("Problem", "", container.NewGridWithColumns(2,
		widget.NewLabel("Padding Between Rectangles (mm)"), floatEntry(&c.PaddingInner),
		widget.NewLabel("Padding To Circle (mm)"), floatEntry(&c.PaddingOuter),
		widget.NewLabel("Target Radius (mm)"), targetEntry,
	))

	solverSection := widget.NewCard("Solver", "", container.NewGridWithColumns(2,
		widget.NewLabel("Rotation Mode"), modeSelect,
		widget.NewLabel("Seed"), int64Entry(&s.Seed),
		widget.NewLabel("Parallel Workers (0 = all CPUs)"), intEntry(&s.Workers),
		widget.NewLabel("Nelder-Mead Polish"), polishCheck,
		widget.NewLabel(""), widget.NewButtonWithIcon("Advanced...", theme.SettingsIcon(), func() {
			a.showAdvancedSettingsDialog()
		}),
	))

	climbCheck := widget.NewCheck("", func(b bool) { cnc.UseClimb = b })
	climbCheck.Checked = cnc.UseClimb
	blankCheck := widget.NewCheck("", func(b bool) { cnc.CutBlank = b })
	blankCheck.Checked = cnc.CutBlank

	cncSection := widget.NewCard("CNC / G-code", "", container.NewGridWithColumns(2,
		widget.NewLabel("G-code Profile"), a.buildProfileSelector(),
		widget.NewLabel("Tool Diameter (mm)"), floatEntry(&cnc.ToolDiameter),
		widget.NewLabel("Feed Rate (mm/min)"), floatEntry(&cnc.FeedRate),
		widget.NewLabel("Plunge Rate (mm/min)"), floatEntry(&cnc.PlungeRate),
		widget.NewLabel("Spindle Speed (RPM)"), intEntry(&cnc.SpindleSpeed),
		widget.NewLabel("Safe Z Height (mm)"), floatEntry(&cnc.SafeZ),
		widget.NewLabel("Material Thickness (mm)"), floatEntry(&cnc.CutDepth),
		widget.NewLabel("Pass Depth (mm)"), floatEntry(&cnc.PassDepth),
		widget.NewLabel("Climb Milling"), climbCheck,
		widget.NewLabel("Cut Circular Blank"), blankCheck,
	))

	a.settingsContainer.RemoveAll()
	a.settingsContainer.Add(problemSection)
	a.settingsContainer.Add(solverSection)
	a.settingsContainer.Add(cncSection)
	a.settingsContainer.Refresh()
}

func (a *App) buildProfileSelector() *widget.Select {
	selector := widget.NewSelect(model.GetProfileNames(), func(selected string) {
		a.project.CNC.GCodeProfile = selected
	})
	selector.SetSelected(a.project.CNC.GCodeProfile)
	return selector
}

// refreshProfileSelector rebuilds the settings form after profiles change.
func (a *App) refreshProfileSelector() {
	if a.settingsContainer != nil {
		a.refreshSettings()
	}
}

// ─── Result Panels ─────────────────────────────────────────

func (a *App) buildResultPanel() fyne.CanvasObject {
	a.resultContainer = container.NewStack(
		widget.NewLabel("No results yet. Enter rectangles, then click Solve."),
	)
	return a.resultContainer
}

func (a *App) buildToolpathPanel() fyne.CanvasObject {
	a.toolpathContainer = container.NewStack(
		widget.NewLabel("Solve a layout to preview its toolpath."),
	)
	return a.toolpathContainer
}

func (a *App) buildComparePanel() fyne.CanvasObject {
	a.compareContainer = container.NewStack(
		widget.NewLabel("Run Tools > Compare Rotation Modes to compare strategies."),
	)
	return a.compareContainer
}

// refreshResults redraws the layout and the toolpath preview.
func (a *App) refreshResults() {
	a.resultContainer.RemoveAll()
	a.resultContainer.Add(widgets.RenderResult(a.project.Config, a.project.Result))
	a.resultContainer.Refresh()

	a.toolpathContainer.RemoveAll()
	if a.project.Result == nil || len(a.project.Result.Placements) == 0 {
		a.toolpathContainer.Add(widget.NewLabel("Solve a layout to preview its toolpath."))
	} else {
		result := *a.project.Result
		code := gcode.New(a.project.CNC).Generate(a.project.Config, result)
		preview := widgets.RenderGCodePreview(result, code)

		warnings := gcode.FormatClearanceWarnings(gcode.CheckClearance(a.project.Config, result, a.project.CNC))
		if len(warnings) == 0 {
			a.toolpathContainer.Add(preview)
		} else {
			items := []fyne.CanvasObject{}
			for _, w := range warnings {
				l := widget.NewLabel(w)
				l.Importance = widget.WarningImportance
				items = append(items, l)
			}
			a.toolpathContainer.Add(container.NewBorder(container.NewVBox(items...), nil, nil, nil, preview))
		}
	}
	a.toolpathContainer.Refresh()
}
