package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/circlepack/internal/engine"
	"github.com/piwi3910/circlepack/internal/export"
	"github.com/piwi3910/circlepack/internal/gcode"
	"github.com/piwi3910/circlepack/internal/importer"
	"github.com/piwi3910/circlepack/internal/model"
	"github.com/piwi3910/circlepack/internal/project"
)

// ─── Solving ───────────────────────────────────────────────

func (a *App) checkSolvable() bool {
	if len(a.project.Config.Rectangles) == 0 {
		dialog.ShowInformation("Nothing to pack", "Add at least one rectangle first.", a.window)
		return false
	}
	if err := a.project.Config.Validate(); err != nil {
		dialog.ShowError(err, a.window)
		return false
	}
	if err := a.project.Solver.Validate(); err != nil {
		dialog.ShowError(err, a.window)
		return false
	}
	return a.cancelSolve == nil
}

// beginRun switches the window into the running state and returns the
// context the solver runs under.
func (a *App) beginRun(status string) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelSolve = cancel
	a.solveBtn.Disable()
	a.cancelBtn.Enable()
	a.progress.SetValue(0)
	a.progress.Show()
	a.setStatus("%s", status)
	return ctx
}

func (a *App) endRun() {
	if a.cancelSolve != nil {
		a.cancelSolve()
		a.cancelSolve = nil
	}
	a.solveBtn.Enable()
	a.cancelBtn.Disable()
	a.progress.Hide()
}

// progressEvery is how often, in generations, the status bar is refreshed.
const progressEvery = 25

// showProgress reports whether generation p warrants a status bar update.
func showProgress(p engine.Progress) bool {
	if p.MaxIter <= 0 {
		return false
	}
	return p.Iteration == 1 || p.Iteration%progressEvery == 0 || p.Iteration >= p.MaxIter
}

// progressOption reports solver progress on the status bar.
func (a *App) progressOption() engine.Option {
	return engine.WithProgress(func(mode model.RotationMode, p engine.Progress) {
		if !showProgress(p) {
			return
		}
		frac := float64(p.Iteration) / float64(p.MaxIter)
		fyne.Do(func() {
			a.progress.SetValue(frac)
			a.setStatus("Solving %s: generation %d of %d", mode, p.Iteration, p.MaxIter)
		})
	})
}

// runSolve solves the current problem in the background.
func (a *App) runSolve() {
	if !a.checkSolvable() {
		return
	}

	cfg := MakeSnapshot(a.project.Config, "").Config
	settings := a.project.Solver
	multi := a.project.MultiStage
	mode := a.project.Mode

	ctx := a.beginRun("Solving...")
	go func() {
		solver := engine.New(settings, a.progressOption())
		start := time.Now()

		var (
			result model.PackingResult
			err    error
		)
		if multi {
			result, err = solver.SolveMultiStage(ctx, cfg)
		} else {
			result, err = solver.Solve(ctx, cfg, mode)
		}
		elapsed := time.Since(start).Round(time.Millisecond)

		fyne.Do(func() {
			a.endRun()
			if err != nil {
				a.setStatus("Solve failed")
				dialog.ShowError(err, a.window)
				return
			}
			a.project.Result = &result
			a.refreshResults()
			a.tabs.SelectIndex(tabResult)
			a.setStatus("%s: R=%.4f mm in %s", solveSummary(result), result.Radius, elapsed)
		})
	}()
}

func (a *App) stopSolve() {
	if a.cancelSolve != nil {
		a.cancelSolve()
		a.setStatus("Stopping...")
	}
}

func solveSummary(r model.PackingResult) string {
	switch {
	case r.Valid && r.FitsTarget:
		return "Valid layout"
	case r.Valid:
		return "Valid layout above target"
	}
	return "No valid layout"
}

// runCompare solves the problem once per rotation strategy and lists the
// outcomes side by side.
func (a *App) runCompare() {
	if !a.checkSolvable() {
		return
	}

	cfg := MakeSnapshot(a.project.Config, "").Config
	settings := a.project.Solver

	ctx := a.beginRun("Comparing rotation modes...")
	go func() {
		results := engine.CompareModes(ctx, cfg, settings, a.progressOption())
		fyne.Do(func() {
			a.endRun()
			a.showComparison(results)
			a.tabs.SelectIndex(tabCompare)
			a.setStatus("Compared %d scenarios", len(results))
		})
	}()
}

func (a *App) showComparison(results []engine.ComparisonResult) {
	best := engine.BestComparison(results)

	bold := fyne.TextStyle{Bold: true}
	grid := container.NewGridWithColumns(7,
		widget.NewLabelWithStyle("Scenario", fyne.TextAlignLeading, bold),
		widget.NewLabelWithStyle("Radius", fyne.TextAlignLeading, bold),
		widget.NewLabelWithStyle("Density", fyne.TextAlignLeading, bold),
		widget.NewLabelWithStyle("Valid", fyne.TextAlignLeading, bold),
		widget.NewLabelWithStyle("Fits", fyne.TextAlignLeading, bold),
		widget.NewLabelWithStyle("Time", fyne.TextAlignLeading, bold),
		widget.NewLabel(""),
	)

	for i, r := range results {
		idx := i
		name := widget.NewLabel(r.Scenario.Name)
		if i == best {
			name.TextStyle = bold
			name.Importance = widget.SuccessImportance
		}
		if r.Err != nil {
			grid.Add(name)
			errLabel := widget.NewLabel(r.Err.Error())
			errLabel.Importance = widget.DangerImportance
			grid.Add(errLabel)
			for j := 0; j < 5; j++ {
				grid.Add(widget.NewLabel(""))
			}
			continue
		}
		grid.Add(name)
		grid.Add(widget.NewLabel(fmt.Sprintf("%.4f", r.Result.Radius)))
		grid.Add(widget.NewLabel(fmt.Sprintf("%.1f%%", r.Stats.Density)))
		grid.Add(widget.NewLabel(yesNo(r.Result.Valid)))
		grid.Add(widget.NewLabel(yesNo(r.Result.FitsTarget)))
		grid.Add(widget.NewLabel(r.Elapsed.Round(time.Millisecond).String()))
		grid.Add(widget.NewButton("Use", func() {
			res := results[idx].Result
			a.project.Result = &res
			a.refreshResults()
			a.tabs.SelectIndex(tabResult)
		}))
	}

	a.compareContainer.RemoveAll()
	a.compareContainer.Add(container.NewVScroll(grid))
	a.compareContainer.Refresh()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// ─── Export ────────────────────────────────────────────────

func (a *App) hasResult() bool {
	if a.project.Result == nil || len(a.project.Result.Placements) == 0 {
		dialog.ShowInformation("No results", "Solve the layout before exporting.", a.window)
		return false
	}
	return true
}

func (a *App) exportLayout(f export.Format) {
	if !a.hasResult() {
		return
	}
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()

		if err := export.Write(path, f, a.project.Config, *a.project.Result); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.setStatus("Exported %s", path)
	}, a.window)
	d.SetFileName(a.project.Name + f.Extension())
	d.Show()
}

func (a *App) exportGCode() {
	if !a.hasResult() {
		return
	}

	result := *a.project.Result
	warnings := gcode.FormatClearanceWarnings(gcode.CheckClearance(a.project.Config, result, a.project.CNC))
	code := gcode.New(a.project.CNC).Generate(a.project.Config, result)

	save := func() {
		d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil || writer == nil {
				return
			}
			defer writer.Close()
			if err := project.ExportGCode(writer.URI().Path(), code); err != nil {
				dialog.ShowError(err, a.window)
			} else {
				dialog.ShowInformation("Export Complete",
					fmt.Sprintf("G-code saved to %s", writer.URI().Path()), a.window)
			}
		}, a.window)
		d.SetFileName(a.project.Name + ".nc")
		d.Show()
	}

	if len(warnings) == 0 {
		save()
		return
	}
	dialog.ShowConfirm("Tool Clearance",
		strings.Join(warnings, "\n")+"\n\nExport anyway?",
		func(ok bool) {
			if ok {
				save()
			}
		}, a.window)
}

// ─── Projects ──────────────────────────────────────────────

func (a *App) saveProject() {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		if !strings.HasSuffix(path, project.Extension) {
			path = strings.TrimSuffix(path, filepath.Ext(path)) + project.Extension
		}

		a.project.Name = project.NameFromPath(path)
		if err := project.Save(path, a.project); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.projectPath = path
		a.rememberProject(path)
		a.window.SetTitle(a.windowTitle())
		a.setStatus("Saved %s", path)
	}, a.window)
	d.SetFileName(a.project.Name + project.Extension)
	d.Show()
}

func (a *App) loadProject() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		a.openProject(path)
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	d.Show()
}

// openProject loads the project at path and records it as recent.
func (a *App) openProject(path string) {
	proj, err := project.Load(path)
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.resetProject(proj)
	a.projectPath = path
	a.rememberProject(path)
	a.window.SetTitle(a.windowTitle())
	a.setStatus("Opened %s", path)
}

func (a *App) rememberProject(path string) {
	project.AddRecentProject(&a.config, path)
	if err := a.saveConfig(); err != nil {
		a.setStatus("Could not save recent projects: %v", err)
	}
	a.SetupMenus()
}

// ─── Import ────────────────────────────────────────────────

// importRectangles loads rectangles from CSV, Excel or DXF and appends
// them. A JSON problem file replaces the whole problem.
func (a *App) importRectangles() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		if strings.EqualFold(filepath.Ext(path), ".json") {
			a.importProblem(path)
			return
		}
		a.handleImportResult(importer.ImportFile(path))
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".csv", ".tsv", ".txt", ".xlsx", ".xls", ".dxf", ".json"}))
	d.Show()
}

func (a *App) importProblem(path string) {
	problem, err := importer.LoadProblem(path)
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.pushHistory("Import Problem")
	a.project.Config = problem.Config
	a.project.Result = nil
	a.refreshAll()
	a.setStatus("Imported %d rectangles from %s", len(problem.Config.Rectangles), filepath.Base(path))
}

func (a *App) handleImportResult(result importer.ImportResult) {
	if len(result.Errors) > 0 {
		errorMsg := "Errors encountered during import:\n\n" + strings.Join(result.Errors, "\n")
		dialog.ShowError(errors.New(errorMsg), a.window)
	}
	if len(result.Rectangles) == 0 {
		return
	}

	a.pushHistory("Import Rectangles")
	a.project.Config.Rectangles = append(a.project.Config.Rectangles, result.Rectangles...)
	a.refreshRectangles()

	msg := fmt.Sprintf("Successfully imported %d rectangles.", len(result.Rectangles))
	if len(result.Errors) > 0 {
		msg += fmt.Sprintf("\n\nHowever, %d rows had errors and were skipped.", len(result.Errors))
	}
	if len(result.Warnings) > 0 {
		msg += "\n\n" + strings.Join(result.Warnings, "\n")
	}

	r, ok := result.LargestCircle()
	if !ok {
		dialog.ShowInformation("Import Complete", msg, a.window)
		return
	}
	dialog.ShowConfirm("Import Complete",
		msg+fmt.Sprintf("\n\nThe drawing contains a circle of radius %.3f mm. Use it as the target radius?", r),
		func(use bool) {
			if use {
				a.project.Config.SetTarget(r)
				a.refreshSettings()
			}
		}, a.window)
}

// ─── Templates ─────────────────────────────────────────────

func (a *App) showTemplatePicker() {
	if len(a.templates.Templates) == 0 {
		dialog.ShowInformation("No Templates", "Save a project as a template first.", a.window)
		return
	}

	nameEntry := widget.NewEntry()
	nameEntry.SetText("Untitled")
	picker := widget.NewSelect(a.templates.Names(), nil)
	picker.SetSelectedIndex(0)

	items := []*widget.FormItem{
		widget.NewFormItem("Template", picker),
		widget.NewFormItem("Project Name", nameEntry),
	}
	dialog.ShowForm("New from Template", "Create", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		t := a.templates.FindByName(picker.Selected)
		if t == nil {
			return
		}
		a.resetProject(t.ToProject(nameEntry.Text))
		a.setStatus("Created %s from template %s", nameEntry.Text, t.Name)
	}, a.window)
}

func (a *App) showSaveTemplateDialog() {
	nameEntry := widget.NewEntry()
	nameEntry.SetText(a.project.Name)
	descEntry := widget.NewMultiLineEntry()

	items := []*widget.FormItem{
		widget.NewFormItem("Name", nameEntry),
		widget.NewFormItem("Description", descEntry),
	}
	dialog.ShowForm("Save as Template", "Save", "Cancel", items, func(ok bool) {
		if !ok || strings.TrimSpace(nameEntry.Text) == "" {
			return
		}
		if old := a.templates.FindByName(nameEntry.Text); old != nil {
			a.templates.Remove(old.ID)
		}
		a.templates.Add(model.NewProjectTemplate(nameEntry.Text, descEntry.Text, a.project))
		if err := project.SaveDefaultTemplates(a.templates); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.setStatus("Saved template %s", nameEntry.Text)
	}, a.window)
}
