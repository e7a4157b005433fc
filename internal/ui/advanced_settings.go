package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/circlepack/internal/model"
)

// showAdvancedSettingsDialog opens a dialog with the solver tuning knobs
// that are not shown on the Settings tab.
func (a *App) showAdvancedSettingsDialog() {
	s := &a.project.Solver

	// --- Penalty Weights ---
	weightsSection := widget.NewCard("Penalty Weights",
		"How strongly the objective punishes each violation",
		container.NewGridWithColumns(2,
			widget.NewLabel("Containment"), floatEntry(&s.ContainmentWeight),
			widget.NewLabel("Overlap"), floatEntry(&s.OverlapWeight),
		))

	// --- Tolerances ---
	toleranceSection := widget.NewCard("Tolerances", "",
		container.NewGridWithColumns(2,
			widget.NewLabel("Validity Epsilon"), floatEntry(&s.ValidityEpsilon),
			widget.NewLabel("Target Epsilon (mm)"), floatEntry(&s.TargetEpsilon),
			widget.NewLabel("Degenerate Edge (mm)"), floatEntry(&s.DegenerateEdge),
			widget.NewLabel("Search Bounds Scale"), floatEntry(&s.BoundsScale),
		))

	// --- Differential Evolution ---
	evolutionSection := widget.NewCard("Differential Evolution",
		"Mutation is dithered between min and max each generation",
		container.NewGridWithColumns(2,
			widget.NewLabel("Mutation Min"), floatEntry(&s.MutationMin),
			widget.NewLabel("Mutation Max"), floatEntry(&s.MutationMax),
			widget.NewLabel("Crossover Rate"), floatEntry(&s.Crossover),
		))

	// --- Stage Budgets ---
	budgetGrid := container.NewGridWithColumns(4,
		widget.NewLabelWithStyle("Stage", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Generations", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Population x", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Tolerance", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
	)
	for _, stage := range []struct {
		name   string
		budget *model.StageBudget
	}{
		{"Fixed", &s.Fixed},
		{"Discrete", &s.Discrete},
		{"Free", &s.Free},
	} {
		budgetGrid.Add(widget.NewLabel(stage.name))
		budgetGrid.Add(intEntry(&stage.budget.MaxIter))
		budgetGrid.Add(intEntry(&stage.budget.PopSize))
		budgetGrid.Add(floatEntry(&stage.budget.Tol))
	}
	budgetSection := widget.NewCard("Stage Budgets",
		"Tolerance 0 runs every generation",
		budgetGrid)

	// --- Repair and Search Space ---
	settleCheck := widget.NewCheck("", func(b bool) { s.Settle = b })
	settleCheck.Checked = s.Settle
	dedupeCheck := widget.NewCheck("", func(b bool) { s.DedupeSymmetricAngles = b })
	dedupeCheck.Checked = s.DedupeSymmetricAngles

	repairSection := widget.NewCard("Repair and Search Space", "",
		container.NewGridWithColumns(2,
			widget.NewLabel("Settle Nearly Valid Layouts"), settleCheck,
			widget.NewLabel("Settle Tolerance"), floatEntry(&s.SettleTolerance),
			widget.NewLabel("Merge Symmetric Angles"), dedupeCheck,
			widget.NewLabel("Parallel Workers (0 = all CPUs)"), intEntry(&s.Workers),
		))

	// --- G-code Profile ---
	manageProfileBtn := widget.NewButtonWithIcon("Manage Profiles", theme.SettingsIcon(), func() {
		a.showProfileManager()
	})
	profileSection := widget.NewCard("G-code Profile", "",
		container.NewGridWithColumns(2,
			widget.NewLabel("Active Profile"), container.NewBorder(nil, nil, nil, manageProfileBtn, a.buildProfileSelector()),
		))

	resetBtn := widget.NewButtonWithIcon("Restore Defaults", theme.ViewRefreshIcon(), nil)

	content := container.NewVScroll(container.NewVBox(
		weightsSection,
		toleranceSection,
		evolutionSection,
		budgetSection,
		repairSection,
		profileSection,
		container.NewHBox(layout.NewSpacer(), resetBtn),
	))

	d := dialog.NewCustom("Advanced Solver Settings", "Close", content, a.window)
	d.SetOnClosed(func() {
		if err := s.Validate(); err != nil {
			dialog.ShowError(err, a.window)
		}
		a.refreshSettings()
	})
	resetBtn.OnTapped = func() {
		seed, workers, polish := s.Seed, s.Workers, s.Polish
		*s = model.DefaultSolverSettings()
		s.Seed, s.Workers, s.Polish = seed, workers, polish
		d.Hide()
		a.showAdvancedSettingsDialog()
	}
	d.Resize(fyne.NewSize(650, 700))
	d.Show()
}
