package ui

import (
	"context"
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/circlepack/internal/export"
	"github.com/piwi3910/circlepack/internal/model"
	"github.com/piwi3910/circlepack/internal/project"
)

// AppID is the Fyne application identifier used for preferences storage.
const AppID = "com.piwi3910.circlepack"

// defaultRectangleCount rectangles of defaultRectangleSide mm are loaded
// into a new project.
const (
	defaultRectangleCount = 4
	defaultRectangleSide  = 10.0
)

// Tab indices in the main window.
const (
	tabProblem = iota
	tabSettings
	tabResult
	tabToolpath
	tabCompare
)

// App holds all application state and UI references.
type App struct {
	app         fyne.App
	window      fyne.Window
	project     model.Project
	projectPath string
	config      model.AppConfig
	templates   model.TemplateStore
	history     *History
	theme       *compactTheme

	tabs *container.AppTabs

	// UI references for dynamic updates
	rectContainer     *fyne.Container
	settingsContainer *fyne.Container
	resultContainer   *fyne.Container
	toolpathContainer *fyne.Container
	compareContainer  *fyne.Container
	statusLabel       *widget.Label
	progress          *widget.ProgressBar
	solveBtn          *widget.Button
	cancelBtn         *widget.Button

	cancelSolve context.CancelFunc
}

// NewApp creates the application state, loading saved preferences, custom
// G-code profiles and templates. Load failures fall back to defaults.
func NewApp(application fyne.App, window fyne.Window) *App {
	a := &App{
		app:       application,
		window:    window,
		history:   NewHistory(),
		templates: model.NewTemplateStore(),
	}

	cfg, err := project.LoadAppConfig(project.DefaultConfigPath())
	if err != nil {
		cfg = model.DefaultAppConfig()
	}
	a.config = cfg

	_, _ = project.LoadCustomProfilesFromDefault()
	if store, err := project.LoadDefaultTemplates(); err == nil {
		a.templates = store
	}

	a.theme = newCompactTheme(a.config.Theme)
	application.Settings().SetTheme(a.theme)

	a.project = a.newProject()
	return a
}

// newProject returns an untitled project with the user's defaults and the
// starter rectangles.
func (a *App) newProject() model.Project {
	p := model.NewProject()
	a.config.ApplyToProject(&p)
	for i := 0; i < defaultRectangleCount; i++ {
		p.Config.Rectangles = append(p.Config.Rectangles,
			model.NewRectangle(model.DefaultLabel(i), defaultRectangleSide, defaultRectangleSide))
	}
	return p
}

// SetupMenus creates the native menu bar. It is called again whenever the
// recent projects list changes.
func (a *App) SetupMenus() {
	exportItems := []*fyne.MenuItem{}
	for _, f := range export.AllFormats() {
		f := f
		exportItems = append(exportItems, fyne.NewMenuItem(formatTitle(f), func() {
			a.exportLayout(f)
		}))
	}
	exportItems = append(exportItems,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("G-code...", func() { a.exportGCode() }),
	)
	exportMenu := fyne.NewMenuItem("Export", nil)
	exportMenu.ChildMenu = fyne.NewMenu("", exportItems...)

	recentItems := []*fyne.MenuItem{}
	for _, path := range a.config.RecentProjects {
		path := path
		recentItems = append(recentItems, fyne.NewMenuItem(path, func() {
			a.openProject(path)
		}))
	}
	if len(recentItems) == 0 {
		none := fyne.NewMenuItem("No recent projects", nil)
		none.Disabled = true
		recentItems = append(recentItems, none)
	}
	recentMenu := fyne.NewMenuItem("Open Recent", nil)
	recentMenu.ChildMenu = fyne.NewMenu("", recentItems...)

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Project", func() { a.resetProject(a.newProject()) }),
		fyne.NewMenuItem("New from Template...", func() { a.showTemplatePicker() }),
		fyne.NewMenuItem("Open Project...", func() { a.loadProject() }),
		recentMenu,
		fyne.NewMenuItem("Save Project...", func() { a.saveProject() }),
		fyne.NewMenuItem("Save as Template...", func() { a.showSaveTemplateDialog() }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Import Rectangles...", func() { a.importRectangles() }),
		exportMenu,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Backup / Restore...", func() { a.showImportExportDialog() }),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", func() { a.undo() }),
		fyne.NewMenuItem("Redo", func() { a.redo() }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Clear All Rectangles", func() {
			a.pushHistory("Clear Rectangles")
			a.project.Config.Rectangles = []model.Rectangle{}
			a.refreshRectangles()
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Preferences...", func() { a.showSettingsDialog() }),
	)

	toolsMenu := fyne.NewMenu("Tools",
		fyne.NewMenuItem("Solve", func() { a.runSolve() }),
		fyne.NewMenuItem("Compare Rotation Modes", func() { a.runCompare() }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Advanced Solver Settings...", func() { a.showAdvancedSettingsDialog() }),
		fyne.NewMenuItem("G-code Profiles...", func() { a.showProfileManager() }),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", func() { a.showAboutDialog() }),
	)

	a.window.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, toolsMenu, helpMenu))
}

func (a *App) showAboutDialog() {
	dialog.ShowInformation(
		"About circlepack",
		"circlepack finds the smallest circle that holds a set of rectangles.\n\n"+
			"Rectangles may stay upright, turn in 90 or 45 degree steps or\n"+
			"rotate freely, with padding and an optional target radius.",
		a.window,
	)
}

// Build constructs the full UI and returns the root container.
func (a *App) Build() fyne.CanvasObject {
	a.tabs = container.NewAppTabs(
		container.NewTabItem("Rectangles", a.buildRectanglePanel()),
		container.NewTabItem("Settings", a.buildSettingsPanel()),
		container.NewTabItem("Result", a.buildResultPanel()),
		container.NewTabItem("Toolpath", a.buildToolpathPanel()),
		container.NewTabItem("Compare", a.buildComparePanel()),
	)
	a.tabs.SetTabLocation(container.TabLocationTop)

	a.statusLabel = widget.NewLabel("Ready")
	a.progress = widget.NewProgressBar()
	a.progress.Hide()

	a.solveBtn = widget.NewButtonWithIcon("Solve", theme.MediaPlayIcon(), func() { a.runSolve() })
	a.solveBtn.Importance = widget.HighImportance
	a.cancelBtn = widget.NewButtonWithIcon("Stop", theme.MediaStopIcon(), func() { a.stopSolve() })
	a.cancelBtn.Disable()

	toolbar := container.NewHBox(
		newIconButtonWithTooltip(theme.DocumentCreateIcon(), "New project", func() { a.resetProject(a.newProject()) }),
		newIconButtonWithTooltip(theme.FolderOpenIcon(), "Open project", func() { a.loadProject() }),
		newIconButtonWithTooltip(theme.DocumentSaveIcon(), "Save project", func() { a.saveProject() }),
		widget.NewSeparator(),
		newIconButtonWithTooltip(theme.ContentUndoIcon(), "Undo", func() { a.undo() }),
		newIconButtonWithTooltip(theme.ContentRedoIcon(), "Redo", func() { a.redo() }),
		widget.NewSeparator(),
		newIconButtonWithTooltip(theme.UploadIcon(), "Import rectangles", func() { a.importRectangles() }),
		newIconButtonWithTooltip(theme.DownloadIcon(), "Export PNG", func() { a.exportLayout(export.FormatPNG) }),
		layout.NewSpacer(),
		a.solveBtn,
		a.cancelBtn,
	)

	status := container.NewBorder(nil, nil, nil, nil, container.NewVBox(a.progress, a.statusLabel))

	return withToolTips(container.NewBorder(toolbar, status, nil, nil, a.tabs), a.window)
}

// resetProject replaces the current project and refreshes every panel.
func (a *App) resetProject(p model.Project) {
	a.project = p
	a.projectPath = ""
	a.history.Clear()
	a.refreshAll()
}

func (a *App) refreshAll() {
	a.refreshRectangles()
	a.refreshSettings()
	a.refreshResults()
	a.compareContainer.RemoveAll()
	a.compareContainer.Add(widget.NewLabel("Run Tools > Compare Rotation Modes to compare strategies."))
	a.compareContainer.Refresh()
	a.window.SetTitle(a.windowTitle())
}

func (a *App) windowTitle() string {
	return fmt.Sprintf("circlepack - %s", a.project.Name)
}

func (a *App) setStatus(format string, args ...any) {
	a.statusLabel.SetText(fmt.Sprintf(format, args...))
}

// ─── Undo / Redo ───────────────────────────────────────────

func (a *App) pushHistory(label string) {
	a.history.Push(MakeSnapshot(a.project.Config, label))
}

func (a *App) undo() {
	s, ok := a.history.Undo(MakeSnapshot(a.project.Config, "current"))
	if !ok {
		return
	}
	a.project.Config = s.Config
	a.refreshRectangles()
	a.refreshSettings()
	a.setStatus("Undid %s", s.Label)
}

func (a *App) redo() {
	s, ok := a.history.Redo(MakeSnapshot(a.project.Config, "current"))
	if !ok {
		return
	}
	a.project.Config = s.Config
	a.refreshRectangles()
	a.refreshSettings()
	a.setStatus("Redid change")
}

// formatTitle is the menu label of an export format.
func formatTitle(f export.Format) string {
	switch f {
	case export.FormatLabels:
		return "QR Labels (PDF)..."
	case export.FormatXLSX:
		return "Excel Report..."
	case export.FormatJSON:
		return "JSON Result..."
	case export.FormatDXF:
		return "DXF Drawing..."
	case export.FormatPDF:
		return "PDF Report..."
	}
	return fmt.Sprintf("%s Image...", strings.ToUpper(string(f)))
}
