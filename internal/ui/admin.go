package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/circlepack/internal/model"
	"github.com/piwi3910/circlepack/internal/project"
)

// showSettingsDialog displays the application settings editor.
func (a *App) showSettingsDialog() {
	cfg := a.config

	multiCheck := widget.NewCheck("", func(b bool) { cfg.DefaultMultiStage = b })
	multiCheck.Checked = cfg.DefaultMultiStage
	polishCheck := widget.NewCheck("", func(b bool) { cfg.DefaultPolish = b })
	polishCheck.Checked = cfg.DefaultPolish

	profileSelect := widget.NewSelect(model.GetProfileNames(), func(selected string) {
		cfg.DefaultGCodeProfile = selected
	})
	profileSelect.SetSelected(cfg.DefaultGCodeProfile)

	themeSelect := widget.NewSelect([]string{ThemeSystem, ThemeLight, ThemeDark}, func(selected string) {
		cfg.Theme = selected
	})
	themeSelect.SetSelected(cfg.Theme)

	formItems := []*widget.FormItem{
		widget.NewFormItem("Theme", themeSelect),
		widget.NewFormItem("Auto-Save Interval (min, 0=off)", intEntry(&cfg.AutoSaveInterval)),
		widget.NewFormItem("", widget.NewSeparator()),
		widget.NewFormItem("Default Inner Padding (mm)", floatEntry(&cfg.DefaultPaddingInner)),
		widget.NewFormItem("Default Outer Padding (mm)", floatEntry(&cfg.DefaultPaddingOuter)),
		widget.NewFormItem("Multi-stage by Default", multiCheck),
		widget.NewFormItem("Default Seed", int64Entry(&cfg.DefaultSeed)),
		widget.NewFormItem("Default Workers (0 = all CPUs)", intEntry(&cfg.DefaultWorkers)),
		widget.NewFormItem("Polish by Default", polishCheck),
		widget.NewFormItem("", widget.NewSeparator()),
		widget.NewFormItem("Default Tool Diameter (mm)", floatEntry(&cfg.DefaultToolDiameter)),
		widget.NewFormItem("Default Feed Rate (mm/min)", floatEntry(&cfg.DefaultFeedRate)),
		widget.NewFormItem("Default Plunge Rate (mm/min)", floatEntry(&cfg.DefaultPlungeRate)),
		widget.NewFormItem("Default Spindle Speed (RPM)", intEntry(&cfg.DefaultSpindleSpeed)),
		widget.NewFormItem("Default Safe Z (mm)", floatEntry(&cfg.DefaultSafeZ)),
		widget.NewFormItem("Default Cut Depth (mm)", floatEntry(&cfg.DefaultCutDepth)),
		widget.NewFormItem("Default Pass Depth (mm)", floatEntry(&cfg.DefaultPassDepth)),
		widget.NewFormItem("Default G-code Profile", profileSelect),
	}

	d := dialog.NewForm("Preferences", "Save", "Cancel", formItems,
		func(ok bool) {
			if !ok {
				return
			}
			a.config = cfg
			a.applyTheme()
			if err := a.saveConfig(); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save settings: %w", err), a.window)
			} else {
				dialog.ShowInformation("Settings Saved", "Application settings have been saved.", a.window)
			}
		},
		a.window,
	)
	d.Resize(fyne.NewSize(500, 650))
	d.Show()
}

func (a *App) applyTheme() {
	a.theme.SetPreference(a.config.Theme)
	a.app.Settings().SetTheme(a.theme)
}

// showImportExportDialog displays the backup and restore dialog.
func (a *App) showImportExportDialog() {
	exportBtn := widget.NewButton("Export All Data...", func() {
		d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil || writer == nil {
				return
			}
			defer writer.Close()
			path := writer.URI().Path()
			if err := project.ExportAllData(path, a.config, model.CustomProfiles, a.templates); err != nil {
				dialog.ShowError(err, a.window)
			} else {
				dialog.ShowInformation("Export Complete",
					fmt.Sprintf("All application data exported to:\n%s", path), a.window)
			}
		}, a.window)
		d.SetFileName("circlepack-backup.json")
		d.Show()
	})

	importBtn := widget.NewButton("Import All Data...", func() {
		dialog.ShowConfirm("Import Data",
			"Importing data will replace your settings, custom G-code profiles and templates.\n\nAre you sure you want to continue?",
			func(ok bool) {
				if !ok {
					return
				}
				d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
					if err != nil || reader == nil {
						return
					}
					defer reader.Close()
					backup, err := project.ImportAllData(reader.URI().Path())
					if err != nil {
						dialog.ShowError(err, a.window)
						return
					}
					if err := a.restoreBackup(backup); err != nil {
						dialog.ShowError(fmt.Errorf("failed to save imported data: %w", err), a.window)
						return
					}
					dialog.ShowInformation("Import Complete",
						fmt.Sprintf("Data imported successfully from backup created at %s.", backup.CreatedAt), a.window)
				}, a.window)
				d.Show()
			},
			a.window,
		)
	})

	content := container.NewVBox(
		widget.NewLabel("Export settings, custom G-code profiles and templates to a backup file,\nor import from a previously exported backup."),
		widget.NewSeparator(),
		exportBtn,
		widget.NewSeparator(),
		importBtn,
	)

	d := dialog.NewCustom("Backup / Restore", "Close", content, a.window)
	d.Resize(fyne.NewSize(450, 250))
	d.Show()
}

// restoreBackup applies an imported backup and persists every part of it.
func (a *App) restoreBackup(backup project.BackupData) error {
	a.config = backup.Config
	a.applyTheme()
	if err := a.saveConfig(); err != nil {
		return err
	}

	model.CustomProfiles = nil
	for _, p := range backup.Profiles {
		if err := model.AddCustomProfile(p); err != nil {
			return err
		}
	}
	if err := project.SaveCustomProfilesToDefault(); err != nil {
		return err
	}

	a.templates = model.TemplateStore{Templates: backup.Templates}
	if err := project.SaveDefaultTemplates(a.templates); err != nil {
		return err
	}

	a.SetupMenus()
	a.refreshProfileSelector()
	return nil
}

// saveConfig persists the current app config to disk.
func (a *App) saveConfig() error {
	return project.SaveAppConfig(project.DefaultConfigPath(), a.config)
}
