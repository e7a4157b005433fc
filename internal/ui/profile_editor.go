package ui

import (
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/circlepack/internal/gcode"
	"github.com/piwi3910/circlepack/internal/model"
	"github.com/piwi3910/circlepack/internal/project"
)

// profileField is one single-line command of a G-code dialect.
type profileField struct {
	group string
	label string
	value func(p *model.GCodeProfile) *string
}

var profileFields = []profileField{
	{"Motion", "Rapid Move", func(p *model.GCodeProfile) *string { return &p.RapidMove }},
	{"Motion", "Feed Move", func(p *model.GCodeProfile) *string { return &p.FeedMove }},
	{"Motion", "Arc Clockwise", func(p *model.GCodeProfile) *string { return &p.ArcCW }},
	{"Motion", "Arc Counter-clockwise", func(p *model.GCodeProfile) *string { return &p.ArcCCW }},
	{"Motion", "Absolute Mode", func(p *model.GCodeProfile) *string { return &p.AbsoluteMode }},
	{"Motion", "Feed Rate Mode", func(p *model.GCodeProfile) *string { return &p.FeedMode }},
	{"Spindle / Homing", "Spindle Start (%d = RPM)", func(p *model.GCodeProfile) *string { return &p.SpindleStart }},
	{"Spindle / Homing", "Spindle Stop", func(p *model.GCodeProfile) *string { return &p.SpindleStop }},
	{"Spindle / Homing", "Home All Axes", func(p *model.GCodeProfile) *string { return &p.HomeAll }},
	{"Spindle / Homing", "Home XY", func(p *model.GCodeProfile) *string { return &p.HomeXY }},
	{"Comments", "Comment Prefix", func(p *model.GCodeProfile) *string { return &p.CommentPrefix }},
	{"Comments", "Comment Suffix", func(p *model.GCodeProfile) *string { return &p.CommentSuffix }},
}

var profileGroups = []string{"Motion", "Spindle / Homing", "Comments"}

// showProfileManager opens the G-code profile window. Built-in profiles are
// read-only; custom ones can be edited, duplicated, imported and exported.
func (a *App) showProfileManager() {
	w := a.app.NewWindow("G-code Profile Manager")
	w.Resize(fyne.NewSize(720, 520))

	profiles := model.AllProfiles()
	selected := -1
	detail := container.NewVBox()

	var list *widget.List
	reload := func() {
		profiles = model.AllProfiles()
		selected = -1
		list.UnselectAll()
		list.Refresh()
		detail.RemoveAll()
		detail.Add(widget.NewLabel("Select a profile to view details."))
		detail.Refresh()
		a.refreshProfileSelector()
	}

	list = widget.NewList(
		func() int { return len(profiles) },
		func() fyne.CanvasObject {
			return container.NewHBox(widget.NewLabel("name"), layout.NewSpacer(), widget.NewLabel("kind"))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			row := obj.(*fyne.Container)
			row.Objects[0].(*widget.Label).SetText(profiles[id].Name)
			kind := "custom"
			if profiles[id].IsBuiltIn {
				kind = "built-in"
			}
			row.Objects[2].(*widget.Label).SetText(kind)
		},
	)
	list.OnSelected = func(id widget.ListItemID) {
		selected = id
		a.fillProfileDetail(detail, profiles[id], w, reload)
	}
	reload()

	current := func() (model.GCodeProfile, bool) {
		if selected < 0 || selected >= len(profiles) {
			dialog.ShowInformation("No Selection", "Select a profile first.", w)
			return model.GCodeProfile{}, false
		}
		return profiles[selected], true
	}

	buttons := container.NewHBox(
		widget.NewButtonWithIcon("New", theme.ContentAddIcon(), func() {
			a.askProfileName(w, "New Custom Profile", "", func(name string) error {
				return model.AddCustomProfile(model.NewCustomProfile(name))
			}, reload)
		}),
		widget.NewButtonWithIcon("Duplicate", theme.ContentCopyIcon(), func() {
			src, ok := current()
			if !ok {
				return
			}
			a.askProfileName(w, "Duplicate Profile", src.Name+" (Copy)", func(name string) error {
				dup := cloneProfile(src)
				dup.Name = name
				dup.Description = "Copy of " + src.Name
				dup.IsBuiltIn = false
				return model.AddCustomProfile(dup)
			}, reload)
		}),
		widget.NewButtonWithIcon("Import", theme.FolderOpenIcon(), func() {
			a.importProfileDialog(w, reload)
		}),
		widget.NewButtonWithIcon("Export", theme.DocumentSaveIcon(), func() {
			if p, ok := current(); ok {
				a.exportProfileDialog(p, w)
			}
		}),
		widget.NewButtonWithIcon("Delete", theme.DeleteIcon(), func() {
			p, ok := current()
			if !ok {
				return
			}
			if p.IsBuiltIn {
				dialog.ShowInformation("Cannot Delete", "Built-in profiles cannot be deleted.", w)
				return
			}
			dialog.ShowConfirm("Delete Profile", fmt.Sprintf("Delete custom profile %q?", p.Name), func(ok bool) {
				if !ok {
					return
				}
				if err := model.RemoveCustomProfile(p.Name); err != nil {
					dialog.ShowError(err, w)
					return
				}
				a.persistCustomProfiles(w)
				reload()
			}, w)
		}),
	)

	bold := fyne.TextStyle{Bold: true}
	split := container.NewHSplit(
		container.NewBorder(widget.NewLabelWithStyle("Profiles", fyne.TextAlignLeading, bold), buttons, nil, nil, list),
		container.NewBorder(widget.NewLabelWithStyle("Profile Details", fyne.TextAlignLeading, bold), nil, nil, nil,
			container.NewVScroll(detail)),
	)
	split.SetOffset(0.35)

	w.SetContent(split)
	w.Show()
}

// fillProfileDetail shows p read-only, with an edit button for custom profiles.
func (a *App) fillProfileDetail(c *fyne.Container, p model.GCodeProfile, w fyne.Window, onChanged func()) {
	c.RemoveAll()

	if p.IsBuiltIn {
		c.Add(widget.NewLabel("Built-in profiles are read-only. Duplicate to customize."))
	} else {
		c.Add(widget.NewButtonWithIcon("Edit Profile", theme.DocumentCreateIcon(), func() {
			a.showEditProfileDialog(p, onChanged)
		}))
	}

	bold := fyne.TextStyle{Bold: true}
	c.Add(widget.NewLabelWithStyle(p.Name, fyne.TextAlignLeading, bold))
	c.Add(widget.NewLabel(p.Description))
	c.Add(container.NewGridWithColumns(2,
		widget.NewLabel("Units"), widget.NewLabel(p.Units),
		widget.NewLabel("Decimal Places"), widget.NewLabel(strconv.Itoa(p.DecimalPlaces)),
	))

	for _, group := range profileGroups {
		c.Add(widget.NewSeparator())
		c.Add(widget.NewLabelWithStyle(group, fyne.TextAlignLeading, bold))
		grid := container.NewGridWithColumns(2)
		for _, f := range profileFields {
			if f.group == group {
				grid.Add(widget.NewLabel(f.label))
				grid.Add(widget.NewLabel(fmt.Sprintf("%q", *f.value(&p))))
			}
		}
		c.Add(grid)
	}

	c.Add(widget.NewSeparator())
	c.Add(widget.NewLabelWithStyle("Start Code", fyne.TextAlignLeading, bold))
	c.Add(widget.NewLabel(strings.Join(p.StartCode, "\n")))
	c.Add(widget.NewLabelWithStyle("End Code", fyne.TextAlignLeading, bold))
	c.Add(widget.NewLabel(strings.Join(p.EndCode, "\n")))
	c.Refresh()
}

// askProfileName prompts for a profile name and runs create with it.
func (a *App) askProfileName(w fyne.Window, title, initial string, create func(name string) error, onCreated func()) {
	nameEntry := widget.NewEntry()
	nameEntry.SetText(initial)
	nameEntry.SetPlaceHolder("My Custom Profile")

	form := dialog.NewForm(title, "Create", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Profile Name", nameEntry)},
		func(ok bool) {
			if !ok {
				return
			}
			name := strings.TrimSpace(nameEntry.Text)
			if name == "" {
				dialog.ShowError(fmt.Errorf("profile name cannot be empty"), w)
				return
			}
			if err := create(name); err != nil {
				dialog.ShowError(err, w)
				return
			}
			a.persistCustomProfiles(w)
			onCreated()
		}, w)
	form.Resize(fyne.NewSize(400, 150))
	form.Show()
}

// showEditProfileDialog edits a draft copy of p and replaces the custom
// profile on save.
func (a *App) showEditProfileDialog(p model.GCodeProfile, onSaved func()) {
	draft := cloneProfile(p)
	win := a.app.NewWindow("Edit Profile: " + p.Name)

	nameEntry := widget.NewEntry()
	nameEntry.SetText(draft.Name)
	descEntry := widget.NewEntry()
	descEntry.SetText(draft.Description)
	unitsSelect := widget.NewSelect([]string{"mm", "inches"}, func(s string) { draft.Units = s })
	unitsSelect.SetSelected(draft.Units)
	decimalEntry := widget.NewEntry()
	decimalEntry.SetText(strconv.Itoa(draft.DecimalPlaces))

	groupGrids := map[string]*fyne.Container{}
	for _, g := range profileGroups {
		groupGrids[g] = container.NewGridWithColumns(2)
	}
	for _, f := range profileFields {
		target := f.value(&draft)
		e := widget.NewEntry()
		e.SetText(*target)
		e.OnChanged = func(s string) { *target = s }
		groupGrids[f.group].Add(widget.NewLabel(f.label))
		groupGrids[f.group].Add(e)
	}

	codeEntry := func(lines []string) *widget.Entry {
		e := widget.NewMultiLineEntry()
		e.SetText(strings.Join(lines, "\n"))
		e.SetMinRowsVisible(4)
		return e
	}
	startEntry := codeEntry(draft.StartCode)
	endEntry := codeEntry(draft.EndCode)

	// collect copies the free-form widgets into draft.
	collect := func() error {
		decimals, err := strconv.Atoi(decimalEntry.Text)
		if err != nil || decimals < 0 || decimals > 10 {
			return fmt.Errorf("decimal places must be a number between 0 and 10")
		}
		draft.Name = strings.TrimSpace(nameEntry.Text)
		draft.Description = descEntry.Text
		draft.DecimalPlaces = decimals
		draft.StartCode = splitLines(startEntry.Text)
		draft.EndCode = splitLines(endEntry.Text)
		draft.IsBuiltIn = false
		return nil
	}

	// The preview runs the generator with the draft dialect over the current
	// layout, or a single square when nothing has been solved.
	preview := widget.NewMultiLineEntry()
	preview.SetMinRowsVisible(12)
	preview.Disable()
	refreshPreview := func() {
		if err := collect(); err != nil {
			preview.SetText(err.Error())
			return
		}
		cfg, result := a.previewLayout()
		preview.SetText(gcode.NewWithProfile(a.project.CNC, draft).Generate(cfg, result))
	}
	refreshPreview()

	tabs := container.NewAppTabs(
		container.NewTabItem("General", container.NewGridWithColumns(2,
			widget.NewLabel("Name"), nameEntry,
			widget.NewLabel("Description"), descEntry,
			widget.NewLabel("Units"), unitsSelect,
			widget.NewLabel("Decimal Places"), decimalEntry,
		)),
	)
	for _, g := range profileGroups {
		tabs.Append(container.NewTabItem(g, groupGrids[g]))
	}
	tabs.Append(container.NewTabItem("Start/End Code", container.NewVBox(
		widget.NewLabelWithStyle("Start Code (one command per line)", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		startEntry,
		widget.NewLabelWithStyle("End Code (one command per line)", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		endEntry,
	)))
	tabs.Append(container.NewTabItem("Preview", container.NewBorder(
		widget.NewButtonWithIcon("Refresh Preview", theme.ViewRefreshIcon(), refreshPreview),
		nil, nil, nil,
		container.NewVScroll(preview),
	)))

	saveBtn := widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), func() {
		if err := collect(); err != nil {
			dialog.ShowError(err, win)
			return
		}
		if draft.Name == "" {
			dialog.ShowError(fmt.Errorf("profile name cannot be empty"), win)
			return
		}
		if draft.Name != p.Name {
			_ = model.RemoveCustomProfile(p.Name)
		}
		if err := model.AddCustomProfile(draft); err != nil {
			dialog.ShowError(err, win)
			return
		}
		a.persistCustomProfiles(win)
		onSaved()
		win.Close()
	})
	saveBtn.Importance = widget.HighImportance

	win.SetContent(container.NewBorder(nil, container.NewHBox(layout.NewSpacer(), saveBtn), nil, nil, tabs))
	win.Resize(fyne.NewSize(620, 520))
	win.Show()
}

// importProfileDialog reads a profile exported by exportProfileDialog.
func (a *App) importProfileDialog(w fyne.Window, onImported func()) {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		profile, err := project.ImportProfile(path)
		if err == nil {
			err = model.AddCustomProfile(profile)
		}
		if err != nil {
			dialog.ShowError(fmt.Errorf("failed to import profile: %w", err), w)
			return
		}
		a.persistCustomProfiles(w)
		onImported()
		dialog.ShowInformation("Import Complete", fmt.Sprintf("Profile %q imported.", profile.Name), w)
	}, w)
}

func (a *App) exportProfileDialog(p model.GCodeProfile, w fyne.Window) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()

		if err := project.ExportProfile(path, p); err != nil {
			dialog.ShowError(fmt.Errorf("failed to export profile: %w", err), w)
			return
		}
		dialog.ShowInformation("Export Complete", fmt.Sprintf("Profile %q exported.", p.Name), w)
	}, w)
	d.SetFileName(strings.ReplaceAll(strings.ToLower(p.Name), " ", "_") + "_profile.json")
	d.Show()
}

// persistCustomProfiles saves the current custom profiles to disk.
func (a *App) persistCustomProfiles(w fyne.Window) {
	if err := project.SaveCustomProfilesToDefault(); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save profiles: %w", err), w)
	}
}

func cloneProfile(p model.GCodeProfile) model.GCodeProfile {
	p.StartCode = append([]string(nil), p.StartCode...)
	p.EndCode = append([]string(nil), p.EndCode...)
	return p
}

// previewLayout returns the solved layout, or one centred square.
func (a *App) previewLayout() (model.PackingConfig, model.PackingResult) {
	if a.project.Result != nil && len(a.project.Result.Placements) > 0 {
		return a.project.Config, *a.project.Result
	}
	r := model.NewRectangle(model.DefaultLabel(0), defaultRectangleSide, defaultRectangleSide)
	return model.PackingConfig{Rectangles: []model.Rectangle{r}}, model.PackingResult{
		Radius:     defaultRectangleSide,
		Valid:      true,
		Placements: []model.Placement{{Rectangle: r}},
	}
}

// splitLines splits text into trimmed, non-empty lines.
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
