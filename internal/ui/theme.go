// Package ui provides the circlepack desktop application.
//
// This file defines the compact Fyne theme and the light/dark preference.

package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// Theme preference values stored in model.AppConfig.Theme.
const (
	ThemeSystem = "system"
	ThemeLight  = "light"
	ThemeDark   = "dark"
)

// compactTheme wraps the default Fyne theme with smaller sizing and a fixed
// light or dark variant.
type compactTheme struct {
	base     fyne.Theme
	variant  fyne.ThemeVariant
	followOS bool
}

func newCompactTheme(preference string) *compactTheme {
	t := &compactTheme{base: theme.DefaultTheme()}
	t.SetPreference(preference)
	return t
}

// SetPreference switches between system, light and dark. Unknown values
// follow the system.
func (t *compactTheme) SetPreference(preference string) {
	variant, ok := themeVariant(preference)
	t.variant = variant
	t.followOS = !ok
}

// themeVariant maps a preference to a Fyne variant. ok is false when the
// operating system setting should be used.
func themeVariant(preference string) (fyne.ThemeVariant, bool) {
	switch preference {
	case ThemeLight:
		return theme.VariantLight, true
	case ThemeDark:
		return theme.VariantDark, true
	}
	return theme.VariantLight, false
}

func (t *compactTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if t.followOS {
		return t.base.Color(name, variant)
	}
	return t.base.Color(name, t.variant)
}

func (t *compactTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

func (t *compactTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

// Size returns compact sizing overrides.
func (t *compactTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return 12
	case theme.SizeNameCaptionText:
		return 9
	case theme.SizeNameHeadingText:
		return 20
	case theme.SizeNameSubHeadingText:
		return 15
	case theme.SizeNamePadding:
		return 3
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameInlineIcon:
		return 16
	default:
		return t.base.Size(name)
	}
}
