package ui

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	fynetooltip "github.com/dweymouth/fyne-tooltip"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"
)

// boundEntry shows *val and writes back every edit that parses. Text that
// does not parse leaves the value alone.
func boundEntry[T any](val *T, format func(T) string, parse func(string) (T, error)) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(format(*val))
	e.OnChanged = func(text string) {
		if v, err := parse(text); err == nil {
			*val = v
		}
	}
	return e
}

func floatEntry(val *float64) *widget.Entry {
	return boundEntry(val,
		func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) },
		func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func intEntry(val *int) *widget.Entry {
	return boundEntry(val, strconv.Itoa, strconv.Atoi)
}

func int64Entry(val *int64) *widget.Entry {
	return boundEntry(val,
		func(v int64) string { return strconv.FormatInt(v, 10) },
		func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) })
}

func newIconButtonWithTooltip(icon fyne.Resource, tip string, tapped func()) *ttwidget.Button {
	btn := ttwidget.NewButtonWithIcon("", icon, tapped)
	btn.SetToolTip(tip)
	return btn
}

// withToolTips installs the tooltip overlay for content in window w.
func withToolTips(content fyne.CanvasObject, w fyne.Window) fyne.CanvasObject {
	return fynetooltip.AddWindowToolTipLayer(content, w.Canvas())
}
