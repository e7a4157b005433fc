package widgets

import (
	"fmt"
	"image/color"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/circlepack/internal/model"
)

// Rectangle colors, cycled by placement index.
var partColors = []color.NRGBA{
	{R: 76, G: 175, B: 80, A: 200},  // green
	{R: 33, G: 150, B: 243, A: 200}, // blue
	{R: 255, G: 152, B: 0, A: 200},  // orange
	{R: 156, G: 39, B: 176, A: 200}, // purple
	{R: 0, G: 188, B: 212, A: 200},  // cyan
	{R: 244, G: 67, B: 54, A: 200},  // red
	{R: 255, G: 235, B: 59, A: 200}, // yellow
	{R: 121, G: 85, B: 72, A: 200},  // brown
}

var (
	colorBlank      = color.NRGBA{R: 230, G: 210, B: 175, A: 255}
	colorContainer  = color.NRGBA{R: 200, G: 40, B: 40, A: 255}
	colorConstraint = color.NRGBA{R: 90, G: 90, B: 90, A: 200}
	colorOutline    = color.NRGBA{R: 30, G: 30, B: 30, A: 255}
)

const canvasMargin = 12

// CircleCanvas draws a packed layout: the container circle, the target
// circle when one is set, and every rectangle at its pose.
type CircleCanvas struct {
	widget.BaseWidget
	cfg        model.PackingConfig
	result     model.PackingResult
	ShowLabels bool
	minSize    fyne.Size
}

func NewCircleCanvas(cfg model.PackingConfig, result model.PackingResult, minW, minH float32) *CircleCanvas {
	cc := &CircleCanvas{
		cfg:        cfg,
		result:     result,
		ShowLabels: true,
		minSize:    fyne.NewSize(minW, minH),
	}
	cc.ExtendBaseWidget(cc)
	return cc
}

// SetLayout replaces the displayed layout.
func (cc *CircleCanvas) SetLayout(cfg model.PackingConfig, result model.PackingResult) {
	cc.cfg = cfg
	cc.result = result
	cc.Refresh()
}

// viewRadius is the radius the view must show: the container or the target,
// whichever is larger.
func (cc *CircleCanvas) viewRadius() float64 {
	r := cc.result.Radius
	if cc.cfg.HasTarget() && cc.cfg.Target() > r {
		r = cc.cfg.Target()
	}
	return r
}

// shapeAt returns the index of the placement covering layout point (x, y),
// or -1.
func (cc *CircleCanvas) shapeAt(x, y float64) int {
	p := model.Point2D{X: x, Y: y}
	for i := len(cc.result.Placements) - 1; i >= 0; i-- {
		if insideQuad(p, cc.result.Placements[i].Corners()) {
			return i
		}
	}
	return -1
}

func (cc *CircleCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := &circleCanvasRenderer{cc: cc}
	r.fill = canvas.NewRasterWithPixels(r.pixel)
	return r
}

type circleCanvasRenderer struct {
	cc      *CircleCanvas
	size    fyne.Size
	view    viewport
	fill    *canvas.Raster
	objects []fyne.CanvasObject
}

// pixel colours the rectangle interiors; outlines are drawn as lines on top.
func (r *circleCanvasRenderer) pixel(px, py, w, h int) color.Color {
	if w == 0 || h == 0 || r.size.Width == 0 {
		return color.Transparent
	}
	// The raster may be rendered at a different pixel density than the
	// widget size.
	sx := float32(px) * r.size.Width / float32(w)
	sy := float32(py) * r.size.Height / float32(h)
	x, y := r.view.inverse(sx, sy)
	if i := r.cc.shapeAt(x, y); i >= 0 {
		return partColors[i%len(partColors)]
	}
	return color.Transparent
}

func (r *circleCanvasRenderer) rebuild() {
	cc := r.cc
	r.objects = nil
	if len(cc.result.Placements) == 0 || r.size.Width == 0 {
		return
	}
	r.view = newViewport(cc.viewRadius(), r.size, canvasMargin)

	blank := canvas.NewCircle(colorBlank)
	blank.StrokeColor = colorContainer
	blank.StrokeWidth = 2
	pos, size := r.view.circleBounds(cc.result.Radius)
	blank.Move(pos)
	blank.Resize(size)
	r.objects = append(r.objects, blank)

	if cc.cfg.HasTarget() && cc.cfg.Target() > 0 {
		target := canvas.NewCircle(color.Transparent)
		target.StrokeColor = colorConstraint
		target.StrokeWidth = 1
		pos, size := r.view.circleBounds(cc.cfg.Target())
		target.Move(pos)
		target.Resize(size)
		r.objects = append(r.objects, target)
	}

	r.fill.Move(fyne.NewPos(0, 0))
	r.fill.Resize(r.size)
	r.objects = append(r.objects, r.fill)

	for i, p := range cc.result.Placements {
		corners := p.Corners()
		for k := range corners {
			a, b := corners[k], corners[(k+1)%len(corners)]
			edge := canvas.NewLine(colorOutline)
			edge.StrokeWidth = 1
			edge.Position1 = r.view.point(a.X, a.Y)
			edge.Position2 = r.view.point(b.X, b.Y)
			r.objects = append(r.objects, edge)
		}

		minSide := p.Rectangle.Width
		if p.Rectangle.Height < minSide {
			minSide = p.Rectangle.Height
		}
		if cc.ShowLabels && r.view.length(minSide) > 18 {
			text := p.Rectangle.Label
			if text == "" {
				text = model.DefaultLabel(i)
			}
			label := canvas.NewText(text, color.Black)
			label.TextSize = 10
			label.Alignment = fyne.TextAlignCenter
			ls := label.MinSize()
			c := r.view.point(p.X, p.Y)
			label.Move(fyne.NewPos(c.X-ls.Width/2, c.Y-ls.Height/2))
			r.objects = append(r.objects, label)
		}
	}
}

func (r *circleCanvasRenderer) Layout(size fyne.Size) {
	r.size = size
	r.rebuild()
}

func (r *circleCanvasRenderer) Refresh() {
	r.rebuild()
	r.fill.Refresh()
}

func (r *circleCanvasRenderer) Destroy()                     {}
func (r *circleCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *circleCanvasRenderer) MinSize() fyne.Size           { return r.cc.minSize }

// RenderResult creates the result panel: a heading, the layout drawing and a
// placement summary.
func RenderResult(cfg model.PackingConfig, result *model.PackingResult) fyne.CanvasObject {
	if result == nil || len(result.Placements) == 0 {
		return widget.NewLabel("No results yet. Enter rectangles, then click Solve.")
	}

	stats := model.ComputeStats(*result, 0, 0)
	header := widget.NewLabel(fmt.Sprintf(
		"R = %.4f mm (diameter %.4f mm), %s, %.1f%% density",
		result.Radius, result.Diameter(), result.Mode, stats.Density,
	))
	header.TextStyle = fyne.TextStyle{Bold: true}

	items := []fyne.CanvasObject{header}
	switch {
	case !result.Valid:
		warning := widget.NewLabel("No valid layout found. The best attempt is shown.")
		warning.Importance = widget.DangerImportance
		items = append(items, warning)
	case !result.FitsTarget:
		warning := widget.NewLabel(fmt.Sprintf("Valid layout, but R exceeds the target of %.4f mm.", cfg.Target()))
		warning.Importance = widget.WarningImportance
		items = append(items, warning)
	}

	lines := []string{}
	for i, p := range result.Placements {
		label := p.Rectangle.Label
		if label == "" {
			label = model.DefaultLabel(i)
		}
		lines = append(lines, fmt.Sprintf("%s  %gx%g  at (%.3f, %.3f)  %.2f°",
			label, p.Rectangle.Width, p.Rectangle.Height, p.X, p.Y, p.Angle))
	}
	details := widget.NewLabel(strings.Join(lines, "\n"))
	details.TextStyle = fyne.TextStyle{Monospace: true}

	drawing := NewCircleCanvas(cfg, *result, 480, 480)
	return container.NewBorder(
		container.NewVBox(items...),
		details,
		nil, nil,
		drawing,
	)
}

// insideQuad reports whether p lies inside or on the convex quad q, whose
// corners may wind either way.
func insideQuad(p model.Point2D, q [4]model.Point2D) bool {
	var pos, neg bool
	for i := range q {
		a, b := q[i], q[(i+1)%len(q)]
		cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
		if cross > 0 {
			pos = true
		} else if cross < 0 {
			neg = true
		}
	}
	return !(pos && neg)
}
