package widgets

import (
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/circlepack/internal/gcode"
	"github.com/piwi3910/circlepack/internal/model"
)

// Toolpath colors for different move types.
var (
	colorRapid   = color.NRGBA{R: 255, G: 60, B: 60, A: 200}  // Red for rapid moves
	colorFeed    = color.NRGBA{R: 30, G: 120, B: 255, A: 230} // Blue for cutting moves
	colorPlunge  = color.NRGBA{R: 50, G: 200, B: 50, A: 220}  // Green for plunge
	colorRetract = color.NRGBA{R: 180, G: 180, B: 0, A: 180}  // Yellow for retract
	colorPart    = color.NRGBA{R: 100, G: 130, B: 180, A: 200}
)

// arcSegments is the number of line segments used to draw a full circle.
const arcSegments = 72

// GCodePreview renders parsed toolpath moves over the part outlines and the
// blank circle.
type GCodePreview struct {
	widget.BaseWidget
	moves      []gcode.Move
	placements []model.Placement
	radius     float64
	reach      float64
	minSize    fyne.Size
}

// NewGCodePreview creates a preview of moves for a layout of the given
// container radius.
func NewGCodePreview(moves []gcode.Move, placements []model.Placement, radius float64, minW, minH float32) *GCodePreview {
	gp := &GCodePreview{
		moves:      moves,
		placements: placements,
		radius:     radius,
		reach:      math.Max(radius, gcode.CutReach(moves)),
		minSize:    fyne.NewSize(minW, minH),
	}
	gp.ExtendBaseWidget(gp)
	return gp
}

// CreateRenderer implements fyne.Widget.
func (gp *GCodePreview) CreateRenderer() fyne.WidgetRenderer {
	return &gcodePreviewRenderer{gp: gp}
}

type gcodePreviewRenderer struct {
	gp      *GCodePreview
	size    fyne.Size
	objects []fyne.CanvasObject
}

func (r *gcodePreviewRenderer) rebuild() {
	r.objects = nil
	gp := r.gp
	if gp.reach <= 0 || r.size.Width == 0 {
		return
	}
	view := newViewport(gp.reach, r.size, canvasMargin)

	blank := canvas.NewCircle(colorBlank)
	blank.StrokeColor = color.NRGBA{R: 80, G: 80, B: 80, A: 255}
	blank.StrokeWidth = 1
	pos, size := view.circleBounds(gp.radius)
	blank.Move(pos)
	blank.Resize(size)
	r.objects = append(r.objects, blank)

	for _, p := range gp.placements {
		corners := p.Corners()
		for k := range corners {
			a, b := corners[k], corners[(k+1)%len(corners)]
			r.line(view.point(a.X, a.Y), view.point(b.X, b.Y), colorPart, 1)
		}
	}

	for _, m := range gp.moves {
		from := view.point(m.From[0], m.From[1])
		to := view.point(m.To[0], m.To[1])
		xyDist := math.Hypot(m.To[0]-m.From[0], m.To[1]-m.From[1])

		switch m.Type {
		case gcode.MoveRapid:
			if xyDist < 0.01 {
				continue
			}
			r.dashed(from, to, colorRapid)

		case gcode.MoveFeed:
			if xyDist < 0.01 {
				continue
			}
			r.line(from, to, colorFeed, 2)

		case gcode.MoveArcCW, gcode.MoveArcCCW:
			pts := arcPoints(m.From[0], m.From[1], m.To[0], m.To[1], m.CenterX, m.CenterY, m.Type == gcode.MoveArcCW, arcSegments)
			for i := 1; i < len(pts); i++ {
				r.line(view.point(pts[i-1][0], pts[i-1][1]), view.point(pts[i][0], pts[i][1]), colorFeed, 2)
			}

		case gcode.MovePlunge:
			r.marker(from, colorPlunge, 4)

		case gcode.MoveRetract:
			if xyDist < 0.01 {
				r.marker(from, colorRetract, 3)
			} else {
				r.line(from, to, colorRetract, 1)
			}
		}
	}
}

func (r *gcodePreviewRenderer) line(a, b fyne.Position, c color.Color, width float32) {
	l := canvas.NewLine(c)
	l.StrokeWidth = width
	l.Position1 = a
	l.Position2 = b
	r.objects = append(r.objects, l)
}

func (r *gcodePreviewRenderer) marker(at fyne.Position, c color.Color, size float32) {
	m := canvas.NewCircle(c)
	m.Resize(fyne.NewSize(size, size))
	m.Move(fyne.NewPos(at.X-size/2, at.Y-size/2))
	r.objects = append(r.objects, m)
}

// dashed draws a rapid move as short dashes.
func (r *gcodePreviewRenderer) dashed(a, b fyne.Position, c color.Color) {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length < 8 {
		r.line(a, b, c, 1)
		return
	}
	const dashLen, gapLen = 6, 4
	nx, ny := dx/length, dy/length
	for cursor := float32(0); cursor < length; cursor += dashLen + gapLen {
		end := cursor + dashLen
		if end > length {
			end = length
		}
		r.line(
			fyne.NewPos(a.X+nx*cursor, a.Y+ny*cursor),
			fyne.NewPos(a.X+nx*end, a.Y+ny*end),
			c, 1,
		)
	}
}

func (r *gcodePreviewRenderer) Layout(size fyne.Size) {
	r.size = size
	r.rebuild()
}

func (r *gcodePreviewRenderer) Refresh()                     { r.rebuild() }
func (r *gcodePreviewRenderer) Destroy()                     {}
func (r *gcodePreviewRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *gcodePreviewRenderer) MinSize() fyne.Size           { return r.gp.minSize }

// RenderGCodePreview creates the preview panel for a generated program,
// including the toolpath drawing and a color legend.
func RenderGCodePreview(result model.PackingResult, code string) fyne.CanvasObject {
	moves := gcode.Parse(code)
	preview := NewGCodePreview(moves, result.Placements, result.Radius, 520, 520)

	legend := container.NewHBox(
		legendItem("Rapid", colorRapid),
		legendItem("Cut", colorFeed),
		legendItem("Plunge", colorPlunge),
		legendItem("Retract", colorRetract),
	)
	return container.NewBorder(nil, legend, nil, nil, preview)
}

func legendItem(name string, c color.Color) fyne.CanvasObject {
	swatch := canvas.NewRectangle(c)
	swatch.SetMinSize(fyne.NewSize(12, 12))
	return container.NewHBox(container.NewCenter(swatch), widget.NewLabel(name))
}
