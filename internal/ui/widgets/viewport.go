package widgets

import (
	"math"

	"fyne.io/fyne/v2"
)

// viewport maps layout millimetres (origin at the circle centre, Y up) onto
// widget pixels (origin top-left, Y down).
type viewport struct {
	scale  float32
	cx, cy float32
}

// newViewport fits a circle of the given radius into size, leaving margin
// pixels on every side.
func newViewport(radius float64, size fyne.Size, margin float32) viewport {
	side := size.Width
	if size.Height < side {
		side = size.Height
	}
	usable := side - 2*margin
	if usable < 1 {
		usable = 1
	}
	scale := float32(1)
	if radius > 0 {
		scale = usable / float32(2*radius)
	}
	return viewport{scale: scale, cx: size.Width / 2, cy: size.Height / 2}
}

func (v viewport) point(x, y float64) fyne.Position {
	return fyne.NewPos(v.cx+float32(x)*v.scale, v.cy-float32(y)*v.scale)
}

// inverse maps a pixel back to layout coordinates.
func (v viewport) inverse(px, py float32) (float64, float64) {
	return float64((px - v.cx) / v.scale), float64((v.cy - py) / v.scale)
}

func (v viewport) length(d float64) float32 {
	return float32(d) * v.scale
}

// circleBounds returns the top-left position and size of the square that
// encloses a circle of radius r centred on the layout origin.
func (v viewport) circleBounds(r float64) (fyne.Position, fyne.Size) {
	d := v.length(2 * r)
	return fyne.NewPos(v.cx-d/2, v.cy-d/2), fyne.NewSize(d, d)
}

// arcPoints approximates an arc from (x0,y0) to (x1,y1) around (cx,cy) with
// line segments. A zero sweep (start equals end) is a full circle.
func arcPoints(x0, y0, x1, y1, cx, cy float64, clockwise bool, segments int) [][2]float64 {
	if segments < 2 {
		segments = 2
	}
	r := math.Hypot(x0-cx, y0-cy)
	a0 := math.Atan2(y0-cy, x0-cx)
	a1 := math.Atan2(y1-cy, x1-cx)
	sweep := a1 - a0
	if clockwise {
		for sweep >= 0 {
			sweep -= 2 * math.Pi
		}
	} else {
		for sweep <= 0 {
			sweep += 2 * math.Pi
		}
	}

	pts := make([][2]float64, 0, segments+1)
	for i := 0; i <= segments; i++ {
		a := a0 + sweep*float64(i)/float64(segments)
		pts = append(pts, [2]float64{cx + r*math.Cos(a), cy + r*math.Sin(a)})
	}
	return pts
}
