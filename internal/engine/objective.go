package engine

import (
	"math"

	"github.com/piwi3910/circlepack/internal/model"
	"gonum.org/v1/gonum/spatial/r2"
)

// objective maps a candidate vector [R, x1, y1, (t1), ...] to R plus
// weighted penalties. It holds no mutable state, so a single value may be
// evaluated from several goroutines at once.
type objective struct {
	rects             []model.Rectangle
	padInner          float64
	padOuter          float64
	angles            []float64 // fixed angles in radians; nil when angles are free
	containmentWeight float64
	overlapWeight     float64
	minEdge           float64
	boundsScale       float64
}

func newObjective(cfg model.PackingConfig, settings model.SolverSettings, angles []float64) objective {
	return objective{
		rects:             cfg.Rectangles,
		padInner:          cfg.PaddingInner,
		padOuter:          cfg.PaddingOuter,
		angles:            angles,
		containmentWeight: settings.ContainmentWeight,
		overlapWeight:     settings.OverlapWeight,
		minEdge:           settings.DegenerateEdge,
		boundsScale:       settings.BoundsScale,
	}
}

func (o objective) free() bool { return o.angles == nil }

// stride is the number of vector components per rectangle.
func (o objective) stride() int {
	if o.free() {
		return 3
	}
	return 2
}

func (o objective) dim() int { return 1 + o.stride()*len(o.rects) }

// pose returns the center and angle (radians) of rectangle i in x.
func (o objective) pose(x []float64, i int) (r2.Vec, float64) {
	base := 1 + i*o.stride()
	center := r2.Vec{X: x[base], Y: x[base+1]}
	if o.free() {
		return center, x[base+2]
	}
	return center, o.angles[i]
}

func (o objective) quads(x []float64) []quad {
	qs := make([]quad, len(o.rects))
	for i, r := range o.rects {
		center, theta := o.pose(x, i)
		qs[i] = corners(center, r.Width, r.Height, theta)
	}
	return qs
}

// eval is the scalar to minimize.
func (o objective) eval(x []float64) float64 {
	containment, overlap := o.penalties(x[0], o.quads(x))
	return x[0] + overlap*o.overlapWeight + containment
}

// penalties returns the weighted containment sum and the unweighted overlap sum.
func (o objective) penalties(radius float64, qs []quad) (containment, overlap float64) {
	effectiveR := radius - o.padOuter
	for _, q := range qs {
		containment += containmentPenalty(q, effectiveR, o.containmentWeight)
	}
	for i := 0; i < len(qs); i++ {
		for j := i + 1; j < len(qs); j++ {
			overlap += overlapPenalty(qs[i], qs[j], o.padInner, o.minEdge)
		}
	}
	return containment, overlap
}

// penalty is objective minus R: zero exactly for a feasible layout.
func (o objective) penalty(x []float64) float64 {
	return o.eval(x) - x[0]
}

// maxDim bounds the search box. The outer padding is included for every
// mode so large outer paddings never push the optimum outside the box.
func (o objective) maxDim() float64 {
	var sum float64
	for _, r := range o.rects {
		sum += math.Max(r.Width, r.Height)
	}
	return sum*o.boundsScale + float64(len(o.rects))*o.padInner + o.padOuter
}

// bounds returns the box constraints for the candidate vector.
func (o objective) bounds() [][2]float64 {
	m := o.maxDim()
	// half-open: a turn of π is the same pose as 0
	maxTheta := math.Nextafter(math.Pi, 0)
	b := make([][2]float64, 0, o.dim())
	b = append(b, [2]float64{0, m})
	for range o.rects {
		b = append(b, [2]float64{-m, m}, [2]float64{-m, m})
		if o.free() {
			b = append(b, [2]float64{0, maxTheta})
		}
	}
	return b
}

// placements decodes x into result placements with angles in degrees.
func (o objective) placements(x []float64) []model.Placement {
	out := make([]model.Placement, len(o.rects))
	for i, r := range o.rects {
		center, theta := o.pose(x, i)
		out[i] = model.Placement{Rectangle: r, X: center.X, Y: center.Y, Angle: rad2deg(theta)}
	}
	return out
}

// settle turns a nearly feasible candidate into a feasible one. Centers are
// scaled away from the origin until no pair violates the inner padding, then
// R is set to the farthest corner plus the outer padding. It reports false
// when the penalty of x exceeds tolerance or no scale clears the overlap.
func (o objective) settle(x []float64, tolerance float64) ([]float64, bool) {
	if o.penalty(x) > tolerance {
		return nil, false
	}
	y := append([]float64(nil), x...)
	for step := 1e-7; ; step *= 2 {
		if _, overlap := o.penalties(y[0], o.quads(y)); overlap == 0 {
			break
		}
		if step > 1 {
			return nil, false
		}
		for i := range o.rects {
			base := 1 + i*o.stride()
			y[base] = x[base] * (1 + step)
			y[base+1] = x[base+1] * (1 + step)
		}
	}

	var far float64
	for _, q := range o.quads(y) {
		for _, c := range q {
			far = math.Max(far, r2.Norm(c))
		}
	}
	y[0] = far + o.padOuter
	return y, true
}

// Evaluation is the penalty breakdown of an existing layout.
type Evaluation struct {
	Objective   float64 `json:"objective"`
	Penalty     float64 `json:"penalty"`
	Containment float64 `json:"containment"` // Weighted
	Overlap     float64 `json:"overlap"`     // Unweighted
	Valid       bool    `json:"valid"`
	FitsTarget  bool    `json:"fits_target"`
}

// Evaluate re-scores placements inside a circle of radius R against cfg.
// The placements must be in the same order as cfg.Rectangles.
func Evaluate(cfg model.PackingConfig, settings model.SolverSettings, placements []model.Placement, radius float64) Evaluation {
	qs := make([]quad, len(placements))
	for i, p := range placements {
		qs[i] = corners(r2.Vec{X: p.X, Y: p.Y}, p.Rectangle.Width, p.Rectangle.Height, deg2rad(p.Angle))
	}
	o := newObjective(cfg, settings, make([]float64, len(placements)))
	containment, overlap := o.penalties(radius, qs)
	penalty := overlap*o.overlapWeight + containment
	return Evaluation{
		Objective:   radius + penalty,
		Penalty:     penalty,
		Containment: containment,
		Overlap:     overlap,
		Valid:       isValid(penalty, settings),
		FitsTarget:  fitsTarget(radius, cfg, settings),
	}
}
