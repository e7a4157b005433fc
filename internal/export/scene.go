// Package export writes packing results to drawings, reports and data files.
package export

import (
	"errors"
	"fmt"
	"math"

	"github.com/piwi3910/circlepack/internal/model"
)

// ErrNothingToExport is returned when a result has no placements.
var ErrNothingToExport = errors.New("no placements to export")

// partColor represents an RGB color for a placed rectangle.
type partColor struct {
	R, G, B int
}

func (c partColor) hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// partColors mirrors the color scheme used in the UI circle canvas widget.
var partColors = []partColor{
	{R: 255, G: 153, B: 153}, // red
	{R: 153, G: 255, B: 153}, // green
	{R: 153, G: 153, B: 255}, // blue
	{R: 255, G: 204, B: 153}, // orange
	{R: 255, G: 153, B: 204}, // pink
	{R: 153, G: 204, B: 255}, // sky
}

// Drawing constants shared by the raster and vector writers.
const (
	fillAlpha  = 0.7
	haloAlpha  = 0.3
	viewMargin = 1.2 // axis limit as a multiple of R
)

// shape is one placed rectangle ready to draw.
type shape struct {
	Label   string
	Center  model.Point2D
	Corners [4]model.Point2D
	Halo    [4]model.Point2D // Outline grown by half the inner padding
	MinSide float64
	Color   partColor
}

// scene is the drawing of a result in model coordinates (mm, y up, circle
// at the origin).
type scene struct {
	Radius           float64
	ConstraintRadius float64 // Zero when there is no outer padding
	Extent           float64
	PaddingInner     float64
	PaddingOuter     float64
	Shapes           []shape
}

func newScene(cfg model.PackingConfig, result model.PackingResult) (scene, error) {
	if len(result.Placements) == 0 {
		return scene{}, ErrNothingToExport
	}
	sc := scene{
		Radius:       result.Radius,
		Extent:       result.Radius * viewMargin,
		PaddingInner: cfg.PaddingInner,
		PaddingOuter: cfg.PaddingOuter,
	}
	if cfg.PaddingOuter > 0 {
		sc.ConstraintRadius = result.Radius - cfg.PaddingOuter
	}
	if sc.Extent <= 0 {
		sc.Extent = 1
	}

	for i, p := range result.Placements {
		halo := p
		halo.Rectangle.Width += cfg.PaddingInner
		halo.Rectangle.Height += cfg.PaddingInner
		sc.Shapes = append(sc.Shapes, shape{
			Label:   placementLabel(p, i),
			Center:  model.Point2D{X: p.X, Y: p.Y},
			Corners: p.Corners(),
			Halo:    halo.Corners(),
			MinSide: math.Min(p.Rectangle.Width, p.Rectangle.Height),
			Color:   partColors[i%len(partColors)],
		})
	}
	return sc, nil
}

func (sc scene) title() string {
	return fmt.Sprintf("Packing Solution (R=%.4fmm)", sc.Radius)
}

func (sc scene) subtitle() string {
	return fmt.Sprintf("Inner Pad=%gmm, Outer Pad=%gmm", sc.PaddingInner, sc.PaddingOuter)
}

// gridStep picks a 1-2-5 spacing that gives roughly eight grid lines over span.
func gridStep(span float64) float64 {
	if span <= 0 {
		return 1
	}
	raw := span / 8
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 5} {
		if m*mag >= raw {
			return m * mag
		}
	}
	return 10 * mag
}

func placementLabel(p model.Placement, i int) string {
	if p.Rectangle.Label != "" {
		return p.Rectangle.Label
	}
	return model.DefaultLabel(i)
}
