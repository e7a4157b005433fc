package export

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/piwi3910/circlepack/internal/model"
)

// DefaultImageSize is the edge length in pixels of exported PNGs.
const DefaultImageSize = 1000

const titleBand = 44.0 // px reserved above the plot

// RenderImage draws the layout: grid, container circle, constraint circle,
// filled rectangles with labels and the half-padding halo.
func RenderImage(cfg model.PackingConfig, result model.PackingResult, size int) (image.Image, error) {
	dc, err := renderContext(cfg, result, size)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// ExportPNG renders the layout and saves it as a PNG file.
func ExportPNG(path string, cfg model.PackingConfig, result model.PackingResult, size int) error {
	dc, err := renderContext(cfg, result, size)
	if err != nil {
		return err
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("saving PNG: %w", err)
	}
	return nil
}

// WritePNG renders the layout and encodes it to w.
func WritePNG(w io.Writer, cfg model.PackingConfig, result model.PackingResult, size int) error {
	dc, err := renderContext(cfg, result, size)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

func renderContext(cfg model.PackingConfig, result model.PackingResult, size int) (*gg.Context, error) {
	sc, err := newScene(cfg, result)
	if err != nil {
		return nil, err
	}
	if size < 100 {
		size = DefaultImageSize
	}

	dc := gg.NewContext(size, size)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	plot := float64(size) - titleBand
	scale := plot / (2 * sc.Extent)
	cx, cy := float64(size)/2, titleBand+plot/2
	toPx := func(p model.Point2D) (float64, float64) {
		return cx + p.X*scale, cy - p.Y*scale
	}

	// Grid
	step := gridStep(2 * sc.Extent)
	dc.SetRGB(0.9, 0.9, 0.9)
	dc.SetLineWidth(1)
	for v := -math.Floor(sc.Extent/step) * step; v <= sc.Extent; v += step {
		x, _ := toPx(model.Point2D{X: v})
		_, y := toPx(model.Point2D{Y: v})
		dc.DrawLine(x, titleBand, x, float64(size))
		dc.DrawLine(0, y, float64(size), y)
	}
	dc.Stroke()

	// Container
	dc.SetRGB(0, 0, 1)
	dc.SetLineWidth(2)
	dc.SetDash(10, 5)
	dc.DrawCircle(cx, cy, sc.Radius*scale)
	dc.Stroke()

	if sc.ConstraintRadius > 0 {
		dc.SetRGB(0.5, 0.5, 0.5)
		dc.SetLineWidth(1)
		dc.SetDash(2, 4)
		dc.DrawCircle(cx, cy, sc.ConstraintRadius*scale)
		dc.Stroke()
	}
	dc.SetDash()

	for _, s := range sc.Shapes {
		if sc.PaddingInner > 0 {
			tracePolygon(dc, s.Halo, toPx)
			dc.SetRGBA(1, 0, 0, haloAlpha)
			dc.SetLineWidth(1)
			dc.SetDash(2, 3)
			dc.Stroke()
			dc.SetDash()
		}

		tracePolygon(dc, s.Corners, toPx)
		dc.SetRGBA(float64(s.Color.R)/255, float64(s.Color.G)/255, float64(s.Color.B)/255, fillAlpha)
		dc.FillPreserve()
		dc.SetRGB(0, 0, 0)
		dc.SetLineWidth(1.5)
		dc.Stroke()

		x, y := toPx(s.Center)
		dc.DrawStringAnchored(s.Label, x, y, 0.5, 0.5)
	}

	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(sc.title(), float64(size)/2, titleBand*0.3, 0.5, 0.5)
	dc.DrawStringAnchored(sc.subtitle(), float64(size)/2, titleBand*0.7, 0.5, 0.5)

	return dc, nil
}

func tracePolygon(dc *gg.Context, pts [4]model.Point2D, toPx func(model.Point2D) (float64, float64)) {
	dc.NewSubPath()
	for i, p := range pts {
		x, y := toPx(p)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.ClosePath()
}
