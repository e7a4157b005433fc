package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/piwi3910/circlepack/internal/model"
)

// RenderSVG draws the layout as a standalone SVG document. The viewBox is in
// millimetres with y pointing down, so model coordinates are mirrored.
func RenderSVG(cfg model.PackingConfig, result model.PackingResult) ([]byte, error) {
	sc, err := newScene(cfg, result)
	if err != nil {
		return nil, err
	}

	e := sc.Extent
	band := e * 0.15 // title area above the plot
	stroke := e / 300

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.4f %.4f %.4f %.4f" width="%.0fmm" height="%.0fmm">`+"\n",
		-e, -e-band, 2*e, 2*e+band, 2*e, 2*e+band)
	fmt.Fprintf(&buf, `  <rect x="%.4f" y="%.4f" width="%.4f" height="%.4f" fill="white"/>`+"\n", -e, -e-band, 2*e, 2*e+band)

	step := gridStep(2 * e)
	fmt.Fprintf(&buf, `  <g stroke="#E6E6E6" stroke-width="%.4f">`+"\n", stroke)
	for v := -math.Floor(e/step) * step; v <= e; v += step {
		fmt.Fprintf(&buf, `    <line x1="%.4f" y1="%.4f" x2="%.4f" y2="%.4f"/>`+"\n", v, -e, v, e)
		fmt.Fprintf(&buf, `    <line x1="%.4f" y1="%.4f" x2="%.4f" y2="%.4f"/>`+"\n", -e, v, e, v)
	}
	buf.WriteString("  </g>\n")

	fmt.Fprintf(&buf, `  <circle id="container" cx="0" cy="0" r="%.4f" fill="none" stroke="blue" stroke-width="%.4f" stroke-dasharray="%.4f %.4f"/>`+"\n",
		sc.Radius, 2*stroke, 10*stroke, 5*stroke)
	if sc.ConstraintRadius > 0 {
		fmt.Fprintf(&buf, `  <circle id="constraint" cx="0" cy="0" r="%.4f" fill="none" stroke="gray" stroke-width="%.4f" stroke-dasharray="%.4f %.4f"/>`+"\n",
			sc.ConstraintRadius, stroke, 2*stroke, 4*stroke)
	}

	for i, s := range sc.Shapes {
		if sc.PaddingInner > 0 {
			fmt.Fprintf(&buf, `  <polygon points="%s" fill="none" stroke="red" stroke-opacity="%.1f" stroke-width="%.4f" stroke-dasharray="%.4f %.4f"/>`+"\n",
				svgPoints(s.Halo), haloAlpha, stroke, 2*stroke, 3*stroke)
		}
		fmt.Fprintf(&buf, `  <polygon id="rect-%d" points="%s" fill="%s" fill-opacity="%.1f" stroke="black" stroke-width="%.4f"/>`+"\n",
			i, svgPoints(s.Corners), s.Color.hex(), fillAlpha, 1.5*stroke)
		fmt.Fprintf(&buf, `  <text x="%.4f" y="%.4f" font-family="sans-serif" font-weight="bold" font-size="%.4f" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
			s.Center.X, -s.Center.Y, s.MinSide/4, escape(s.Label))
	}

	fmt.Fprintf(&buf, `  <text x="0" y="%.4f" font-family="sans-serif" font-size="%.4f" text-anchor="middle">%s</text>`+"\n",
		-e-band*0.55, band*0.35, escape(sc.title()))
	fmt.Fprintf(&buf, `  <text x="0" y="%.4f" font-family="sans-serif" font-size="%.4f" text-anchor="middle">%s</text>`+"\n",
		-e-band*0.15, band*0.25, escape(sc.subtitle()))
	buf.WriteString("</svg>\n")

	return buf.Bytes(), nil
}

// ExportSVG writes the SVG drawing of the layout to path.
func ExportSVG(path string, cfg model.PackingConfig, result model.PackingResult) error {
	data, err := RenderSVG(cfg, result)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func svgPoints(pts [4]model.Point2D) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = fmt.Sprintf("%.4f,%.4f", p.X, -p.Y)
	}
	return strings.Join(parts, " ")
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
