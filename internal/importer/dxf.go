package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/circlepack/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
)

// Tolerances for recognising rectangles in drawings.
const (
	chainTolerance = 0.01 // mm between endpoints to join LINEs
	rightAngleTol  = 1e-3 // |cos| of the corner angle
	sideTolerance  = 0.01 // mm difference between opposite sides
	minSide        = 0.01 // mm
)

// segment is one LINE entity, chained into outlines later.
type segment struct{ start, end model.Point2D }

// ImportDXF imports rectangles from a DXF file. Every closed LWPOLYLINE or
// chain of LINEs with four right-angled corners becomes a rectangle; its
// rotation in the drawing is ignored. CIRCLE radii are collected in Circles
// and reported as warnings so the caller may use one as a target radius.
func ImportDXF(path string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var outlines [][]model.Point2D
	var segments []segment

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			if hasBulge(e) {
				result.Warnings = append(result.Warnings, "Skipped LWPOLYLINE with arc segments")
				continue
			}
			outline := lwPolylineToOutline(e)
			if len(outline) >= 3 {
				outlines = append(outlines, outline)
			} else {
				result.Warnings = append(result.Warnings,
					"Skipped LWPOLYLINE with fewer than 3 vertices")
			}

		case *entity.Circle:
			result.Circles = append(result.Circles, e.Radius)
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Found circle with radius %.2f mm (not a rectangle)", e.Radius))

		case *entity.Line:
			segments = append(segments, segment{
				start: model.Point2D{X: e.Start[0], Y: e.Start[1]},
				end:   model.Point2D{X: e.End[0], Y: e.End[1]},
			})

		case *entity.Arc:
			result.Warnings = append(result.Warnings, "Skipped ARC entity")

		default:
			// Unsupported entity types are silently skipped
		}
	}

	outlines = append(outlines, chainSegments(segments, chainTolerance)...)

	for _, outline := range outlines {
		w, h, ok := rectangleFromOutline(outline)
		if !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped non-rectangular shape with %d vertices", len(outline)))
			continue
		}
		label := model.DefaultLabel(len(result.Rectangles))
		result.Rectangles = append(result.Rectangles, model.NewRectangle(label, w, h))
	}

	if len(result.Rectangles) == 0 {
		result.Errors = append(result.Errors, "No rectangles found in DXF file")
	}
	return result
}

// LargestCircle returns the largest circle radius found, or false.
func (r ImportResult) LargestCircle() (float64, bool) {
	if len(r.Circles) == 0 {
		return 0, false
	}
	largest := r.Circles[0]
	for _, c := range r.Circles[1:] {
		largest = math.Max(largest, c)
	}
	return largest, true
}

func hasBulge(lw *entity.LwPolyline) bool {
	for _, b := range lw.Bulges {
		if math.Abs(b) > 1e-9 {
			return true
		}
	}
	return false
}

// lwPolylineToOutline converts a DXF LWPOLYLINE entity to its vertex list.
func lwPolylineToOutline(lw *entity.LwPolyline) []model.Point2D {
	outline := make([]model.Point2D, 0, len(lw.Vertices))
	for _, v := range lw.Vertices {
		outline = append(outline, model.Point2D{X: v[0], Y: v[1]})
	}
	return outline
}

// rectangleFromOutline reports the side lengths of outline when it is a
// rectangle in any orientation. A repeated closing vertex is ignored.
func rectangleFromOutline(outline []model.Point2D) (w, h float64, ok bool) {
	if n := len(outline); n == 5 && pointsClose(outline[0], outline[4], chainTolerance) {
		outline = outline[:4]
	}
	if len(outline) != 4 {
		return 0, 0, false
	}

	var sides [4]model.Point2D
	for i := range outline {
		next := outline[(i+1)%4]
		sides[i] = model.Point2D{X: next.X - outline[i].X, Y: next.Y - outline[i].Y}
		if sides[i].Dist() < minSide {
			return 0, 0, false
		}
	}
	for i := range sides {
		a, b := sides[i], sides[(i+1)%4]
		cos := (a.X*b.X + a.Y*b.Y) / (a.Dist() * b.Dist())
		if math.Abs(cos) > rightAngleTol {
			return 0, 0, false
		}
	}
	if math.Abs(sides[0].Dist()-sides[2].Dist()) > sideTolerance ||
		math.Abs(sides[1].Dist()-sides[3].Dist()) > sideTolerance {
		return 0, 0, false
	}
	return sides[0].Dist(), sides[1].Dist(), true
}

// chainSegments joins LINE segments end to end and returns the chains
// that close on themselves, largest area first. Endpoints within
// tolerance count as shared.
func chainSegments(segs []segment, tolerance float64) [][]model.Point2D {
	used := make([]bool, len(segs))

	// follow returns the far end of an unused segment touching p.
	follow := func(p model.Point2D) (model.Point2D, bool) {
		for i, seg := range segs {
			switch {
			case used[i]:
			case pointsClose(p, seg.start, tolerance):
				used[i] = true
				return seg.end, true
			case pointsClose(p, seg.end, tolerance):
				used[i] = true
				return seg.start, true
			}
		}
		return model.Point2D{}, false
	}

	var outlines [][]model.Point2D
	for i, seg := range segs {
		if used[i] {
			continue
		}
		used[i] = true
		chain := []model.Point2D{seg.start, seg.end}
		for next, ok := follow(seg.end); ok; next, ok = follow(next) {
			chain = append(chain, next)
		}
		if len(chain) >= 4 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			outlines = append(outlines, chain[:len(chain)-1])
		}
	}

	sort.SliceStable(outlines, func(i, j int) bool {
		return outlineArea(outlines[i]) > outlineArea(outlines[j])
	})
	return outlines
}

func pointsClose(a, b model.Point2D, tolerance float64) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= tolerance
}

// outlineArea is the shoelace area of a polygon, always positive.
func outlineArea(o []model.Point2D) float64 {
	var twice float64
	for i, p := range o {
		q := o[(i+1)%len(o)]
		twice += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(twice) / 2
}
