package model

import "math"

// PackingStats summarises how well a result uses its circle.
type PackingStats struct {
	RectangleArea float64 `json:"rectangle_area"` // Total area of all rectangles (sq mm)
	CircleArea    float64 `json:"circle_area"`    // Area of the container circle (sq mm)
	Density       float64 `json:"density"`        // RectangleArea / CircleArea as a percentage
	Diameter      float64 `json:"diameter"`       // mm
	MinGap        float64 `json:"min_gap"`        // Smallest separating-axis gap between two rectangles (mm)
	MinClearance  float64 `json:"min_clearance"`  // Smallest distance from a corner to the circle (mm)
	BlankArea     float64 `json:"blank_area"`     // Square stock needed for the blank incl. kerf (sq mm)
	EstimatedCost float64 `json:"estimated_cost"` // BlankArea priced per square metre
}

// ComputeStats derives PackingStats from a result. kerf is added around the
// circular blank; pricePerSqM may be zero.
func ComputeStats(result PackingResult, kerf, pricePerSqM float64) PackingStats {
	stats := PackingStats{
		CircleArea: result.CircleArea(),
		Diameter:   result.Diameter(),
		MinGap:     math.Inf(1),
	}

	corners := make([][4]Point2D, len(result.Placements))
	maxDist := 0.0
	for i, p := range result.Placements {
		stats.RectangleArea += p.Rectangle.Area()
		corners[i] = p.Corners()
		for _, c := range corners[i] {
			if d := c.Dist(); d > maxDist {
				maxDist = d
			}
		}
	}
	stats.MinClearance = result.Radius - maxDist

	for i := 0; i < len(corners); i++ {
		for j := i + 1; j < len(corners); j++ {
			if g := separationGap(corners[i], corners[j]); g < stats.MinGap {
				stats.MinGap = g
			}
		}
	}
	if math.IsInf(stats.MinGap, 1) {
		stats.MinGap = 0
	}

	if stats.CircleArea > 0 {
		stats.Density = stats.RectangleArea / stats.CircleArea * 100.0
	}

	side := stats.Diameter + 2*kerf
	stats.BlankArea = side * side
	stats.EstimatedCost = stats.BlankArea / 1e6 * pricePerSqM
	return stats
}

// separationGap returns the largest interval gap over the edge normals of
// both polygons. It is negative when they overlap.
func separationGap(a, b [4]Point2D) float64 {
	best := math.Inf(-1)
	for _, poly := range [][4]Point2D{a, b} {
		for i := 0; i < 4; i++ {
			p1, p2 := poly[i], poly[(i+1)%4]
			nx, ny := -(p2.Y - p1.Y), p2.X-p1.X
			l := math.Hypot(nx, ny)
			if l < 1e-9 {
				continue
			}
			nx, ny = nx/l, ny/l
			minA, maxA := projectPoints(a, nx, ny)
			minB, maxB := projectPoints(b, nx, ny)
			if d := math.Max(minB-maxA, minA-maxB); d > best {
				best = d
			}
		}
	}
	return best
}

func projectPoints(pts [4]Point2D, nx, ny float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		v := p.X*nx + p.Y*ny
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
