package engine

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// overlapPenalty is the padded separating-axis test. It returns 0 as soon as
// one axis separates the pair by at least padding; otherwise the square of
// the smallest violation over all axes. The value is a heuristic, not the
// exact penetration depth.
func overlapPenalty(a, b quad, padding, minEdge float64) float64 {
	minViolation := math.Inf(1)
	for _, q := range [2]quad{a, b} {
		for _, axis := range axes(q, minEdge) {
			minA, maxA := project(a, axis)
			minB, maxB := project(b, axis)
			d := math.Max(minB-maxA, minA-maxB)
			if d >= padding {
				return 0
			}
			if v := padding - d; v < minViolation {
				minViolation = v
			}
		}
	}
	if math.IsInf(minViolation, 1) {
		return 0
	}
	return minViolation * minViolation
}

// containmentPenalty sums weight*(|c| - effectiveR)^2 over every corner
// farther than effectiveR from the origin.
func containmentPenalty(q quad, effectiveR, weight float64) float64 {
	var p float64
	for _, c := range q {
		if d := r2.Norm(c); d > effectiveR {
			excess := d - effectiveR
			p += excess * excess * weight
		}
	}
	return p
}
