package engine

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// quad is the four corners of a rotated rectangle in edge order.
type quad [4]r2.Vec

// halfExtents are the unrotated corner offsets: top-right, top-left,
// bottom-left, bottom-right.
var halfExtents = [4]r2.Vec{{X: 1, Y: 1}, {X: -1, Y: 1}, {X: -1, Y: -1}, {X: 1, Y: -1}}

// corners rotates the half-extent offsets by theta (radians) and translates
// them to center.
func corners(center r2.Vec, w, h, theta float64) quad {
	c, s := math.Cos(theta), math.Sin(theta)
	hw, hh := w/2, h/2
	var q quad
	for i, o := range halfExtents {
		dx, dy := o.X*hw, o.Y*hh
		q[i] = r2.Vec{X: center.X + dx*c - dy*s, Y: center.Y + dx*s + dy*c}
	}
	return q
}

// axes returns the unit normal of every edge of q. Edges shorter than
// minEdge are skipped.
func axes(q quad, minEdge float64) []r2.Vec {
	out := make([]r2.Vec, 0, len(q))
	for i := range q {
		edge := r2.Sub(q[(i+1)%len(q)], q[i])
		normal := r2.Vec{X: -edge.Y, Y: edge.X}
		l := r2.Norm(normal)
		if l > minEdge {
			out = append(out, r2.Scale(1/l, normal))
		}
	}
	return out
}

// project returns the interval covered by q on axis.
func project(q quad, axis r2.Vec) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, p := range q {
		v := r2.Dot(p, axis)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }

func rad2deg(r float64) float64 { return r * 180 / math.Pi }
