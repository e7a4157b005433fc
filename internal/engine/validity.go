package engine

import "github.com/piwi3910/circlepack/internal/model"

// isValid reports whether a residual penalty (objective minus R) is small
// enough for the layout to count as overlap-free and contained.
func isValid(penalty float64, settings model.SolverSettings) bool {
	return penalty < settings.ValidityEpsilon
}

// fitsTarget reports whether radius meets the configured target. Without a
// target every radius fits.
func fitsTarget(radius float64, cfg model.PackingConfig, settings model.SolverSettings) bool {
	if !cfg.HasTarget() {
		return true
	}
	return radius <= cfg.Target()+settings.TargetEpsilon
}

// priority ranks results for the best-of selection:
// 2 = valid and fits the target, 1 = valid only, 0 = neither.
func priority(valid, fits bool) int {
	switch {
	case valid && fits:
		return 2
	case valid:
		return 1
	default:
		return 0
	}
}

// better reports whether candidate should replace incumbent. Higher priority
// wins; within equal priority the smaller radius wins.
func better(candidate, incumbent model.PackingResult) bool {
	pc := priority(candidate.Valid, candidate.FitsTarget)
	pi := priority(incumbent.Valid, incumbent.FitsTarget)
	if pc != pi {
		return pc > pi
	}
	return candidate.Radius < incumbent.Radius
}

// adjudicate fills in the validity fields of r from the final candidate x.
func adjudicate(r *model.PackingResult, o objective, x []float64, cfg model.PackingConfig, settings model.SolverSettings) {
	r.Penalty = o.penalty(x)
	r.Valid = isValid(r.Penalty, settings)
	r.FitsTarget = fitsTarget(r.Radius, cfg, settings)
}
