package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/piwi3910/circlepack/internal/model"
)

// ComparisonScenario defines a named solve to compare. MultiStage runs the
// full escalation; otherwise only Mode is solved.
type ComparisonScenario struct {
	Name       string
	MultiStage bool
	Mode       model.RotationMode
	Settings   model.SolverSettings
}

// ComparisonResult holds the result and computed statistics for a single scenario.
type ComparisonResult struct {
	Scenario ComparisonScenario
	Result   model.PackingResult
	Stats    model.PackingStats
	Elapsed  time.Duration
	Err      error
}

// CompareScenarios solves cfg once per scenario, in scenario order. This
// shows side by side what each rotation strategy achieves on the same input.
func CompareScenarios(ctx context.Context, scenarios []ComparisonScenario, cfg model.PackingConfig, opts ...Option) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		solver := New(scenario.Settings, opts...)
		start := time.Now()

		var (
			res model.PackingResult
			err error
		)
		if scenario.MultiStage {
			res, err = solver.SolveMultiStage(ctx, cfg)
		} else {
			res, err = solver.Solve(ctx, cfg, scenario.Mode)
		}

		cr := ComparisonResult{
			Scenario: scenario,
			Result:   res,
			Elapsed:  time.Since(start),
			Err:      err,
		}
		if err == nil {
			cr.Stats = model.ComputeStats(res, 0, 0)
		}
		results = append(results, cr)
	}

	return results
}

// BuildDefaultScenarios returns the multi-stage search followed by every
// rotation mode on its own, plus symmetric-angle de-duplication when the
// base settings do not already use it.
func BuildDefaultScenarios(base model.SolverSettings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{Name: "Multi-stage", MultiStage: true, Settings: base},
	}
	for _, mode := range model.AllRotationModes() {
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("%s only", mode),
			Mode:     mode,
			Settings: base,
		})
	}

	if !base.DedupeSymmetricAngles {
		dedupe := base
		dedupe.DedupeSymmetricAngles = true
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "DISCRETE_45 (symmetric angles merged)",
			Mode:     model.RotationDiscrete45,
			Settings: dedupe,
		})
	}

	return scenarios
}

// BestComparison returns the index of the best successful comparison using
// the same priority rule as the multi-stage search, or -1.
func BestComparison(results []ComparisonResult) int {
	best := -1
	for i, r := range results {
		if r.Err != nil {
			continue
		}
		if best < 0 || better(r.Result, results[best].Result) {
			best = i
		}
	}
	return best
}

// CompareModes runs the default scenarios derived from settings.
func CompareModes(ctx context.Context, cfg model.PackingConfig, settings model.SolverSettings, opts ...Option) []ComparisonResult {
	return CompareScenarios(ctx, BuildDefaultScenarios(settings), cfg, opts...)
}
