package engine

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/piwi3910/circlepack/internal/model"
	"golang.org/x/sync/errgroup"
)

// ProgressFunc observes optimizer progress. With Workers > 1 it is called
// from several goroutines and must be safe for concurrent use.
type ProgressFunc func(mode model.RotationMode, p Progress)

// Solver runs rotation stages against a packing configuration.
type Solver struct {
	Settings model.SolverSettings

	logger   *log.Logger
	progress ProgressFunc
}

// Option configures a Solver.
type Option func(*Solver)

// WithLogger routes stage logging to l. Without it the solver is silent.
func WithLogger(l *log.Logger) Option {
	return func(s *Solver) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithProgress registers a per-generation observer.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Solver) { s.progress = fn }
}

// New creates a Solver with the given settings.
func New(settings model.SolverSettings, opts ...Option) *Solver {
	s := &Solver{
		Settings: settings,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Solve runs a single rotation mode with default settings.
func Solve(cfg model.PackingConfig, mode model.RotationMode) (model.PackingResult, error) {
	return New(model.DefaultSolverSettings()).Solve(context.Background(), cfg, mode)
}

// SolveMultiStage escalates through every rotation mode with default settings.
func SolveMultiStage(cfg model.PackingConfig) (model.PackingResult, error) {
	return New(model.DefaultSolverSettings()).SolveMultiStage(context.Background(), cfg)
}

func (s *Solver) validate(cfg model.PackingConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := s.Settings.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return nil
}

// Solve runs one rotation mode. Only configuration errors are returned;
// a failing stage is reported through the result's Message and Outcomes.
func (s *Solver) Solve(ctx context.Context, cfg model.PackingConfig, mode model.RotationMode) (model.PackingResult, error) {
	if err := s.validate(cfg); err != nil {
		return model.PackingResult{}, err
	}

	start := time.Now()
	result, err := s.runStage(ctx, cfg, mode)
	outcome := newOutcome(mode, result, err, time.Since(start))
	if err != nil {
		s.logger.Error("stage failed", "mode", mode, "err", err)
		return model.PackingResult{Mode: mode, Message: err.Error(), Outcomes: []model.ModeOutcome{outcome}}, nil
	}
	result.Outcomes = []model.ModeOutcome{outcome}
	return result, nil
}

// SolveMultiStage tries FIXED_0, DISCRETE_90, DISCRETE_45 and FREE in that
// order. The first valid result that fits the target ends the search;
// otherwise the best result by priority and radius is returned.
func (s *Solver) SolveMultiStage(ctx context.Context, cfg model.PackingConfig) (model.PackingResult, error) {
	if err := s.validate(cfg); err != nil {
		return model.PackingResult{}, err
	}

	var (
		best     *model.PackingResult
		outcomes []model.ModeOutcome
	)
	s.logger.Info("starting multi-stage search", "rectangles", len(cfg.Rectangles), "target", targetString(cfg))

	for _, mode := range model.AllRotationModes() {
		if ctx.Err() != nil {
			if best == nil {
				return model.PackingResult{Outcomes: outcomes}, ctx.Err()
			}
			best.Message += " (" + msgCancelled + ")"
			break
		}

		s.logger.Info("running stage", "mode", mode)
		start := time.Now()
		res, err := s.runStage(ctx, cfg, mode)
		outcome := newOutcome(mode, res, err, time.Since(start))
		outcomes = append(outcomes, outcome)

		if err != nil {
			s.logger.Warn("stage failed, continuing", "mode", mode, "err", err)
			continue
		}
		s.logger.Info("stage finished", "mode", mode, "radius", fmt.Sprintf("%.4f", res.Radius),
			"valid", res.Valid, "fits", res.FitsTarget, "elapsed", time.Since(start).Round(time.Millisecond))

		if res.Valid && res.FitsTarget {
			s.logger.Info("valid solution fits target, stopping early", "mode", mode)
			res.Outcomes = outcomes
			return res, nil
		}
		if res.Valid && cfg.HasTarget() {
			s.logger.Info("radius exceeds target, continuing", "radius", fmt.Sprintf("%.4f", res.Radius), "target", cfg.Target())
		}

		if best == nil || better(res, *best) {
			r := res
			best = &r
		}
	}

	if best == nil {
		s.logger.Error("all stages failed")
		return model.PackingResult{Message: "all rotation modes failed", Outcomes: outcomes}, nil
	}

	best.Outcomes = outcomes
	switch {
	case best.Valid && !best.FitsTarget:
		best.Message = fmt.Sprintf("valid solution exceeds target: radius %.4f > target %.4f", best.Radius, cfg.Target())
	case !best.Valid:
		best.Message = "no valid packing found: " + best.Message
	}
	s.logger.Info("best result", "mode", best.Mode, "radius", fmt.Sprintf("%.4f", best.Radius), "valid", best.Valid)
	return *best, nil
}

// runStage dispatches one rotation mode and turns a panic into a stage error.
func (s *Solver) runStage(ctx context.Context, cfg model.PackingConfig, mode model.RotationMode) (result model.PackingResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrStageFailed, mode, r)
		}
	}()

	switch mode {
	case model.RotationFixed0:
		obj := newObjective(cfg, s.Settings, make([]float64, len(cfg.Rectangles)))
		return s.run(ctx, cfg, obj, mode, s.seedFor(mode, 0)), nil
	case model.RotationDiscrete90, model.RotationDiscrete45:
		return s.solveDiscrete(ctx, cfg, mode)
	case model.RotationFree:
		obj := newObjective(cfg, s.Settings, nil)
		return s.run(ctx, cfg, obj, mode, s.seedFor(mode, 0)), nil
	}
	return model.PackingResult{}, fmt.Errorf("%w: unknown rotation mode %d", ErrStageFailed, int(mode))
}

// run performs one optimizer run for obj and adjudicates the outcome.
func (s *Solver) run(ctx context.Context, cfg model.PackingConfig, obj objective, mode model.RotationMode, seed int64) model.PackingResult {
	budget := s.Settings.Budget(mode)
	ec := EvolutionConfig{
		PopSize:     budget.PopSize,
		MaxIter:     budget.MaxIter,
		Tol:         budget.Tol,
		MutationMin: s.Settings.MutationMin,
		MutationMax: s.Settings.MutationMax,
		Crossover:   s.Settings.Crossover,
		Polish:      s.Settings.Polish,
	}
	if cfg.HasTarget() {
		// the early-stop callback decides when to finish
		ec.Tol = 0
	}

	de := newDifferentialEvolution(obj.eval, obj.bounds(), ec, seed)
	return s.conclude(cfg, obj, mode, de.minimize(ctx, s.earlyStop(cfg, obj, mode)))
}

// conclude turns an optimizer outcome into a result. The verdict is taken on
// the optimizer's best vector unless Settle is enabled and repairs it.
func (s *Solver) conclude(cfg model.PackingConfig, obj objective, mode model.RotationMode, out evolutionResult) model.PackingResult {
	if s.Settings.Settle && !isValid(obj.penalty(out.X), s.Settings) {
		if x, ok := obj.settle(out.X, s.Settings.SettleTolerance); ok {
			s.logger.Debug("settled near-feasible candidate", "mode", mode,
				"from", fmt.Sprintf("%.4f", out.X[0]), "to", fmt.Sprintf("%.4f", x[0]))
			out.X = x
		}
	}

	result := model.PackingResult{
		Radius:      out.X[0],
		Placements:  obj.placements(out.X),
		Success:     out.Converged,
		Mode:        mode,
		Message:     out.Message,
		Iterations:  out.Iterations,
		Evaluations: out.Evaluations,
	}
	adjudicate(&result, obj, out.X, cfg, s.Settings)
	return result
}

// earlyStop builds the per-generation callback: with a target set, stop as
// soon as the best member is inside the target and penalty-free.
func (s *Solver) earlyStop(cfg model.PackingConfig, obj objective, mode model.RotationMode) IterationFunc {
	return func(p Progress) bool {
		if s.progress != nil {
			s.progress(mode, p)
		}
		if !cfg.HasTarget() {
			return false
		}
		if p.Best[0] > cfg.Target() {
			return false
		}
		return obj.penalty(p.Best) < s.Settings.ValidityEpsilon
	}
}

// solveDiscrete solves one fixed-angle sub-problem per angle combination and
// keeps the best valid one, preferring a result that fits the target.
func (s *Solver) solveDiscrete(ctx context.Context, cfg model.PackingConfig, mode model.RotationMode) (model.PackingResult, error) {
	combos := angleCombinations(cfg.Rectangles, mode.Angles(), s.Settings.DedupeSymmetricAngles)
	s.logger.Debug("enumerating angle combinations", "mode", mode, "count", len(combos))

	results := make([]model.PackingResult, len(combos))
	ran := make([]bool, len(combos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())
	for i, combo := range combos {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: %s combination %v: %v", ErrStageFailed, mode, combo, r)
				}
			}()
			if gctx.Err() != nil {
				return nil
			}
			rad := make([]float64, len(combo))
			for j, d := range combo {
				rad[j] = deg2rad(d)
			}
			obj := newObjective(cfg, s.Settings, rad)
			results[i] = s.run(gctx, cfg, obj, mode, s.seedFor(mode, i))
			ran[i] = true
			s.logger.Debug("sub-problem done", "mode", mode, "angles", combo,
				"radius", fmt.Sprintf("%.4f", results[i].Radius), "valid", results[i].Valid)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.PackingResult{}, err
	}

	attempts := make([]model.Attempt, 0, len(combos))
	evaluations := 0
	bestIdx, fallbackIdx := -1, -1
	for i, r := range results {
		if !ran[i] {
			continue
		}
		evaluations += r.Evaluations
		attempts = append(attempts, model.Attempt{
			Angles:     combos[i],
			Radius:     r.Radius,
			Success:    r.Success,
			Valid:      r.Valid,
			FitsTarget: r.FitsTarget,
			Message:    r.Message,
		})
		if r.Valid {
			if bestIdx < 0 || better(r, results[bestIdx]) {
				bestIdx = i
			}
		} else if fallbackIdx < 0 || r.Radius < results[fallbackIdx].Radius {
			fallbackIdx = i
		}
	}

	var best model.PackingResult
	switch {
	case bestIdx >= 0:
		best = results[bestIdx]
	case fallbackIdx >= 0:
		best = results[fallbackIdx]
		best.Message = "All permutations failed"
	default:
		if ctx.Err() != nil {
			return model.PackingResult{}, fmt.Errorf("%w: %s: %v", ErrStageFailed, mode, ctx.Err())
		}
		return model.PackingResult{}, fmt.Errorf("%w: %s: no angle combinations", ErrStageFailed, mode)
	}
	best.Attempts = attempts
	best.Evaluations = evaluations
	return best, nil
}

// angleCombinations returns the Cartesian product of allowed angles (degrees)
// over all rectangles, last rectangle varying fastest. With dedupe, squares
// only get angles below 90 since a quarter turn maps them onto themselves.
func angleCombinations(rects []model.Rectangle, allowed []float64, dedupe bool) [][]float64 {
	options := make([][]float64, len(rects))
	for i, r := range rects {
		options[i] = allowed
		if dedupe && r.IsSquare() {
			var reduced []float64
			for _, a := range allowed {
				if a < 90 {
					reduced = append(reduced, a)
				}
			}
			options[i] = reduced
		}
	}

	combos := [][]float64{{}}
	for _, opts := range options {
		next := make([][]float64, 0, len(combos)*len(opts))
		for _, prefix := range combos {
			for _, a := range opts {
				c := make([]float64, len(prefix), len(prefix)+1)
				copy(c, prefix)
				next = append(next, append(c, a))
			}
		}
		combos = next
	}
	return combos
}

// seedFor derives a deterministic seed for sub-problem index of mode so
// results do not depend on scheduling.
func (s *Solver) seedFor(mode model.RotationMode, index int) int64 {
	return s.Settings.Seed + int64(mode)*1_000_003 + int64(index)*7_919
}

func (s *Solver) workers() int {
	if s.Settings.Workers > 0 {
		return s.Settings.Workers
	}
	return runtime.NumCPU()
}

func newOutcome(mode model.RotationMode, r model.PackingResult, err error, elapsed time.Duration) model.ModeOutcome {
	o := model.ModeOutcome{Mode: mode, ElapsedMS: elapsed.Milliseconds()}
	if err != nil {
		o.Err = err.Error()
		return o
	}
	o.Radius = r.Radius
	o.Success = r.Success
	o.Valid = r.Valid
	o.FitsTarget = r.FitsTarget
	return o
}

func targetString(cfg model.PackingConfig) string {
	if !cfg.HasTarget() {
		return "none"
	}
	return fmt.Sprintf("%.4f", cfg.Target())
}
