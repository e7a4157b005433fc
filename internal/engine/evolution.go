package engine

import (
	"context"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// Optimizer status messages.
const (
	msgConverged    = "Optimization terminated successfully."
	msgMaxIter      = "Maximum number of iterations has been exceeded."
	msgCallbackStop = "callback function requested stop early"
	msgCancelled    = "search cancelled"
)

// EvolutionConfig holds parameters for the differential evolution optimizer.
type EvolutionConfig struct {
	PopSize     int     // Population multiplier: members = max(5, PopSize*dim)
	MaxIter     int     // Generations
	Tol         float64 // Relative tolerance on energy spread; 0 disables it
	MutationMin float64 // Differential weight is drawn per generation from [MutationMin, MutationMax)
	MutationMax float64
	Crossover   float64 // Binomial crossover probability
	Polish      bool    // Refine the best member with Nelder-Mead
}

// Progress is passed to the per-generation callback. It belongs to one
// optimizer run and is never shared between runs.
type Progress struct {
	Iteration int
	MaxIter   int
	Best      []float64 // Current best vector; must not be modified
	BestValue float64
}

// IterationFunc is polled after every generation. Returning true stops the
// run and keeps the best member found so far.
type IterationFunc func(p Progress) bool

// evolutionResult is what one optimizer run returns.
type evolutionResult struct {
	X           []float64
	F           float64
	Converged   bool // Stopped on its own tolerance
	Stopped     bool // Stopped by the callback or the context
	Message     string
	Iterations  int
	Evaluations int
}

// differentialEvolution is a box-constrained best1bin/binomial differential
// evolution minimizer. Parameters are kept in the unit cube and scaled to
// bounds on evaluation.
type differentialEvolution struct {
	fn     func([]float64) float64
	lower  []float64
	span   []float64
	config EvolutionConfig
	rng    *rand.Rand

	population [][]float64
	energies   []float64
	nfev       int
	scratch    []float64
}

func newDifferentialEvolution(fn func([]float64) float64, bounds [][2]float64, config EvolutionConfig, seed int64) *differentialEvolution {
	de := &differentialEvolution{
		fn:      fn,
		lower:   make([]float64, len(bounds)),
		span:    make([]float64, len(bounds)),
		config:  config,
		rng:     rand.New(rand.NewSource(seed)),
		scratch: make([]float64, len(bounds)),
	}
	for i, b := range bounds {
		de.lower[i] = b[0]
		de.span[i] = b[1] - b[0]
	}
	return de
}

func (de *differentialEvolution) dim() int { return len(de.lower) }

// scale maps a unit-cube vector into dst in parameter space.
func (de *differentialEvolution) scale(dst, unit []float64) {
	for i, u := range unit {
		dst[i] = de.lower[i] + u*de.span[i]
	}
}

func (de *differentialEvolution) evaluate(unit []float64) float64 {
	de.scale(de.scratch, unit)
	de.nfev++
	return de.fn(de.scratch)
}

// minimize runs the evolution loop until convergence, the iteration limit,
// a stop request from callback, or context cancellation.
func (de *differentialEvolution) minimize(ctx context.Context, callback IterationFunc) evolutionResult {
	de.initPopulation()

	res := evolutionResult{Message: msgMaxIter}
	for gen := 1; gen <= de.config.MaxIter; gen++ {
		de.generation()
		res.Iterations = gen

		if callback != nil {
			best := make([]float64, de.dim())
			de.scale(best, de.population[0])
			if callback(Progress{Iteration: gen, MaxIter: de.config.MaxIter, Best: best, BestValue: de.energies[0]}) {
				res.Stopped = true
				res.Message = msgCallbackStop
				break
			}
		}
		if ctx.Err() != nil {
			res.Stopped = true
			res.Message = msgCancelled
			break
		}
		if de.config.Tol > 0 && de.converged() {
			res.Converged = true
			res.Message = msgConverged
			break
		}
	}

	res.X = make([]float64, de.dim())
	de.scale(res.X, de.population[0])
	res.F = de.energies[0]

	if de.config.Polish && !res.Stopped {
		de.polish(&res)
	}
	res.Evaluations = de.nfev
	return res
}

// initPopulation fills the population with a Latin hypercube sample and
// moves the lowest energy member to index 0.
func (de *differentialEvolution) initPopulation() {
	dim := de.dim()
	n := de.config.PopSize * dim
	if n < 5 {
		n = 5
	}
	seg := 1.0 / float64(n)

	de.population = make([][]float64, n)
	for i := range de.population {
		de.population[i] = make([]float64, dim)
	}
	for j := 0; j < dim; j++ {
		perm := de.rng.Perm(n)
		for i := 0; i < n; i++ {
			de.population[perm[i]][j] = seg*de.rng.Float64() + float64(i)*seg
		}
	}

	de.energies = make([]float64, n)
	for i, member := range de.population {
		de.energies[i] = de.evaluate(member)
	}

	best := floats.MinIdx(de.energies)
	de.population[0], de.population[best] = de.population[best], de.population[0]
	de.energies[0], de.energies[best] = de.energies[best], de.energies[0]
}

// generation performs one sweep with immediate updating: an improving trial
// replaces its target at once and also becomes the best member when it beats it.
func (de *differentialEvolution) generation() {
	f := de.config.MutationMin + de.rng.Float64()*(de.config.MutationMax-de.config.MutationMin)
	trial := make([]float64, de.dim())
	for i := range de.population {
		de.mutate(trial, i, f)
		energy := de.evaluate(trial)
		if energy <= de.energies[i] {
			copy(de.population[i], trial)
			de.energies[i] = energy
			if energy <= de.energies[0] {
				copy(de.population[0], trial)
				de.energies[0] = energy
			}
		}
	}
}

// mutate writes the best1bin trial for candidate into trial.
func (de *differentialEvolution) mutate(trial []float64, candidate int, f float64) {
	r0, r1 := de.pickTwo(candidate)
	best := de.population[0]
	a, b := de.population[r0], de.population[r1]
	src := de.population[candidate]
	fill := de.rng.Intn(de.dim())

	for j := range trial {
		if j == fill || de.rng.Float64() < de.config.Crossover {
			trial[j] = best[j] + f*(a[j]-b[j])
		} else {
			trial[j] = src[j]
		}
		// out of bounds parameters are redrawn uniformly
		if trial[j] < 0 || trial[j] > 1 {
			trial[j] = de.rng.Float64()
		}
	}
}

// pickTwo returns two distinct member indices different from exclude.
func (de *differentialEvolution) pickTwo(exclude int) (int, int) {
	n := len(de.population)
	r0 := de.rng.Intn(n - 1)
	if r0 >= exclude {
		r0++
	}
	r1 := de.rng.Intn(n - 2)
	lo, hi := exclude, r0
	if lo > hi {
		lo, hi = hi, lo
	}
	if r1 >= lo {
		r1++
	}
	if r1 >= hi {
		r1++
	}
	return r0, r1
}

// converged reports whether the spread of energies is within Tol of their mean.
func (de *differentialEvolution) converged() bool {
	mean, std := stat.MeanStdDev(de.energies, nil)
	n := float64(len(de.energies))
	// population standard deviation
	std *= math.Sqrt((n - 1) / n)
	return std <= de.config.Tol*math.Abs(mean)
}

// polish refines res with Nelder-Mead and keeps the refinement only when it
// lowers the objective. Parameters are clamped to the bounds.
func (de *differentialEvolution) polish(res *evolutionResult) {
	clamped := make([]float64, de.dim())
	clamp := func(x []float64) []float64 {
		for i, v := range x {
			clamped[i] = math.Min(math.Max(v, de.lower[i]), de.lower[i]+de.span[i])
		}
		return clamped
	}
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			de.nfev++
			return de.fn(clamp(x))
		},
	}
	settings := &optimize.Settings{
		FuncEvaluations: 200 * de.dim(),
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-10,
			Relative:   1e-10,
			Iterations: 50,
		},
	}
	// The best location is returned alongside any error.
	polished, _ := optimize.Minimize(problem, res.X, settings, &optimize.NelderMead{})
	if polished == nil || len(polished.X) != de.dim() {
		return
	}
	x := append([]float64(nil), clamp(polished.X)...)
	if fx := de.fn(x); fx < res.F {
		res.X = x
		res.F = fx
	}
}
