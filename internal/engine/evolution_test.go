package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sphere(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += (v - 1) * (v - 1)
	}
	return s
}

// shifted keeps the optimum value away from zero so the relative
// tolerance can be met.
func shifted(x []float64) float64 {
	return sphere(x) + 10
}

func testEvolutionConfig() EvolutionConfig {
	return EvolutionConfig{
		PopSize:     15,
		MaxIter:     500,
		Tol:         0.01,
		MutationMin: 0.5,
		MutationMax: 1.0,
		Crossover:   0.7,
		Polish:      true,
	}
}

func cube(dim int, lo, hi float64) [][2]float64 {
	b := make([][2]float64, dim)
	for i := range b {
		b[i] = [2]float64{lo, hi}
	}
	return b
}

func TestDifferentialEvolution_MinimizesSphere(t *testing.T) {
	de := newDifferentialEvolution(shifted, cube(3, -5, 5), testEvolutionConfig(), 42)
	res := de.minimize(context.Background(), nil)

	require.Len(t, res.X, 3)
	for i, v := range res.X {
		assert.InDelta(t, 1, v, 1e-3, "component %d", i)
	}
	assert.InDelta(t, 10, res.F, 1e-6)
	assert.True(t, res.Converged)
	assert.Equal(t, msgConverged, res.Message)
	assert.Greater(t, res.Evaluations, 45, "evaluations include the initial population")
}

func TestDifferentialEvolution_ZeroTolRunsFullBudget(t *testing.T) {
	cfg := testEvolutionConfig()
	cfg.Tol = 0
	cfg.MaxIter = 40
	de := newDifferentialEvolution(sphere, cube(2, -5, 5), cfg, 1)
	res := de.minimize(context.Background(), nil)

	assert.False(t, res.Converged)
	assert.Equal(t, 40, res.Iterations)
	assert.Equal(t, msgMaxIter, res.Message)
}

func TestDifferentialEvolution_CallbackStops(t *testing.T) {
	cfg := testEvolutionConfig()
	cfg.Tol = 0
	de := newDifferentialEvolution(sphere, cube(2, -5, 5), cfg, 7)

	var seen []int
	res := de.minimize(context.Background(), func(p Progress) bool {
		seen = append(seen, p.Iteration)
		assert.Equal(t, cfg.MaxIter, p.MaxIter)
		assert.Len(t, p.Best, 2)
		return p.Iteration == 3
	})

	assert.Equal(t, []int{1, 2, 3}, seen)
	assert.Equal(t, 3, res.Iterations)
	assert.True(t, res.Stopped)
	assert.False(t, res.Converged)
	assert.Equal(t, msgCallbackStop, res.Message)
}

func TestDifferentialEvolution_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	de := newDifferentialEvolution(sphere, cube(2, -5, 5), testEvolutionConfig(), 3)
	res := de.minimize(ctx, nil)

	assert.Equal(t, 1, res.Iterations)
	assert.True(t, res.Stopped)
	assert.Equal(t, msgCancelled, res.Message)
	require.Len(t, res.X, 2, "the best member is still reported")
}

func TestDifferentialEvolution_SameSeedSameResult(t *testing.T) {
	run := func() evolutionResult {
		de := newDifferentialEvolution(shifted, cube(4, -3, 3), testEvolutionConfig(), 99)
		return de.minimize(context.Background(), nil)
	}
	a, b := run(), run()

	assert.Equal(t, a.X, b.X)
	assert.Equal(t, a.Iterations, b.Iterations)
	assert.Equal(t, a.Evaluations, b.Evaluations)
}

func TestDifferentialEvolution_StaysInBounds(t *testing.T) {
	bounds := [][2]float64{{2, 3}, {-1, -0.5}}
	cfg := testEvolutionConfig()
	cfg.Polish = false

	outside := 0
	fn := func(x []float64) float64 {
		for i, v := range x {
			if v < bounds[i][0] || v > bounds[i][1] {
				outside++
			}
		}
		return sphere(x)
	}
	de := newDifferentialEvolution(fn, bounds, cfg, 5)
	res := de.minimize(context.Background(), nil)

	assert.Zero(t, outside, "candidates are never evaluated outside the box")
	assert.InDelta(t, 2, res.X[0], 5e-2)
	assert.InDelta(t, -0.5, res.X[1], 5e-2)
}

func TestInitPopulation_LatinHypercube(t *testing.T) {
	cfg := testEvolutionConfig()
	cfg.PopSize = 4
	de := newDifferentialEvolution(sphere, cube(3, 0, 1), cfg, 11)
	de.initPopulation()

	n := len(de.population)
	require.Equal(t, 12, n)
	for j := 0; j < 3; j++ {
		hits := make([]int, n)
		for _, member := range de.population {
			hits[int(member[j]*float64(n))]++
		}
		for seg, h := range hits {
			if h != 1 {
				t.Errorf("dimension %d segment %d has %d members, want 1", j, seg, h)
			}
		}
	}

	for i := 1; i < n; i++ {
		assert.LessOrEqual(t, de.energies[0], de.energies[i], "best member is first")
	}
}

func TestInitPopulation_MinimumSize(t *testing.T) {
	cfg := testEvolutionConfig()
	cfg.PopSize = 1
	de := newDifferentialEvolution(sphere, cube(2, 0, 1), cfg, 1)
	de.initPopulation()
	assert.Len(t, de.population, 5)
}

func TestPickTwo_Distinct(t *testing.T) {
	cfg := testEvolutionConfig()
	cfg.PopSize = 1
	de := newDifferentialEvolution(sphere, cube(2, 0, 1), cfg, 8)
	de.initPopulation()

	for i := 0; i < 1000; i++ {
		exclude := i % len(de.population)
		a, b := de.pickTwo(exclude)
		if a == b || a == exclude || b == exclude {
			t.Fatalf("pickTwo(%d) = %d, %d", exclude, a, b)
		}
	}
}

func TestConverged(t *testing.T) {
	de := newDifferentialEvolution(sphere, cube(1, 0, 1), testEvolutionConfig(), 1)

	de.energies = []float64{10, 10.01, 9.99, 10}
	assert.True(t, de.converged())

	de.energies = []float64{1, 5, 9, 2}
	assert.False(t, de.converged())

	de.energies = []float64{0, 0, 0}
	assert.True(t, de.converged(), "identical energies at zero have zero spread")
}
