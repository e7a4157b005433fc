package engine

import (
	"math"
	"testing"

	"github.com/piwi3910/circlepack/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoBars() model.PackingConfig {
	return model.PackingConfig{
		Rectangles: []model.Rectangle{
			model.NewRectangle("A", 20, 10),
			model.NewRectangle("B", 20, 10),
		},
		PaddingInner: 1,
		PaddingOuter: 1,
	}
}

func TestObjective_Dimensions(t *testing.T) {
	cfg := twoBars()
	s := model.DefaultSolverSettings()

	fixed := newObjective(cfg, s, []float64{0, 0})
	assert.Equal(t, 5, fixed.dim())
	assert.Len(t, fixed.bounds(), 5)

	free := newObjective(cfg, s, nil)
	assert.Equal(t, 7, free.dim())
	b := free.bounds()
	require.Len(t, b, 7)
	for _, i := range []int{3, 6} {
		assert.Equal(t, 0.0, b[i][0])
		assert.Less(t, b[i][1], math.Pi)
		assert.InDelta(t, math.Pi, b[i][1], 1e-12)
		assert.Less(t, rad2deg(b[i][1]), 180.0)
	}
}

func TestObjective_MaxDim(t *testing.T) {
	cfg := twoBars()
	o := newObjective(cfg, model.DefaultSolverSettings(), nil)

	// (20 + 20) * 1.5 + 2 * 1 + 1
	assert.InDelta(t, 63.0, o.maxDim(), 1e-12)
	b := o.bounds()
	assert.Equal(t, [2]float64{0, 63}, b[0])
	assert.Equal(t, [2]float64{-63, 63}, b[1])
}

func TestObjective_FeasibleLayoutScoresRadius(t *testing.T) {
	cfg := twoBars()
	o := newObjective(cfg, model.DefaultSolverSettings(), []float64{0, 0})

	// stacked bars, 1mm apart, outer pad 1
	x := []float64{16, 0, 5.5, 0, -5.5}
	assert.Equal(t, 16.0, o.eval(x))
	assert.Equal(t, 0.0, o.penalty(x))
}

func TestObjective_PenalisesOverlapAndEscape(t *testing.T) {
	cfg := twoBars()
	o := newObjective(cfg, model.DefaultSolverSettings(), []float64{0, 0})

	overlapping := []float64{30, 0, 1, 0, -1}
	assert.Greater(t, o.penalty(overlapping), 1.0)

	escaping := []float64{5, 0, 5.5, 0, -5.5}
	assert.Greater(t, o.penalty(escaping), 1.0)
}

func TestObjective_Deterministic(t *testing.T) {
	cfg := twoBars()
	o := newObjective(cfg, model.DefaultSolverSettings(), nil)
	x := []float64{14.2, 0.3, 5.1, 0.2, -0.4, -5.6, 1.9}

	first := o.eval(x)
	for i := 0; i < 10; i++ {
		if got := o.eval(x); math.Float64bits(got) != math.Float64bits(first) {
			t.Fatalf("evaluation %d = %v, want bit-identical %v", i, got, first)
		}
	}
}

func TestObjective_PlacementsInDegrees(t *testing.T) {
	cfg := twoBars()
	o := newObjective(cfg, model.DefaultSolverSettings(), []float64{0, deg2rad(90)})

	p := o.placements([]float64{20, 1, 2, 3, 4})
	require.Len(t, p, 2)
	assert.Equal(t, 1.0, p[0].X)
	assert.Equal(t, 2.0, p[0].Y)
	assert.Equal(t, 0.0, p[0].Angle)
	assert.InDelta(t, 90, p[1].Angle, 1e-12)
	assert.Equal(t, "B", p[1].Rectangle.Label)
}

func TestObjective_SettleRepairsNearMiss(t *testing.T) {
	cfg := twoBars()
	s := model.DefaultSolverSettings()
	o := newObjective(cfg, s, []float64{0, 0})

	// 0.0005 too close and slightly too small
	x := []float64{15.499, 0, 5.49975, 0, -5.49975}
	require.False(t, isValid(o.penalty(x), s))

	y, ok := o.settle(x, s.SettleTolerance)
	require.True(t, ok)
	assert.Less(t, o.penalty(y), 1e-12, "settled layout has no residual penalty")
	assert.InDelta(t, 15.5, y[0], 1e-3)
	assert.Equal(t, 15.499, x[0], "input vector is not modified")
}

func TestObjective_SettleRejectsFarMiss(t *testing.T) {
	cfg := twoBars()
	s := model.DefaultSolverSettings()
	o := newObjective(cfg, s, []float64{0, 0})

	_, ok := o.settle([]float64{10, 0, 1, 0, -1}, s.SettleTolerance)
	assert.False(t, ok)
}

func TestEvaluate(t *testing.T) {
	cfg := twoBars()
	s := model.DefaultSolverSettings()
	placements := []model.Placement{
		{Rectangle: cfg.Rectangles[0], X: 0, Y: 5.5},
		{Rectangle: cfg.Rectangles[1], X: 0, Y: -5.5},
	}

	ev := Evaluate(cfg, s, placements, 16)
	assert.True(t, ev.Valid)
	assert.True(t, ev.FitsTarget)
	assert.Equal(t, 0.0, ev.Penalty)
	assert.Equal(t, 16.0, ev.Objective)

	cfg.SetTarget(15)
	ev = Evaluate(cfg, s, placements, 16)
	assert.True(t, ev.Valid)
	assert.False(t, ev.FitsTarget)

	ev = Evaluate(cfg, s, placements, 12)
	assert.False(t, ev.Valid)
	assert.Greater(t, ev.Containment, 0.0)
	assert.Equal(t, 0.0, ev.Overlap)
}
