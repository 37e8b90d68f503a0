package solver_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/fisolve/solver"
)

func TestSolve_SqrtTwo(t *testing.T) {
	t.Parallel()

	root, err := solver.Solve(func(x float64) float64 { return x*x - 2 }, 1, 2, 1e-10)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2, root, 1e-8)
}

func TestSolve_Linear(t *testing.T) {
	t.Parallel()

	res, err := solver.SolveWithDiagnostics(func(x float64) float64 { return x - 100 }, 0, 200, 1e-6)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, res.Root, 1e-6)
	assert.LessOrEqual(t, res.Iterations, solver.ClassicMaxIterations)
	assert.Greater(t, res.Iterations, 0)
}

func TestSolve_KnownRoots(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		f           solver.Func
		left, right float64
		want        float64
	}{
		{"cubic", func(x float64) float64 { return x*x*x - x - 2 }, 1, 2, 1.5213797068045676},
		{"cosine", func(x float64) float64 { return math.Cos(x) - x }, 0, 1, 0.7390851332151607},
		{"exp", func(x float64) float64 { return math.Exp(x) - 3 }, -5, 5, math.Log(3)},
		{"reversed bracket", func(x float64) float64 { return x*x - 2 }, 2, 0, math.Sqrt2},
		{"root at left", func(x float64) float64 { return x }, 0, 1, 0},
		{"root at right", func(x float64) float64 { return x - 1 }, 0, 1, 1},
		{"decreasing", func(x float64) float64 { return 1/(1+x) - 0.8 }, 0, 1, 0.25},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			res, err := solver.SolveWithDiagnostics(tc.f, tc.left, tc.right, 1e-12)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, res.Root, 1e-9)
			assert.LessOrEqual(t, math.Abs(res.ErrorEstimate), 0.5*math.Abs(tc.right-tc.left))
		})
	}
}

func TestSolve_InvalidBracket(t *testing.T) {
	t.Parallel()

	root, err := solver.Solve(func(x float64) float64 { return x*x + 1 }, -10, 10, 1e-6)
	require.Error(t, err)
	assert.Zero(t, root)
	assert.True(t, errors.Is(err, solver.ErrInvalidBracket))

	var calErr *solver.CalibrationError
	require.True(t, errors.As(err, &calErr))
	assert.Equal(t, "Solve", calErr.Op)
	assert.Equal(t, []float64{-10, 10}, calErr.Points)
	assert.Equal(t, []float64{101, 101}, calErr.Values)
	assert.Contains(t, err.Error(), "101")
}

func TestSolve_SameSignNeverReturnsRoot(t *testing.T) {
	t.Parallel()

	fns := []solver.Func{
		func(x float64) float64 { return x*x + 1 },
		func(x float64) float64 { return -math.Exp(x) },
		func(x float64) float64 { return x - 1000 },
		func(x float64) float64 { return math.NaN() },
	}
	for i, f := range fns {
		_, err := solver.SolveWithDiagnostics(f, -3, 3, 1e-8)
		assert.ErrorIs(t, err, solver.ErrInvalidBracket, "case %d", i)
	}
}

func TestSolve_InvalidTolerance(t *testing.T) {
	t.Parallel()

	calls := 0
	f := func(x float64) float64 {
		calls++
		return x
	}
	for _, tol := range []float64{0, -1e-6, math.NaN()} {
		_, err := solver.Solve(f, -1, 1, tol)
		require.Error(t, err)
		assert.ErrorIs(t, err, solver.ErrInvalidTolerance)
	}
	assert.Zero(t, calls, "f must not be evaluated before the tolerance is checked")

	_, err := solver.Solve(f, -1, 1, -0.5)
	assert.Contains(t, err.Error(), "-0.5")
}

func TestSolve_Deterministic(t *testing.T) {
	t.Parallel()

	f := func(x float64) float64 { return math.Sin(x) - 0.3*x }
	first, err := solver.SolveWithDiagnostics(f, 1, 4, 1e-13)
	require.NoError(t, err)
	second, err := solver.SolveWithDiagnostics(f, 1, 4, 1e-13)
	require.NoError(t, err)

	assert.Equal(t, math.Float64bits(first.Root), math.Float64bits(second.Root))
	assert.Equal(t, first.Iterations, second.Iterations)
	assert.Equal(t, math.Float64bits(first.ErrorEstimate), math.Float64bits(second.ErrorEstimate))
}

func TestBrent_IterationCap(t *testing.T) {
	t.Parallel()

	f := func(x float64) float64 { return math.Cos(x) - x }

	bestEffort := solver.Brent{AbsTolerance: 1e-15, RelTolerance: 1e-15, MaxIterations: 1, Policy: solver.ReturnBestEffort}
	res, err := bestEffort.Solve(f, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Iterations)
	assert.Greater(t, math.Abs(res.Root-0.7390851332151607), 1e-3)

	strict := bestEffort
	strict.Policy = solver.FailOnExceedingMaxIterations
	res2, err := strict.Solve(f, 0, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, solver.ErrMaxIterations)
	assert.Equal(t, res.Root, res2.Root, "best estimate is still reported")

	unbounded := strict
	unbounded.MaxIterations = 0
	res3, err := unbounded.Solve(f, 0, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.7390851332151607, res3.Root, 1e-12)
}

func TestBrent_SolveExpanding(t *testing.T) {
	t.Parallel()

	f := func(x float64) float64 { return x - 5 }
	s := solver.NewClassic(1e-12)

	res, err := s.SolveExpanding(f, -1, 1, 2, 5)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, res.Root, 1e-10)

	_, err = s.SolveExpanding(f, -1, 1, 2, 1)
	assert.ErrorIs(t, err, solver.ErrInvalidBracket)

	_, err = s.SolveExpanding(func(x float64) float64 { return x*x + 1 }, -1, 1, 0, 3)
	assert.ErrorIs(t, err, solver.ErrInvalidBracket)
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	for _, p := range []solver.Policy{solver.ReturnBestEffort, solver.FailOnExceedingMaxIterations} {
		got, err := solver.ParsePolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	_, err := solver.ParsePolicy("sometimes")
	assert.Error(t, err)
}
