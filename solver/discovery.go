package solver

import "math"

const (
	// DefaultAccuracy is the absolute tolerance of DoSolve.
	DefaultAccuracy = 1e-9
	// ZeroTolerance is how close to zero a probe value must be to be
	// returned without iterating.
	ZeroTolerance = 1e-15
	// DiscoveryMaxIterations caps the Brent loop behind DoSolve.
	DiscoveryMaxIterations = 1000

	discoveryRelTolerance = 1e-20
)

// Discovery solves on an interval that does not have to bracket a root. It
// probes an initial guess and both end points and hands the half interval
// showing a sign change to Brent.
type Discovery struct {
	Brent         Brent
	ZeroTolerance float64
}

// NewDiscovery returns the solver used by DoSolve.
func NewDiscovery(accuracy float64) Discovery {
	return Discovery{
		Brent: Brent{
			AbsTolerance:  accuracy,
			RelTolerance:  discoveryRelTolerance,
			MaxIterations: DiscoveryMaxIterations,
			Policy:        FailOnExceedingMaxIterations,
		},
		ZeroTolerance: ZeroTolerance,
	}
}

// DoSolve solves f(x, changeIndex) = 0 on [min, max] starting from the
// midpoint.
func DoSolve(f IndexedFunc, min, max float64, changeIndex int, accuracy float64) (float64, error) {
	return DoSolveFrom(f, min, max, min+0.5*(max-min), changeIndex, accuracy)
}

// DoSolveFrom solves f(x, changeIndex) = 0 on [min, max] starting from
// initial, which must lie strictly inside the interval.
func DoSolveFrom(f IndexedFunc, min, max, initial float64, changeIndex int, accuracy float64) (float64, error) {
	res, err := NewDiscovery(accuracy).Solve(Bind(f, changeIndex), min, max, initial)
	if err != nil {
		return 0, err
	}
	return res.Root, nil
}

// Solve probes f at initial, min and max in that order. The first probe
// within ZeroTolerance of zero is returned as is. Otherwise [min, initial] is
// solved if it shows a sign change, then [initial, max].
func (d Discovery) Solve(f Func, min, max, initial float64) (Result, error) {
	const op = "DoSolve"
	if err := d.Brent.validate(op); err != nil {
		return Result{}, err
	}
	if !(min < initial && initial < max) {
		return Result{}, &CalibrationError{
			Op:     op,
			Err:    ErrInvalidInterval,
			Points: []float64{min, max, initial},
		}
	}

	yInitial := f(initial)
	if d.nearZero(yInitial) {
		return Result{Root: initial}, nil
	}

	yMin := f(min)
	if d.nearZero(yMin) {
		return Result{Root: min}, nil
	}
	if yInitial*yMin < 0 {
		return d.Brent.iterate(op, f, min, initial, yMin, yInitial)
	}

	yMax := f(max)
	if d.nearZero(yMax) {
		return Result{Root: max}, nil
	}
	if yInitial*yMax < 0 {
		return d.Brent.iterate(op, f, initial, max, yInitial, yMax)
	}

	return Result{}, &CalibrationError{
		Op:     op,
		Err:    ErrNoSignChange,
		Points: []float64{min, max},
		Values: []float64{yMin, yMax},
	}
}

func (d Discovery) nearZero(y float64) bool {
	return math.Abs(y) <= d.ZeroTolerance
}
