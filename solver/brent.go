package solver

import (
	"errors"
	"fmt"
	"math"
)

const (
	// ClassicMaxIterations is the iteration cap of Solve.
	ClassicMaxIterations = 50
	// DefaultTolerance is the tolerance pricing code uses when it has no
	// better choice.
	DefaultTolerance = 1e-6
	// DefaultGrowth is the bracket growth factor of SolveExpanding.
	DefaultGrowth = 1.6
)

// Brent is a configurable Brent root finder.
//
// The stopping tolerance at iterate b is 2*RelTolerance*|b| + AbsTolerance.
// MaxIterations <= 0 removes the cap; Policy decides what reaching the cap
// means. The zero value is not usable: AbsTolerance must be positive.
type Brent struct {
	AbsTolerance  float64
	RelTolerance  float64
	MaxIterations int
	Policy        Policy
}

// NewClassic returns the solver used by Solve: tolerance for both tolerance
// terms, a cap of 50 iterations and best-effort truncation.
func NewClassic(tolerance float64) Brent {
	return Brent{
		AbsTolerance:  tolerance,
		RelTolerance:  tolerance,
		MaxIterations: ClassicMaxIterations,
		Policy:        ReturnBestEffort,
	}
}

// Solve finds x in [left, right] with f(x) = 0. f(left) and f(right) must not
// share a sign.
func Solve(f Func, left, right, tolerance float64) (float64, error) {
	res, err := SolveWithDiagnostics(f, left, right, tolerance)
	if err != nil {
		return 0, err
	}
	return res.Root, nil
}

// SolveWithDiagnostics is Solve returning the iteration count and the last
// half bracket width as well.
//
// After 50 iterations the current estimate is returned without error even if
// it is not within tolerance.
func SolveWithDiagnostics(f Func, left, right, tolerance float64) (Result, error) {
	return NewClassic(tolerance).Solve(f, left, right)
}

// Solve runs Brent's method on the bracket [left, right].
func (s Brent) Solve(f Func, left, right float64) (Result, error) {
	const op = "Solve"
	if err := s.validate(op); err != nil {
		return Result{}, err
	}

	fa := f(left)
	fb := f(right)
	if math.IsNaN(fa) || math.IsNaN(fb) || fa*fb > 0 {
		return Result{}, &CalibrationError{
			Op:     op,
			Err:    ErrInvalidBracket,
			Points: []float64{left, right},
			Values: []float64{fa, fb},
		}
	}
	return s.iterate(op, f, left, right, fa, fb)
}

// SolveExpanding calls Solve and, while the bracket precondition fails, widens
// [left, right] about its centre by growth and tries again, at most attempts
// more times. Any other failure is returned immediately.
func (s Brent) SolveExpanding(f Func, left, right, growth float64, attempts int) (Result, error) {
	if !(growth > 1) {
		growth = DefaultGrowth
	}

	var lastErr error
	for i := 0; i <= attempts; i++ {
		res, err := s.Solve(f, left, right)
		if err == nil || !errors.Is(err, ErrInvalidBracket) {
			return res, err
		}
		lastErr = err

		mid := 0.5 * (left + right)
		half := 0.5 * (right - left) * growth
		left, right = mid-half, mid+half
	}
	return Result{}, lastErr
}

func (s Brent) validate(op string) error {
	if !(s.AbsTolerance > 0) {
		return &CalibrationError{
			Op:     op,
			Err:    fmt.Errorf("%w: received %g", ErrInvalidTolerance, s.AbsTolerance),
			Points: []float64{s.AbsTolerance},
		}
	}
	if s.RelTolerance < 0 || math.IsNaN(s.RelTolerance) {
		return &CalibrationError{
			Op:     op,
			Err:    fmt.Errorf("%w: relative tolerance %g", ErrInvalidTolerance, s.RelTolerance),
			Points: []float64{s.RelTolerance},
		}
	}
	return nil
}

// iterate is the Brent loop proper (Brent, "Algorithms for Minimization
// without Derivatives", ch. 4). a and b must bracket a root with fa = f(a)
// and fb = f(b).
//
//	b  current best estimate
//	a  previous estimate
//	c  far end of the bracket, f(b) and f(c) have opposite signs
func (s Brent) iterate(op string, f Func, a, b, fa, fb float64) (Result, error) {
	c, fc := a, fa
	d := b - a
	e := d

	iter := 0
	for {
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}
		iter++

		tol := 2*s.RelTolerance*math.Abs(b) + s.AbsTolerance
		m := 0.5 * (c - b)
		if math.Abs(m) <= tol || fb == 0 {
			return Result{Root: b, Iterations: iter, ErrorEstimate: m}, nil
		}

		if math.Abs(e) < tol || math.Abs(fa) <= math.Abs(fb) {
			// bisection
			d, e = m, m
		} else {
			sr := fb / fa
			var p, q float64
			// a == c is an exact test on purpose.
			if a == c {
				// linear interpolation
				p = 2 * m * sr
				q = 1 - sr
			} else {
				// inverse quadratic interpolation
				q = fa / fc
				r := fb / fc
				p = sr * (2*m*q*(q-r) - (b-a)*(r-1))
				q = (q - 1) * (r - 1) * (sr - 1)
			}
			if p > 0 {
				q = -q
			} else {
				p = -p
			}

			prev := e
			e = d
			if 2*p < 3*m*q-math.Abs(tol*q) && p < math.Abs(0.5*prev*q) {
				d = p / q
			} else {
				d, e = m, m
			}
		}

		a, fa = b, fb
		switch {
		case math.Abs(d) > tol:
			b += d
		case m > 0:
			b += tol
		default:
			b -= tol
		}

		if s.MaxIterations > 0 && iter >= s.MaxIterations {
			res := Result{Root: b, Iterations: iter, ErrorEstimate: m}
			if s.Policy == FailOnExceedingMaxIterations {
				return res, &CalibrationError{
					Op:     op,
					Err:    fmt.Errorf("%w (%d)", ErrMaxIterations, s.MaxIterations),
					Points: []float64{b, c},
					Values: []float64{fa, fc},
				}
			}
			return res, nil
		}

		fb = f(b)
		if (fb > 0 && fc > 0) || (fb <= 0 && fc <= 0) {
			c, fc = a, fa
			d = b - a
			e = d
		}
	}
}
