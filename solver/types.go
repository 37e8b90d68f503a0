package solver

import (
	"errors"
	"fmt"
	"strings"
)

// Func is a function of one variable. Implementations must be free of side
// effects: the solver calls it repeatedly and does not memoize.
type Func func(x float64) float64

// IndexedFunc evaluates a function of several unknowns that share one
// evaluator. changeIndex selects the unknown currently being solved for.
type IndexedFunc func(x float64, changeIndex int) float64

// Bind fixes the change index of f.
func Bind(f IndexedFunc, changeIndex int) Func {
	return func(x float64) float64 {
		return f(x, changeIndex)
	}
}

// Policy decides what happens when Brent reaches its iteration cap.
type Policy int

const (
	// ReturnBestEffort returns the current estimate without an error.
	ReturnBestEffort Policy = iota
	// FailOnExceedingMaxIterations returns ErrMaxIterations together with the
	// current estimate.
	FailOnExceedingMaxIterations
)

func (p Policy) String() string {
	switch p {
	case ReturnBestEffort:
		return "best-effort"
	case FailOnExceedingMaxIterations:
		return "fail"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy accepts the names produced by Policy.String.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "best-effort", "besteffort", "return-best-effort":
		return ReturnBestEffort, nil
	case "fail", "fail-on-max-iterations":
		return FailOnExceedingMaxIterations, nil
	default:
		return ReturnBestEffort, fmt.Errorf("unknown solver policy %q", s)
	}
}

// Result is a solved root plus diagnostics.
type Result struct {
	Root float64
	// Iterations counts passes through the Brent loop. Fast paths that return
	// a probe point directly report zero.
	Iterations int
	// ErrorEstimate is the last half bracket width 0.5*(c-b).
	ErrorEstimate float64
}

var (
	// ErrInvalidTolerance is returned for a tolerance that is not strictly
	// positive.
	ErrInvalidTolerance = errors.New("tolerance must be positive")
	// ErrInvalidBracket is returned when f(left) and f(right) share a sign.
	ErrInvalidBracket = errors.New("invalid starting bracket: function must be positive on one end and negative on the other")
	// ErrInvalidInterval is returned when min < initial < max does not hold.
	ErrInvalidInterval = errors.New("endpoints do not specify an interval")
	// ErrNoSignChange is returned when neither half of a discovery interval
	// brackets a root.
	ErrNoSignChange = errors.New("function values at endpoints do not have different signs")
	// ErrMaxIterations is returned under FailOnExceedingMaxIterations.
	ErrMaxIterations = errors.New("maximum iterations exceeded")
)

// CalibrationError reports a failed solve together with the probe points and
// function values that led to it.
type CalibrationError struct {
	Op     string
	Err    error
	Points []float64
	Values []float64
}

func (e *CalibrationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	if len(e.Points) > 0 {
		fmt.Fprintf(&b, ": points %v", e.Points)
	}
	if len(e.Values) > 0 {
		fmt.Fprintf(&b, ", values %v", e.Values)
	}
	return b.String()
}

func (e *CalibrationError) Unwrap() error {
	return e.Err
}
