// Package solver finds roots of scalar functions with Brent's method.
//
// Two entry points cover the call sites in the pricing code:
//
//   - Solve / SolveWithDiagnostics take a bracket [left, right] whose end
//     points must already straddle a root. The search stops after 50
//     iterations and returns the best estimate so far.
//   - DoSolve / DoSolveFrom take an interval and an initial guess that need
//     not bracket anything. The guess and the end points are probed first and
//     the half interval that shows a sign change is handed to Brent.
//
// Both are thin wrappers over Brent, a value type that carries the tolerance,
// the iteration cap and the Policy applied when the cap is reached. Callers
// that need a different trade-off build their own Brent or Discovery value.
//
// The function being solved is always passed explicitly; nothing is cached
// between calls, so concurrent solves need no locking.
//
// Every failure is a *CalibrationError. Use errors.Is with ErrInvalidTolerance,
// ErrInvalidBracket, ErrInvalidInterval, ErrNoSignChange or ErrMaxIterations
// to tell them apart.
package solver
