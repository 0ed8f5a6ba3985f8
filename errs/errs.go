// Package errs defines the sentinel error kinds surfaced by the Malloovia
// core, so callers can distinguish them with errors.Is/errors.As instead of
// parsing messages.
package errs

import "errors"

// Sentinel errors matching the taxonomy in spec §7. Wrap with fmt.Errorf
// and %w to add context; callers should compare with errors.Is.
var (
	// ErrInvalidProblem is returned when a Problem fails validation:
	// mismatched workload lengths or a missing (instance class, app)
	// performance entry.
	ErrInvalidProblem = errors.New("invalid problem")

	// ErrInconsistentWorkloadLengths is returned by histogram.Build when the
	// supplied workloads do not all share the same length.
	ErrInconsistentWorkloadLengths = errors.New("inconsistent workload lengths")

	// ErrInvalidTimeUnit is returned when a time unit code is not one of
	// s, m, h, d, y.
	ErrInvalidTimeUnit = errors.New("invalid time unit")

	// ErrNotOptimal is returned when cost or allocation is read from an LP
	// that did not solve to optimality.
	ErrNotOptimal = errors.New("lp solution is not optimal")

	// ErrInternalInvariantViolated is returned when a decoded solution
	// violates an invariant that should be impossible for a well-formed LP,
	// such as reserved counts differing across histogram keys.
	ErrInternalInvariantViolated = errors.New("internal invariant violated")

	// ErrSolverError is returned when the external solver process fails.
	// Solver errors are not retried.
	ErrSolverError = errors.New("solver error")

	// ErrNotImplemented is returned for supported-but-unimplemented surface,
	// namely Phase II invoked with ReuseReserved=false.
	ErrNotImplemented = errors.New("not implemented")
)
