// Package solver implements the stable solve(lp, options) -> result
// operation set (spec §4.5, §6) on top of an external CBC-compatible MILP
// solver binary, invoked as a subprocess.
package solver

import (
	"context"

	"github.com/malloovia/malloovia/lp"
	"github.com/malloovia/malloovia/solution"
)

// Options configures a solver invocation (spec §6 "solver operation set").
type Options struct {
	// FracGap is the relative optimality gap at which the solver may stop
	// early and report the best integer solution found so far.
	FracGap *float64
	// MaxSeconds caps wall-clock solving time.
	MaxSeconds *float64
	// Threads requests solver-internal parallelism; 0 leaves it at the
	// solver's default.
	Threads int
	// KeepTempFiles disables cleanup of the LP/solution/log files written
	// for this invocation, for debugging (spec §5 "persistence is opt-in
	// via a debug flag").
	KeepTempFiles bool
}

// Result is the outcome of one solve call (spec §6): status is always
// present; Objective is present only when status is Optimal;
// VariableValues holds whatever values the solver's solution file listed,
// whatever the status; BestBound is present when the solver's log reported
// a bound.
type Result struct {
	Status         solution.Status
	Objective      *float64
	VariableValues map[string]float64
	BestBound      *float64
}

// Solver is the stable operation set every concrete backend implements.
type Solver interface {
	Solve(ctx context.Context, problem *lp.Problem, opts Options) (Result, error)
}
