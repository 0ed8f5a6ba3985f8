package phases

import (
	"context"

	"github.com/malloovia/malloovia/lp"
	"github.com/malloovia/malloovia/solution"
	"github.com/malloovia/malloovia/solver"
)

// fakeSolver stands in for an external MILP solver in tests: it never
// shells out, it just returns canned variable values for every call,
// indexed by (Kind, AppIdx, WindowIdx) so a single fake can drive many
// distinct lp.Problem instances (Phase I's full-histogram LP, Phase II's
// per-timeslot LPs, and dual fallbacks) built from the same small system.
type fakeSolver struct {
	// value returns the value for one variable given its Kind, AppIdx and
	// WindowIdx (WindowIdx is -1 for Reserved variables).
	value func(kind lp.VarKind, appIdx, windowIdx int) float64
	// status, if set, overrides the default Optimal outcome.
	status solution.Status
}

func (f *fakeSolver) Solve(ctx context.Context, problem *lp.Problem, opts solver.Options) (solver.Result, error) {
	status := f.status
	if status == solution.Unsolved {
		status = solution.Optimal
	}
	if status != solution.Optimal {
		return solver.Result{Status: status}, nil
	}
	values := make(map[string]float64, len(problem.Variables))
	for _, v := range problem.Variables {
		values[v.Name] = f.value(v.Kind, v.AppIdx, v.WindowIdx)
	}
	return solver.Result{Status: solution.Optimal, VariableValues: values}, nil
}
