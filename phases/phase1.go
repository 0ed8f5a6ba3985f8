// Package phases implements the two controllers that drive the solver
// across a whole problem: PhaseI (the long-term reserved-instance
// purchase decision) and PhaseII (the per-timeslot on-demand decision,
// with Phase I's reserved counts pinned) (spec §4.6, §4.7; grounded on
// _examples/original_source/malloovia/phases.py's PhaseI/PhaseII).
package phases

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/malloovia/malloovia/errs"
	"github.com/malloovia/malloovia/histogram"
	"github.com/malloovia/malloovia/lp"
	"github.com/malloovia/malloovia/model"
	"github.com/malloovia/malloovia/solution"
	"github.com/malloovia/malloovia/solver"
)

// PhaseIOptions configures a single PhaseI.Solve call.
type PhaseIOptions struct {
	// Relaxed solves with continuous variables instead of integer ones
	// (spec §8 scenario D relaxed variant).
	Relaxed bool
	Solver  solver.Options
}

// PhaseI drives the long-term reserved-instance decision for a whole
// Problem (spec §4.6).
type PhaseI struct {
	Problem model.Problem
	Solver  solver.Solver
}

// Solve validates the problem, builds the minimize-cost LP over its full
// workload histogram, solves it, and decodes the solution. Phase I does
// not recover from a non-optimal result: SolvingStats.Algorithm.Status
// tells the caller what happened, and ReservedAllocation/Allocation stay
// nil (spec §7 "Phase I does not recover from NotOptimal").
func (p *PhaseI) Solve(ctx context.Context, opts PhaseIOptions) (*solution.SolutionI, error) {
	if err := model.Validate(p.Problem); err != nil {
		return nil, err
	}

	system := model.SystemFromProblem(p.Problem)

	creationStart := time.Now()
	hist, err := histogram.Build(system.Apps, p.Problem.Workloads)
	if err != nil {
		return nil, err
	}
	builder, err := lp.NewBuilder(system, hist, lp.MinimizeCost, lp.Options{Relaxed: opts.Relaxed})
	if err != nil {
		return nil, err
	}
	problem, err := builder.Build()
	if err != nil {
		return nil, err
	}
	creationTime := time.Since(creationStart).Seconds()

	logrus.Debugf("phase I: solving %s (%d vars, %d constraints)", p.Problem.ID, len(problem.Variables), len(problem.Constraints))

	solvingStart := time.Now()
	result, err := p.Solver.Solve(ctx, problem, opts.Solver)
	solvingTime := time.Since(solvingStart).Seconds()
	if err != nil {
		return nil, err
	}

	algorithm := solution.MallooviaStats{
		GCDMultiplier: 1.0,
		Status:        result.Status,
		FracGap:       opts.Solver.FracGap,
		MaxSeconds:    opts.Solver.MaxSeconds,
		LowerBound:    result.BestBound,
	}

	var allocation *solution.AllocationInfo
	var reservedAllocation *solution.ReservedAllocation
	var optimalCost *float64

	if result.Status == solution.Optimal {
		decoded, err := builder.Decode(result.Status, result.VariableValues)
		if err != nil {
			return nil, err
		}
		allocation = decoded.Allocation
		reservedAllocation = decoded.ReservedAllocation
		cost := decoded.Cost
		optimalCost = &cost
	} else {
		logrus.Warnf("phase I: problem %s solved with status %s, no allocation recovered", p.Problem.ID, result.Status)
	}

	return &solution.SolutionI{
		ID:      fmt.Sprintf("solution_i_%s", p.Problem.ID),
		Problem: p.Problem,
		SolvingStats: solution.SolvingStats{
			Algorithm:    algorithm,
			CreationTime: creationTime,
			SolvingTime:  solvingTime,
			OptimalCost:  optimalCost,
		},
		ReservedAllocation: reservedAllocation,
		Allocation:         allocation,
	}, nil
}

// errNotOptimalf wraps errs.ErrNotOptimal with a formatted message, used
// when PhaseII is constructed from a non-optimal PhaseI solution.
func errNotOptimalf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{errs.ErrNotOptimal}, args...)...)
}
