package phases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/malloovia/malloovia/errs"
	"github.com/malloovia/malloovia/histogram"
	"github.com/malloovia/malloovia/lp"
	"github.com/malloovia/malloovia/model"
	"github.com/malloovia/malloovia/solution"
	"github.com/malloovia/malloovia/solver"
)

// PhaseIIOptions configures one PhaseII.SolveTimeslot (or SolvePeriod) call.
type PhaseIIOptions struct {
	Solver solver.Options
	// OnDemandPreallocation enables guided mode: a per-class lower bound
	// on on-demand VMs to keep running from a previous timeslot (spec
	// §4.7 guided mode; source's PhaseIIGuided).
	OnDemandPreallocation *solution.ReservedAllocation
}

// PhaseII drives the per-timeslot on-demand decision, with Phase I's
// reserved allocation pinned, caching identical (system, preallocation,
// workload) combinations across timeslots (spec §4.7; grounded on the
// source's PhaseII/PhaseIIGuided and its per-timeslot `_solutions` cache).
type PhaseII struct {
	Problem        model.Problem
	PhaseISolution *solution.SolutionI
	Solver         solver.Solver
	// ReuseReserved, when false, means reserved instances are pinned to
	// the app that bought them rather than shared. Not implemented (spec
	// §7 NotImplemented; §9 Open Question 1): SolveTimeslot rejects this
	// mode immediately.
	ReuseReserved bool

	cache map[string]*solution.SolutionI
}

// NewPhaseII validates that phaseISolution solved to Optimal (the only
// status PhaseII may be driven from) and returns a ready controller with
// ReuseReserved defaulted to true.
func NewPhaseII(problem model.Problem, phaseISolution *solution.SolutionI, slv solver.Solver) (*PhaseII, error) {
	if phaseISolution.SolvingStats.Algorithm.Status != solution.Optimal {
		return nil, errNotOptimalf("phase I solution %q has status %s, PhaseII requires Optimal",
			phaseISolution.ID, phaseISolution.SolvingStats.Algorithm.Status)
	}
	return &PhaseII{
		Problem:        problem,
		PhaseISolution: phaseISolution,
		Solver:         slv,
		ReuseReserved:  true,
		cache:          make(map[string]*solution.SolutionI),
	}, nil
}

// cacheKey identifies a (preallocation, workload tuple) pair; the system is
// implicitly shared by a single PhaseII instance so it is not part of the
// key (grounded on the source's `(system, workloads)` tuple key, narrowed
// since here system never varies within one PhaseII run).
func cacheKey(prealloc *solution.ReservedAllocation, workloads []model.Workload) string {
	var sb strings.Builder
	if prealloc != nil {
		for i, ic := range prealloc.InstanceClasses {
			fmt.Fprintf(&sb, "%s=%g;", ic.ID, prealloc.VMsNumber[i])
		}
	}
	sb.WriteString("|")
	for _, w := range workloads {
		fmt.Fprintf(&sb, "%s:%g;", w.App.ID, w.Values[0])
	}
	return sb.String()
}

// SolveTimeslot solves one timeslot's on-demand decision for workloads
// (one Workload per app, each with a single value), reusing a cached
// result when this exact (preallocation, workload) combination was solved
// before. When the cost-minimizing LP does not solve to Optimal (whatever
// its status), it falls back to the maximize-fulfillment dual and reports
// Overfull on success (spec §4.4, §4.7).
func (p *PhaseII) SolveTimeslot(ctx context.Context, system model.System, workloads []model.Workload, opts PhaseIIOptions) (*solution.SolutionI, error) {
	if !p.ReuseReserved {
		return nil, errs.ErrNotImplemented
	}

	key := cacheKey(opts.OnDemandPreallocation, workloads)
	if cached, ok := p.cache[key]; ok {
		return cached, nil
	}

	hist, err := histogram.Build(system.Apps, workloads)
	if err != nil {
		return nil, err
	}

	lpOpts := lp.Options{
		ReservedPreallocation: p.PhaseISolution.ReservedAllocation,
		OnDemandPreallocation: opts.OnDemandPreallocation,
	}

	creationStart := time.Now()
	builder, err := lp.NewBuilder(system, hist, lp.MinimizeCost, lpOpts)
	if err != nil {
		return nil, err
	}
	problem, err := builder.Build()
	if err != nil {
		return nil, err
	}
	creationTime := time.Since(creationStart).Seconds()

	solvingStart := time.Now()
	result, err := p.Solver.Solve(ctx, problem, opts.Solver)
	solvingTime := time.Since(solvingStart).Seconds()
	if err != nil {
		return nil, err
	}

	status := result.Status
	var allocation *solution.AllocationInfo
	var optimalCost *float64

	if status == solution.Optimal {
		decoded, derr := builder.Decode(status, result.VariableValues)
		if derr != nil {
			return nil, derr
		}
		allocation = decoded.Allocation
		cost := decoded.Cost
		optimalCost = &cost
	} else {
		logrus.Debugf("phase II: timeslot infeasible with status %s, falling back to the dual", status)

		dualBuilder, derr := lp.NewBuilder(system, hist, lp.MaximizeFulfillment, lpOpts)
		if derr != nil {
			return nil, derr
		}
		dualProblem, derr := dualBuilder.Build()
		if derr != nil {
			return nil, derr
		}
		dualStart := time.Now()
		dualResult, derr := p.Solver.Solve(ctx, dualProblem, opts.Solver)
		solvingTime += time.Since(dualStart).Seconds()
		if derr != nil {
			return nil, derr
		}

		if dualResult.Status == solution.Optimal {
			status = solution.Overfull
			decoded, derr := dualBuilder.Decode(solution.Overfull, dualResult.VariableValues)
			if derr != nil {
				return nil, derr
			}
			allocation = decoded.Allocation
			cost := decoded.Cost
			optimalCost = &cost
		} else {
			status = dualResult.Status
		}
	}

	algorithm := solution.MallooviaStats{
		GCDMultiplier: 1.0,
		Status:        status,
		FracGap:       opts.Solver.FracGap,
		MaxSeconds:    opts.Solver.MaxSeconds,
		LowerBound:    result.BestBound,
	}

	sol := &solution.SolutionI{
		ID:                 "sol_for_" + strings.TrimSuffix(strings.ReplaceAll(key, ";", "_"), "_"),
		Problem:            p.Problem,
		ReservedAllocation: p.PhaseISolution.ReservedAllocation,
		Allocation:         allocation,
		SolvingStats: solution.SolvingStats{
			Algorithm:    algorithm,
			CreationTime: creationTime,
			SolvingTime:  solvingTime,
			OptimalCost:  optimalCost,
		},
	}
	p.cache[key] = sol
	return sol, nil
}

// SolvePeriod solves every timeslot predictor yields and aggregates the
// results into a SolutionII (spec §4.7 "Period aggregation"). A nil
// predictor defaults to an OmniscientPredictor over the Problem's own
// workloads.
func (p *PhaseII) SolvePeriod(ctx context.Context, predictor STWPredictor, opts PhaseIIOptions) (*solution.SolutionII, error) {
	system := model.SystemFromProblem(p.Problem)
	if predictor == nil {
		predictor = NewOmniscientPredictor(p.Problem.Workloads)
	}

	var perTimeslot []solution.SolvingStats
	var statuses []solution.Status
	var allocWorkloadKeys [][]float64
	var allocValues [][][]float64
	var allocRepeats []int

	for {
		workloads, ok := predictor.Next(ctx)
		if !ok {
			break
		}
		sol, err := p.SolveTimeslot(ctx, system, workloads, opts)
		if err != nil {
			return nil, err
		}
		perTimeslot = append(perTimeslot, sol.SolvingStats)
		statuses = append(statuses, sol.SolvingStats.Algorithm.Status)

		if sol.SolvingStats.Algorithm.Status.IsOptimalOrOverfull() && sol.Allocation != nil {
			allocWorkloadKeys = append(allocWorkloadKeys, sol.Allocation.WorkloadKeys[0])
			allocValues = append(allocValues, sol.Allocation.Values[0])
			allocRepeats = append(allocRepeats, 1)
		}
	}

	var creationTime, solvingTime, optimalCost float64
	for _, s := range perTimeslot {
		creationTime += s.CreationTime
		solvingTime += s.SolvingTime
		if s.OptimalCost != nil {
			optimalCost += *s.OptimalCost
		}
	}

	var allocation *solution.AllocationInfo
	if len(allocValues) > 0 {
		allocation = &solution.AllocationInfo{
			Values:          allocValues,
			Apps:            system.Apps,
			InstanceClasses: append(append([]model.InstanceClass{}, system.Reserved()...), system.OnDemand()...),
			WorkloadKeys:    allocWorkloadKeys,
			Units:           "vms",
			Repeats:         allocRepeats,
		}
	}

	return &solution.SolutionII{
		ID:          fmt.Sprintf("solution_phase_ii_%s", p.Problem.ID),
		Allocation:  allocation,
		PerTimeslot: perTimeslot,
		GlobalSolvingStats: solution.GlobalSolvingStats{
			CreationTime: creationTime,
			SolvingTime:  solvingTime,
			OptimalCost:  optimalCost,
			Status:       solution.GlobalStatus(statuses),
		},
	}, nil
}
