package phases

import (
	"context"
	"testing"

	"github.com/malloovia/malloovia/lp"
	"github.com/malloovia/malloovia/model"
	"github.com/malloovia/malloovia/solution"
	"github.com/malloovia/malloovia/solver"
)

func scenarioBPhaseISolution(t *testing.T) *solution.SolutionI {
	t.Helper()
	problem := scenarioBModelProblem()
	phase := &PhaseI{Problem: problem, Solver: scenarioBFakeSolver()}
	sol, err := phase.Solve(context.Background(), PhaseIOptions{})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	return sol
}

func TestPhaseII_SolveTimeslot_PeakWindow(t *testing.T) {
	problem := scenarioBModelProblem()
	phaseI := scenarioBPhaseISolution(t)
	system := model.SystemFromProblem(problem)

	fake := &fakeSolver{value: func(kind lp.VarKind, appIdx, windowIdx int) float64 {
		if kind == lp.Reserved {
			return 3 // 3+3 = 6, matching Phase I's pinned total
		}
		if appIdx == 0 {
			return 1
		}
		return 0
	}}

	phaseII, err := NewPhaseII(problem, phaseI, fake)
	if err != nil {
		t.Fatalf("NewPhaseII: %v", err)
	}

	peakWorkload := []model.Workload{
		{App: system.Apps[0], TimeUnit: model.Hour, Values: []float64{32}},
		{App: system.Apps[1], TimeUnit: model.Hour, Values: []float64{1200}},
	}

	sol, err := phaseII.SolveTimeslot(context.Background(), system, peakWorkload, PhaseIIOptions{})
	if err != nil {
		t.Fatalf("SolveTimeslot: %v", err)
	}
	if sol.SolvingStats.Algorithm.Status != solution.Optimal {
		t.Fatalf("status = %v, want Optimal", sol.SolvingStats.Algorithm.Status)
	}
	if sol.SolvingStats.OptimalCost == nil || *sol.SolvingStats.OptimalCost != 52 {
		t.Errorf("cost = %v, want 52 (42 reserved share + 10 on-demand)", sol.SolvingStats.OptimalCost)
	}

	again, err := phaseII.SolveTimeslot(context.Background(), system, peakWorkload, PhaseIIOptions{})
	if err != nil {
		t.Fatalf("SolveTimeslot (cached): %v", err)
	}
	if again != sol {
		t.Error("expected the second call with identical workloads to return the cached *SolutionI")
	}
}

func TestPhaseII_SolveTimeslot_ReuseReservedFalse(t *testing.T) {
	problem := scenarioBModelProblem()
	phaseI := scenarioBPhaseISolution(t)
	system := model.SystemFromProblem(problem)

	phaseII, err := NewPhaseII(problem, phaseI, scenarioBFakeSolver())
	if err != nil {
		t.Fatalf("NewPhaseII: %v", err)
	}
	phaseII.ReuseReserved = false

	workloads := []model.Workload{
		{App: system.Apps[0], TimeUnit: model.Hour, Values: []float64{30}},
		{App: system.Apps[1], TimeUnit: model.Hour, Values: []float64{1003}},
	}
	if _, err := phaseII.SolveTimeslot(context.Background(), system, workloads, PhaseIIOptions{}); err == nil {
		t.Error("expected ErrNotImplemented when ReuseReserved is false")
	}
}

// directionAwareSolver reports Infeasible for the cost-minimizing primal and
// a canned optimal result for the maximize-fulfillment dual, exercising
// PhaseII's overfull fallback (spec §4.4, §4.7).
type directionAwareSolver struct {
	dualValue func(kind lp.VarKind, appIdx, windowIdx int) float64
}

func (d *directionAwareSolver) Solve(ctx context.Context, problem *lp.Problem, opts solver.Options) (solver.Result, error) {
	if problem.Direction == lp.Minimize {
		return solver.Result{Status: solution.Infeasible}, nil
	}
	values := make(map[string]float64, len(problem.Variables))
	for _, v := range problem.Variables {
		values[v.Name] = d.dualValue(v.Kind, v.AppIdx, v.WindowIdx)
	}
	return solver.Result{Status: solution.Optimal, VariableValues: values}, nil
}

func TestPhaseII_SolveTimeslot_OverfullFallback(t *testing.T) {
	problem := scenarioBModelProblem()
	phaseI := scenarioBPhaseISolution(t)
	system := model.SystemFromProblem(problem)

	// The fake plays back scenario F's published dual split (spec §8):
	// reserved 4+2 (still summing to Phase I's pinned 6) and on-demand 20
	// for app0, 0 for app1. These values are returned as-is; this fixture's
	// single 20-VM limiting set would not admit 26 VMs, so the test checks
	// the fallback and decoding path, not the dual's optimum.
	dual := &directionAwareSolver{dualValue: func(kind lp.VarKind, appIdx, windowIdx int) float64 {
		if kind == lp.Reserved {
			if appIdx == 0 {
				return 4
			}
			return 2
		}
		if appIdx == 0 {
			return 20
		}
		return 0
	}}

	phaseII, err := NewPhaseII(problem, phaseI, dual)
	if err != nil {
		t.Fatalf("NewPhaseII: %v", err)
	}

	overloaded := []model.Workload{
		{App: system.Apps[0], TimeUnit: model.Hour, Values: []float64{270}},
		{App: system.Apps[1], TimeUnit: model.Hour, Values: []float64{1200}},
	}
	sol, err := phaseII.SolveTimeslot(context.Background(), system, overloaded, PhaseIIOptions{})
	if err != nil {
		t.Fatalf("SolveTimeslot: %v", err)
	}
	if sol.SolvingStats.Algorithm.Status != solution.Overfull {
		t.Fatalf("status = %v, want Overfull", sol.SolvingStats.Algorithm.Status)
	}
	if sol.SolvingStats.OptimalCost == nil || *sol.SolvingStats.OptimalCost != 242 {
		t.Errorf("cost = %v, want 242 (6 reserved * 7 + 20 on-demand * 10)", sol.SolvingStats.OptimalCost)
	}
	if sol.Allocation == nil {
		t.Fatal("expected an allocation to be recovered from the dual's optimal result")
	}
	app0 := sol.Allocation.Values[0][0]
	if app0[0] != 4 {
		t.Errorf("app0 reserved = %g, want 4", app0[0])
	}
	if app0[1] != 20 {
		t.Errorf("app0 on-demand = %g, want 20", app0[1])
	}
}

// sequentialSolver plays back scenario B's known per-timeslot optimum: the
// reserved split is always 3+3, and the second timeslot solved (the
// [32,1200] peak, per scenarioBModelProblem's workload order) is the only
// one needing a unit of on-demand for app0. Each per-timeslot LP has its
// own single-key histogram, so WindowIdx is always 0 and cannot be used to
// tell timeslots apart — hence tracking call order instead.
type sequentialSolver struct{ calls int }

func (s *sequentialSolver) Solve(ctx context.Context, problem *lp.Problem, opts solver.Options) (solver.Result, error) {
	isPeak := s.calls == 1
	s.calls++
	values := make(map[string]float64, len(problem.Variables))
	for _, v := range problem.Variables {
		if v.Kind == lp.Reserved {
			values[v.Name] = 3
			continue
		}
		if v.AppIdx == 0 && isPeak {
			values[v.Name] = 1
		} else {
			values[v.Name] = 0
		}
	}
	return solver.Result{Status: solution.Optimal, VariableValues: values}, nil
}

func TestPhaseII_SolvePeriod_AggregatesGlobalStatus(t *testing.T) {
	problem := scenarioBModelProblem()
	phaseI := scenarioBPhaseISolution(t)

	phaseII, err := NewPhaseII(problem, phaseI, &sequentialSolver{})
	if err != nil {
		t.Fatalf("NewPhaseII: %v", err)
	}

	sol, err := phaseII.SolvePeriod(context.Background(), nil, PhaseIIOptions{})
	if err != nil {
		t.Fatalf("SolvePeriod: %v", err)
	}
	if sol.GlobalSolvingStats.Status != solution.Optimal {
		t.Fatalf("global status = %v, want Optimal", sol.GlobalSolvingStats.Status)
	}
	if len(sol.PerTimeslot) != 4 {
		t.Fatalf("expected 4 per-timeslot entries, got %d", len(sol.PerTimeslot))
	}
	if sol.GlobalSolvingStats.OptimalCost != 178 {
		t.Errorf("aggregate cost = %g, want 178 (spec scenario E)", sol.GlobalSolvingStats.OptimalCost)
	}
}
