package phases

import (
	"context"
	"testing"

	"github.com/malloovia/malloovia/lp"
	"github.com/malloovia/malloovia/model"
)

// scenarioBModelProblem mirrors spec §8 scenario B: two apps, a shared
// reserved class (price 7) and a shared on-demand class (price 10),
// identical performance (10 rph / 500 rph), a 20-VM limiting set cap, 4
// timeslots. Apps appear in Workloads in [app0, app1] order, which is also
// the order PhaseI's histogram assigns to windows (spec §4.3 "Ordering and
// determinism").
func scenarioBModelProblem() model.Problem {
	app0 := model.App{ID: "app0", Name: "app0"}
	app1 := model.App{ID: "app1", Name: "app1"}
	ls := model.LimitingSet{ID: "ls0", Name: "ls0", MaxVMs: 20}
	reserved := model.InstanceClass{ID: "m1.res", LimitingSets: []model.LimitingSet{ls}, Price: 7, PriceTimeUnit: model.Hour, Cores: 1, IsReserved: true}
	demand := model.InstanceClass{ID: "m1.dem", LimitingSets: []model.LimitingSet{ls}, Price: 10, PriceTimeUnit: model.Hour, Cores: 1}

	perf := model.NewPerformanceTable(model.Hour)
	perf.Set(reserved, app0, 10)
	perf.Set(reserved, app1, 500)
	perf.Set(demand, app0, 10)
	perf.Set(demand, app1, 500)

	return model.Problem{
		ID:              "scenario-b",
		InstanceClasses: []model.InstanceClass{reserved, demand},
		Performances:    perf,
		Workloads: []model.Workload{
			{App: app0, TimeUnit: model.Hour, Values: []float64{30, 32, 30, 30}},
			{App: app1, TimeUnit: model.Hour, Values: []float64{1003, 1200, 1194, 1003}},
		},
	}
}

// scenarioBFakeSolver reproduces the hand-verified optimum derived for
// scenario B: 3 reserved VMs per app (6 total) and exactly 1 on-demand VM
// for app0 in the single timeslot where demand (32) outstrips 3 reserved
// VMs' capacity (30).
func scenarioBFakeSolver() *fakeSolver {
	return &fakeSolver{value: func(kind lp.VarKind, appIdx, windowIdx int) float64 {
		if kind == lp.Reserved {
			return 3
		}
		if appIdx == 0 && windowIdx == 1 {
			return 1
		}
		return 0
	}}
}

func TestPhaseI_Solve_ScenarioB(t *testing.T) {
	problem := scenarioBModelProblem()
	phase := &PhaseI{Problem: problem, Solver: scenarioBFakeSolver()}

	sol, err := phase.Solve(context.Background(), PhaseIOptions{})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.SolvingStats.Algorithm.Status.String() != "Optimal" {
		t.Fatalf("status = %v, want Optimal", sol.SolvingStats.Algorithm.Status)
	}
	if sol.SolvingStats.OptimalCost == nil || *sol.SolvingStats.OptimalCost != 178 {
		t.Errorf("cost = %v, want 178", sol.SolvingStats.OptimalCost)
	}
	reservedIC := model.SystemFromProblem(problem).Reserved()[0]
	if got := sol.ReservedAllocation.VMsFor(reservedIC); got != 6 {
		t.Errorf("reserved total = %g, want 6", got)
	}
	if sol.Allocation == nil || sol.Allocation.NumWindows() != 3 {
		t.Fatalf("expected a 3-window allocation, got %+v", sol.Allocation)
	}
}

func TestPhaseI_Solve_InvalidProblem(t *testing.T) {
	problem := scenarioBModelProblem()
	problem.Workloads[1].Values = problem.Workloads[1].Values[:1]
	phase := &PhaseI{Problem: problem, Solver: scenarioBFakeSolver()}

	if _, err := phase.Solve(context.Background(), PhaseIOptions{}); err == nil {
		t.Error("expected an error for an inconsistent problem")
	}
}
