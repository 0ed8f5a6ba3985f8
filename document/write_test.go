package document

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malloovia/malloovia/model"
	"github.com/malloovia/malloovia/solution"
)

func scenarioBProblem() model.Problem {
	app0 := model.App{ID: "app0", Name: "app0"}
	app1 := model.App{ID: "app1", Name: "app1"}
	ls := model.LimitingSet{ID: "ls0", MaxVMs: 20}
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

func TestWriteLoadSolutions_RoundTripsSolutionI(t *testing.T) {
	problem := scenarioBProblem()
	cost := 178.0
	fracGap := 0.01
	sol := &solution.SolutionI{
		ID:      "solution_i_scenario-b",
		Problem: problem,
		SolvingStats: solution.SolvingStats{
			CreationTime: 0.01, SolvingTime: 0.2, OptimalCost: &cost,
			Algorithm: solution.MallooviaStats{Status: solution.Optimal, FracGap: &fracGap, GCDMultiplier: 1.0},
		},
		ReservedAllocation: &solution.ReservedAllocation{
			InstanceClasses: []model.InstanceClass{problem.InstanceClasses[0]},
			VMsNumber:       []float64{6},
		},
		Allocation: &solution.AllocationInfo{
			Values:          [][][]float64{{{3, 0}, {3, 1}}},
			Apps:            []model.App{problem.Workloads[0].App, problem.Workloads[1].App},
			InstanceClasses: problem.InstanceClasses,
			WorkloadKeys:    [][]float64{{32, 1200}},
			Units:           "vms",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSolutions(&buf, []SolutionEntry{{Problem: problem, PhaseI: sol}}))
	assert.Contains(t, buf.String(), "scenario-b")
	assert.Contains(t, buf.String(), "Optimal")

	path := writeTempFile(t, t.TempDir(), "out.yaml", buf.String())
	entries, err := LoadSolutions(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.Equal(t, "scenario-b", got.Problem.ID)
	require.NotNil(t, got.PhaseI)
	assert.Equal(t, solution.Optimal, got.PhaseI.SolvingStats.Algorithm.Status)
	require.NotNil(t, got.PhaseI.SolvingStats.OptimalCost)
	assert.Equal(t, 178.0, *got.PhaseI.SolvingStats.OptimalCost)
	require.NotNil(t, got.PhaseI.ReservedAllocation)
	assert.Equal(t, 6.0, got.PhaseI.ReservedAllocation.VMsFor(problem.InstanceClasses[0]))
}

func TestWriteLoadSolutions_RoundTripsSolutionII(t *testing.T) {
	problem := scenarioBProblem()
	phaseICost := 178.0
	phaseI := &solution.SolutionI{
		ID: "solution_i_scenario-b", Problem: problem,
		SolvingStats: solution.SolvingStats{
			OptimalCost: &phaseICost,
			Algorithm:   solution.MallooviaStats{Status: solution.Optimal, GCDMultiplier: 1.0},
		},
	}
	timeslotCost := 52.0
	phaseII := &solution.SolutionII{
		ID: "solution_ii_scenario-b",
		GlobalSolvingStats: solution.GlobalSolvingStats{
			CreationTime: 0.001, SolvingTime: 0.05, OptimalCost: 178, Status: solution.Optimal,
		},
		PerTimeslot: []solution.SolvingStats{
			{OptimalCost: &timeslotCost, Algorithm: solution.MallooviaStats{Status: solution.Optimal, GCDMultiplier: 1.0}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSolutions(&buf, []SolutionEntry{{Problem: problem, PhaseI: phaseI, PhaseII: phaseII}}))

	path := writeTempFile(t, t.TempDir(), "out.yaml", buf.String())
	entries, err := LoadSolutions(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var sawPhaseII bool
	for _, e := range entries {
		if e.PhaseII != nil {
			sawPhaseII = true
			assert.Equal(t, solution.Optimal, e.PhaseII.GlobalSolvingStats.Status)
			assert.Equal(t, 178.0, e.PhaseII.GlobalSolvingStats.OptimalCost)
			require.Len(t, e.PhaseII.PerTimeslot, 1)
		}
	}
	assert.True(t, sawPhaseII, "expected one entry carrying the Phase II solution")
}
