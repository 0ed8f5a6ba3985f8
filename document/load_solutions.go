package document

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/malloovia/malloovia/errs"
	"github.com/malloovia/malloovia/model"
	"github.com/malloovia/malloovia/solution"
)

// LoadSolutions reads a document produced by WriteSolutions back into
// SolutionEntry values, resolving each solution's `problem`/`previous_phase`
// references against the document's own embedded Problems section (spec
// §6). Only the fields WriteSolutions emits are round-tripped; a document
// built by another tool with extra Solutions fields is rejected by
// yaml.v3's KnownFields(true) strictness.
func LoadSolutions(path string) ([]SolutionEntry, error) {
	raw, err := readAndExpand(path)
	if err != nil {
		return nil, err
	}

	var out solutionsOutDoc
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", errs.ErrInvalidProblem, path, err)
	}

	embedded := documentFile{
		Apps: out.Apps, LimitingSets: out.LimitingSets, InstanceClasses: out.InstanceClasses,
		Workloads: out.Workloads, Performances: out.Performances, Problems: out.Problems,
	}
	problems, err := resolveProblems(&embedded, path)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.Problem, len(problems))
	for _, p := range problems {
		byID[p.ID] = p
	}

	phaseIByID := make(map[string]*solution.SolutionI)
	entries := make([]SolutionEntry, 0, len(out.Solutions))
	for _, sd := range out.Solutions {
		problem, ok := byID[sd.Problem]
		if !ok {
			return nil, fmt.Errorf("%w: solution %q references unknown problem %q", errs.ErrInvalidProblem, sd.ID, sd.Problem)
		}
		switch {
		case sd.SolvingStats != nil:
			sol := solutionIFromDoc(sd, problem)
			phaseIByID[sol.ID] = sol
			entries = append(entries, SolutionEntry{Problem: problem, PhaseI: sol})
		case sd.GlobalSolvingStats != nil:
			sol := solutionIIFromDoc(sd, problem)
			entries = append(entries, SolutionEntry{Problem: problem, PhaseI: phaseIByID[sd.PreviousPhase], PhaseII: sol})
		default:
			return nil, fmt.Errorf("%w: solution %q has neither solving_stats nor global_solving_stats", errs.ErrInvalidProblem, sd.ID)
		}
	}
	return entries, nil
}

func solvingStatsFromDoc(d solvingStatsDoc) solution.SolvingStats {
	status, _ := solution.ParseStatus(d.Algorithm.Status)
	return solution.SolvingStats{
		CreationTime: d.CreationTime,
		SolvingTime:  d.SolvingTime,
		OptimalCost:  d.OptimalCost,
		Algorithm: solution.MallooviaStats{
			GCDMultiplier: 1.0,
			Status:        status,
			FracGap:       d.Algorithm.FracGap,
			MaxSeconds:    d.Algorithm.MaxSeconds,
			LowerBound:    d.Algorithm.LowerBound,
		},
	}
}

func allocationFromDoc(d *allocationDoc, problem model.Problem) *solution.AllocationInfo {
	if d == nil {
		return nil
	}
	icByID := make(map[string]model.InstanceClass, len(problem.InstanceClasses))
	for _, ic := range problem.InstanceClasses {
		icByID[ic.ID] = ic
	}
	appByID := make(map[string]model.App, len(problem.Workloads))
	for _, w := range problem.Workloads {
		appByID[w.App.ID] = w.App
	}
	ics := make([]model.InstanceClass, len(d.InstanceClasses))
	for i, id := range d.InstanceClasses {
		ics[i] = icByID[id]
	}
	apps := make([]model.App, len(d.Apps))
	for i, id := range d.Apps {
		apps[i] = appByID[id]
	}
	return &solution.AllocationInfo{
		Values:          d.VMsNumber,
		Apps:            apps,
		InstanceClasses: ics,
		WorkloadKeys:    d.WorkloadTuples,
		Units:           d.Units,
	}
}

func solutionIFromDoc(sd solutionDoc, problem model.Problem) *solution.SolutionI {
	var reserved *solution.ReservedAllocation
	if sd.ReservedAllocation != nil {
		icByID := make(map[string]model.InstanceClass, len(problem.InstanceClasses))
		for _, ic := range problem.InstanceClasses {
			icByID[ic.ID] = ic
		}
		ics := make([]model.InstanceClass, len(sd.ReservedAllocation.InstanceClasses))
		for i, id := range sd.ReservedAllocation.InstanceClasses {
			ics[i] = icByID[id]
		}
		reserved = &solution.ReservedAllocation{InstanceClasses: ics, VMsNumber: sd.ReservedAllocation.VMsNumber}
	}
	return &solution.SolutionI{
		ID: sd.ID, Problem: problem,
		SolvingStats:       solvingStatsFromDoc(*sd.SolvingStats),
		ReservedAllocation: reserved,
		Allocation:         allocationFromDoc(sd.Allocation, problem),
	}
}

func solutionIIFromDoc(sd solutionDoc, problem model.Problem) *solution.SolutionII {
	perTimeslot := make([]solution.SolvingStats, len(sd.PerTimeslot))
	for i, s := range sd.PerTimeslot {
		perTimeslot[i] = solvingStatsFromDoc(s)
	}
	status, _ := solution.ParseStatus(sd.GlobalSolvingStats.Status)
	alloc := allocationFromDoc(sd.Allocation, problem)
	return &solution.SolutionII{
		ID: sd.ID,
		GlobalSolvingStats: solution.GlobalSolvingStats{
			CreationTime: sd.GlobalSolvingStats.CreationTime,
			SolvingTime:  sd.GlobalSolvingStats.SolvingTime,
			OptimalCost:  sd.GlobalSolvingStats.OptimalCost,
			Status:       status,
		},
		Allocation:  alloc,
		PerTimeslot: perTimeslot,
	}
}
