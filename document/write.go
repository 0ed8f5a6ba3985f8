package document

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/malloovia/malloovia/model"
	"github.com/malloovia/malloovia/solution"
)

// SolutionEntry pairs one solved problem with its Phase I result and, if
// Phase II was also run, the Phase II result that built on it (spec §6,
// §4.6, §4.7). cmd/solve.go assembles one of these per problem it solves.
type SolutionEntry struct {
	Problem model.Problem
	PhaseI  *solution.SolutionI
	PhaseII *solution.SolutionII
}

// WriteSolutions writes a combined YAML document containing every problem
// referenced by entries (deduplicated by ID) followed by a Solutions list,
// mirroring the source's solutions_to_yaml (spec §6).
func WriteSolutions(w io.Writer, entries []SolutionEntry) error {
	seen := make(map[string]bool)
	var problems []model.Problem
	addProblem := func(p model.Problem) {
		if !seen[p.ID] {
			seen[p.ID] = true
			problems = append(problems, p)
		}
	}
	for _, e := range entries {
		if e.PhaseI != nil && e.PhaseI.Problem.ID != "" {
			addProblem(e.PhaseI.Problem)
		}
		addProblem(e.Problem)
	}

	out := problemsToDoc(problems)
	out.Solutions = make([]solutionDoc, 0, len(entries))
	for _, e := range entries {
		if e.PhaseI != nil {
			out.Solutions = append(out.Solutions, solutionIToDoc(e.PhaseI))
		}
		if e.PhaseII != nil {
			previous := ""
			if e.PhaseI != nil {
				previous = e.PhaseI.ID
			}
			out.Solutions = append(out.Solutions, solutionIIToDoc(e.PhaseII, e.Problem.ID, previous))
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("writing solutions document: %w", err)
	}
	return nil
}

// problemsToDoc converts a deduplicated-by-ID slice of problems into a
// documentFile's entity collections, inverse of resolveProblems.
func problemsToDoc(problems []model.Problem) solutionsOutDoc {
	var out solutionsOutDoc

	appSeen := make(map[string]bool)
	icSeen := make(map[string]bool)
	lsSeen := make(map[string]bool)
	workloadSeen := make(map[string]bool)

	for _, p := range problems {
		for _, w := range p.Workloads {
			if !appSeen[w.App.ID] {
				appSeen[w.App.ID] = true
				out.Apps = append(out.Apps, appDoc{ID: w.App.ID, Name: w.App.Name})
			}
			if !workloadSeen[w.App.ID] {
				workloadSeen[w.App.ID] = true
				out.Workloads = append(out.Workloads, workloadDoc{
					App: w.App.ID, TimeUnit: string(w.TimeUnit), Values: w.Values,
				})
			}
		}
		for _, ic := range p.InstanceClasses {
			for _, ls := range ic.LimitingSets {
				if !lsSeen[ls.ID] {
					lsSeen[ls.ID] = true
					out.LimitingSets = append(out.LimitingSets, limitingSetDoc{
						ID: ls.ID, Name: ls.Name, MaxVMs: ls.MaxVMs, MaxCores: ls.MaxCores,
					})
				}
			}
			if !icSeen[ic.ID] {
				icSeen[ic.ID] = true
				lsIDs := make([]string, len(ic.LimitingSets))
				for i, ls := range ic.LimitingSets {
					lsIDs[i] = ls.ID
				}
				out.InstanceClasses = append(out.InstanceClasses, instanceClassDoc{
					ID: ic.ID, Name: ic.Name, LimitingSets: lsIDs, MaxVMs: ic.MaxVMs,
					Price: ic.Price, TimeUnit: string(ic.PriceTimeUnit), Cores: ic.Cores,
					Reserved: ic.IsReserved, Private: ic.IsPrivate,
				})
			}
		}

		perfID := p.ID + "_perf"
		entries := make([]performanceEntryDoc, 0, len(p.Performances.Values))
		for key, value := range p.Performances.Values {
			entries = append(entries, performanceEntryDoc{
				InstanceClass: key.InstanceClassID, App: key.AppID, Value: value,
			})
		}
		out.Performances = append(out.Performances, performanceSetDoc{
			ID: perfID, TimeUnit: string(p.Performances.PerfTimeUnit), Values: entries,
		})

		icIDs := make([]string, len(p.InstanceClasses))
		for i, ic := range p.InstanceClasses {
			icIDs[i] = ic.ID
		}
		wIDs := make([]string, len(p.Workloads))
		for i, w := range p.Workloads {
			wIDs[i] = w.App.ID
		}
		out.Problems = append(out.Problems, problemDoc{
			ID: p.ID, Name: p.Name, Description: p.Description,
			InstanceClasses: icIDs, Workloads: wIDs, Performances: perfID,
		})
	}
	return out
}

func solvingStatsToDoc(s solution.SolvingStats) solvingStatsDoc {
	return solvingStatsDoc{
		CreationTime: s.CreationTime,
		SolvingTime:  s.SolvingTime,
		OptimalCost:  s.OptimalCost,
		Algorithm: malooviaStatsDoc{
			Status:     s.Algorithm.Status.String(),
			FracGap:    s.Algorithm.FracGap,
			MaxSeconds: s.Algorithm.MaxSeconds,
			LowerBound: s.Algorithm.LowerBound,
		},
	}
}

func allocationToDoc(a *solution.AllocationInfo) *allocationDoc {
	if a == nil {
		return nil
	}
	ics := make([]string, len(a.InstanceClasses))
	for i, ic := range a.InstanceClasses {
		ics[i] = ic.ID
	}
	apps := make([]string, len(a.Apps))
	for i, app := range a.Apps {
		apps[i] = app.ID
	}
	return &allocationDoc{
		InstanceClasses: ics, Apps: apps,
		WorkloadTuples: a.WorkloadKeys, Units: a.Units,
		VMsNumber: a.Values,
	}
}

func solutionIToDoc(sol *solution.SolutionI) solutionDoc {
	var reserved *reservedAllocationDoc
	if sol.ReservedAllocation != nil {
		ids := make([]string, len(sol.ReservedAllocation.InstanceClasses))
		for i, ic := range sol.ReservedAllocation.InstanceClasses {
			ids[i] = ic.ID
		}
		reserved = &reservedAllocationDoc{InstanceClasses: ids, VMsNumber: sol.ReservedAllocation.VMsNumber}
	}
	stats := solvingStatsToDoc(sol.SolvingStats)
	return solutionDoc{
		ID: sol.ID, Problem: sol.Problem.ID,
		SolvingStats:       &stats,
		ReservedAllocation: reserved,
		Allocation:         allocationToDoc(sol.Allocation),
	}
}

func solutionIIToDoc(sol *solution.SolutionII, problemID, previousPhaseID string) solutionDoc {
	perTimeslot := make([]solvingStatsDoc, len(sol.PerTimeslot))
	for i, s := range sol.PerTimeslot {
		perTimeslot[i] = solvingStatsToDoc(s)
	}
	global := globalSolvingStatsDoc{
		CreationTime: sol.GlobalSolvingStats.CreationTime,
		SolvingTime:  sol.GlobalSolvingStats.SolvingTime,
		OptimalCost:  sol.GlobalSolvingStats.OptimalCost,
		Status:       sol.GlobalSolvingStats.Status.String(),
	}
	return solutionDoc{
		ID: sol.ID, Problem: problemID, PreviousPhase: previousPhaseID,
		GlobalSolvingStats: &global,
		PerTimeslot:        perTimeslot,
		Allocation:         allocationToDoc(sol.Allocation),
	}
}
