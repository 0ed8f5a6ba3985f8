package solution

import (
	"github.com/malloovia/malloovia/model"
)

// MallooviaStats stores data related to the Malloovia solver run that
// produced a SolvingStats, independent of the surrounding phase (spec
// §7, §9 Open Question 3).
type MallooviaStats struct {
	// GCD records whether GCD-based quantization was requested. The
	// transform itself is not implemented (spec §9 Open Question 3); this
	// field is kept so callers that inspect it do not break.
	GCD bool
	// GCDMultiplier is always 1.0: no quantization transform is applied.
	GCDMultiplier float64

	Status Status

	// FracGap is the relative optimality tolerance passed to the solver,
	// if any.
	FracGap *float64
	// MaxSeconds is the wall-clock cap passed to the solver, if any.
	MaxSeconds *float64
	// LowerBound is the best bound reported by the solver when it aborted
	// before finding (or proving) an optimal solution.
	LowerBound *float64
}

// SolvingStats stores the statistics gathered from solving Phase I, or one
// single timeslot of Phase II (spec §4.6, §4.7).
type SolvingStats struct {
	Algorithm    MallooviaStats
	CreationTime float64 // seconds to build the LP
	SolvingTime  float64 // seconds to solve the LP
	OptimalCost  *float64
}

// GlobalSolvingStats aggregates SolvingStats across every timeslot of a
// Phase II run (spec §4.7 Period aggregation).
type GlobalSolvingStats struct {
	CreationTime float64
	SolvingTime  float64
	OptimalCost  float64
	Status       Status
}

// ReservedAllocation stores the number of reserved instances to allocate
// for the whole reservation period, one non-negative number per reserved
// instance class (spec §3).
type ReservedAllocation struct {
	InstanceClasses []model.InstanceClass
	VMsNumber       []float64
}

// VMsFor returns the reserved count for the given instance class, or 0 if
// it is not part of this allocation.
func (r ReservedAllocation) VMsFor(ic model.InstanceClass) float64 {
	for i, c := range r.InstanceClasses {
		if c.ID == ic.ID {
			return r.VMsNumber[i]
		}
	}
	return 0
}

// AllocationInfo is a three-dimensional non-negative array
// Values[w][app][ic], with side tables naming each axis (spec §3).
type AllocationInfo struct {
	// Values[w][app][ic] = vms | cost | rph, depending on Units.
	Values [][][]float64

	Apps            []model.App
	InstanceClasses []model.InstanceClass // reserved first, then on-demand
	// WorkloadKeys names the workload tuple each index of the first axis
	// corresponds to. In a Phase II allocation each entry is one
	// timeslot's own tuple; only Optimal/Overfull timeslots have an entry.
	WorkloadKeys [][]float64

	Units string // "vms", "cost", or "rph"

	// Repeats[i], when present, is the histogram count for WorkloadKeys[i]
	// (used for histogram-keyed allocations). Empty or all-ones for
	// per-timeslot allocations.
	Repeats []int
}

// NumWindows returns the size of the first (workload/timeslot) axis.
func (a *AllocationInfo) NumWindows() int { return len(a.Values) }

// SolutionI is the result of Phase I: the long-term reserved allocation,
// its cost, and the full histogram-keyed allocation (spec §4.6).
type SolutionI struct {
	ID                 string
	Problem            model.Problem
	SolvingStats       SolvingStats
	ReservedAllocation *ReservedAllocation
	Allocation         *AllocationInfo
}

// SolutionII is the result of Phase II: a per-timeslot allocation and the
// aggregated global stats across the whole period (spec §4.7).
type SolutionII struct {
	ID                 string
	GlobalSolvingStats GlobalSolvingStats
	Allocation         *AllocationInfo
	// PerTimeslot holds one entry per timeslot processed, in order, with
	// the per-timeslot status and cost (Allocation itself only carries
	// optimal/overfull timeslots' numbers, so this array is what lets
	// callers see infeasible timeslots too).
	PerTimeslot []SolvingStats
}

// GlobalStatus derives the overall Phase II status from a sequence of
// per-timeslot statuses, per spec §4.7:
//
//	all optimal -> Optimal
//	any infeasible -> Infeasible
//	else any overfull -> Overfull
//	else -> Unknown
func GlobalStatus(statuses []Status) Status {
	allOptimal := true
	anyInfeasible := false
	anyOverfull := false
	for _, s := range statuses {
		if s != Optimal {
			allOptimal = false
		}
		if s == Infeasible || s == IntegerInfeasible {
			anyInfeasible = true
		}
		if s == Overfull {
			anyOverfull = true
		}
	}
	switch {
	case allOptimal:
		return Optimal
	case anyInfeasible:
		return Infeasible
	case anyOverfull:
		return Overfull
	default:
		return Unknown
	}
}
