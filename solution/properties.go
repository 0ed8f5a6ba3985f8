package solution

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/malloovia/malloovia/model"
)

// coverageTolerance is the absolute tolerance used when checking that
// delivered performance meets requested workload (spec §8 property 2).
const coverageTolerance = 1e-6

// CheckCoverage verifies the performance-coverage invariant (spec §8
// property 2): for every histogram key and every app, the aggregated
// delivered performance is >= the requested workload, within tolerance.
// perf(appIdx, icIdx) must return the instance class's per-timeslot
// performance for that app.
func CheckCoverage(alloc *AllocationInfo, perf func(appIdx, icIdx int) float64) error {
	for w, window := range alloc.Values {
		for appIdx, row := range window {
			var delivered float64
			for icIdx, vms := range row {
				delivered += vms * perf(appIdx, icIdx)
			}
			want := 0.0
			if alloc.WorkloadKeys != nil && w < len(alloc.WorkloadKeys) {
				want = alloc.WorkloadKeys[w][appIdx]
			}
			if delivered < want && !floats.EqualWithinAbs(delivered, want, coverageTolerance) {
				return fmt.Errorf("coverage violated at window %d app %d: delivered %v < requested %v",
					w, appIdx, delivered, want)
			}
		}
	}
	return nil
}

// CheckReservedInvariance verifies spec §8 property 3: the per-reserved-
// class sum over apps is identical across all histogram keys. reservedIdx
// lists the indices (into alloc.InstanceClasses) that are reserved.
func CheckReservedInvariance(alloc *AllocationInfo, reservedIdx []int) error {
	if len(alloc.Values) == 0 {
		return nil
	}
	reference := make([]float64, len(reservedIdx))
	for j, icIdx := range reservedIdx {
		for _, row := range alloc.Values[0] {
			reference[j] += row[icIdx]
		}
	}
	for w := 1; w < len(alloc.Values); w++ {
		for j, icIdx := range reservedIdx {
			var sum float64
			for _, row := range alloc.Values[w] {
				sum += row[icIdx]
			}
			if !floats.EqualWithinAbs(sum, reference[j], coverageTolerance) {
				return fmt.Errorf("reserved allocation for instance class index %d differs across histogram keys: %v vs %v",
					icIdx, sum, reference[j])
			}
		}
	}
	return nil
}

// CheckLimitingSetCaps verifies spec §8 property 4: for each active
// LimitingSet, VM and core totals in the solution are <= the declared
// caps, for every window.
func CheckLimitingSetCaps(alloc *AllocationInfo, limitingSets []model.LimitingSet) error {
	for w, window := range alloc.Values {
		for _, ls := range limitingSets {
			var vmTotal float64
			var coreTotal float64
			for _, row := range window {
				for icIdx, ic := range alloc.InstanceClasses {
					if !belongsTo(ic, ls) {
						continue
					}
					vmTotal += row[icIdx]
					coreTotal += row[icIdx] * float64(ic.Cores)
				}
			}
			if !ls.VMsUnlimited() && vmTotal > float64(ls.MaxVMs)+coverageTolerance {
				return fmt.Errorf("limiting set %q exceeds max VMs at window %d: %v > %d", ls.ID, w, vmTotal, ls.MaxVMs)
			}
			if !ls.CoresUnlimited() && coreTotal > float64(ls.MaxCores)+coverageTolerance {
				return fmt.Errorf("limiting set %q exceeds max cores at window %d: %v > %d", ls.ID, w, coreTotal, ls.MaxCores)
			}
		}
	}
	return nil
}

func belongsTo(ic model.InstanceClass, ls model.LimitingSet) bool {
	for _, l := range ic.LimitingSets {
		if l.ID == ls.ID {
			return true
		}
	}
	return false
}
