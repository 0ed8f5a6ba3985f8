package model

import (
	"fmt"

	"github.com/malloovia/malloovia/errs"
)

// Validate performs the sanity checks spec §4.6 step 1 requires before any
// LP is built: all workloads share the same length, and the performance
// table is total over every (instance class, app) pair the problem uses.
func Validate(p Problem) error {
	if len(p.Workloads) == 0 {
		return fmt.Errorf("%w: problem has no workloads", errs.ErrInvalidProblem)
	}
	length := len(p.Workloads[0].Values)
	for _, w := range p.Workloads {
		if len(w.Values) != length {
			return fmt.Errorf("%w: workload %q has length %d, expected %d",
				errs.ErrInvalidProblem, w.App.ID, len(w.Values), length)
		}
	}
	if p.Performances == nil {
		return fmt.Errorf("%w: problem has no performance table", errs.ErrInvalidProblem)
	}
	for _, ic := range p.InstanceClasses {
		for _, w := range p.Workloads {
			if _, ok := p.Performances.Lookup(ic, w.App); !ok {
				return fmt.Errorf("%w: missing performance data for instance class %q and app %q",
					errs.ErrInvalidProblem, ic.ID, w.App.ID)
			}
		}
	}
	return nil
}

// ReorderWorkloads returns a copy of workloads ordered to match the given
// app order. It is an error if the sets of apps do not match exactly.
func ReorderWorkloads(workloads []Workload, apps []App) ([]Workload, error) {
	if len(workloads) != len(apps) {
		return nil, fmt.Errorf("%w: %d workloads for %d apps", errs.ErrInvalidProblem, len(workloads), len(apps))
	}
	byApp := make(map[string]Workload, len(workloads))
	for _, w := range workloads {
		byApp[w.App.ID] = w
	}
	out := make([]Workload, len(apps))
	for i, a := range apps {
		w, ok := byApp[a.ID]
		if !ok {
			return nil, fmt.Errorf("%w: no workload for app %q", errs.ErrInvalidProblem, a.ID)
		}
		out[i] = w
	}
	return out, nil
}
