// Package model defines Malloovia's immutable domain value types: the
// applications, instance classes, limiting sets, workloads and performance
// data that together describe a cloud allocation problem (spec §3).
//
// Value types are constructed once at problem-load time and never mutated
// (spec §3, Lifecycle). Identity is by content: App and LimitingSet values
// built from the same fields compare equal with ==, and other types are
// looked up by their ID fields. No Equal methods are defined for the types
// that hold slices or maps (InstanceClass, Workload, Problem, System,
// PerformanceTable).
package model

import "fmt"

// App identifies a workload-producing application.
type App struct {
	ID   string
	Name string
}

// LimitingSet is a region or zone that bounds the total VM and/or core
// count across the instance classes that belong to it. MaxVMs and
// MaxCores of 0 mean "unlimited".
type LimitingSet struct {
	ID       string
	Name     string
	MaxVMs   int
	MaxCores int
}

// VMsUnlimited reports whether this limiting set imposes no VM cap.
func (ls LimitingSet) VMsUnlimited() bool { return ls.MaxVMs <= 0 }

// CoresUnlimited reports whether this limiting set imposes no core cap.
func (ls LimitingSet) CoresUnlimited() bool { return ls.MaxCores <= 0 }

// InstanceClass is a purchasable VM type. Price is given per
// PriceTimeUnit and is scaled to the problem's timeslot unit at LP build
// time (spec §4.1).
type InstanceClass struct {
	ID            string
	Name          string
	LimitingSets  []LimitingSet
	MaxVMs        int // 0 = unlimited
	Price         float64
	PriceTimeUnit TimeUnit
	Cores         int // >= 1
	IsReserved    bool
	IsPrivate     bool
}

// VMsUnlimited reports whether this instance class imposes no per-class VM cap.
func (ic InstanceClass) VMsUnlimited() bool { return ic.MaxVMs <= 0 }

// PerfKey identifies one (InstanceClass, App) pair in a PerformanceTable.
type PerfKey struct {
	InstanceClassID string
	AppID           string
}

// PerformanceTable is a dense mapping (InstanceClass, App) -> rate, with a
// single time unit shared by all entries. Lookup by pair must be total over
// every (ic, app) pair a Problem actually uses (spec §3).
type PerformanceTable struct {
	Values       map[PerfKey]float64
	PerfTimeUnit TimeUnit
}

// NewPerformanceTable creates an empty performance table for the given time
// unit.
func NewPerformanceTable(unit TimeUnit) *PerformanceTable {
	return &PerformanceTable{Values: make(map[PerfKey]float64), PerfTimeUnit: unit}
}

// Set records the rate at which one VM of ic running app serves requests,
// per PerfTimeUnit.
func (pt *PerformanceTable) Set(ic InstanceClass, app App, rate float64) {
	pt.Values[PerfKey{InstanceClassID: ic.ID, AppID: app.ID}] = rate
}

// Lookup returns the performance rate for (ic, app) and whether an entry
// exists.
func (pt *PerformanceTable) Lookup(ic InstanceClass, app App) (float64, bool) {
	v, ok := pt.Values[PerfKey{InstanceClassID: ic.ID, AppID: app.ID}]
	return v, ok
}

// Workload is a per-app load prediction over T timeslots, all sharing the
// same TimeUnit within a Problem.
type Workload struct {
	App      App
	Values   []float64
	TimeUnit TimeUnit
}

// Len returns the number of timeslots this workload spans.
func (w Workload) Len() int { return len(w.Values) }

// Problem is a complete Malloovia problem: one workload per app, the
// candidate instance classes, and their performance table.
type Problem struct {
	ID               string
	Name             string
	Workloads        []Workload
	InstanceClasses  []InstanceClass
	Performances     *PerformanceTable
	Description      string
}

// System is the workload-independent portion of a Problem: everything
// needed to build an LP except the actual load values.
type System struct {
	ID              string
	Name            string
	Apps            []App
	InstanceClasses []InstanceClass
	Performances    *PerformanceTable
}

// SystemFromProblem extracts the System (workload-independent) part of a
// Problem, in the app order implied by problem.Workloads.
func SystemFromProblem(p Problem) System {
	apps := make([]App, len(p.Workloads))
	for i, w := range p.Workloads {
		apps[i] = w.App
	}
	return System{
		ID:              p.ID,
		Name:            p.Name,
		Apps:            apps,
		InstanceClasses: p.InstanceClasses,
		Performances:    p.Performances,
	}
}

// Reserved returns the subset of the system's instance classes that are
// reserved, in declaration order.
func (s System) Reserved() []InstanceClass {
	var out []InstanceClass
	for _, ic := range s.InstanceClasses {
		if ic.IsReserved {
			out = append(out, ic)
		}
	}
	return out
}

// OnDemand returns the subset of the system's instance classes that are
// on-demand, in declaration order.
func (s System) OnDemand() []InstanceClass {
	var out []InstanceClass
	for _, ic := range s.InstanceClasses {
		if !ic.IsReserved {
			out = append(out, ic)
		}
	}
	return out
}

// String renders an App for diagnostics, matching the original's
// App('id') repr.
func (a App) String() string { return fmt.Sprintf("App(%q)", a.ID) }

// String renders an InstanceClass for diagnostics.
func (ic InstanceClass) String() string { return fmt.Sprintf("InstanceClass(%q)", ic.ID) }
