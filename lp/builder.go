package lp

import (
	"fmt"

	"github.com/malloovia/malloovia/errs"
	"github.com/malloovia/malloovia/histogram"
	"github.com/malloovia/malloovia/model"
	"github.com/malloovia/malloovia/solution"
)

// Mode selects which LP Malloovia builds: the minimize-cost primal
// (spec §4.3) or the maximize-fulfillment dual fallback (spec §4.4).
type Mode int

const (
	MinimizeCost Mode = iota
	MaximizeFulfillment
)

// Options configures a Builder.
type Options struct {
	// Relaxed makes all variables continuous instead of integer.
	Relaxed bool
	// ReservedPreallocation fixes reserved-class counts, used by Phase II
	// to pin Phase I's decision (spec §4.3 item 3, equality).
	ReservedPreallocation *solution.ReservedAllocation
	// OnDemandPreallocation sets a per-class lower bound on on-demand
	// counts, used by Phase II's guided mode (spec §4.3 item 3,
	// lower bound; spec §4.7 guided mode).
	OnDemandPreallocation *solution.ReservedAllocation
}

// Builder constructs an lp.Problem for a System and a workload Histogram,
// running the ordered restriction list appropriate to its Mode (spec §9
// Design Note 1).
type Builder struct {
	System model.System
	Hist   *histogram.Histogram
	Mode   Mode
	Opts   Options

	apps         []model.App
	reservedICs  []model.InstanceClass
	onDemandICs  []model.InstanceClass
	limitingSets []model.LimitingSet

	price map[string]float64 // icID -> price scaled to timeslot unit
	perf  map[string]float64 // "appID|icID" -> performance scaled to timeslot unit

	t int // T = sum(histogram counts)

	problem *Problem

	reservedVar map[string]string // "appID|icID" -> var name
	onDemandVar map[string]string // "appID|icID|windowIdx" -> var name
}

func perfMapKey(appID, icID string) string { return appID + "|" + icID }
func onDemandMapKey(appID, icID string, windowIdx int) string {
	return fmt.Sprintf("%s|%s|%d", appID, icID, windowIdx)
}

// NewBuilder prepares a Builder over system and hist. hist determines both
// the set of workload tuples iterated by the performance restriction and T
// (the reservation period length).
func NewBuilder(system model.System, hist *histogram.Histogram, mode Mode, opts Options) (*Builder, error) {
	b := &Builder{
		System:      system,
		Hist:        hist,
		Mode:        mode,
		Opts:        opts,
		apps:        system.Apps,
		reservedICs: system.Reserved(),
		onDemandICs: system.OnDemand(),
		price:       make(map[string]float64),
		perf:        make(map[string]float64),
		reservedVar: make(map[string]string),
		onDemandVar: make(map[string]string),
	}
	b.t = hist.Total()

	seen := make(map[string]bool)
	for _, ic := range system.InstanceClasses {
		for _, ls := range ic.LimitingSets {
			if !seen[ls.ID] {
				seen[ls.ID] = true
				b.limitingSets = append(b.limitingSets, ls)
			}
		}
	}

	timeslotUnit := hist.TimeUnit
	for _, ic := range system.InstanceClasses {
		scaled, err := model.ScalePrice(ic.Price, ic.PriceTimeUnit, timeslotUnit)
		if err != nil {
			return nil, err
		}
		b.price[ic.ID] = scaled
		for _, app := range system.Apps {
			rate, ok := system.Performances.Lookup(ic, app)
			if !ok {
				return nil, fmt.Errorf("%w: missing performance for instance class %q app %q", errs.ErrInvalidProblem, ic.ID, app.ID)
			}
			scaledPerf, err := model.ScalePerformance(rate, system.Performances.PerfTimeUnit, timeslotUnit)
			if err != nil {
				return nil, err
			}
			b.perf[perfMapKey(app.ID, ic.ID)] = scaledPerf
		}
	}
	return b, nil
}

// perfOf returns the per-timeslot performance of one VM of ic running app.
func (b *Builder) perfOf(app model.App, ic model.InstanceClass) float64 {
	return b.perf[perfMapKey(app.ID, ic.ID)]
}

// priceOf returns the per-timeslot price of ic.
func (b *Builder) priceOf(ic model.InstanceClass) float64 { return b.price[ic.ID] }

// ReservedVarName returns the solver variable name for Y[app, ic].
func (b *Builder) ReservedVarName(app model.App, ic model.InstanceClass) string {
	return b.reservedVar[perfMapKey(app.ID, ic.ID)]
}

// OnDemandVarName returns the solver variable name for X[app, ic, window].
func (b *Builder) OnDemandVarName(app model.App, ic model.InstanceClass, windowIdx int) string {
	return b.onDemandVar[onDemandMapKey(app.ID, ic.ID, windowIdx)]
}

// Build runs variable creation, objective construction, and the ordered
// restriction list, returning the finished lp.Problem.
func (b *Builder) Build() (*Problem, error) {
	name := "malloovia-minimize-cost"
	direction := Minimize
	if b.Mode == MaximizeFulfillment {
		name = "malloovia-maximize-fulfillment"
		direction = Maximize
	}
	b.problem = &Problem{Name: name, Direction: direction, Objective: LinExpr{}, Relaxed: b.Opts.Relaxed}

	b.createVariables()
	b.setObjective()

	for _, r := range b.restrictions() {
		if err := r.Apply(b); err != nil {
			return nil, err
		}
	}
	return b.problem, nil
}

// createVariables creates Y[a,r] for every (app, reserved ic) pair and
// X[a,d,w] for every (app, on-demand ic, histogram key) triple, in
// declaration order (spec §4.3 "Ordering and determinism").
func (b *Builder) createVariables() {
	integer := !b.Opts.Relaxed
	for appIdx, app := range b.apps {
		for icIdx, ic := range b.reservedICs {
			name := fmt.Sprintf("Y_%s_%s", app.ID, ic.ID)
			b.reservedVar[perfMapKey(app.ID, ic.ID)] = name
			b.problem.AddVariable(Variable{Name: name, Integer: integer, Kind: Reserved, AppIdx: appIdx, ICIdx: icIdx, WindowIdx: -1})
		}
	}
	keys := b.Hist.Keys()
	for appIdx, app := range b.apps {
		for icIdx, ic := range b.onDemandICs {
			for w, key := range keys {
				name := fmt.Sprintf("X_%s_%s_%016x", app.ID, ic.ID, key.Hash())
				b.onDemandVar[onDemandMapKey(app.ID, ic.ID, w)] = name
				b.problem.AddVariable(Variable{Name: name, Integer: integer, Kind: OnDemand, AppIdx: appIdx, ICIdx: icIdx, WindowIdx: w})
			}
		}
	}
}

// setObjective builds the objective appropriate to Mode.
func (b *Builder) setObjective() {
	switch b.Mode {
	case MinimizeCost:
		b.setMinimizeCostObjective()
	case MaximizeFulfillment:
		b.setMaximizeFulfillmentObjective()
	}
}

// setMinimizeCostObjective implements spec §4.3's objective:
//
//	sum(a,r) Y[a,r]*price(r)*T + sum(a,d,w) X[a,d,w]*price(d)*H[w]
func (b *Builder) setMinimizeCostObjective() {
	for _, app := range b.apps {
		for _, ic := range b.reservedICs {
			name := b.ReservedVarName(app, ic)
			b.problem.Objective.Add(name, b.priceOf(ic)*float64(b.t))
		}
	}
	for w, key := range b.Hist.Keys() {
		count := float64(b.Hist.Count(key))
		for _, app := range b.apps {
			for _, ic := range b.onDemandICs {
				name := b.OnDemandVarName(app, ic, w)
				b.problem.Objective.Add(name, b.priceOf(ic)*count)
			}
		}
	}
}

// setMaximizeFulfillmentObjective implements spec §4.4's dual objective:
// the unitless served-fraction, skipping apps with zero demand.
func (b *Builder) setMaximizeFulfillmentObjective() {
	for w, key := range b.Hist.Keys() {
		for i, app := range b.apps {
			demand := key.At(i)
			if demand == 0 {
				continue
			}
			for _, ic := range b.reservedICs {
				name := b.ReservedVarName(app, ic)
				b.problem.Objective.Add(name, b.perfOf(app, ic)/demand)
			}
			for _, ic := range b.onDemandICs {
				name := b.OnDemandVarName(app, ic, w)
				b.problem.Objective.Add(name, b.perfOf(app, ic)/demand)
			}
		}
	}
}
