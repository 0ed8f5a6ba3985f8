package lp

import (
	"fmt"

	"github.com/malloovia/malloovia/model"
)

// Restriction is one constraint family, added to a Builder's problem in a
// fixed order. Reimplements the source's name-pattern-based
// "_restriction" method discovery as an explicit, ordered, selectively
// testable list (spec §9 Design Note 1).
type Restriction interface {
	Apply(b *Builder) error
}

// restrictions returns the ordered restriction list for this Builder's
// Mode. Restrictions 2-6 (families 2-5) are shared between the primal and
// dual LPs unchanged; only the performance family (1) and the objective (set
// separately, see builder.go) differ (spec §4.4).
func (b *Builder) restrictions() []Restriction {
	return []Restriction{
		performanceRestriction{dual: b.Mode == MaximizeFulfillment},
		reservedVMCapRestriction{},
		onDemandVMCapRestriction{},
		fixedInstancesRestriction{},
		limitingSetVMCapRestriction{},
		limitingSetCoreCapRestriction{},
	}
}

// performanceRestriction is constraint family 1 (spec §4.3 item 1, §4.4):
// for every histogram key w and app i,
//
//	sum_r Y[a_i,r]*perf(r,a_i) + sum_d X[a_i,d,w]*perf(d,a_i)  >=  w[i]   (primal)
//	sum_r Y[a_i,r]*perf(r,a_i) + sum_d X[a_i,d,w]*perf(d,a_i)  <=  w[i]   (dual)
type performanceRestriction struct{ dual bool }

func (r performanceRestriction) Apply(b *Builder) error {
	relation := GE
	if r.dual {
		relation = LE
	}
	for w, key := range b.Hist.Keys() {
		for i, app := range b.apps {
			expr := LinExpr{}
			for _, ic := range b.reservedICs {
				expr.Add(b.ReservedVarName(app, ic), b.perfOf(app, ic))
			}
			for _, ic := range b.onDemandICs {
				expr.Add(b.OnDemandVarName(app, ic, w), b.perfOf(app, ic))
			}
			b.problem.AddConstraint(Constraint{
				Name:     fmt.Sprintf("perf_%s_w%d", app.ID, w),
				Expr:     expr,
				Relation: relation,
				RHS:      key.At(i),
			})
		}
	}
	return nil
}

// reservedVMCapRestriction is the reserved half of constraint family 2
// (spec §4.3 item 2): for every reserved ic with ic.MaxVMs > 0,
// sum_a Y[a,ic] <= ic.MaxVMs.
type reservedVMCapRestriction struct{}

func (reservedVMCapRestriction) Apply(b *Builder) error {
	for _, ic := range b.reservedICs {
		if ic.VMsUnlimited() {
			continue
		}
		expr := LinExpr{}
		for _, app := range b.apps {
			expr.Add(b.ReservedVarName(app, ic), 1)
		}
		b.problem.AddConstraint(Constraint{
			Name:     "vmcap_res_" + ic.ID,
			Expr:     expr,
			Relation: LE,
			RHS:      float64(ic.MaxVMs),
		})
	}
	return nil
}

// onDemandVMCapRestriction is the on-demand half of constraint family 2:
// for every on-demand ic with ic.MaxVMs > 0 and every histogram key w,
// sum_a X[a,ic,w] <= ic.MaxVMs.
type onDemandVMCapRestriction struct{}

func (onDemandVMCapRestriction) Apply(b *Builder) error {
	for _, ic := range b.onDemandICs {
		if ic.VMsUnlimited() {
			continue
		}
		for w := range b.Hist.Keys() {
			expr := LinExpr{}
			for _, app := range b.apps {
				expr.Add(b.OnDemandVarName(app, ic, w), 1)
			}
			b.problem.AddConstraint(Constraint{
				Name:     fmt.Sprintf("vmcap_dem_%s_w%d", ic.ID, w),
				Expr:     expr,
				Relation: LE,
				RHS:      float64(ic.MaxVMs),
			})
		}
	}
	return nil
}

// fixedInstancesRestriction is constraint family 3 (spec §4.3 item 3):
// reserved preallocation pins the exact count (equality), on-demand
// preallocation sets a lower bound that holds in every window.
type fixedInstancesRestriction struct{}

func (fixedInstancesRestriction) Apply(b *Builder) error {
	if ra := b.Opts.ReservedPreallocation; ra != nil {
		for i, ic := range ra.InstanceClasses {
			expr := LinExpr{}
			for _, app := range b.apps {
				expr.Add(b.ReservedVarName(app, ic), 1)
			}
			b.problem.AddConstraint(Constraint{
				Name:     "fixed_res_" + ic.ID,
				Expr:     expr,
				Relation: EQ,
				RHS:      ra.VMsNumber[i],
			})
		}
	}
	if da := b.Opts.OnDemandPreallocation; da != nil {
		for i, ic := range da.InstanceClasses {
			for w := range b.Hist.Keys() {
				expr := LinExpr{}
				for _, app := range b.apps {
					expr.Add(b.OnDemandVarName(app, ic, w), 1)
				}
				b.problem.AddConstraint(Constraint{
					Name:     fmt.Sprintf("fixed_dem_%s_w%d", ic.ID, w),
					Expr:     expr,
					Relation: GE,
					RHS:      da.VMsNumber[i],
				})
			}
		}
	}
	return nil
}

// limitingSetVMCapRestriction is constraint family 4 (spec §4.3 item 4):
// for every active LimitingSet and every histogram key w, the total VM
// count of every instance class belonging to that set is capped.
type limitingSetVMCapRestriction struct{}

func (limitingSetVMCapRestriction) Apply(b *Builder) error {
	for _, ls := range b.limitingSets {
		if ls.VMsUnlimited() {
			continue
		}
		for w := range b.Hist.Keys() {
			expr := LinExpr{}
			addLimitingSetTerms(b, ls, w, expr, func(model.InstanceClass) float64 { return 1 })
			b.problem.AddConstraint(Constraint{
				Name:     fmt.Sprintf("lscap_vms_%s_w%d", ls.ID, w),
				Expr:     expr,
				Relation: LE,
				RHS:      float64(ls.MaxVMs),
			})
		}
	}
	return nil
}

// limitingSetCoreCapRestriction is constraint family 5 (spec §4.3 item 5):
// same structure as family 4, but every term is multiplied by the
// instance class's core count.
type limitingSetCoreCapRestriction struct{}

func (limitingSetCoreCapRestriction) Apply(b *Builder) error {
	for _, ls := range b.limitingSets {
		if ls.CoresUnlimited() {
			continue
		}
		for w := range b.Hist.Keys() {
			expr := LinExpr{}
			addLimitingSetTerms(b, ls, w, expr, func(ic model.InstanceClass) float64 { return float64(ic.Cores) })
			b.problem.AddConstraint(Constraint{
				Name:     fmt.Sprintf("lscap_cores_%s_w%d", ls.ID, w),
				Expr:     expr,
				Relation: LE,
				RHS:      float64(ls.MaxCores),
			})
		}
	}
	return nil
}

// addLimitingSetTerms adds, for every (app, ic) pair where ic belongs to
// ls, the term var*weightOf(ic) to expr. Shared by the VM-cap family
// (weightOf always 1) and the core-cap family (weightOf = ic.Cores).
func addLimitingSetTerms(b *Builder, ls model.LimitingSet, w int, expr LinExpr, weightOf func(model.InstanceClass) float64) {
	for _, app := range b.apps {
		for _, ic := range b.reservedICs {
			if belongsTo(ic, ls) {
				expr.Add(b.ReservedVarName(app, ic), weightOf(ic))
			}
		}
		for _, ic := range b.onDemandICs {
			if belongsTo(ic, ls) {
				expr.Add(b.OnDemandVarName(app, ic, w), weightOf(ic))
			}
		}
	}
}

func belongsTo(ic model.InstanceClass, ls model.LimitingSet) bool {
	for _, l := range ic.LimitingSets {
		if l.ID == ls.ID {
			return true
		}
	}
	return false
}
