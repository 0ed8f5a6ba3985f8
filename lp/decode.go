package lp

import (
	"fmt"

	"github.com/malloovia/malloovia/errs"
	"github.com/malloovia/malloovia/model"
	"github.com/malloovia/malloovia/solution"
)

// reservedInvarianceTolerance bounds the difference allowed between a
// reserved class's decoded sum and its ReservedPreallocation pin before
// InternalInvariantViolated is raised. Reserved variables carry no
// histogram-key index, so there are no per-window sums to compare.
const reservedInvarianceTolerance = 1e-6

// Decoded holds everything extracted from a solved Problem: the objective
// value and the two allocation views named by spec §4.3's "Extraction
// contract after solving".
type Decoded struct {
	Cost               float64
	Allocation         *solution.AllocationInfo
	ReservedAllocation *solution.ReservedAllocation
}

// Decode extracts cost, allocation and reserved allocation from a solved
// Problem's variable values. status must be solution.Optimal or
// solution.Overfull (the dual LP's "best we could do" result); any other
// status is rejected with errs.ErrNotOptimal, since solver variable values
// are meaningless otherwise (spec §4.3).
func (b *Builder) Decode(status solution.Status, values map[string]float64) (*Decoded, error) {
	if !status.IsOptimalOrOverfull() {
		return nil, fmt.Errorf("%w: cannot decode a %s result", errs.ErrNotOptimal, status)
	}

	reserved, err := b.decodeReservedAllocation(values)
	if err != nil {
		return nil, err
	}

	return &Decoded{
		Cost:               b.decodeCost(values),
		Allocation:         b.decodeAllocation(values),
		ReservedAllocation: reserved,
	}, nil
}

// decodeCost projects values through the cost-minimizing price function,
// regardless of which objective actually produced them: reserved Y[a,r]
// contributes price(r)*T, on-demand X[a,d,w] contributes price(d)*H[w].
// This is the same formula setMinimizeCostObjective uses to build the
// primal's objective, evaluated here against arbitrary variable values so
// that decoding a MaximizeFulfillment (dual, Overfull) result still reports
// true monetary cost rather than the unitless served-fraction the dual
// itself optimizes (spec §4.4; grounded on the source's
// MallooviaLpMaximizeTimeslotPerformance.get_cost).
func (b *Builder) decodeCost(values map[string]float64) float64 {
	var total float64
	for _, app := range b.apps {
		for _, ic := range b.reservedICs {
			name := b.ReservedVarName(app, ic)
			total += b.priceOf(ic) * float64(b.t) * values[name]
		}
	}
	for w, key := range b.Hist.Keys() {
		count := float64(b.Hist.Count(key))
		for _, app := range b.apps {
			for _, ic := range b.onDemandICs {
				name := b.OnDemandVarName(app, ic, w)
				total += b.priceOf(ic) * count * values[name]
			}
		}
	}
	return total
}

// allInstanceClasses returns the builder's full instance class axis,
// reserved classes first then on-demand, matching System.Reserved()/
// OnDemand() order (spec §4.3 "allocation()").
func (b *Builder) allInstanceClasses() []model.InstanceClass {
	out := make([]model.InstanceClass, 0, len(b.reservedICs)+len(b.onDemandICs))
	out = append(out, b.reservedICs...)
	out = append(out, b.onDemandICs...)
	return out
}

// decodeAllocation builds the AllocationInfo view: axes
// (histogram_key, app, ic).
func (b *Builder) decodeAllocation(values map[string]float64) *solution.AllocationInfo {
	keys := b.Hist.Keys()
	allICs := b.allInstanceClasses()

	out := make([][][]float64, len(keys))
	workloadKeys := make([][]float64, len(keys))
	repeats := make([]int, len(keys))

	for w, key := range keys {
		workloadKeys[w] = key.Values()
		repeats[w] = b.Hist.Count(key)
		row := make([][]float64, len(b.apps))
		for i, app := range b.apps {
			cols := make([]float64, len(allICs))
			for j, ic := range b.reservedICs {
				cols[j] = values[b.ReservedVarName(app, ic)]
			}
			offset := len(b.reservedICs)
			for j, ic := range b.onDemandICs {
				cols[offset+j] = values[b.OnDemandVarName(app, ic, w)]
			}
			row[i] = cols
		}
		out[w] = row
	}

	return &solution.AllocationInfo{
		Values:          out,
		Apps:            b.apps,
		InstanceClasses: allICs,
		WorkloadKeys:    workloadKeys,
		Units:           "vms",
		Repeats:         repeats,
	}
}

// decodeReservedAllocation sums Y[a,r] over apps for each reserved class r.
// When a ReservedPreallocation was supplied (Phase II pinning Phase I's
// decision), it asserts that the recovered sums match the pinned values
// within tolerance, failing with ErrInternalInvariantViolated otherwise
// (spec §4.3 "must assert this invariant").
func (b *Builder) decodeReservedAllocation(values map[string]float64) (*solution.ReservedAllocation, error) {
	vms := make([]float64, len(b.reservedICs))
	for i, ic := range b.reservedICs {
		var sum float64
		for _, app := range b.apps {
			sum += values[b.ReservedVarName(app, ic)]
		}
		vms[i] = sum
	}

	if ra := b.Opts.ReservedPreallocation; ra != nil {
		for i, ic := range b.reservedICs {
			want := ra.VMsFor(ic)
			got := vms[i]
			diff := got - want
			if diff > reservedInvarianceTolerance || diff < -reservedInvarianceTolerance {
				return nil, fmt.Errorf("%w: reserved allocation for %q is %g, preallocation pinned it to %g",
					errs.ErrInternalInvariantViolated, ic.ID, got, want)
			}
		}
	}

	return &solution.ReservedAllocation{
		InstanceClasses: append([]model.InstanceClass{}, b.reservedICs...),
		VMsNumber:       vms,
	}, nil
}
