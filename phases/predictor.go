package phases

import (
	"context"

	"github.com/malloovia/malloovia/model"
)

// STWPredictor streams one short-term-workload tuple (one Workload per
// app, each with a single value) per timeslot, for PhaseII.SolvePeriod to
// consume (spec §4.9; grounded on the source's STWPredictor/
// OmniscientSTWPredictor abstract-iterable pair).
type STWPredictor interface {
	// Len reports the total number of timeslots this predictor will yield,
	// for progress reporting.
	Len() int
	// Next returns the next timeslot's per-app workloads and true, or
	// (nil, false) once exhausted.
	Next(ctx context.Context) ([]model.Workload, bool)
	// Reset rewinds the predictor to its first timeslot.
	Reset()
}

// OmniscientPredictor is the default STWPredictor: it already knows every
// timeslot's load in advance and simply streams a Problem's own
// long-term-workload values one timeslot at a time (spec §4.9
// OmniscientSTWPredictor).
type OmniscientPredictor struct {
	workloads []model.Workload
	idx       int
}

// NewOmniscientPredictor wraps workloads (one per app, all the same
// length) as an STWPredictor.
func NewOmniscientPredictor(workloads []model.Workload) *OmniscientPredictor {
	return &OmniscientPredictor{workloads: workloads}
}

func (p *OmniscientPredictor) Len() int {
	if len(p.workloads) == 0 {
		return 0
	}
	return p.workloads[0].Len()
}

func (p *OmniscientPredictor) Next(ctx context.Context) ([]model.Workload, bool) {
	if ctx.Err() != nil || p.idx >= p.Len() {
		return nil, false
	}
	out := make([]model.Workload, len(p.workloads))
	for i, w := range p.workloads {
		out[i] = model.Workload{App: w.App, TimeUnit: w.TimeUnit, Values: []float64{w.Values[p.idx]}}
	}
	p.idx++
	return out, true
}

func (p *OmniscientPredictor) Reset() { p.idx = 0 }
