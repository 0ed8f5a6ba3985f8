// Package histogram compresses a length-T sequence of per-app workload
// tuples into a mapping from tuple to occurrence count, making Phase I's
// LP tractable for long reservation periods (spec §4.2).
package histogram

import (
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"github.com/malloovia/malloovia/errs"
	"github.com/malloovia/malloovia/model"
)

// Key is a single per-app workload tuple observed at least once in the
// period, in the app order used to build the histogram. Key is not itself
// comparable with == (it wraps a slice); Histogram tracks identity
// internally via an encoded digest.
type Key struct {
	values []float64
}

// Values returns the per-app load values of this key, in histogram app
// order.
func (k Key) Values() []float64 { return k.values }

// At returns the load value for the app at the given index.
func (k Key) At(i int) float64 { return k.values[i] }

// Hash returns a stable 64-bit digest of the key, used to generate solver
// variable names whose length does not grow with the number of apps
// (spec §4.2, Design Note 2).
func (k Key) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(encode(k.values)))
	return h.Sum64()
}

// String renders the key for diagnostics, e.g. "[30 1003]".
func (k Key) String() string {
	parts := make([]string, len(k.values))
	for i, v := range k.values {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// encode produces a byte-exact, order-sensitive encoding of a float64
// tuple suitable for use as a Go map key (floats themselves are comparable,
// but a slice is not, so tuples are deduplicated via this string form).
func encode(values []float64) string {
	var sb strings.Builder
	buf := make([]byte, 8)
	for _, v := range values {
		bits := math.Float64bits(v)
		for i := 0; i < 8; i++ {
			buf[i] = byte(bits >> (8 * i))
		}
		sb.Write(buf)
	}
	return sb.String()
}

// Histogram maps workload tuples to the number of timeslots in which that
// exact tuple was observed. Total of counts always equals T.
type Histogram struct {
	Apps     []model.App
	TimeUnit model.TimeUnit
	counts   map[string]int
	keys     map[string]Key
	order    []string // first-seen order, for deterministic iteration
}

// Count returns the number of timeslots at which k was observed.
func (h *Histogram) Count(k Key) int { return h.counts[encode(k.values)] }

// Keys returns the distinct keys in first-seen order (spec §4.3:
// "iteration over... histogram keys uses the order declared... not hash
// order").
func (h *Histogram) Keys() []Key {
	out := make([]Key, len(h.order))
	for i, e := range h.order {
		out[i] = h.keys[e]
	}
	return out
}

// Len returns the number of distinct keys in the histogram.
func (h *Histogram) Len() int { return len(h.order) }

// Total returns the sum of all counts, i.e. T.
func (h *Histogram) Total() int {
	total := 0
	for _, e := range h.order {
		total += h.counts[e]
	}
	return total
}

// Build scans workloads (reordered to match apps) timeslot by timeslot and
// returns the resulting Histogram. Workloads must already be ordered to
// match apps; use model.ReorderWorkloads first if not.
func Build(apps []model.App, workloads []model.Workload) (*Histogram, error) {
	h := &Histogram{Apps: apps, counts: make(map[string]int), keys: make(map[string]Key)}
	if len(workloads) == 0 {
		return h, nil
	}
	h.TimeUnit = workloads[0].TimeUnit
	length := workloads[0].Len()
	for _, w := range workloads {
		if w.Len() != length {
			return nil, fmt.Errorf("%w: workload %q has length %d, expected %d",
				errs.ErrInconsistentWorkloadLengths, w.App.ID, w.Len(), length)
		}
	}

	for t := 0; t < length; t++ {
		vals := make([]float64, len(workloads))
		for i, w := range workloads {
			vals[i] = w.Values[t]
		}
		e := encode(vals)
		if _, seen := h.counts[e]; !seen {
			h.order = append(h.order, e)
			h.keys[e] = Key{values: vals}
		}
		h.counts[e]++
	}
	return h, nil
}
