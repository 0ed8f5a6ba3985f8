package solution

import (
	"testing"

	"github.com/malloovia/malloovia/model"
)

func TestCheckCoverage(t *testing.T) {
	// One window, one app, perf(0,0)=10: delivering exactly 10 for a
	// request of 10 satisfies the tolerance; delivering 9 does not.
	perf := func(appIdx, icIdx int) float64 { return 10 }

	ok := &AllocationInfo{
		Values:       [][][]float64{{{1}}},
		WorkloadKeys: [][]float64{{10}},
	}
	if err := CheckCoverage(ok, perf); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	bad := &AllocationInfo{
		Values:       [][][]float64{{{0.9}}},
		WorkloadKeys: [][]float64{{10}},
	}
	if err := CheckCoverage(bad, perf); err == nil {
		t.Error("expected coverage violation error, got nil")
	}
}

func TestCheckReservedInvariance(t *testing.T) {
	// Two windows, one app, one reserved instance class (index 0): must
	// have the same total across windows.
	consistent := &AllocationInfo{
		Values: [][][]float64{
			{{2}},
			{{2}},
		},
	}
	if err := CheckReservedInvariance(consistent, []int{0}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	inconsistent := &AllocationInfo{
		Values: [][][]float64{
			{{2}},
			{{3}},
		},
	}
	if err := CheckReservedInvariance(inconsistent, []int{0}); err == nil {
		t.Error("expected reserved-invariance violation error, got nil")
	}
}

func TestCheckLimitingSetCaps(t *testing.T) {
	ls := model.LimitingSet{ID: "ls0", MaxVMs: 20}
	ic := model.InstanceClass{ID: "ic0", LimitingSets: []model.LimitingSet{ls}, Cores: 2}

	within := &AllocationInfo{
		Values:          [][][]float64{{{10}}},
		InstanceClasses: []model.InstanceClass{ic},
	}
	if err := CheckLimitingSetCaps(within, []model.LimitingSet{ls}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	over := &AllocationInfo{
		Values:          [][][]float64{{{21}}},
		InstanceClasses: []model.InstanceClass{ic},
	}
	if err := CheckLimitingSetCaps(over, []model.LimitingSet{ls}); err == nil {
		t.Error("expected cap violation error, got nil")
	}
}

func TestGlobalStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"all optimal", []Status{Optimal, Optimal}, Optimal},
		{"any infeasible wins", []Status{Optimal, Infeasible}, Infeasible},
		{"overfull when no infeasible", []Status{Optimal, Overfull}, Overfull},
		{"unknown otherwise", []Status{Aborted, Unknown}, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GlobalStatus(tt.statuses); got != tt.want {
				t.Errorf("GlobalStatus(%v) = %v, want %v", tt.statuses, got, tt.want)
			}
		})
	}
}
