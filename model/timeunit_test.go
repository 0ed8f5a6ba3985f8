package model

import (
	"errors"
	"math"
	"testing"

	"github.com/malloovia/malloovia/errs"
)

func TestScalePrice(t *testing.T) {
	tests := []struct {
		name         string
		x            float64
		unitOfX      TimeUnit
		timeslotUnit TimeUnit
		want         float64
	}{
		{"hour to hour is identity", 100, Hour, Hour, 100},
		{"hour to minute divides by 60", 60, Hour, Minute, 1},
		{"day to hour divides by 24", 24, Day, Hour, 1},
		{"minute to hour multiplies by 60", 1, Minute, Hour, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ScalePrice(tt.x, tt.unitOfX, tt.timeslotUnit)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ScalePrice(%v, %v, %v) = %v, want %v", tt.x, tt.unitOfX, tt.timeslotUnit, got, tt.want)
			}
		})
	}
}

func TestScalePerformance_IsInverseOfScalePrice(t *testing.T) {
	// ScalePrice divides by 60 going from h to m; ScalePerformance applies
	// the inverse factor, so it multiplies by 60 for the same pair of units.
	rate := 1000.0
	scaled, err := ScalePerformance(rate, Hour, Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(scaled-rate*60) > 1e-9 {
		t.Errorf("ScalePerformance(1000, h, m) = %v, want %v", scaled, rate*60)
	}
}

func TestScalePrice_InvalidUnit(t *testing.T) {
	_, err := ScalePrice(1, "bogus", Hour)
	if !errors.Is(err, errs.ErrInvalidTimeUnit) {
		t.Errorf("expected ErrInvalidTimeUnit, got %v", err)
	}
	_, err = ScalePrice(1, Hour, "bogus")
	if !errors.Is(err, errs.ErrInvalidTimeUnit) {
		t.Errorf("expected ErrInvalidTimeUnit, got %v", err)
	}
}
