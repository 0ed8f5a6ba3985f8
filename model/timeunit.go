package model

import (
	"fmt"

	"github.com/malloovia/malloovia/errs"
)

// TimeUnit is a timeslot/price/performance time unit code (spec §4.1).
type TimeUnit string

// Recognized time units.
const (
	Second TimeUnit = "s"
	Minute TimeUnit = "m"
	Hour   TimeUnit = "h"
	Day    TimeUnit = "d"
	Year   TimeUnit = "y"
)

// seconds gives the length, in seconds, of one unit of each TimeUnit.
var seconds = map[TimeUnit]float64{
	Second: 1,
	Minute: 60,
	Hour:   3600,
	Day:    86400,
	Year:   365 * 86400,
}

// to returns the factor to convert a quantity measured "per from" into a
// quantity measured "per to": to(from, to) = seconds(to) / seconds(from).
func to(from, toUnit TimeUnit) (float64, error) {
	fs, ok := seconds[from]
	if !ok {
		return 0, fmt.Errorf("%w: %q", errs.ErrInvalidTimeUnit, from)
	}
	ts, ok := seconds[toUnit]
	if !ok {
		return 0, fmt.Errorf("%w: %q", errs.ErrInvalidTimeUnit, toUnit)
	}
	return ts / fs, nil
}

// ScalePrice converts a price given per unitOfX into a price per
// timeslotUnit: scale(x) = x * seconds(timeslotUnit) / seconds(unitOfX).
func ScalePrice(x float64, unitOfX, timeslotUnit TimeUnit) (float64, error) {
	factor, err := to(unitOfX, timeslotUnit)
	if err != nil {
		return 0, err
	}
	return x * factor, nil
}

// ScalePerformance converts a performance rate (a rate, not an amount) given
// per unitOfX into a rate per timeslotUnit. Because performance is a rate,
// the conversion is the inverse of ScalePrice's.
func ScalePerformance(x float64, unitOfX, timeslotUnit TimeUnit) (float64, error) {
	factor, err := to(timeslotUnit, unitOfX)
	if err != nil {
		return 0, err
	}
	return x * factor, nil
}
