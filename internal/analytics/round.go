package analytics

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const (
	day  = 24 * time.Hour
	week = 7 * day

	// labelLayout formats chart dates as short month and day ("Jan 2").
	labelLayout = "Jan 2"
)

// roundTo rounds v to the given number of decimal places. NaN and infinities
// collapse to 0 so no snapshot ever carries a non-finite value.
func roundTo(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// fixed renders v with exactly the given number of decimal places.
func fixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

// daysBetween returns the fractional number of days from a to b.
func daysBetween(a, b time.Time) float64 {
	return float64(b.Sub(a)) / float64(day)
}

// within reports whether t lies in [start, end], both ends inclusive.
func within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
