package annotated

import (
	"math"
	"time"
)

const day = 24 * time.Hour

// The rescaled window is [now-WindowStartOffset, now-WindowStartOffset+WindowLength],
// that is [now-20d, now-5d].
const (
	WindowStartOffset = 20 * day
	WindowLength      = 15 * day
)

// secondsBetween returns b-a in seconds. Unlike time.Time.Sub it does not
// saturate, so spans of several centuries stay exact to the microsecond.
func secondsBetween(a, b time.Time) float64 {
	return float64(b.Unix()-a.Unix()) + float64(b.Nanosecond()-a.Nanosecond())/1e9
}

// Rescale maps date linearly from the batch span [minDate, minDate+spanSeconds]
// onto [now-20d, now-5d]. With a zero (or negative) span the date is
// returned unchanged.
func Rescale(date, minDate time.Time, spanSeconds float64, now time.Time) time.Time {
	if spanSeconds <= 0 {
		return date
	}
	ratio := secondsBetween(minDate, date) / spanSeconds
	offset := time.Duration(math.Round(float64(WindowLength) * ratio))
	return now.Add(-WindowStartOffset).Add(offset)
}
