package annotated

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/rshade/influxbatch/internal/readings"
)

// Span holds the normalized dates of a batch, index-aligned with the batch,
// and their extremes.
type Span struct {
	Dates []time.Time
	Min   time.Time
	Max   time.Time
}

// Seconds returns Max - Min in seconds. It is zero when every date in the
// batch is equal.
func (s Span) Seconds() float64 {
	return secondsBetween(s.Min, s.Max)
}

// ParseDate parses a timestamp in any common layout and drops its zone,
// keeping the wall clock. "2023-01-01T10:00:00+02:00" and
// "2023-01-01 10:00:00" both yield 2023-01-01 10:00:00 UTC.
//
// Plain numbers ("3.14", "1686355200") are rejected, except the compact
// yyyymmdd and yyyymmddhhmmss forms, as is anything that parses to year 0.
func ParseDate(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("%w: empty readingDate", ErrDateParse)
	}
	if isPlainNumber(trimmed) {
		return time.Time{}, fmt.Errorf("%w: %q is a number, not a date", ErrDateParse, raw)
	}
	t, err := dateparse.ParseIn(trimmed, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %w", ErrDateParse, raw, err)
	}
	if t.Year() == 0 {
		return time.Time{}, fmt.Errorf("%w: %q has no year", ErrDateParse, raw)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
}

func isPlainNumber(s string) bool {
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return false
	}
	compact := (len(s) == len("20060102") || len(s) == len("20060102150405")) &&
		strings.Trim(s, "0123456789") == ""
	return !compact
}

// Normalize parses every readingDate of the batch and computes the span.
// The batch must not be empty.
func Normalize(batch readings.Batch) (Span, error) {
	if len(batch) == 0 {
		return Span{}, fmt.Errorf("%w: empty batch", ErrDateParse)
	}

	span := Span{Dates: make([]time.Time, len(batch))}
	for i, r := range batch {
		d, err := ParseDate(r.ReadingDate)
		if err != nil {
			return Span{}, fmt.Errorf("row %d: %w", i+1, err)
		}
		span.Dates[i] = d

		if i == 0 || d.Before(span.Min) {
			span.Min = d
		}
		if i == 0 || d.After(span.Max) {
			span.Max = d
		}
	}
	return span, nil
}
