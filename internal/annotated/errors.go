// Package annotated turns batches of sensor readings into annotated CSV
// files for bulk import into a time-series database. Each batch's
// timestamps are rescaled into a fixed recent window before serialization.
package annotated

import "errors"

// Sentinel errors, compared with errors.Is.
var (
	// ErrDateParse indicates a readingDate value is not a recognizable date/time.
	ErrDateParse = errors.New("date parse error")

	// ErrSerialization indicates a field could not be rendered, such as a
	// non-numeric value, or the rendered batch could not be written.
	ErrSerialization = errors.New("serialization error")
)
