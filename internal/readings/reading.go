// Package readings streams sensor readings from a CSV export in bounded
// batches.
package readings

import "errors"

// Column names that must be present in the input header.
const (
	ColumnReadingDate      = "readingDate"
	ColumnValue            = "value"
	ColumnDisplayReference = "displayReference"
	ColumnLocation         = "location"
	ColumnReadingType      = "readingType"
)

// RequiredColumns lists the header columns the reader consumes, in the
// order they are reported when missing.
//
//nolint:gochecknoglobals // Read-only lookup table.
var RequiredColumns = [...]string{
	ColumnReadingDate,
	ColumnValue,
	ColumnDisplayReference,
	ColumnLocation,
	ColumnReadingType,
}

// Slots of the required columns in RequiredColumns.
const (
	slotReadingDate = iota
	slotValue
	slotDisplayReference
	slotLocation
	slotReadingType
)

// ErrDataSource indicates the input could not be opened or is structurally malformed.
var ErrDataSource = errors.New("data source error")

// Reading is one input row. Values are kept as they appear in the file;
// parsing happens when the batch is transformed.
type Reading struct {
	ReadingDate      string
	Value            string
	DisplayReference string
	Location         string
	ReadingType      string
}

// Batch is an ordered group of readings processed together.
type Batch = []Reading
