package annotated

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rshade/influxbatch/internal/readings"
)

// TimeLayout is the output timestamp layout. The zone was dropped during
// normalization, so the UTC designator is always appended.
const TimeLayout = "2006-01-02T15:04:05Z"

// Constant output columns.
const (
	TableID     = "0"
	Field       = "reading"
	Measurement = "metrics"
)

// Annotations is the header block written at the top of every output file.
//
//nolint:gochecknoglobals // Read-only, part of the output format.
var Annotations = [...]string{
	"#group,false,false,true,true,false,false,true,true,true,true,true",
	"#datatype,string,long,dateTime:RFC3339,dateTime:RFC3339,dateTime:RFC3339,double,string,string,string,string,string",
	"#default,mean,,,,,,,,,,",
	",result,table,_start,_stop,_time,_value,_field,_measurement,displayReference,location,readingType",
}

// Row is a rescaled reading ready to be written. Start, Stop and Time are
// always the same instant.
type Row struct {
	Start            time.Time
	Stop             time.Time
	Time             time.Time
	Value            float64
	DisplayReference string
	Location         string
	ReadingType      string
}

// ParseValue converts a raw reading value. Empty, non-numeric and
// non-finite values are rejected.
func ParseValue(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: value %q is not numeric", ErrSerialization, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: value %q is not finite", ErrSerialization, raw)
	}
	return v, nil
}

// FormatValue renders v as its shortest plain decimal representation.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Transformer rescales and serializes batches relative to a fixed reference
// time, so every batch of a run lands in the same window.
type Transformer struct {
	now time.Time
}

// NewTransformer creates a Transformer anchored at now (converted to UTC).
func NewTransformer(now time.Time) *Transformer {
	return &Transformer{now: now.UTC()}
}

// Now returns the reference time.
func (t *Transformer) Now() time.Time {
	return t.now
}

// Transform normalizes and rescales a batch. The batch's own span drives the
// rescaling; nothing carries over between batches.
func (t *Transformer) Transform(batch readings.Batch) ([]Row, error) {
	span, err := Normalize(batch)
	if err != nil {
		return nil, err
	}
	spanSeconds := span.Seconds()

	rows := make([]Row, len(batch))
	for i, r := range batch {
		value, valueErr := ParseValue(r.Value)
		if valueErr != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, valueErr)
		}

		ts := Rescale(span.Dates[i], span.Min, spanSeconds, t.now)
		rows[i] = Row{
			Start:            ts,
			Stop:             ts,
			Time:             ts,
			Value:            value,
			DisplayReference: r.DisplayReference,
			Location:         r.Location,
			ReadingType:      r.ReadingType,
		}
	}
	return rows, nil
}

// Render transforms a batch and serializes it to the full file contents.
func (t *Transformer) Render(batch readings.Batch) ([]byte, error) {
	rows, err := t.Transform(batch)
	if err != nil {
		return nil, err
	}
	return Serialize(rows), nil
}

// Serialize renders the annotation block followed by one line per row.
// Every line, including the last, ends with a newline.
func Serialize(rows []Row) []byte {
	var buf bytes.Buffer
	buf.Grow(256 + len(rows)*128)

	for _, line := range Annotations {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	for i := range rows {
		buf.Write(AppendRow(nil, &rows[i]))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// AppendRow appends the data line for r, without a trailing newline, to dst.
// The leading empty field lines up with the annotation column of the header.
func AppendRow(dst []byte, r *Row) []byte {
	dst = append(dst, ",,"...)
	dst = append(dst, TableID...)
	dst = append(dst, ',')
	dst = r.Start.AppendFormat(dst, TimeLayout)
	dst = append(dst, ',')
	dst = r.Stop.AppendFormat(dst, TimeLayout)
	dst = append(dst, ',')
	dst = r.Time.AppendFormat(dst, TimeLayout)
	dst = append(dst, ',')
	dst = append(dst, FormatValue(r.Value)...)
	dst = append(dst, ',')
	dst = append(dst, Field...)
	dst = append(dst, ',')
	dst = append(dst, Measurement...)
	dst = append(dst, ',')
	dst = append(dst, Escape(r.DisplayReference)...)
	dst = append(dst, ',')
	dst = append(dst, Escape(r.Location)...)
	dst = append(dst, ',')
	dst = append(dst, r.ReadingType...)
	return dst
}
