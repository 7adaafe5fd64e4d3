package annotated

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/influxbatch/internal/readings"
)

const wantHeader = "#group,false,false,true,true,false,false,true,true,true,true,true\n" +
	"#datatype,string,long,dateTime:RFC3339,dateTime:RFC3339,dateTime:RFC3339,double,string,string,string,string,string\n" +
	"#default,mean,,,,,,,,,,\n" +
	",result,table,_start,_stop,_time,_value,_field,_measurement,displayReference,location,readingType\n"

func TestEscape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "RoomA", want: "RoomA"},
		{in: "Room A, Wing 2", want: `"Room A, Wing 2"`},
		{in: "Room A", want: `"Room A"`},
		{in: "A,B", want: `"A,B"`},
		{in: "", want: ""},
		{in: "tab\tseparated", want: "tab\tseparated"},
		{in: `say "hi"`, want: `"say "hi""`},
		{in: `"quoted"`, want: `"quoted"`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Escape(tt.in))
		})
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "23.5", FormatValue(23.5))
	assert.Equal(t, "1", FormatValue(1))
	assert.Equal(t, "-0.001", FormatValue(-0.001))
	assert.Equal(t, "1000000", FormatValue(1e6))
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue(" 12.25 ")
	require.NoError(t, err)
	assert.InDelta(t, 12.25, v, 0)

	for _, raw := range []string{"", "abc", "NaN", "+Inf", "1,5"} {
		_, err = ParseValue(raw)
		assert.ErrorIs(t, err, ErrSerialization, "raw=%q", raw)
	}
}

func TestSerialize_Golden(t *testing.T) {
	ts := time.Date(2023, 5, 21, 0, 0, 0, 0, time.UTC)
	rows := []Row{
		{Start: ts, Stop: ts, Time: ts, Value: 21.5, DisplayReference: "Room A, Wing 2", Location: "North", ReadingType: "temperature"},
		{Start: ts, Stop: ts, Time: ts, Value: 40, DisplayReference: "RoomA", Location: "South Hall", ReadingType: "humidity"},
	}

	want := wantHeader +
		`,,0,2023-05-21T00:00:00Z,2023-05-21T00:00:00Z,2023-05-21T00:00:00Z,21.5,reading,metrics,"Room A, Wing 2",North,temperature` + "\n" +
		`,,0,2023-05-21T00:00:00Z,2023-05-21T00:00:00Z,2023-05-21T00:00:00Z,40,reading,metrics,RoomA,"South Hall",humidity` + "\n"

	assert.Equal(t, want, string(Serialize(rows)))
}

func TestSerialize_HeaderOnlyForNoRows(t *testing.T) {
	assert.Equal(t, wantHeader, string(Serialize(nil)))
}

func TestAppendRow_FieldCountMatchesHeader(t *testing.T) {
	ts := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	line := string(AppendRow(nil, &Row{Start: ts, Stop: ts, Time: ts, Value: 1, DisplayReference: "a", Location: "b", ReadingType: "c"}))

	headerFields := strings.Split(Annotations[3], ",")
	assert.Len(t, strings.Split(line, ","), len(headerFields))
}

func TestAppendRow_DropsSubSecondPrecision(t *testing.T) {
	ts := time.Date(2023, 1, 1, 0, 0, 0, 999_999_999, time.UTC)
	line := string(AppendRow(nil, &Row{Start: ts, Stop: ts, Time: ts}))
	assert.Contains(t, line, "2023-01-01T00:00:00Z")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "influx4_batch_0.csv", FileName(DefaultPrefix, 0))
	assert.Equal(t, "x_batch_12.csv", FileName("x", 12))
}

func TestWriter_WriteBatch(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "", NewTransformer(refNow))

	batch := readings.Batch{
		{ReadingDate: "2023-01-01T00:00:00", Value: "1.5", DisplayReference: "Room A, Wing 2", Location: "L1", ReadingType: "t"},
		{ReadingDate: "2023-01-02T00:00:00", Value: "2", DisplayReference: "RoomA", Location: "L 2", ReadingType: "t"},
	}

	res, err := w.WriteBatch(3, batch)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Index)
	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, "influx4_batch_3.csv", res.Name)
	assert.Equal(t, filepath.Join(dir, "influx4_batch_3.csv"), res.Path)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	want := wantHeader +
		`,,0,2023-05-21T00:00:00Z,2023-05-21T00:00:00Z,2023-05-21T00:00:00Z,1.5,reading,metrics,"Room A, Wing 2",L1,t` + "\n" +
		`,,0,2023-06-05T00:00:00Z,2023-06-05T00:00:00Z,2023-06-05T00:00:00Z,2,reading,metrics,RoomA,"L 2",t` + "\n"
	assert.Equal(t, want, string(data))

	again, err := w.WriteBatch(3, batch)
	require.NoError(t, err)
	data2, err := os.ReadFile(again.Path)
	require.NoError(t, err)
	assert.Equal(t, data, data2, "same input and reference time give identical output")
}

func TestWriter_NoFileOnRenderFailure(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "out", NewTransformer(refNow))

	_, err := w.WriteBatch(0, readings.Batch{{ReadingDate: "2023-01-01", Value: "x"}})
	require.ErrorIs(t, err, ErrSerialization)

	_, statErr := os.Stat(filepath.Join(dir, "out_batch_0.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriter_WriteFailure(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "missing", "dir"), "out", NewTransformer(refNow))

	_, err := w.WriteBatch(0, readings.Batch{{ReadingDate: "2023-01-01", Value: "1"}})
	assert.ErrorIs(t, err, ErrSerialization)
}

func TestNewWriter_Defaults(t *testing.T) {
	w := NewWriter("", "", NewTransformer(refNow))
	assert.Equal(t, ".", w.Dir)
	assert.Equal(t, DefaultPrefix, w.Prefix)
}
