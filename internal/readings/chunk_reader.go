package readings

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/rshade/influxbatch/internal/engine/batch"
)

// Supported input encodings.
const (
	EncodingUTF8        = "utf-8"
	EncodingUTF16       = "utf-16"
	EncodingLatin1      = "latin1"
	EncodingISO88591    = "iso-8859-1"
	EncodingWindows1252 = "windows-1252"
)

// ChunkReader reads a readings CSV and returns it in batches of at most
// size rows, in file order. It is not safe for concurrent use and cannot
// be rewound.
type ChunkReader struct {
	csv     *csv.Reader
	closer  io.Closer
	size    int
	columns [len(RequiredColumns)]int
	rows    int
	done    bool
}

// Open opens path with the given input encoding (empty means UTF-8) and
// returns a reader producing batches of size rows.
func Open(path, enc string, size int) (*ChunkReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrDataSource, path, err)
	}

	r, err := NewChunkReaderWithEncoding(f, enc, size)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewChunkReader wraps r, which must be UTF-8 (an optional BOM is skipped).
// The header is read and validated immediately.
func NewChunkReader(r io.Reader, size int) (*ChunkReader, error) {
	return NewChunkReaderWithEncoding(r, EncodingUTF8, size)
}

// NewChunkReaderWithEncoding is NewChunkReader for inputs in a non-UTF-8 encoding.
func NewChunkReaderWithEncoding(r io.Reader, enc string, size int) (*ChunkReader, error) {
	if err := batch.ValidateBatchSize(size); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataSource, err)
	}

	decoder, err := decoderFor(enc)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(transform.NewReader(r, decoder.NewDecoder()))
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: input is empty, expected a header row", ErrDataSource)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", ErrDataSource, err)
	}

	reader := &ChunkReader{csv: cr, size: size}
	if err = reader.mapHeader(header); err != nil {
		return nil, err
	}
	return reader, nil
}

// decoderFor maps an encoding name to a decoder that also strips a leading BOM.
func decoderFor(enc string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(enc)) {
	case "", EncodingUTF8, "utf8":
		return unicode.UTF8BOM, nil
	case EncodingUTF16, "utf16":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case EncodingLatin1, EncodingISO88591:
		return charmap.ISO8859_1, nil
	case EncodingWindows1252, "cp1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("%w: unsupported input encoding %q", ErrDataSource, enc)
	}
}

func (r *ChunkReader) mapHeader(header []string) error {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, dup := positions[name]; !dup {
			positions[name] = i
		}
	}

	var missing []string
	for slot, name := range RequiredColumns {
		idx, ok := positions[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		r.columns[slot] = idx
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required column(s): %s", ErrDataSource, strings.Join(missing, ", "))
	}
	return nil
}

// Next returns the next batch. It returns io.EOF once the input is exhausted
// and never returns an empty batch with a nil error.
func (r *ChunkReader) Next() (Batch, error) {
	if r.done {
		return nil, io.EOF
	}

	out := make(Batch, 0, min(r.size, 4096))
	for len(out) < r.size {
		record, err := r.csv.Read()
		if errors.Is(err, io.EOF) {
			r.done = true
			break
		}
		if err != nil {
			r.done = true
			return nil, fmt.Errorf("%w: row %d: %w", ErrDataSource, r.rows+1, err)
		}

		out = append(out, Reading{
			ReadingDate:      record[r.columns[slotReadingDate]],
			Value:            record[r.columns[slotValue]],
			DisplayReference: record[r.columns[slotDisplayReference]],
			Location:         record[r.columns[slotLocation]],
			ReadingType:      record[r.columns[slotReadingType]],
		})
		r.rows++
	}

	if len(out) == 0 {
		return nil, io.EOF
	}
	return out, nil
}

// Rows returns the number of data rows read so far.
func (r *ChunkReader) Rows() int {
	return r.rows
}

// Close closes the underlying file when the reader was created by Open.
func (r *ChunkReader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}
