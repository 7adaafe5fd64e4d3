package annotated

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rshade/influxbatch/internal/readings"
)

// DefaultPrefix is the output file name prefix used when none is configured.
const DefaultPrefix = "influx4"

// FileName returns the output file name for a 0-based batch index,
// e.g. "influx4_batch_0.csv".
func FileName(prefix string, index int) string {
	return prefix + "_batch_" + strconv.Itoa(index) + ".csv"
}

// Writer writes one annotated file per batch into Dir.
type Writer struct {
	Dir         string
	Prefix      string
	Transformer *Transformer
}

// NewWriter creates a Writer. An empty dir means the working directory and
// an empty prefix means DefaultPrefix.
func NewWriter(dir, prefix string, t *Transformer) *Writer {
	if dir == "" {
		dir = "."
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Writer{Dir: dir, Prefix: prefix, Transformer: t}
}

// BatchResult describes a written batch file.
type BatchResult struct {
	Index int
	Rows  int
	Name  string
	Path  string
}

// WriteBatch renders the whole batch in memory and then writes it in a single
// call, creating or truncating the target file. Nothing is written when
// rendering fails.
func (w *Writer) WriteBatch(index int, batch readings.Batch) (BatchResult, error) {
	data, err := w.Transformer.Render(batch)
	if err != nil {
		return BatchResult{}, err
	}

	name := FileName(w.Prefix, index)
	path := filepath.Join(w.Dir, name)
	if err = os.WriteFile(path, data, 0644); err != nil { //nolint:gosec // Output is meant to be shared with the importer.
		return BatchResult{}, fmt.Errorf("%w: writing %s: %w", ErrSerialization, path, err)
	}

	return BatchResult{Index: index, Rows: len(batch), Name: name, Path: path}, nil
}
