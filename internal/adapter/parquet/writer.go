// Package parquet persists flat tables as snappy-compressed parquet files
// with explicit column ordering, the interchange format the downstream
// visualization stages read.
package parquet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	pq "github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/compress"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"

	"github.com/couchcryptid/climate-anomaly-etl/internal/domain"
)

// rowGroupSize caps how many rows go into one arrow record / parquet row
// group, so a multi-million-row spatial table is streamed out in pieces
// instead of built as one monolithic record.
const rowGroupSize = 1 << 20

// Writer persists domain tables to parquet.
type Writer struct {
	alloc memory.Allocator
}

// NewWriter creates a Writer backed by the default allocator.
func NewWriter() *Writer {
	return &Writer{alloc: memory.DefaultAllocator}
}

// Write persists the table at path, creating parent directories on demand.
// It returns the row count and on-disk byte size for progress reporting.
func (w *Writer) Write(path string, t *domain.Table) (rows, size int64, err error) {
	if t.NumCols() == 0 {
		return 0, 0, fmt.Errorf("write %s: table has no columns", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, 0, err
	}

	schema, err := buildSchema(t)
	if err != nil {
		return 0, 0, fmt.Errorf("write %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, 0, err
	}

	props := pq.NewWriterProperties(pq.WithCompression(compress.Codecs.Snappy))
	fw, err := pqarrow.NewFileWriter(schema, f, props, pqarrow.DefaultWriterProps())
	if err != nil {
		f.Close()
		return 0, 0, fmt.Errorf("write %s: %w", path, err)
	}

	total := t.NumRows()
	for begin := int64(0); begin < total; begin += rowGroupSize {
		end := min(begin+rowGroupSize, total)
		rec := w.buildRecord(schema, t, begin, end)
		err := fw.Write(rec)
		rec.Release()
		if err != nil {
			fw.Close()
			return 0, 0, fmt.Errorf("write %s: %w", path, err)
		}
	}

	if err := fw.Close(); err != nil {
		return 0, 0, fmt.Errorf("write %s: %w", path, err)
	}
	// The parquet writer may close the sink itself; a second close is fine.
	if cerr := f.Close(); cerr != nil && !errors.Is(cerr, os.ErrClosed) {
		return 0, 0, cerr
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, 0, err
	}
	return total, info.Size(), nil
}

func buildSchema(t *domain.Table) (*arrow.Schema, error) {
	fields := make([]arrow.Field, len(t.Cols))
	for i, c := range t.Cols {
		var dt arrow.DataType
		switch c.Kind {
		case domain.Int8Kind:
			dt = arrow.PrimitiveTypes.Int8
		case domain.Int16Kind:
			dt = arrow.PrimitiveTypes.Int16
		case domain.Float32Kind:
			dt = arrow.PrimitiveTypes.Float32
		case domain.Float64Kind:
			dt = arrow.PrimitiveTypes.Float64
		default:
			return nil, fmt.Errorf("column %q has unknown kind %d", c.Name, c.Kind)
		}
		fields[i] = arrow.Field{Name: c.Name, Type: dt}
	}
	return arrow.NewSchema(fields, nil), nil
}

func (w *Writer) buildRecord(schema *arrow.Schema, t *domain.Table, begin, end int64) arrow.Record {
	b := array.NewRecordBuilder(w.alloc, schema)
	defer b.Release()

	for i, c := range t.Cols {
		switch c.Kind {
		case domain.Int8Kind:
			b.Field(i).(*array.Int8Builder).AppendValues(c.I8[begin:end], nil)
		case domain.Int16Kind:
			b.Field(i).(*array.Int16Builder).AppendValues(c.I16[begin:end], nil)
		case domain.Float32Kind:
			b.Field(i).(*array.Float32Builder).AppendValues(c.F32[begin:end], nil)
		case domain.Float64Kind:
			b.Field(i).(*array.Float64Builder).AppendValues(c.F64[begin:end], nil)
		}
	}
	return b.NewRecord()
}
