package parquet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow/go/v17/parquet/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-anomaly-etl/internal/domain"
)

func sampleTable() *domain.Table {
	return &domain.Table{Cols: []domain.Column{
		domain.Int16Column("year", []int16{1991, 1991, 1992}),
		domain.Int8Column("month", []int8{1, 2, 1}),
		domain.Float32Column("t2m_anomaly_c", []float32{0, 0.1, 10}),
		domain.Float64Column("latitude", []float64{10, 10, 20}),
	}}
}

func TestWriter(t *testing.T) {
	t.Run("writes readable parquet", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "stats.parquet")

		rows, size, err := NewWriter().Write(path, sampleTable())
		require.NoError(t, err)
		assert.Equal(t, int64(3), rows)
		assert.Positive(t, size)

		rdr, err := file.OpenParquetFile(path, false)
		require.NoError(t, err)
		defer rdr.Close()
		assert.Equal(t, int64(3), rdr.NumRows())
		assert.Equal(t, 4, rdr.MetaData().Schema.NumColumns())
	})

	t.Run("creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "processed", "nested", "stats.parquet")

		_, _, err := NewWriter().Write(path, sampleTable())
		require.NoError(t, err)

		_, err = os.Stat(path)
		require.NoError(t, err)
	})

	t.Run("empty table is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.parquet")
		_, _, err := NewWriter().Write(path, &domain.Table{})
		require.Error(t, err)
	})

	t.Run("zero rows still produce a valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "none.parquet")
		table := &domain.Table{Cols: []domain.Column{domain.Int16Column("year", nil)}}

		rows, _, err := NewWriter().Write(path, table)
		require.NoError(t, err)
		assert.Zero(t, rows)

		rdr, err := file.OpenParquetFile(path, false)
		require.NoError(t, err)
		defer rdr.Close()
		assert.Equal(t, int64(0), rdr.NumRows())
	})
}
