package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeExtrema(t *testing.T) {
	times := monthlyTimes(1991, 12)
	lats := []float64{10, 20}
	lons := []float64{0, 90}

	newField := func(t *testing.T, name string, base float64) *Field {
		t.Helper()
		src := gridSource(12, 2, 2, func(ti, la, lo int) float64 { return base + float64(ti) })
		f, err := NewField(name, "C", times, lats, lons, src, 6)
		require.NoError(t, err)
		return f
	}

	t.Run("matched shapes merge", func(t *testing.T) {
		ds, err := MergeExtrema(newField(t, "t2m_min", -5), newField(t, "t2m_max", 5), "t2m")
		require.NoError(t, err)
		assert.Equal(t, []string{"t2m_min_c", "t2m_max_c"}, ds.Names())

		lo, err := ds.Field("t2m_min_c")
		require.NoError(t, err)
		hi, err := ds.Field("t2m_max_c")
		require.NoError(t, err)

		loBlock, err := lo.MaterializeRange(0, 1)
		require.NoError(t, err)
		hiBlock, err := hi.MaterializeRange(0, 1)
		require.NoError(t, err)
		assert.Equal(t, -5.0, loBlock[0][0][0])
		assert.Equal(t, 5.0, hiBlock[0][0][0])
	})

	t.Run("shape mismatch is a typed error", func(t *testing.T) {
		short := gridSource(12, 1, 2, func(int, int, int) float64 { return 0 })
		f, err := NewField("t2m_max", "C", times, []float64{10}, lons, short, 6)
		require.NoError(t, err)

		_, err = MergeExtrema(newField(t, "t2m_min", 0), f, "t2m")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrShapeMismatch)
	})
}
