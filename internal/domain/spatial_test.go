package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpatialWindow(t *testing.T) {
	t.Run("row count and ordering", func(t *testing.T) {
		f := referenceField(t)
		ds, err := MonthlyAnomaly(context.Background(), f, 1991, 1991, "t2m")
		require.NoError(t, err)

		table, err := SpatialWindow(context.Background(), ds, ds.Names(), 1991, 1992)
		require.NoError(t, err)

		// cells x months in window: 4 * 24.
		assert.Equal(t, int64(96), table.NumRows())
		require.Equal(t, 6, table.NumCols())
		assert.Equal(t, "latitude", table.Cols[0].Name)
		assert.Equal(t, "longitude", table.Cols[1].Name)
		assert.Equal(t, "year", table.Cols[2].Name)
		assert.Equal(t, "month", table.Cols[3].Name)

		lat := table.Cols[0].F64
		lon := table.Cols[1].F64
		year := table.Cols[2].I16
		month := table.Cols[3].I8

		// Sorted by (latitude, longitude, year, month): one location's full
		// series is contiguous.
		for i := 1; i < len(lat); i++ {
			prev := [4]float64{lat[i-1], lon[i-1], float64(year[i-1]), float64(month[i-1])}
			cur := [4]float64{lat[i], lon[i], float64(year[i]), float64(month[i])}
			assert.True(t, prev[0] < cur[0] ||
				(prev[0] == cur[0] && prev[1] < cur[1]) ||
				(prev[0] == cur[0] && prev[1] == cur[1] && prev[2] < cur[2]) ||
				(prev[0] == cur[0] && prev[1] == cur[1] && prev[2] == cur[2] && prev[3] < cur[3]),
				"row %d not in (lat, lon, year, month) order", i)
		}

		// First block: lat 10, lon -170 (the wrapped 190), Jan 1991 onward.
		assert.Equal(t, 10.0, lat[0])
		assert.Equal(t, -170.0, lon[0])
		assert.Equal(t, int16(1991), year[0])
		assert.Equal(t, int8(1), month[0])

		anom := table.Cols[5].F32
		assert.Equal(t, "t2m_anomaly_c", table.Cols[5].Name)
		assert.InDelta(t, 0.0, float64(anom[0]), 1e-4)   // Jan 1991
		assert.InDelta(t, 10.0, float64(anom[12]), 1e-4) // Jan 1992, same cell
	})

	t.Run("single-year window matches slice of multi-year run", func(t *testing.T) {
		f := referenceField(t)
		ds, err := MonthlyAnomaly(context.Background(), f, 1991, 1991, "t2m")
		require.NoError(t, err)

		multi, err := SpatialWindow(context.Background(), ds, ds.Names(), 1991, 1992)
		require.NoError(t, err)
		single, err := SpatialWindow(context.Background(), ds, ds.Names(), 1992, 1992)
		require.NoError(t, err)

		assert.Equal(t, int64(48), single.NumRows())

		// Collect 1992 rows from the multi-year run; values must agree
		// row for row with the single-year run.
		year := multi.Cols[2].I16
		si := 0
		for i := range year {
			if year[i] != 1992 {
				continue
			}
			assert.Equal(t, multi.Cols[0].F64[i], single.Cols[0].F64[si])
			assert.Equal(t, multi.Cols[1].F64[i], single.Cols[1].F64[si])
			assert.Equal(t, multi.Cols[3].I8[i], single.Cols[3].I8[si])
			assert.Equal(t, multi.Cols[4].F32[i], single.Cols[4].F32[si])
			assert.Equal(t, multi.Cols[5].F32[i], single.Cols[5].F32[si])
			si++
		}
		assert.Equal(t, 48, si)
	})

	t.Run("years outside the series contribute nothing", func(t *testing.T) {
		f := referenceField(t)
		ds := NewDataset()
		ds.Add("t2m", f)

		table, err := SpatialWindow(context.Background(), ds, []string{"t2m"}, 1989, 1990)
		require.NoError(t, err)
		assert.Equal(t, int64(0), table.NumRows())
	})

	t.Run("empty variable list", func(t *testing.T) {
		table, err := SpatialWindow(context.Background(), NewDataset(), nil, 1991, 1992)
		require.NoError(t, err)
		assert.Equal(t, int64(0), table.NumRows())
	})
}
