package netcdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeAxis(t *testing.T) {
	t.Run("hours since 1900", func(t *testing.T) {
		// ERA5 classic: int32 hours since the 1900 epoch.
		hours := []int32{797688, 798432} // 1991-01-01, 1991-02-01
		ts, err := parseTimeAxis(hours, "hours since 1900-01-01 00:00:00.0")
		require.NoError(t, err)
		require.Len(t, ts, 2)
		assert.Equal(t, time.Date(1991, 1, 1, 0, 0, 0, 0, time.UTC), ts[0])
		assert.Equal(t, time.Date(1991, 2, 1, 0, 0, 0, 0, time.UTC), ts[1])
	})

	t.Run("seconds since 1970", func(t *testing.T) {
		secs := []int64{662688000} // 1991-01-01
		ts, err := parseTimeAxis(secs, "seconds since 1970-01-01")
		require.NoError(t, err)
		assert.Equal(t, time.Date(1991, 1, 1, 0, 0, 0, 0, time.UTC), ts[0])
	})

	t.Run("days since epoch", func(t *testing.T) {
		days := []float64{0, 31}
		ts, err := parseTimeAxis(days, "days since 1991-01-01")
		require.NoError(t, err)
		assert.Equal(t, time.Date(1991, 1, 1, 0, 0, 0, 0, time.UTC), ts[0])
		assert.Equal(t, time.Date(1991, 2, 1, 0, 0, 0, 0, time.UTC), ts[1])
	})

	t.Run("malformed units", func(t *testing.T) {
		for _, units := range []string{"", "hours", "hours until 1900-01-01", "fortnights since 1900-01-01"} {
			_, err := parseTimeAxis([]int32{0}, units)
			require.Error(t, err, "units %q", units)
			assert.ErrorIs(t, err, ErrSchema)
		}
	})

	t.Run("unparseable epoch", func(t *testing.T) {
		_, err := parseTimeAxis([]int32{0}, "hours since yesterday")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSchema)
	})

	t.Run("unsupported value type", func(t *testing.T) {
		_, err := parseTimeAxis([]string{"1991"}, "hours since 1900-01-01")
		require.Error(t, err)
	})
}
