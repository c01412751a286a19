package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSidecar(t *testing.T) {
	params := Params{
		StartYear:     1991,
		EndYear:       2025,
		BaselineStart: 1991,
		BaselineEnd:   2020,
		Variables:     []string{"t2m_mean_c", "t2m_anomaly_c"},
	}

	t.Run("roundtrip matches", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "stats.parquet")
		require.NoError(t, writeSidecar(out, params))

		found, match := checkSidecar(out, params)
		assert.True(t, found)
		assert.True(t, match)
	})

	t.Run("missing sidecar", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "stats.parquet")
		found, match := checkSidecar(out, params)
		assert.False(t, found)
		assert.False(t, match)
	})

	t.Run("changed parameters mismatch", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "stats.parquet")
		require.NoError(t, writeSidecar(out, params))

		changed := params
		changed.BaselineEnd = 2010
		found, match := checkSidecar(out, changed)
		assert.True(t, found)
		assert.False(t, match)
	})

	t.Run("changed variable list mismatch", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "stats.parquet")
		require.NoError(t, writeSidecar(out, params))

		changed := params
		changed.Variables = []string{"t2m_min_c", "t2m_max_c"}
		found, match := checkSidecar(out, changed)
		assert.True(t, found)
		assert.False(t, match)
	})

	t.Run("unreadable sidecar counts as mismatch", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "stats.parquet")
		// A directory at the sidecar path makes the read fail with
		// something other than not-exist.
		require.NoError(t, os.Mkdir(sidecarPath(out), 0o755))

		found, match := checkSidecar(out, params)
		assert.True(t, found)
		assert.False(t, match)
	})

	t.Run("corrupt sidecar counts as mismatch", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "stats.parquet")
		require.NoError(t, os.WriteFile(sidecarPath(out), []byte("{not json"), 0o644))

		found, match := checkSidecar(out, params)
		assert.True(t, found)
		assert.False(t, match)
	})
}
