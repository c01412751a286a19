package pipeline

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"slices"
)

// Params captures the parameter set that generated an output file. It is
// serialized to a .meta.json sidecar next to each parquet file, so a rerun
// can tell whether an existing output actually matches the requested
// parameters instead of trusting the file name alone.
type Params struct {
	StartYear     int      `json:"start_year"`
	EndYear       int      `json:"end_year"`
	BaselineStart int      `json:"baseline_start,omitempty"`
	BaselineEnd   int      `json:"baseline_end,omitempty"`
	Variables     []string `json:"variables"`
}

func (p Params) equal(other Params) bool {
	return p.StartYear == other.StartYear &&
		p.EndYear == other.EndYear &&
		p.BaselineStart == other.BaselineStart &&
		p.BaselineEnd == other.BaselineEnd &&
		slices.Equal(p.Variables, other.Variables)
}

func sidecarPath(output string) string { return output + ".meta.json" }

// writeSidecar records the generating parameters next to the output file.
func writeSidecar(output string, p Params) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(sidecarPath(output), data, 0o644)
}

// checkSidecar compares a previous run's recorded parameters against the
// requested ones. found reports whether a readable sidecar exists; match
// whether its parameters agree. An unreadable or corrupt sidecar counts as
// found-but-mismatched so the stage regenerates rather than trusting it.
func checkSidecar(output string, want Params) (found, match bool) {
	data, err := os.ReadFile(sidecarPath(output))
	if errors.Is(err, fs.ErrNotExist) {
		return false, false
	}
	if err != nil {
		return true, false
	}
	var got Params
	if err := json.Unmarshal(data, &got); err != nil {
		return true, false
	}
	return true, got.equal(want)
}
