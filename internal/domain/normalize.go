package domain

import (
	"log/slog"
	"math"
	"sort"
	"strings"
)

const kelvinOffset = 273.15

// NormalizeLongitudes relabels the longitude axis from the [0, 360)
// convention into signed [-180, 180) and reorders the grid so ascending
// index order matches ascending coordinate value. The mapping is exact at
// the boundaries: 180 maps to -180 and 0 stays 0. The data itself is not
// touched here; the reordering becomes part of the field's deferred
// evaluation and is applied at materialization.
func NormalizeLongitudes(f *Field) *Field {
	wrapped := make([]float64, len(f.lons))
	for i, lon := range f.lons {
		w := math.Mod(lon+180, 360)
		if w < 0 {
			w += 360
		}
		wrapped[i] = w - 180
	}

	perm := make([]int, len(wrapped))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool { return wrapped[perm[a]] < wrapped[perm[b]] })

	sorted := make([]float64, len(wrapped))
	for i, p := range perm {
		sorted[i] = wrapped[p]
	}
	return f.withLonOrder(sorted, perm)
}

// ConvertToCelsius appends a Kelvin-to-Celsius step for a field whose unit
// attribute reports Kelvin and rewrites the unit to "C". The conversion is
// gated on the attribute, never unconditional, so an already-Celsius field
// passes through bit-identical and the offset can never be subtracted
// twice. A variable without unit metadata is skipped with a warning so the
// ambiguity stays visible in logs, distinguishable from a confirmed
// non-Kelvin unit which is logged at debug.
func ConvertToCelsius(f *Field, logger *slog.Logger) *Field {
	switch {
	case f.Units == "":
		logger.Warn("variable has no unit attribute, conversion skipped", "variable", f.Name)
		return f
	case !strings.HasPrefix(strings.ToLower(f.Units), "k"):
		logger.Debug("variable not in Kelvin, conversion skipped", "variable", f.Name, "units", f.Units)
		return f
	}

	out := f.WithTransform(Transform{
		Name: "kelvin_to_celsius",
		Fn:   func(v float64, _, _, _ int) float64 { return v - kelvinOffset },
	})
	out.Units = "C"
	return out
}

// Normalize applies the standard grid cleanup: longitude wrap plus reorder,
// then unit conversion. The latitude axis is deliberately left in source
// order.
func Normalize(f *Field, logger *slog.Logger) *Field {
	return ConvertToCelsius(NormalizeLongitudes(f), logger)
}
