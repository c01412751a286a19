package domain

import (
	"context"
	"sort"
)

// SpatialWindow extracts full-resolution per-cell values of the requested
// variables for the inclusive [startYear, endYear] window. Unlike the
// global reduction this path retains the spatial dimensions, so it never
// materializes the whole window at once: each calendar year's slice is
// forced on its own, flattened to rows, appended, and discarded before the
// next year begins, bounding peak memory to roughly one year's spatial
// footprint regardless of window width.
//
// The concatenated result is sorted by (latitude, longitude, year, month)
// so downstream consumers can scan one location's months contiguously;
// that ordering is part of the contract.
func SpatialWindow(ctx context.Context, ds *Dataset, vars []string, startYear, endYear int) (*Table, error) {
	if len(vars) == 0 {
		return &Table{}, nil
	}
	first, err := ds.Field(vars[0])
	if err != nil {
		return nil, err
	}
	lats, lons := first.Lats(), first.Lons()

	var (
		outLat   []float64
		outLon   []float64
		outYear  []int16
		outMonth []int8
		outVals  = make([][]float32, len(vars))
	)

	for year := startYear; year <= endYear; year++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		begin, end := first.YearRange(year)
		if begin == end {
			continue
		}

		blocks := make([][][][]float64, len(vars))
		for vi, name := range vars {
			f, err := ds.Field(name)
			if err != nil {
				return nil, err
			}
			blocks[vi], err = f.MaterializeRange(begin, end)
			if err != nil {
				return nil, err
			}
		}

		for t := 0; t < end-begin; t++ {
			ts := first.Times()[begin+t]
			y, m := int16(ts.Year()), int8(ts.Month())
			for la, lat := range lats {
				for lo, lon := range lons {
					outLat = append(outLat, lat)
					outLon = append(outLon, lon)
					outYear = append(outYear, y)
					outMonth = append(outMonth, m)
					for vi := range vars {
						outVals[vi] = append(outVals[vi], float32(blocks[vi][t][la][lo]))
					}
				}
			}
		}
		// blocks goes out of scope here; the next year reuses nothing from it.
	}

	idx := make([]int, len(outLat))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		if outLat[ia] != outLat[ib] {
			return outLat[ia] < outLat[ib]
		}
		if outLon[ia] != outLon[ib] {
			return outLon[ia] < outLon[ib]
		}
		if outYear[ia] != outYear[ib] {
			return outYear[ia] < outYear[ib]
		}
		return outMonth[ia] < outMonth[ib]
	})

	cols := []Column{
		Float64Column("latitude", reorder(outLat, idx)),
		Float64Column("longitude", reorder(outLon, idx)),
		Int16Column("year", reorder(outYear, idx)),
		Int8Column("month", reorder(outMonth, idx)),
	}
	for vi, name := range vars {
		cols = append(cols, Float32Column(name, reorder(outVals[vi], idx)))
	}
	return &Table{Cols: cols}, nil
}

// reorder returns vals permuted so output position i holds vals[idx[i]].
func reorder[T any](vals []T, idx []int) []T {
	out := make([]T, len(vals))
	for i, p := range idx {
		out[i] = vals[p]
	}
	return out
}
