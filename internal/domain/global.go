package domain

import (
	"context"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// GlobalMonthlyStats reduces every timestep of the requested variables
// across the full latitude/longitude extent, producing one row per
// (year, month) with mean, median, min, and max columns per variable.
// Column order is year, month, then the four statistics for each variable
// in the requested order. NaN cells are excluded from the statistics; a
// timestep with no finite cells yields NaN statistics.
//
// Forcing the reduction is safe regardless of series length because it
// eliminates the two spatial dimensions first: materialization proceeds
// chunk by chunk and only the per-timestep scalars are retained.
func GlobalMonthlyStats(ctx context.Context, ds *Dataset, vars []string) (*Table, error) {
	if len(vars) == 0 {
		return &Table{}, nil
	}

	first, err := ds.Field(vars[0])
	if err != nil {
		return nil, err
	}
	n := first.Len()

	years := make([]int16, n)
	months := make([]int8, n)
	for i, ts := range first.Times() {
		years[i] = int16(ts.Year())
		months[i] = int8(ts.Month())
	}
	cols := []Column{Int16Column("year", years), Int8Column("month", months)}

	for _, name := range vars {
		f, err := ds.Field(name)
		if err != nil {
			return nil, err
		}

		means := make([]float32, n)
		medians := make([]float32, n)
		mins := make([]float32, n)
		maxs := make([]float32, n)
		scratch := make([]float64, 0, f.NCells())

		err = f.EachChunk(ctx, 0, n, func(start int, block [][][]float64) error {
			for t, grid := range block {
				scratch = scratch[:0]
				for _, row := range grid {
					for _, v := range row {
						if !math.IsNaN(v) {
							scratch = append(scratch, v)
						}
					}
				}

				i := start + t
				if len(scratch) == 0 {
					nan := float32(math.NaN())
					means[i], medians[i], mins[i], maxs[i] = nan, nan, nan, nan
					continue
				}

				sort.Float64s(scratch)
				k := len(scratch)
				means[i] = float32(stat.Mean(scratch, nil))
				// Sample median: middle value for odd counts, average of
				// the two middle values for even counts.
				medians[i] = float32((scratch[(k-1)/2] + scratch[k/2]) / 2)
				mins[i] = float32(scratch[0])
				maxs[i] = float32(scratch[k-1])
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		cols = append(cols,
			Float32Column(name+"_mean", means),
			Float32Column(name+"_median", medians),
			Float32Column(name+"_min", mins),
			Float32Column(name+"_max", maxs),
		)
	}

	return &Table{Cols: cols}, nil
}
