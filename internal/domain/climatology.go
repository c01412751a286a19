package domain

import (
	"context"
	"math"
	"time"
)

// Climatology is the per-calendar-month baseline of a field over a fixed
// reference period: one (lat, lon) grid per month, each cell the mean of
// that cell's values across all baseline years for that month. Cells with
// no baseline data are NaN.
type Climatology struct {
	Months [12][][]float64 // indexed by month-1
}

// ComputeClimatology averages the field per calendar month over the
// inclusive [startYear, endYear] window. NaN cells are excluded from the
// mean. A baseline window that does not intersect the series produces an
// all-NaN climatology rather than an error; the missing values propagate
// into every derived anomaly, which is the documented degenerate outcome.
func ComputeClimatology(ctx context.Context, f *Field, startYear, endYear int) (*Climatology, error) {
	nLat, nLon := len(f.lats), len(f.lons)

	var sums, counts [12][][]float64
	for m := 0; m < 12; m++ {
		sums[m] = makeGrid(nLat, nLon, 0)
		counts[m] = makeGrid(nLat, nLon, 0)
	}

	from := time.Date(startYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(endYear, time.December, 31, 23, 59, 59, 0, time.UTC)
	begin, end := f.TimeRange(from, to)

	err := f.EachChunk(ctx, begin, end, func(start int, block [][][]float64) error {
		for t, grid := range block {
			m := int(f.times[start+t].Month()) - 1
			for la := 0; la < nLat; la++ {
				for lo := 0; lo < nLon; lo++ {
					v := grid[la][lo]
					if math.IsNaN(v) {
						continue
					}
					sums[m][la][lo] += v
					counts[m][la][lo]++
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	clim := &Climatology{}
	for m := 0; m < 12; m++ {
		clim.Months[m] = makeGrid(nLat, nLon, math.NaN())
		for la := 0; la < nLat; la++ {
			for lo := 0; lo < nLon; lo++ {
				if n := counts[m][la][lo]; n > 0 {
					clim.Months[m][la][lo] = sums[m][la][lo] / n
				}
			}
		}
	}
	return clim, nil
}

// MonthlyAnomaly derives {prefix}_mean_c and {prefix}_anomaly_c fields from
// a normalized monthly-mean field. The climatology is computed once over
// the baseline window; the anomaly subtracts the 12-value climatology from
// every timestamp of the entire series, including years outside the
// baseline. Both derived fields truncate to single precision to bound
// output size.
func MonthlyAnomaly(ctx context.Context, f *Field, baselineStart, baselineEnd int, prefix string) (*Dataset, error) {
	clim, err := ComputeClimatology(ctx, f, baselineStart, baselineEnd)
	if err != nil {
		return nil, err
	}

	months := make([]int, len(f.times))
	for i, ts := range f.times {
		months[i] = int(ts.Month()) - 1
	}

	mean := f.WithTransform(truncateTransform())
	mean.Name = prefix + "_mean_c"

	anom := f.WithTransform(Transform{
		Name: "anomaly",
		Fn: func(v float64, step, la, lo int) float64 {
			return v - clim.Months[months[step]][la][lo]
		},
	}).WithTransform(truncateTransform())
	anom.Name = prefix + "_anomaly_c"

	ds := NewDataset()
	ds.Add(mean.Name, mean)
	ds.Add(anom.Name, anom)
	return ds, nil
}

// truncateTransform rounds values through float32. Derived outputs are
// stored in single precision, and truncating inside the evaluation graph
// keeps later consumers consistent with what lands on disk.
func truncateTransform() Transform {
	return Transform{
		Name: "float32_truncate",
		Fn:   func(v float64, _, _, _ int) float64 { return float64(float32(v)) },
	}
}

func makeGrid(nLat, nLon int, fill float64) [][]float64 {
	g := make([][]float64, nLat)
	for i := range g {
		row := make([]float64, nLon)
		if fill != 0 {
			for j := range row {
				row[j] = fill
			}
		}
		g[i] = row
	}
	return g
}
