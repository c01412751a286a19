// Package domain models monthly gridded surface-temperature climatology.
//
// # Data Source
//
// Input grids are ERA5 / ERA5-Land monthly-averaged reanalysis files
// (Copernicus Climate Data Store), self-describing NetCDF on a regular
// (time, latitude, longitude) grid with a monthly timestep. Temperatures
// arrive in Kelvin with longitudes on the [0, 360) convention; the
// normalization steps in this package standardize both before any derived
// product is computed.
//
// # Lazy Evaluation
//
// The central type is [Field]: a chunk-partitioned, lazily evaluated 3-D
// grid. A Field holds its coordinate axes, a [BlockSource] that reads raw
// values in timestep ranges, an optional longitude permutation, and an
// ordered list of pending pointwise [Transform] steps (unit conversion,
// anomaly subtraction, single-precision truncation). Composing transforms
// allocates nothing but a slice header; values are only produced when a
// consumer calls MaterializeRange or EachChunk, and then only for the
// requested window. Multi-decade grids far larger than memory are handled
// by keeping exactly two materialization points, both bounded:
//
//   - [GlobalMonthlyStats] collapses the spatial dimensions chunk by
//     chunk, retaining only per-timestep scalars.
//   - [SpatialWindow] forces one calendar year at a time, discarding each
//     year's slice before the next begins.
//
// # Climatology and Anomalies
//
// A climatology is the per-calendar-month mean over a fixed baseline
// period (reference run: 1991-2020). The anomaly at (t, lat, lon) is the
// observed value minus the climatology for month(t), broadcast over every
// year of the series. By construction the per-month mean anomaly over the
// baseline period is zero (within float32 tolerance). A baseline window
// that misses the series entirely yields an all-NaN climatology and
// all-NaN anomalies: missing data that flows through, not an error.
//
// # Conventions
//
//	Longitude: ((lon + 180) mod 360) - 180, grid re-sorted ascending.
//	           180 maps exactly to -180; 0 stays 0.
//	Units:     Kelvin detected by a unit attribute starting with "k"/"K";
//	           conversion subtracts 273.15 once and rewrites the unit to
//	           "C". Attribute-gated, hence idempotent.
//	Latitude:  left untouched in source order.
//	Missing:   NaN throughout; statistics skip NaN cells.
package domain
