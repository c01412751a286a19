package domain

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// BlockSource supplies raw grid values for a half-open range of timesteps.
// Implementations read from chunked storage; callers own the returned block
// and the source must not retain it. Values are indexed [step][lat][lon].
type BlockSource interface {
	ReadBlock(begin, end int) ([][][]float64, error)
}

// SliceSource adapts an in-memory [time][lat][lon] array to BlockSource.
type SliceSource [][][]float64

func (s SliceSource) ReadBlock(begin, end int) ([][][]float64, error) {
	if begin < 0 || end > len(s) || begin > end {
		return nil, fmt.Errorf("block [%d, %d) out of range [0, %d)", begin, end, len(s))
	}
	return s[begin:end], nil
}

// Transform is one deferred pointwise step in a Field's evaluation graph.
// Fn receives the value together with its absolute (time, lat, lon) indices
// so steps like anomaly subtraction can look up per-month state.
type Transform struct {
	Name string
	Fn   func(v float64, step, latIdx, lonIdx int) float64
}

// Field is a lazily evaluated (time, latitude, longitude) grid. It records
// coordinate axes, a raw block source, an optional longitude reordering,
// and a list of pending pointwise transforms. No bulk data is read until a
// consumer materializes a range, and materialization proceeds in chunks of
// a fixed number of timesteps so the full grid never has to be resident.
type Field struct {
	Name  string
	Units string

	times []time.Time
	lats  []float64
	lons  []float64

	src     BlockSource
	lonPerm []int // maps output index to source index; nil is identity
	ops     []Transform
	chunk   int
}

// DefaultChunkSteps is the number of timesteps materialized per block when
// the caller does not specify a partition size (five years of monthly data).
const DefaultChunkSteps = 60

// NewField wraps a block source and its coordinate axes in a lazy Field.
// The time axis must be monotonically increasing.
func NewField(name, units string, times []time.Time, lats, lons []float64, src BlockSource, chunkSteps int) (*Field, error) {
	if len(times) == 0 || len(lats) == 0 || len(lons) == 0 {
		return nil, fmt.Errorf("field %q: empty axis (time=%d lat=%d lon=%d)", name, len(times), len(lats), len(lons))
	}
	for i := 1; i < len(times); i++ {
		if !times[i].After(times[i-1]) {
			return nil, fmt.Errorf("field %q: time axis not monotonically increasing at index %d", name, i)
		}
	}
	if chunkSteps <= 0 {
		chunkSteps = DefaultChunkSteps
	}
	return &Field{
		Name:  name,
		Units: units,
		times: times,
		lats:  lats,
		lons:  lons,
		src:   src,
		chunk: chunkSteps,
	}, nil
}

// Times returns the time axis. Callers must not modify it.
func (f *Field) Times() []time.Time { return f.times }

// Lats returns the latitude axis in source order. Callers must not modify it.
func (f *Field) Lats() []float64 { return f.lats }

// Lons returns the longitude axis. Callers must not modify it.
func (f *Field) Lons() []float64 { return f.lons }

// Len returns the number of timesteps.
func (f *Field) Len() int { return len(f.times) }

// NCells returns the number of grid cells per timestep.
func (f *Field) NCells() int { return len(f.lats) * len(f.lons) }

// ShapeEquals reports whether two fields have identical axis lengths.
func (f *Field) ShapeEquals(other *Field) bool {
	return len(f.times) == len(other.times) &&
		len(f.lats) == len(other.lats) &&
		len(f.lons) == len(other.lons)
}

func (f *Field) shape() string {
	return fmt.Sprintf("(%d, %d, %d)", len(f.times), len(f.lats), len(f.lons))
}

func (f *Field) clone() *Field {
	c := *f
	c.ops = make([]Transform, len(f.ops), len(f.ops)+1)
	copy(c.ops, f.ops)
	return &c
}

// WithTransform returns a copy of the field with one more deferred step
// appended to its evaluation graph. The receiver is unchanged.
func (f *Field) WithTransform(t Transform) *Field {
	c := f.clone()
	c.ops = append(c.ops, t)
	return c
}

// withLonOrder returns a copy with a relabeled, reordered longitude axis.
// perm maps new index to current index and is composed with any existing
// reordering so at most one permutation is applied at materialization.
func (f *Field) withLonOrder(lons []float64, perm []int) *Field {
	c := f.clone()
	c.lons = lons
	if f.lonPerm == nil {
		c.lonPerm = perm
		return c
	}
	composed := make([]int, len(perm))
	for i, p := range perm {
		composed[i] = f.lonPerm[p]
	}
	c.lonPerm = composed
	return c
}

// MaterializeRange forces evaluation of timesteps [begin, end): it reads the
// raw block, applies the longitude reordering, then applies every pending
// transform in order. The returned block is freshly allocated.
func (f *Field) MaterializeRange(begin, end int) ([][][]float64, error) {
	if begin < 0 || end > len(f.times) || begin >= end {
		return nil, fmt.Errorf("field %q: materialize range [%d, %d) out of bounds [0, %d)", f.Name, begin, end, len(f.times))
	}
	raw, err := f.src.ReadBlock(begin, end)
	if err != nil {
		return nil, fmt.Errorf("field %q: read block [%d, %d): %w", f.Name, begin, end, err)
	}
	if len(raw) != end-begin {
		return nil, fmt.Errorf("field %q: source returned %d steps, want %d", f.Name, len(raw), end-begin)
	}

	out := make([][][]float64, end-begin)
	for t := range raw {
		step := begin + t
		grid := make([][]float64, len(f.lats))
		for la := range f.lats {
			row := make([]float64, len(f.lons))
			for lo := range f.lons {
				v := raw[t][la][f.sourceLon(lo)]
				for _, op := range f.ops {
					v = op.Fn(v, step, la, lo)
				}
				row[lo] = v
			}
			grid[la] = row
		}
		out[t] = grid
	}
	return out, nil
}

func (f *Field) sourceLon(i int) int {
	if f.lonPerm == nil {
		return i
	}
	return f.lonPerm[i]
}

// EachChunk materializes [begin, end) one chunk at a time, invoking fn with
// the absolute start index of each block. This is the bounded-memory
// iteration entry point: at most one chunk is resident at a time.
func (f *Field) EachChunk(ctx context.Context, begin, end int, fn func(start int, block [][][]float64) error) error {
	for start := begin; start < end; start += f.chunk {
		if err := ctx.Err(); err != nil {
			return err
		}
		stop := min(start+f.chunk, end)
		block, err := f.MaterializeRange(start, stop)
		if err != nil {
			return err
		}
		if err := fn(start, block); err != nil {
			return err
		}
	}
	return nil
}

// TimeRange returns the half-open index range of timestamps falling within
// [from, to] inclusive. An empty intersection yields begin == end.
func (f *Field) TimeRange(from, to time.Time) (begin, end int) {
	begin = sort.Search(len(f.times), func(i int) bool { return !f.times[i].Before(from) })
	end = sort.Search(len(f.times), func(i int) bool { return f.times[i].After(to) })
	if end < begin {
		end = begin
	}
	return begin, end
}

// YearRange returns the index range covering calendar year y.
func (f *Field) YearRange(y int) (begin, end int) {
	from := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(y, time.December, 31, 23, 59, 59, 0, time.UTC)
	return f.TimeRange(from, to)
}
