// Package netcdf adapts gridded NetCDF reanalysis files to the domain's
// lazy Field abstraction. It validates the coordinate schema up front and
// returns typed errors, so a malformed file fails at load time rather than
// when arithmetic is first forced.
package netcdf

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"

	nc "github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/couchcryptid/climate-anomaly-etl/internal/domain"
)

// timeAliases are the time-axis names seen across ERA5 file generations,
// in lookup order. Whichever exists first is treated as the canonical
// "time" axis; at most one alias applies.
var timeAliases = []string{"time", "valid_time", "date"}

var latAliases = []string{"latitude", "lat"}
var lonAliases = []string{"longitude", "lon"}

// auxiliaryVars are known non-data variables that must never be picked as
// the primary field.
var auxiliaryVars = []string{"expver", "number"}

// Loader opens gridded NetCDF files as lazy domain Fields.
type Loader struct {
	logger     *slog.Logger
	chunkSteps int
}

// NewLoader creates a Loader. chunkSteps is the time-axis partition size
// used for materialization; zero selects the domain default.
func NewLoader(logger *slog.Logger, chunkSteps int) *Loader {
	return &Loader{logger: logger, chunkSteps: chunkSteps}
}

// Open resolves the payload (unwrapping a ZIP container when needed),
// opens it, validates the coordinate schema, and returns the primary data
// variable as a lazy Field together with a closer for the underlying file.
// No bulk data is read here; only the coordinate axes are materialized.
func (l *Loader) Open(path string) (*domain.Field, io.Closer, error) {
	payload, err := ResolvePayload(path, l.logger)
	if err != nil {
		return nil, nil, err
	}

	group, err := nc.Open(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", payload, err)
	}

	field, err := l.load(group)
	if err != nil {
		group.Close()
		return nil, nil, fmt.Errorf("%s: %w", payload, err)
	}

	l.logger.Info("gridded file opened",
		"path", payload,
		"variable", field.Name,
		"units", field.Units,
		"timesteps", field.Len(),
		"lats", len(field.Lats()),
		"lons", len(field.Lons()),
	)
	return field, closerFunc(func() error { group.Close(); return nil }), nil
}

func (l *Loader) load(group api.Group) (*domain.Field, error) {
	vars := group.ListVariables()

	timeName, ok := firstPresent(vars, timeAliases)
	if !ok {
		return nil, fmt.Errorf("%w: no time axis (tried %v)", ErrSchema, timeAliases)
	}
	latName, ok := firstPresent(vars, latAliases)
	if !ok {
		return nil, fmt.Errorf("%w: no latitude axis (tried %v)", ErrSchema, latAliases)
	}
	lonName, ok := firstPresent(vars, lonAliases)
	if !ok {
		return nil, fmt.Errorf("%w: no longitude axis (tried %v)", ErrSchema, lonAliases)
	}

	lats, err := coordValues(group, latName)
	if err != nil {
		return nil, err
	}
	lons, err := coordValues(group, lonName)
	if err != nil {
		return nil, err
	}

	timeVar, err := group.GetVarGetter(timeName)
	if err != nil {
		return nil, fmt.Errorf("time axis %q: %w", timeName, err)
	}
	rawTimes, err := timeVar.Values()
	if err != nil {
		return nil, fmt.Errorf("time axis %q: %w", timeName, err)
	}
	times, err := parseTimeAxis(rawTimes, attrString(timeVar.Attributes(), "units"))
	if err != nil {
		return nil, err
	}

	name, vg, err := l.primaryVariable(group, vars, timeName, latName, lonName)
	if err != nil {
		return nil, err
	}

	attrs := vg.Attributes()
	src := &varSource{vg: vg, scale: 1}
	if v, ok := attrFloat(attrs, "scale_factor"); ok {
		src.scale = v
	}
	if v, ok := attrFloat(attrs, "add_offset"); ok {
		src.offset = v
	}
	if v, ok := attrFloat(attrs, "_FillValue"); ok {
		src.fill, src.hasFill = v, true
	} else if v, ok := attrFloat(attrs, "missing_value"); ok {
		src.fill, src.hasFill = v, true
	}

	return domain.NewField(name, attrString(attrs, "units"), times, lats, lons, src, l.chunkSteps)
}

// primaryVariable picks the first data variable laid out over
// (time, latitude, longitude). Post-normalization sources are expected to
// carry exactly one; extras are logged and ignored.
func (l *Loader) primaryVariable(group api.Group, vars []string, timeName, latName, lonName string) (string, api.VarGetter, error) {
	var picked string
	var getter api.VarGetter
	for _, name := range vars {
		if name == timeName || name == latName || name == lonName || slices.Contains(auxiliaryVars, name) {
			continue
		}
		vg, err := group.GetVarGetter(name)
		if err != nil {
			return "", nil, fmt.Errorf("variable %q: %w", name, err)
		}
		dims := vg.Dimensions()
		if len(dims) != 3 || dims[0] != timeName || dims[1] != latName || dims[2] != lonName {
			l.logger.Debug("skipping variable with unexpected layout", "variable", name, "dims", dims)
			continue
		}
		if picked != "" {
			l.logger.Warn("multiple data variables present, using first", "using", picked, "ignoring", name)
			continue
		}
		picked, getter = name, vg
	}
	if picked == "" {
		return "", nil, fmt.Errorf("%w: no data variable over (%s, %s, %s)", ErrSchema, timeName, latName, lonName)
	}
	return picked, getter, nil
}

// varSource adapts a NetCDF variable to domain.BlockSource, decoding
// packed values (scale/offset) and mapping fill values to NaN. Reads are
// slices along the time axis, so a chunk never pulls more than its own
// timesteps off disk.
type varSource struct {
	vg      api.VarGetter
	scale   float64
	offset  float64
	fill    float64
	hasFill bool
}

func (s *varSource) ReadBlock(begin, end int) ([][][]float64, error) {
	raw, err := s.vg.GetSlice(int64(begin), int64(end))
	if err != nil {
		return nil, err
	}
	switch v := raw.(type) {
	case [][][]float64:
		return decodeBlock(v, s), nil
	case [][][]float32:
		return decodeBlock(v, s), nil
	case [][][]int32:
		return decodeBlock(v, s), nil
	case [][][]int16:
		return decodeBlock(v, s), nil
	default:
		return nil, fmt.Errorf("unsupported variable value type %T", raw)
	}
}

func decodeBlock[T int16 | int32 | float32 | float64](raw [][][]T, s *varSource) [][][]float64 {
	out := make([][][]float64, len(raw))
	for t, grid := range raw {
		g := make([][]float64, len(grid))
		for la, row := range grid {
			r := make([]float64, len(row))
			for lo, cell := range row {
				v := float64(cell)
				if s.hasFill && v == s.fill {
					r[lo] = math.NaN()
					continue
				}
				r[lo] = v*s.scale + s.offset
			}
			g[la] = r
		}
		out[t] = g
	}
	return out
}

func coordValues(group api.Group, name string) ([]float64, error) {
	vg, err := group.GetVarGetter(name)
	if err != nil {
		return nil, fmt.Errorf("coordinate %q: %w", name, err)
	}
	raw, err := vg.Values()
	if err != nil {
		return nil, fmt.Errorf("coordinate %q: %w", name, err)
	}
	vals, err := toFloat64s(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: coordinate %q: %v", ErrSchema, name, err)
	}
	return vals, nil
}

func firstPresent(vars []string, candidates []string) (string, bool) {
	for _, c := range candidates {
		if slices.Contains(vars, c) {
			return c, true
		}
	}
	return "", false
}

// attrString reads a string attribute, tolerating the single-element slice
// form NetCDF attributes sometimes take.
func attrString(attrs api.AttributeMap, key string) string {
	v, ok := attrs.Get(key)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case []string:
		if len(s) > 0 {
			return s[0]
		}
	}
	return ""
}

// attrFloat reads a numeric attribute of any width, scalar or
// single-element slice.
func attrFloat(attrs api.AttributeMap, key string) (float64, bool) {
	v, ok := attrs.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case int16:
		return float64(n), true
	case []float64:
		if len(n) > 0 {
			return n[0], true
		}
	case []float32:
		if len(n) > 0 {
			return float64(n[0]), true
		}
	case []int32:
		if len(n) > 0 {
			return float64(n[0]), true
		}
	case []int16:
		if len(n) > 0 {
			return float64(n[0]), true
		}
	}
	return 0, false
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
