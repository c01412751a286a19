package netcdf

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// epochLayouts are the timestamp formats seen in CF "since" units across
// ERA5 file generations, most precise first.
var epochLayouts = []string{
	"2006-01-02 15:04:05.9",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

var stepSeconds = map[string]float64{
	"seconds": 1,
	"minutes": 60,
	"hours":   3600,
	"days":    86400,
}

// parseTimeAxis converts raw time-axis values plus a CF-style units
// attribute of the form "<step> since <epoch>" into UTC timestamps.
// ERA5 files have shipped hours since 1900 (int32) and seconds since 1970
// (int64) depending on vintage; both reduce to the same arithmetic.
func parseTimeAxis(raw any, units string) ([]time.Time, error) {
	vals, err := toFloat64s(raw)
	if err != nil {
		return nil, fmt.Errorf("time axis: %w", err)
	}

	fields := strings.Fields(units)
	if len(fields) < 3 || !strings.EqualFold(fields[1], "since") {
		return nil, fmt.Errorf("%w: time units %q not of the form \"<step> since <epoch>\"", ErrSchema, units)
	}
	step, ok := stepSeconds[strings.ToLower(fields[0])]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported time step %q", ErrSchema, fields[0])
	}

	epochStr := strings.Join(fields[2:], " ")
	var epoch time.Time
	var parseErr error
	for _, layout := range epochLayouts {
		epoch, parseErr = time.Parse(layout, epochStr)
		if parseErr == nil {
			break
		}
	}
	if parseErr != nil {
		return nil, fmt.Errorf("%w: cannot parse time epoch %q", ErrSchema, epochStr)
	}

	ts := make([]time.Time, len(vals))
	for i, v := range vals {
		secs := math.Round(v * step)
		ts[i] = epoch.Add(time.Duration(secs) * time.Second).UTC()
	}
	return ts, nil
}

// toFloat64s widens any of the numeric slice types NetCDF axes come in.
func toFloat64s(raw any) ([]float64, error) {
	switch v := raw.(type) {
	case []float64:
		return v, nil
	case []float32:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	case []int64:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	case []int32:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	case []int16:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported axis value type %T", raw)
	}
}
