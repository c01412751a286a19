package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Config holds all pipeline settings, populated from environment
// variables. Defaults reproduce the reference run: full series 1991-2025,
// baseline 1991-2020, spatial window 2024 only.
type Config struct {
	// TMeanPath points at the monthly mean temperature grid (required).
	// TMinPath/TMaxPath are the optional extrema grids; set both or
	// neither.
	TMeanPath string
	TMinPath  string
	TMaxPath  string

	ProcessedDir string

	StartYear int
	EndYear   int

	BaselineStart int
	BaselineEnd   int

	SpatialStartYear int
	SpatialEndYear   int

	// VariablePrefix names the output columns, e.g. "t2m" yields
	// t2m_mean_c and t2m_anomaly_c.
	VariablePrefix string

	// ChunkMonths is the time-axis partition size for lazy materialization.
	ChunkMonths int

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	cfg := &Config{
		TMeanPath:      os.Getenv("TMEAN_PATH"),
		TMinPath:       os.Getenv("TMIN_PATH"),
		TMaxPath:       os.Getenv("TMAX_PATH"),
		ProcessedDir:   envOrDefault("PROCESSED_DIR", "./processed"),
		VariablePrefix: envOrDefault("VARIABLE_PREFIX", "t2m"),
		LogLevel:       envOrDefault("LOG_LEVEL", "info"),
		LogFormat:      envOrDefault("LOG_FORMAT", "text"),
	}

	for _, v := range []struct {
		dst  *int
		name string
		def  int
	}{
		{&cfg.StartYear, "START_YEAR", 1991},
		{&cfg.EndYear, "END_YEAR", 2025},
		{&cfg.BaselineStart, "BASELINE_START", 1991},
		{&cfg.BaselineEnd, "BASELINE_END", 2020},
		{&cfg.SpatialStartYear, "SPATIAL_START_YEAR", 2024},
		{&cfg.SpatialEndYear, "SPATIAL_END_YEAR", 2024},
		{&cfg.ChunkMonths, "CHUNK_MONTHS", 60},
	} {
		n, err := intEnv(v.name, v.def)
		if err != nil {
			return nil, err
		}
		*v.dst = n
	}

	if cfg.TMeanPath == "" {
		return nil, errors.New("TMEAN_PATH is required")
	}
	if (cfg.TMinPath == "") != (cfg.TMaxPath == "") {
		return nil, errors.New("TMIN_PATH and TMAX_PATH must be set together")
	}
	if cfg.StartYear > cfg.EndYear {
		return nil, fmt.Errorf("START_YEAR %d exceeds END_YEAR %d", cfg.StartYear, cfg.EndYear)
	}
	if cfg.BaselineStart > cfg.BaselineEnd {
		return nil, fmt.Errorf("BASELINE_START %d exceeds BASELINE_END %d", cfg.BaselineStart, cfg.BaselineEnd)
	}
	if cfg.SpatialStartYear > cfg.SpatialEndYear {
		return nil, fmt.Errorf("SPATIAL_START_YEAR %d exceeds SPATIAL_END_YEAR %d", cfg.SpatialStartYear, cfg.SpatialEndYear)
	}
	if cfg.ChunkMonths <= 0 {
		return nil, errors.New("CHUNK_MONTHS must be positive")
	}
	if cfg.VariablePrefix == "" {
		return nil, errors.New("VARIABLE_PREFIX must not be empty")
	}

	return cfg, nil
}

func envOrDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func intEnv(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, s)
	}
	return n, nil
}
