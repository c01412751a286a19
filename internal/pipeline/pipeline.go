package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/climate-anomaly-etl/internal/config"
	"github.com/couchcryptid/climate-anomaly-etl/internal/domain"
	"github.com/couchcryptid/climate-anomaly-etl/internal/observability"
)

// GridOpener resolves a source path into a lazy gridded field. The returned
// closer releases the underlying file handle once all materialization is
// done.
type GridOpener interface {
	Open(path string) (*domain.Field, io.Closer, error)
}

// TableWriter persists a table to a columnar output file, reporting the row
// count and the on-disk size.
type TableWriter interface {
	Write(path string, t *domain.Table) (rows, size int64, err error)
}

// Pipeline runs the full transformation: normalize the input grids, derive
// climatology anomalies, and write the global and spatial output tables.
// Outputs carry a parameter sidecar so a rerun with unchanged parameters
// skips finished stages.
type Pipeline struct {
	cfg      *config.Config
	opener   GridOpener
	writer   TableWriter
	logger   *slog.Logger
	metrics  *observability.Metrics
	progress Progress
}

// New wires a Pipeline. A nil progress falls back to NopProgress.
func New(cfg *config.Config, opener GridOpener, writer TableWriter, logger *slog.Logger, metrics *observability.Metrics, progress Progress) *Pipeline {
	if progress == nil {
		progress = NopProgress{}
	}
	return &Pipeline{
		cfg:      cfg,
		opener:   opener,
		writer:   writer,
		logger:   logger,
		metrics:  metrics,
		progress: progress,
	}
}

// Run executes all stages. The mean-temperature grid is required and any
// failure on it aborts the run; the extrema grids are optional and a missing
// file there only skips the extrema stage with a warning.
func (p *Pipeline) Run(ctx context.Context) error {
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	mean, closer, err := p.opener.Open(p.cfg.TMeanPath)
	if err != nil {
		return fmt.Errorf("open mean grid: %w", err)
	}
	defer closer.Close()

	field := domain.Normalize(mean, p.logger)
	ds, err := domain.MonthlyAnomaly(ctx, field, p.cfg.BaselineStart, p.cfg.BaselineEnd, p.cfg.VariablePrefix)
	if err != nil {
		return fmt.Errorf("compute anomalies: %w", err)
	}
	vars := ds.Names()

	globalOut := filepath.Join(p.cfg.ProcessedDir, fmt.Sprintf("global_monthly_stats_%d_%d.parquet", p.cfg.StartYear, p.cfg.EndYear))
	err = p.runStage(ctx, "global_stats", globalOut, Params{
		StartYear:     p.cfg.StartYear,
		EndYear:       p.cfg.EndYear,
		BaselineStart: p.cfg.BaselineStart,
		BaselineEnd:   p.cfg.BaselineEnd,
		Variables:     vars,
	}, func(ctx context.Context) (*domain.Table, error) {
		return domain.GlobalMonthlyStats(ctx, ds, vars)
	})
	if err != nil {
		return err
	}

	spatialOut := filepath.Join(p.cfg.ProcessedDir, fmt.Sprintf("spatial_anomalies_%d_%d.parquet", p.cfg.SpatialStartYear, p.cfg.SpatialEndYear))
	err = p.runStage(ctx, "spatial_anomalies", spatialOut, Params{
		StartYear:     p.cfg.SpatialStartYear,
		EndYear:       p.cfg.SpatialEndYear,
		BaselineStart: p.cfg.BaselineStart,
		BaselineEnd:   p.cfg.BaselineEnd,
		Variables:     vars,
	}, func(ctx context.Context) (*domain.Table, error) {
		return domain.SpatialWindow(ctx, ds, vars, p.cfg.SpatialStartYear, p.cfg.SpatialEndYear)
	})
	if err != nil {
		return err
	}

	if p.cfg.TMinPath != "" && p.cfg.TMaxPath != "" {
		if err := p.runExtrema(ctx); err != nil {
			return err
		}
	}

	p.logger.Info("pipeline finished")
	return nil
}

// runExtrema derives the min/max statistics table from the optional extrema
// grids. Missing source files skip the stage; any other failure aborts.
func (p *Pipeline) runExtrema(ctx context.Context) error {
	minField, minCloser, err := p.opener.Open(p.cfg.TMinPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			p.logger.Warn("extrema grid missing, skipping extrema stage", "path", p.cfg.TMinPath)
			return nil
		}
		return fmt.Errorf("open min grid: %w", err)
	}
	defer minCloser.Close()

	maxField, maxCloser, err := p.opener.Open(p.cfg.TMaxPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			p.logger.Warn("extrema grid missing, skipping extrema stage", "path", p.cfg.TMaxPath)
			return nil
		}
		return fmt.Errorf("open max grid: %w", err)
	}
	defer maxCloser.Close()

	ds, err := domain.MergeExtrema(
		domain.Normalize(minField, p.logger),
		domain.Normalize(maxField, p.logger),
		p.cfg.VariablePrefix,
	)
	if err != nil {
		return fmt.Errorf("merge extrema: %w", err)
	}
	vars := ds.Names()

	out := filepath.Join(p.cfg.ProcessedDir, fmt.Sprintf("global_monthly_extrema_%d_%d.parquet", p.cfg.StartYear, p.cfg.EndYear))
	return p.runStage(ctx, "global_extrema", out, Params{
		StartYear: p.cfg.StartYear,
		EndYear:   p.cfg.EndYear,
		Variables: vars,
	}, func(ctx context.Context) (*domain.Table, error) {
		return domain.GlobalMonthlyStats(ctx, ds, vars)
	})
}

// runStage computes and writes one output table unless a previous run
// already produced it with the same parameters. An existing output without a
// sidecar is reused but flagged; one with differing parameters is
// regenerated.
func (p *Pipeline) runStage(ctx context.Context, stage, output string, params Params, build func(context.Context) (*domain.Table, error)) error {
	if _, err := os.Stat(output); err == nil {
		found, match := checkSidecar(output, params)
		switch {
		case !found:
			p.logger.Warn("output exists without parameter record, reusing as-is", "stage", stage, "path", output)
			p.metrics.StagesSkipped.WithLabelValues(stage).Inc()
			p.progress.StageSkipped(stage, output)
			return nil
		case match:
			p.logger.Info("output up to date, skipping", "stage", stage, "path", output)
			p.metrics.StagesSkipped.WithLabelValues(stage).Inc()
			p.progress.StageSkipped(stage, output)
			return nil
		default:
			p.logger.Warn("existing output was built with different parameters, regenerating", "stage", stage, "path", output)
		}
	}

	p.progress.StageStarted(stage)
	start := clock.Now()

	tbl, err := build(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", stage, err)
	}
	rows, size, err := p.writer.Write(output, tbl)
	if err != nil {
		return fmt.Errorf("%s: write %s: %w", stage, output, err)
	}
	if err := writeSidecar(output, params); err != nil {
		return fmt.Errorf("%s: record parameters for %s: %w", stage, output, err)
	}

	elapsed := clock.Since(start)
	p.metrics.RowsWritten.WithLabelValues(stage).Add(float64(rows))
	p.metrics.BytesWritten.WithLabelValues(stage).Add(float64(size))
	p.metrics.StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
	p.progress.StageCompleted(stage, rows, size, elapsed)
	p.logger.Info("wrote output", "stage", stage, "path", output, "rows", rows, "bytes", size)
	return nil
}
