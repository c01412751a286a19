package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/climate-anomaly-etl/internal/adapter/netcdf"
	"github.com/couchcryptid/climate-anomaly-etl/internal/adapter/parquet"
	"github.com/couchcryptid/climate-anomaly-etl/internal/config"
	"github.com/couchcryptid/climate-anomaly-etl/internal/observability"
	"github.com/couchcryptid/climate-anomaly-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	opener := netcdf.NewLoader(logger, cfg.ChunkMonths)
	writer := parquet.NewWriter()

	p := pipeline.New(cfg, opener, writer, logger, metrics, pipeline.LogProgress{Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := p.Run(ctx); err != nil {
		logger.Error("pipeline error", "error", err)
		os.Exit(1)
	}
}
