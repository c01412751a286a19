package pipeline

import (
	"log/slog"
	"time"
)

// Progress receives structured stage events: start, skip (cached output
// reused), and completion with row/byte counts. Implementations may log,
// relay, or ignore them; the pipeline does not depend on any behavior and
// calls them synchronously.
type Progress interface {
	StageStarted(stage string)
	StageSkipped(stage, path string)
	StageCompleted(stage string, rows, bytes int64, elapsed time.Duration)
}

// NopProgress discards all events.
type NopProgress struct{}

func (NopProgress) StageStarted(string)                                {}
func (NopProgress) StageSkipped(string, string)                        {}
func (NopProgress) StageCompleted(string, int64, int64, time.Duration) {}

// LogProgress relays stage events to a slog logger.
type LogProgress struct {
	Logger *slog.Logger
}

func (p LogProgress) StageStarted(stage string) {
	p.Logger.Info("stage started", "stage", stage)
}

func (p LogProgress) StageSkipped(stage, path string) {
	p.Logger.Info("stage skipped, output reused", "stage", stage, "path", path)
}

func (p LogProgress) StageCompleted(stage string, rows, bytes int64, elapsed time.Duration) {
	p.Logger.Info("stage completed", "stage", stage, "rows", rows, "bytes", bytes, "elapsed", elapsed.Round(time.Millisecond))
}
