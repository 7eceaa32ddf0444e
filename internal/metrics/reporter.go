package metrics

import (
	"context"
	"log/slog"
	"time"
)

// Reporter periodically logs aggregate metrics for the whole gateway and for
// each tool seen so far. Purely observational; it never mutates the collector.
type Reporter struct {
	collector *Collector
	logger    *slog.Logger
	interval  time.Duration
}

// NewReporter creates a reporter reading from collector every interval.
func NewReporter(collector *Collector, logger *slog.Logger, interval time.Duration) *Reporter {
	return &Reporter{
		collector: collector,
		logger:    logger,
		interval:  interval,
	}
}

// Run blocks, emitting a report every interval until ctx is cancelled.
func (r *Reporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.report(ctx)
		}
	}
}

func (r *Reporter) report(ctx context.Context) {
	r.logger.LogAttrs(ctx, slog.LevelInfo, "metrics report",
		slog.Int("calls", len(r.collector.Metrics())),
		slog.Float64("error_rate", r.collector.ErrorRate()),
		slog.Duration("avg_duration", r.collector.AverageRequestDuration()),
	)

	for _, name := range r.collector.ToolNames() {
		r.logger.LogAttrs(ctx, slog.LevelInfo, "tool metrics",
			slog.String("tool", name),
			slog.Int("calls", len(r.collector.MetricsForTool(name))),
			slog.Float64("error_rate", r.collector.ErrorRateForTool(name)),
			slog.Duration("avg_duration", r.collector.AverageRequestDurationForTool(name)),
		)
	}
}
