// internal/workers/reports_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// DefaultWarmDays is the window of daily totals precomputed by reports:warm
const DefaultWarmDays = 30

// ReportWarmer recomputes cached aggregates
type ReportWarmer interface {
	Warm(ctx context.Context, days int) error
}

// ReportsProcessor keeps the report cache populated
type ReportsProcessor struct {
	reports ReportWarmer
	logger  *slog.Logger
}

// NewReportsProcessor creates a new reports processor
func NewReportsProcessor(reports ReportWarmer, logger *slog.Logger) *ReportsProcessor {
	return &ReportsProcessor{
		reports: reports,
		logger:  logger.With(slog.String("processor", "reports")),
	}
}

// WarmReports handles reports:warm
func (p *ReportsProcessor) WarmReports(ctx context.Context, t *asynq.Task) error {
	payload := WarmPayload{Days: DefaultWarmDays}
	if len(t.Payload()) > 0 {
		if err := decodePayload(t, &payload); err != nil {
			return err
		}
	}
	if payload.Days <= 0 {
		payload.Days = DefaultWarmDays
	}

	start := time.Now()
	if err := p.reports.Warm(ctx, payload.Days); err != nil {
		return fmt.Errorf("failed to warm reports: %w", err)
	}

	p.logger.InfoContext(ctx, "report cache warmed",
		slog.Int("days", payload.Days),
		slog.Duration("duration_ms", time.Since(start)))
	return nil
}
