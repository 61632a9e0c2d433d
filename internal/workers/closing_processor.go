// internal/workers/closing_processor.go
package workers

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"github.com/ammerola/mrstore-pos/internal/adapters/export"
	"github.com/ammerola/mrstore-pos/internal/core/domain"
	"github.com/ammerola/mrstore-pos/internal/core/ports"
)

// ClosingProcessor closes the register on schedule and archives closed days
type ClosingProcessor struct {
	closings ports.ClosingService
	reports  ports.ReportService
	storage  ports.ArchiveStorage
	loc      *time.Location
	logger   *slog.Logger
}

// NewClosingProcessor creates a new closing processor. storage may be nil,
// in which case archive tasks are acknowledged without uploading.
func NewClosingProcessor(closings ports.ClosingService, reports ports.ReportService, storage ports.ArchiveStorage, loc *time.Location, logger *slog.Logger) *ClosingProcessor {
	if loc == nil {
		loc = time.UTC
	}
	return &ClosingProcessor{
		closings: closings,
		reports:  reports,
		storage:  storage,
		loc:      loc,
		logger:   logger.With(slog.String("processor", "closing")),
	}
}

func (p *ClosingProcessor) day(payload ClosingPayload) (time.Time, error) {
	if payload.Date == "" {
		// the clock at processing time may already be past the day to close
		return time.Time{}, fmt.Errorf("%w: closing task without a date: %w", domain.ErrValidation, asynq.SkipRetry)
	}
	day, err := domain.ParseDay(payload.Date, p.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	return day, nil
}

// CloseRegister handles closing:register
func (p *ClosingProcessor) CloseRegister(ctx context.Context, t *asynq.Task) error {
	var payload ClosingPayload
	if err := decodePayload(t, &payload); err != nil {
		return err
	}
	day, err := p.day(payload)
	if err != nil {
		return err
	}

	closing, err := p.closings.CloseRegister(ctx, day)
	if err != nil {
		return fmt.Errorf("failed to close register for %s: %w", day.Format(domain.DateLayout), err)
	}

	p.logger.InfoContext(ctx, "scheduled closing completed",
		slog.String("date", closing.Date.Format(domain.DateLayout)),
		slog.Int64("sale_count", closing.SaleCount),
		slog.String("total_revenue", closing.TotalRevenue.StringFixed(2)))
	return nil
}

// ArchiveClosing handles closing:archive
func (p *ClosingProcessor) ArchiveClosing(ctx context.Context, t *asynq.Task) error {
	var payload ClosingPayload
	if err := decodePayload(t, &payload); err != nil {
		return err
	}
	day, err := p.day(payload)
	if err != nil {
		return err
	}
	if p.storage == nil {
		p.logger.WarnContext(ctx, "archive storage not configured, skipping",
			slog.String("date", day.Format(domain.DateLayout)))
		return nil
	}

	closing, err := p.closings.GetClosing(ctx, day)
	if err != nil {
		return fmt.Errorf("failed to load closing: %w", err)
	}
	sales, err := p.reports.DayDetail(ctx, day)
	if err != nil {
		return fmt.Errorf("failed to load day detail: %w", err)
	}

	data, err := export.ClosingArchive(*closing, sales, p.loc)
	if err != nil {
		return fmt.Errorf("failed to build archive: %w", err)
	}

	key := export.ArchiveKey(day)
	location, err := p.storage.Upload(ctx, key, bytes.NewReader(data), export.ContentType, map[string]string{
		"sale-count":    fmt.Sprint(closing.SaleCount),
		"total-revenue": closing.TotalRevenue.StringFixed(2),
	})
	if err != nil {
		return fmt.Errorf("failed to upload archive: %w", err)
	}

	if ledger := sumTotals(sales); !ledger.Equal(closing.TotalRevenue) {
		// the ledger changed after the close; the archive shows both figures
		p.logger.WarnContext(ctx, "ledger differs from closing",
			slog.String("date", day.Format(domain.DateLayout)),
			slog.String("closing_revenue", closing.TotalRevenue.StringFixed(2)),
			slog.String("ledger_revenue", ledger.StringFixed(2)))
	}

	p.logger.InfoContext(ctx, "closing archived",
		slog.String("date", day.Format(domain.DateLayout)),
		slog.String("key", key),
		slog.String("location", location),
		slog.Int("bytes", len(data)))
	return nil
}

func sumTotals(sales []domain.Sale) decimal.Decimal {
	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(s.Total)
	}
	return total
}
