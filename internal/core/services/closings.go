// internal/core/services/closings.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ammerola/mrstore-pos/internal/core/domain"
	"github.com/ammerola/mrstore-pos/internal/core/ports"
)

// ClosingService recomputes and stores cash-register closings
type ClosingService struct {
	store  ports.Store
	events ports.EventPublisher
	opts   Options
	logger *slog.Logger
}

// Statically assert that *ClosingService implements the ClosingService interface.
var _ ports.ClosingService = (*ClosingService)(nil)

// NewClosingService creates a new closing service. events may be nil.
func NewClosingService(store ports.Store, events ports.EventPublisher, opts Options, logger *slog.Logger) *ClosingService {
	return &ClosingService{
		store:  store,
		events: events,
		opts:   opts.withDefaults(),
		logger: logger.With(slog.String("service", "closings")),
	}
}

// CloseRegister recounts the sales of date's calendar day and upserts the
// closing for that day. Repeating it with an unchanged ledger yields the same
// count and revenue.
func (s *ClosingService) CloseRegister(ctx context.Context, date time.Time) (*domain.Closing, error) {
	day := domain.StartOfDay(date, s.opts.Location)
	next := day.AddDate(0, 0, 1)

	var closing *domain.Closing
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		summary, err := tx.Sales().Summarize(ctx, day, next)
		if err != nil {
			return fmt.Errorf("failed to summarize sales: %w", err)
		}

		closing = &domain.Closing{
			Date:         day,
			SaleCount:    summary.Count,
			TotalRevenue: summary.Total,
			ClosedAt:     s.opts.Now(),
		}
		if err := tx.Closings().Upsert(ctx, closing); err != nil {
			return fmt.Errorf("failed to upsert closing: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "closing failed",
			slog.String("date", day.Format(domain.DateLayout)),
			slog.String("error", err.Error()))
		return nil, classify(err)
	}

	s.logger.InfoContext(ctx, "register closed",
		slog.String("date", day.Format(domain.DateLayout)),
		slog.Int64("sale_count", closing.SaleCount),
		slog.String("total_revenue", closing.TotalRevenue.StringFixed(2)))

	if s.events != nil {
		if err := s.events.RegisterClosed(ctx, *closing); err != nil {
			s.logger.WarnContext(ctx, "failed to publish closing event",
				slog.String("date", day.Format(domain.DateLayout)),
				slog.String("error", err.Error()))
		}
	}

	return closing, nil
}

// GetClosing returns the stored closing of date's day
func (s *ClosingService) GetClosing(ctx context.Context, date time.Time) (*domain.Closing, error) {
	closing, err := s.store.Closings().FindByDate(ctx, domain.StartOfDay(date, s.opts.Location))
	if err != nil {
		return nil, classify(fmt.Errorf("failed to get closing: %w", err))
	}
	return closing, nil
}

// ListClosings returns the closings in range, newest first
func (s *ClosingService) ListClosings(ctx context.Context, r domain.DateRange) ([]domain.Closing, error) {
	from, to := r.Bounds(s.opts.Location)
	closings, err := s.store.Closings().List(ctx, from, to)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to list closings: %w", err))
	}
	return closings, nil
}
