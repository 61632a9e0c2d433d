// internal/core/services/reports.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/mrstore-pos/internal/core/domain"
	"github.com/ammerola/mrstore-pos/internal/core/ports"
)

// ReportService serves read-side views of the ledger
type ReportService struct {
	store  ports.Store
	cache  ports.CacheRepository
	opts   Options
	logger *slog.Logger
}

// Statically assert that *ReportService implements the ReportService interface.
var _ ports.ReportService = (*ReportService)(nil)

// NewReportService creates a new report service. cache may be nil.
func NewReportService(store ports.Store, cache ports.CacheRepository, opts Options, logger *slog.Logger) *ReportService {
	return &ReportService{
		store:  store,
		cache:  cache,
		opts:   opts.withDefaults(),
		logger: logger.With(slog.String("service", "reports")),
	}
}

// QueryHistory returns the sales on the range's days, newest first
func (s *ReportService) QueryHistory(ctx context.Context, r domain.DateRange) ([]domain.Sale, error) {
	from, to := r.Bounds(s.opts.Location)
	sales, err := s.store.Sales().Find(ctx, ports.SaleQuery{From: from, To: to})
	if err != nil {
		return nil, classify(fmt.Errorf("failed to query history: %w", err))
	}
	return sales, nil
}

// QueryDailyTotals returns one aggregate per day with sales, newest first
func (s *ReportService) QueryDailyTotals(ctx context.Context, r domain.DateRange) ([]domain.DailyTotal, error) {
	load := func() ([]domain.DailyTotal, error) {
		from, to := r.Bounds(s.opts.Location)
		return s.store.Sales().DailyTotals(ctx, from, to)
	}

	totals, err := cached(ctx, s.cache, s.logger, s.opts.ReportTTL, load, cacheKeyDailyTotals, r.Key(s.opts.Location))
	if err != nil {
		return nil, classify(fmt.Errorf("failed to query daily totals: %w", err))
	}
	for i := range totals {
		totals[i].Date = domain.StartOfDay(totals[i].Date, s.opts.Location)
	}
	return totals, nil
}

// DayDetail returns one day's sales in the order they were rung up
func (s *ReportService) DayDetail(ctx context.Context, date time.Time) ([]domain.Sale, error) {
	from, to := domain.Day(date).Bounds(s.opts.Location)
	sales, err := s.store.Sales().Find(ctx, ports.SaleQuery{From: from, To: to, Ascending: true})
	if err != nil {
		return nil, classify(fmt.Errorf("failed to load day detail: %w", err))
	}
	return sales, nil
}

// TodaySales returns today's sales, newest first
func (s *ReportService) TodaySales(ctx context.Context) ([]domain.Sale, error) {
	return s.QueryHistory(ctx, domain.Day(s.opts.today()))
}

// Dashboard returns catalog counts, today's totals and the latest sales
func (s *ReportService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	today := s.opts.today()
	load := func() (*domain.Dashboard, error) {
		return s.buildDashboard(ctx, today)
	}

	// keyed by day so today's figures never outlive midnight
	dash, err := cached(ctx, s.cache, s.logger, s.opts.ReportTTL, load, cacheKeyDashboard, today.Format(domain.DateLayout))
	if err != nil {
		return nil, classify(fmt.Errorf("failed to build dashboard: %w", err))
	}
	return dash, nil
}

func (s *ReportService) buildDashboard(ctx context.Context, today time.Time) (*domain.Dashboard, error) {
	products, err := s.store.Products().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	suppliers, err := s.store.Suppliers().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count suppliers: %w", err)
	}

	summary, err := s.store.Sales().Summarize(ctx, today, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to summarize today: %w", err)
	}

	recent, err := s.store.Sales().Find(ctx, ports.SaleQuery{Limit: domain.RecentSalesLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to load recent sales: %w", err)
	}

	return &domain.Dashboard{
		ProductCount:  products,
		SupplierCount: suppliers,
		TodayCount:    summary.Count,
		TodayTotal:    summary.Total,
		RecentSales:   recent,
	}, nil
}

// DeleteSale removes a sale from the ledger. Stock is not restored; a
// re-close of the sale's day picks up the change.
func (s *ReportService) DeleteSale(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Sales().Delete(ctx, id); err != nil {
		return classify(fmt.Errorf("failed to delete sale: %w", err))
	}

	s.logger.InfoContext(ctx, "sale deleted", slog.String("sale_id", id.String()))
	s.Invalidate(ctx)
	return nil
}

// Invalidate retires every cached aggregate
func (s *ReportService) Invalidate(ctx context.Context) {
	invalidateReports(ctx, s.cache, s.logger)
}

// Warm recomputes the dashboard and the recent daily totals into the cache
func (s *ReportService) Warm(ctx context.Context, days int) error {
	if _, err := s.Dashboard(ctx); err != nil {
		return err
	}
	today := s.opts.today()
	start := today.AddDate(0, 0, -days)
	_, err := s.QueryDailyTotals(ctx, domain.DateRange{Start: &start, End: &today})
	return err
}
