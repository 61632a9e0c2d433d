// internal/adapters/db/closing_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/mrstore-pos/internal/core/domain"
)

// closingRepository implements ports.ClosingRepository. Dates travel as
// YYYY-MM-DD strings so the DATE column never depends on a session zone.
type closingRepository struct {
	q      Querier
	loc    *time.Location
	logger *slog.Logger
}

func newClosingRepository(q Querier, loc *time.Location, logger *slog.Logger) *closingRepository {
	return &closingRepository{
		q:      q,
		loc:    loc,
		logger: logger.With(slog.String("repository", "closings")),
	}
}

func (r *closingRepository) day(t time.Time) string {
	return t.In(r.loc).Format(domain.DateLayout)
}

func (r *closingRepository) scan(row pgx.Row) (domain.Closing, error) {
	var c domain.Closing
	var date time.Time
	if err := row.Scan(&c.ID, &date, &c.SaleCount, &c.TotalRevenue, &c.ClosedAt); err != nil {
		return c, err
	}
	c.Date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, r.loc)
	return c, nil
}

// Upsert writes the closing keyed by its date, keeping the existing id
func (r *closingRepository) Upsert(ctx context.Context, closing *domain.Closing) error {
	query := `
		INSERT INTO closings (id, date, sale_count, total_revenue, closed_at)
		VALUES ($1, $2::date, $3, $4, $5)
		ON CONFLICT (date) DO UPDATE SET
			sale_count = EXCLUDED.sale_count,
			total_revenue = EXCLUDED.total_revenue,
			closed_at = EXCLUDED.closed_at
		RETURNING id`

	if closing.ID == uuid.Nil {
		closing.ID = uuid.New()
	}
	err := r.q.QueryRow(ctx, query,
		closing.ID, r.day(closing.Date), closing.SaleCount, closing.TotalRevenue, closing.ClosedAt,
	).Scan(&closing.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert closing: %w", err)
	}

	r.logger.DebugContext(ctx, "closing saved",
		slog.String("closing_id", closing.ID.String()),
		slog.String("date", r.day(closing.Date)))
	return nil
}

// FindByDate retrieves the closing of one day
func (r *closingRepository) FindByDate(ctx context.Context, date time.Time) (*domain.Closing, error) {
	c, err := r.scan(r.q.QueryRow(ctx, `
		SELECT id, date, sale_count, total_revenue, closed_at
		FROM closings WHERE date = $1::date`, r.day(date)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("closing %s: %w", r.day(date), domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find closing: %w", err)
	}
	return &c, nil
}

// List returns closings dated in [from, to), newest first
func (r *closingRepository) List(ctx context.Context, from, to *time.Time) ([]domain.Closing, error) {
	qb := squirrel.Select("id", "date", "sale_count", "total_revenue", "closed_at").
		From("closings").
		OrderBy("date DESC").
		PlaceholderFormat(squirrel.Dollar)
	if from != nil {
		qb = qb.Where("date >= ?::date", r.day(*from))
	}
	if to != nil {
		qb = qb.Where("date < ?::date", r.day(*to))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query closings: %w", err)
	}

	closings, err := ScanMany(rows, func(row pgx.Rows) (domain.Closing, error) {
		return r.scan(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan closings: %w", err)
	}
	return closings, nil
}
