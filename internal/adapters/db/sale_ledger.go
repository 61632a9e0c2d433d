// internal/adapters/db/sale_ledger.go
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
	"github.com/ammerola/mrstore-pos/internal/core/ports"
)

// saleLedger implements ports.SaleLedger
type saleLedger struct {
	q      Querier
	loc    *time.Location
	logger *slog.Logger
}

func newSaleLedger(q Querier, loc *time.Location, logger *slog.Logger) *saleLedger {
	return &saleLedger{
		q:      q,
		loc:    loc,
		logger: logger.With(slog.String("repository", "sales")),
	}
}

func scanSale(row pgx.Row) (domain.Sale, error) {
	var s domain.Sale
	err := row.Scan(&s.ID, &s.Description, &s.Quantity, &s.Total, &s.CreatedAt)
	return s, err
}

// Append inserts the sale; its lines are persisted only as the description
func (r *saleLedger) Append(ctx context.Context, sale *domain.Sale) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO sales (id, description, quantity, total, created_at) VALUES ($1, $2, $3, $4, $5)`,
		sale.ID, sale.Description, sale.Quantity, sale.Total, sale.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}

	r.logger.DebugContext(ctx, "sale appended", slog.String("sale_id", sale.ID.String()))
	return nil
}

// FindByID retrieves a sale
func (r *saleLedger) FindByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx,
		`SELECT id, description, quantity, total, created_at FROM sales WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("sale %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find sale: %w", err)
	}
	return &s, nil
}

// Delete removes a sale
func (r *saleLedger) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sale %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func between(qb squirrel.SelectBuilder, from, to *time.Time) squirrel.SelectBuilder {
	if from != nil {
		qb = qb.Where(squirrel.GtOrEq{"created_at": *from})
	}
	if to != nil {
		qb = qb.Where(squirrel.Lt{"created_at": *to})
	}
	return qb
}

// Find returns the sales selected by q
func (r *saleLedger) Find(ctx context.Context, q ports.SaleQuery) ([]domain.Sale, error) {
	order := "created_at DESC, id DESC"
	if q.Ascending {
		order = "created_at ASC, id ASC"
	}

	qb := squirrel.Select("id", "description", "quantity", "total", "created_at").
		From("sales").
		OrderBy(order).
		PlaceholderFormat(squirrel.Dollar)
	qb = between(qb, q.From, q.To)
	if q.Limit > 0 {
		qb = qb.Limit(uint64(q.Limit))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}

	sales, err := ScanMany(rows, func(row pgx.Rows) (domain.Sale, error) {
		return scanSale(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan sales: %w", err)
	}
	return sales, nil
}

// Summarize counts and sums the sales in [from, to)
func (r *saleLedger) Summarize(ctx context.Context, from, to time.Time) (domain.DaySummary, error) {
	var summary domain.DaySummary
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total), 0)
		FROM sales
		WHERE created_at >= $1 AND created_at < $2`, from, to,
	).Scan(&summary.Count, &summary.Total)
	if err != nil {
		return domain.DaySummary{}, fmt.Errorf("failed to summarize sales: %w", err)
	}
	return summary, nil
}

// DailyTotals groups sales per calendar day of the ledger's location
func (r *saleLedger) DailyTotals(ctx context.Context, from, to *time.Time) ([]domain.DailyTotal, error) {
	qb := squirrel.Select().
		Column(squirrel.Expr("(created_at AT TIME ZONE ?)::date AS day", r.loc.String())).
		Columns("COUNT(*)", "COALESCE(SUM(total), 0)").
		From("sales").
		GroupBy("day").
		OrderBy("day DESC").
		PlaceholderFormat(squirrel.Dollar)
	qb = between(qb, from, to)

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily totals: %w", err)
	}

	totals, err := ScanMany(rows, func(row pgx.Rows) (domain.DailyTotal, error) {
		var t domain.DailyTotal
		var day time.Time
		if err := row.Scan(&day, &t.Count, &t.Total); err != nil {
			return t, err
		}
		t.Date = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, r.loc)
		return t, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan daily totals: %w", err)
	}
	return totals, nil
}
