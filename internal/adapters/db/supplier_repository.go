// internal/adapters/db/supplier_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/mrstore-pos/internal/core/domain"
)

// supplierRepository implements ports.SupplierRepository
type supplierRepository struct {
	q      Querier
	logger *slog.Logger
}

func newSupplierRepository(q Querier, logger *slog.Logger) *supplierRepository {
	return &supplierRepository{
		q:      q,
		logger: logger.With(slog.String("repository", "suppliers")),
	}
}

const supplierSelect = `
	SELECT s.id, s.name, s.contact, s.created_at, COUNT(p.id)
	FROM suppliers s
	LEFT JOIN products p ON p.supplier_id = s.id`

func scanSupplier(row pgx.Row) (domain.Supplier, error) {
	var s domain.Supplier
	err := row.Scan(&s.ID, &s.Name, &s.Contact, &s.CreatedAt, &s.ProductCount)
	return s, err
}

// Create inserts a new supplier
func (r *supplierRepository) Create(ctx context.Context, supplier *domain.Supplier) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO suppliers (id, name, contact, created_at) VALUES ($1, $2, $3, $4)`,
		supplier.ID, supplier.Name, supplier.Contact, supplier.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert supplier: %w", err)
	}

	r.logger.DebugContext(ctx, "supplier saved", slog.String("supplier_id", supplier.ID.String()))
	return nil
}

// FindByID retrieves a supplier with its product count
func (r *supplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Supplier, error) {
	s, err := scanSupplier(r.q.QueryRow(ctx, supplierSelect+` WHERE s.id = $1 GROUP BY s.id`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("supplier %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find supplier: %w", err)
	}
	return &s, nil
}

// Update renames a supplier or changes its contact
func (r *supplierRepository) Update(ctx context.Context, supplier *domain.Supplier) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE suppliers SET name = $2, contact = $3 WHERE id = $1`,
		supplier.ID, supplier.Name, supplier.Contact)
	if err != nil {
		return fmt.Errorf("failed to update supplier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("supplier %s: %w", supplier.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a supplier; products.supplier_id is cleared by the
// ON DELETE SET NULL constraint
func (r *supplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete supplier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("supplier %s: %w", id, domain.ErrNotFound)
	}

	r.logger.DebugContext(ctx, "supplier deleted", slog.String("supplier_id", id.String()))
	return nil
}

// List returns every supplier with its product count, ordered by name
func (r *supplierRepository) List(ctx context.Context) ([]domain.Supplier, error) {
	rows, err := r.q.Query(ctx, supplierSelect+` GROUP BY s.id ORDER BY s.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query suppliers: %w", err)
	}

	suppliers, err := ScanMany(rows, func(row pgx.Rows) (domain.Supplier, error) {
		return scanSupplier(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan suppliers: %w", err)
	}
	return suppliers, nil
}

// Count returns the number of suppliers
func (r *supplierRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count suppliers: %w", err)
	}
	return n, nil
}
