// internal/adapters/db/product_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ammerola/mrstore-pos/internal/core/domain"
	"github.com/ammerola/mrstore-pos/internal/core/ports"
)

const productColumns = `p.id, p.name, p.brand, p.price, p.unit, p.stock, p.supplier_id,
	COALESCE(s.name, ''), p.created_at, p.updated_at`

const productFrom = `products p LEFT JOIN suppliers s ON s.id = p.supplier_id`

// productCatalog implements ports.ProductCatalog
type productCatalog struct {
	q      Querier
	lock   bool
	logger *slog.Logger
}

func newProductCatalog(q Querier, lock bool, logger *slog.Logger) *productCatalog {
	return &productCatalog{
		q:      q,
		lock:   lock,
		logger: logger.With(slog.String("repository", "products")),
	}
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Brand, &p.Price, &p.Unit, &p.Stock, &p.SupplierID,
		&p.SupplierName, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// Lookup retrieves a product with its supplier name
func (r *productCatalog) Lookup(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM ` + productFrom + ` WHERE p.id = $1`
	if r.lock {
		query += ` FOR UPDATE OF p`
	}

	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &p, nil
}

// AdjustStock applies delta in one statement guarded against going negative
func (r *productCatalog) AdjustStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*domain.Product, error) {
	query := `
		WITH p AS (
			UPDATE products SET stock = stock + $2, updated_at = now()
			WHERE id = $1 AND stock + $2 >= 0
			RETURNING *
		)
		SELECT ` + productColumns + ` FROM p LEFT JOIN suppliers s ON s.id = p.supplier_id`

	p, err := scanProduct(r.q.QueryRow(ctx, query, id, delta))
	if err == nil {
		r.logger.DebugContext(ctx, "stock adjusted",
			slog.String("product_id", id.String()),
			slog.String("delta", delta.String()),
			slog.String("stock", p.Stock.String()))
		return &p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}

	current, err := r.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	return nil, &domain.StockError{
		ProductID: id,
		Name:      current.Name,
		Requested: delta.Neg(),
		Available: current.Stock,
	}
}

// SetStock overwrites the stock with an absolute quantity
func (r *productCatalog) SetStock(ctx context.Context, id uuid.UUID, stock decimal.Decimal) (*domain.Product, error) {
	if stock.IsNegative() {
		return nil, fmt.Errorf("%w: stock cannot be negative", domain.ErrInvalidQuantity)
	}

	tag, err := r.q.Exec(ctx,
		`UPDATE products SET stock = $2, updated_at = now() WHERE id = $1`, id, stock)
	if err != nil {
		return nil, fmt.Errorf("failed to set stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return r.Lookup(ctx, id)
}

// Create inserts a new product
func (r *productCatalog) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, brand, price, unit, stock, supplier_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.q.QueryRow(ctx, query,
		product.ID, product.Name, product.Brand, product.Price, product.Unit,
		product.Stock, product.SupplierID, product.CreatedAt, product.UpdatedAt,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	r.logger.DebugContext(ctx, "product saved", slog.String("product_id", product.ID.String()))
	return nil
}

// Update overwrites the editable columns of an existing product
func (r *productCatalog) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, brand = $3, price = $4, unit = $5, stock = $6, supplier_id = $7, updated_at = $8
		WHERE id = $1
		RETURNING created_at, updated_at`

	err := r.q.QueryRow(ctx, query,
		product.ID, product.Name, product.Brand, product.Price, product.Unit,
		product.Stock, product.SupplierID, product.UpdatedAt,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("product %s: %w", product.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	r.logger.DebugContext(ctx, "product updated", slog.String("product_id", product.ID.String()))
	return nil
}

// Delete removes a product. Recorded sales keep their descriptions.
func (r *productCatalog) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// List pages through products matching the filter, ordered by name
func (r *productCatalog) List(ctx context.Context, filter ports.ProductFilter) (*ports.ProductPage, error) {
	filter.Normalize()

	qb := filterProducts(squirrel.Select(productColumns, "COUNT(*) OVER()"), filter)

	query, args, err := qb.
		OrderBy("p.name ASC", "p.id ASC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(filter.Offset())).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	var total int64
	items, err := ScanMany(rows, func(row pgx.Rows) (domain.Product, error) {
		var p domain.Product
		err := row.Scan(
			&p.ID, &p.Name, &p.Brand, &p.Price, &p.Unit, &p.Stock, &p.SupplierID,
			&p.SupplierName, &p.CreatedAt, &p.UpdatedAt, &total,
		)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}

	if len(items) == 0 && filter.Page > 1 {
		// past the last page the window count is unavailable
		countSQL, countArgs, err := filterProducts(squirrel.Select("COUNT(*)"), filter).ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to build count query: %w", err)
		}
		if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
			return nil, fmt.Errorf("failed to count products: %w", err)
		}
	}

	return ports.NewProductPage(items, filter, total), nil
}

func filterProducts(qb squirrel.SelectBuilder, filter ports.ProductFilter) squirrel.SelectBuilder {
	qb = qb.From(productFrom).PlaceholderFormat(squirrel.Dollar)

	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		qb = qb.Where(squirrel.Or{
			squirrel.ILike{"p.name": like},
			squirrel.ILike{"p.brand": like},
			squirrel.ILike{"s.name": like},
		})
	}
	if filter.LowStockOnly {
		qb = qb.Where(squirrel.Lt{"p.stock": domain.LowStockThreshold})
	}
	if filter.SupplierID != nil {
		qb = qb.Where(squirrel.Eq{"p.supplier_id": *filter.SupplierID})
	}
	return qb
}

// Count returns the number of products
func (r *productCatalog) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}
