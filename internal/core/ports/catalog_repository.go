// internal/core/ports/catalog_repository.go
package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/mrstore-pos/internal/core/domain"
)

// ProductCatalog defines the persistence port for products and their stock.
// This interface is implemented by the database and memory adapters.
// Inside a transaction Lookup holds the product row until the transaction ends.
type ProductCatalog interface {
	Lookup(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	// AdjustStock adds delta to the stock and fails with
	// domain.ErrInsufficientStock if the result would be negative.
	AdjustStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*domain.Product, error)
	SetStock(ctx context.Context, id uuid.UUID, stock decimal.Decimal) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	// Update overwrites every editable field of an existing product
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ProductFilter) (*ProductPage, error)
	Count(ctx context.Context) (int64, error)
}

// SupplierRepository defines the persistence port for suppliers
type SupplierRepository interface {
	Create(ctx context.Context, supplier *domain.Supplier) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Supplier, error)
	Update(ctx context.Context, supplier *domain.Supplier) error
	// Delete removes the supplier and detaches its products, which then
	// show domain.UnknownSupplier
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns all suppliers with the number of products they provide
	List(ctx context.Context) ([]domain.Supplier, error)
	Count(ctx context.Context) (int64, error)
}

// ProductFilter holds parameters for listing products
type ProductFilter struct {
	// Search matches name, brand or supplier name, case-insensitively
	Search       string
	LowStockOnly bool
	// SupplierID limits the list to one supplier's products
	SupplierID *uuid.UUID
	Page         int
	PageSize     int
}

// Normalize applies paging defaults
func (f *ProductFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 50
	}
	if f.PageSize > 500 {
		f.PageSize = 500
	}
}

// Offset returns the row offset for the current page
func (f ProductFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// ProductPage holds one page of products
type ProductPage struct {
	Items      []domain.Product `json:"items"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalCount int64            `json:"total_count"`
	TotalPages int              `json:"total_pages"`
}

// NewProductPage computes the page count for a result set
func NewProductPage(items []domain.Product, filter ProductFilter, total int64) *ProductPage {
	pages := 0
	if filter.PageSize > 0 {
		pages = int((total + int64(filter.PageSize) - 1) / int64(filter.PageSize))
	}
	if items == nil {
		items = []domain.Product{}
	}
	return &ProductPage{
		Items:      items,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
		TotalPages: pages,
	}
}
