// internal/core/ports/services.go
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/mrstore-pos/internal/core/domain"
)

// SaleService defines the application service port for building and
// committing sales. This interface is implemented by the application service.
type SaleService interface {
	BuildDraft(ctx context.Context) (*domain.Draft, error)
	GetDraft(ctx context.Context, draftID uuid.UUID) (*domain.Draft, error)
	DiscardDraft(ctx context.Context, draftID uuid.UUID) error
	AddLine(ctx context.Context, draftID, productID uuid.UUID, qty decimal.Decimal) (*domain.LineAdded, error)
	RemoveLine(ctx context.Context, draftID, lineID uuid.UUID) error
	CurrentTotal(ctx context.Context, draftID uuid.UUID) (decimal.Decimal, error)
	CommitSale(ctx context.Context, draftID uuid.UUID) (*domain.Sale, error)
}

// ClosingService defines the application service port for register closings
type ClosingService interface {
	CloseRegister(ctx context.Context, date time.Time) (*domain.Closing, error)
	GetClosing(ctx context.Context, date time.Time) (*domain.Closing, error)
	ListClosings(ctx context.Context, r domain.DateRange) ([]domain.Closing, error)
}

// ReportService defines the application service port for ledger reads
type ReportService interface {
	QueryHistory(ctx context.Context, r domain.DateRange) ([]domain.Sale, error)
	QueryDailyTotals(ctx context.Context, r domain.DateRange) ([]domain.DailyTotal, error)
	DayDetail(ctx context.Context, date time.Time) ([]domain.Sale, error)
	TodaySales(ctx context.Context) ([]domain.Sale, error)
	Dashboard(ctx context.Context) (*domain.Dashboard, error)
	DeleteSale(ctx context.Context, id uuid.UUID) error
}

// CatalogService defines the application service port for catalog administration
type CatalogService interface {
	ListProducts(ctx context.Context, filter ProductFilter) (*ProductPage, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) error
	UpdateProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	SetStock(ctx context.Context, id uuid.UUID, stock decimal.Decimal) (*domain.Product, error)
	CreateSupplier(ctx context.Context, supplier *domain.Supplier) error
	UpdateSupplier(ctx context.Context, supplier *domain.Supplier) error
	DeleteSupplier(ctx context.Context, id uuid.UUID) error
	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)
}
