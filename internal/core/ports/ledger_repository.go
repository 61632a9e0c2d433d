// internal/core/ports/ledger_repository.go
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/mrstore-pos/internal/core/domain"
)

// SaleQuery selects ledger rows by commit instant, From inclusive and To
// exclusive. Nil bounds are open.
type SaleQuery struct {
	From      *time.Time
	To        *time.Time
	Ascending bool
	Limit     int
}

// SaleLedger defines the persistence port for committed sales.
// Calendar days are evaluated in the location the adapter was built with.
type SaleLedger interface {
	Append(ctx context.Context, sale *domain.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Find(ctx context.Context, q SaleQuery) ([]domain.Sale, error)
	// Summarize counts and sums the sales in [from, to)
	Summarize(ctx context.Context, from, to time.Time) (domain.DaySummary, error)
	// DailyTotals groups the sales in [from, to) per calendar day, newest first
	DailyTotals(ctx context.Context, from, to *time.Time) ([]domain.DailyTotal, error)
}

// ClosingRepository defines the persistence port for cash-register closings
type ClosingRepository interface {
	// Upsert inserts the closing or overwrites the one with the same date
	Upsert(ctx context.Context, closing *domain.Closing) error
	FindByDate(ctx context.Context, date time.Time) (*domain.Closing, error)
	List(ctx context.Context, from, to *time.Time) ([]domain.Closing, error)
}
