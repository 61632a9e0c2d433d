// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrEmptySale          = errors.New("sale has no lines")
	ErrNotFound           = errors.New("not found")
	ErrPersistenceFailure = errors.New("persistence failure")
	ErrValidation         = errors.New("validation failed")
)

// StockError names the product and quantities behind an ErrInsufficientStock
type StockError struct {
	ProductID uuid.UUID
	Name      string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %s, available %s",
		e.Name, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}

// CheckStock returns a *StockError when requested exceeds the product's stock
func CheckStock(p *Product, requested decimal.Decimal) error {
	if requested.GreaterThan(p.Stock) {
		return &StockError{
			ProductID: p.ID,
			Name:      p.Name,
			Requested: requested,
			Available: p.Stock,
		}
	}
	return nil
}
