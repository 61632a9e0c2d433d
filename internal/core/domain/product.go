// internal/core/domain/product.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnitKind is how a product is measured at the register
type UnitKind string

// Unit constants
const (
	UnitPiece  UnitKind = "piece"
	UnitWeight UnitKind = "weight"
)

// LowStockThreshold is the stock level under which a product is flagged
var LowStockThreshold = decimal.NewFromInt(10)

// UnknownSupplier is shown for products without a resolvable supplier
const UnknownSupplier = "unknown supplier"

// Valid reports whether u is a known unit kind
func (u UnitKind) Valid() bool {
	return u == UnitPiece || u == UnitWeight
}

// Label returns the short unit label used in sale descriptions
func (u UnitKind) Label() string {
	switch u {
	case UnitWeight:
		return "kg"
	default:
		return "pcs"
	}
}

// Product is a catalog entry with its current stock
type Product struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Brand        string          `json:"brand"`
	Price        decimal.Decimal `json:"price"`
	Unit         UnitKind        `json:"unit"`
	Stock        decimal.Decimal `json:"stock"`
	SupplierID   *uuid.UUID      `json:"supplier_id,omitempty"`
	SupplierName string          `json:"supplier_name,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Validate performs domain validation on the product
func (p *Product) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("price cannot be negative")
	}
	if !p.Price.Round(2).Equal(p.Price) {
		return fmt.Errorf("price cannot have more than two decimals")
	}
	if p.Stock.IsNegative() {
		return fmt.Errorf("stock cannot be negative")
	}
	if p.Unit == "" {
		p.Unit = UnitPiece
	}
	if !p.Unit.Valid() {
		return fmt.Errorf("unknown unit %q", p.Unit)
	}
	if p.Unit == UnitPiece && !p.Stock.IsInteger() {
		return fmt.Errorf("stock must be a whole number for piece products")
	}
	return nil
}

// PrepareForStorage prepares the product for database storage
func (p *Product) PrepareForStorage() {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

// CheckQuantity validates a requested quantity against the product's unit
func (p *Product) CheckQuantity(qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return fmt.Errorf("%w: %s must be greater than zero", ErrInvalidQuantity, qty)
	}
	if p.Unit == UnitPiece && !qty.IsInteger() {
		return fmt.Errorf("%w: %s is not a whole number of pieces", ErrInvalidQuantity, qty)
	}
	return nil
}

// LowStock reports whether the product is under the restock threshold
func (p *Product) LowStock() bool {
	return p.Stock.LessThan(LowStockThreshold)
}

// OutOfStock reports whether nothing is left to sell
func (p *Product) OutOfStock() bool {
	return !p.Stock.IsPositive()
}

// SupplierLabel returns the supplier name or the unknown placeholder
func (p *Product) SupplierLabel() string {
	if p.SupplierName == "" {
		return UnknownSupplier
	}
	return p.SupplierName
}

// Supplier provides products to the store
type Supplier struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Contact      string    `json:"contact,omitempty"`
	ProductCount int       `json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// Validate performs domain validation on the supplier
func (s *Supplier) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// PrepareForStorage prepares the supplier for database storage
func (s *Supplier) PrepareForStorage() {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
}
