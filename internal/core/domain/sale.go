// internal/core/domain/sale.go
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DescriptionSeparator joins line descriptions in a persisted sale
const DescriptionSeparator = "; "

// LineItem is one product line of a draft, priced when it was added
type LineItem struct {
	LineID    uuid.UUID       `json:"line_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Unit      UnitKind        `json:"unit"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// NewLineItem snapshots the product's current name, price and unit
func NewLineItem(p *Product, qty decimal.Decimal) LineItem {
	return LineItem{
		LineID:    uuid.New(),
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Unit:      p.Unit,
		Quantity:  qty,
	}
}

// Subtotal returns unit price times quantity
func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(l.Quantity)
}

// Describe renders the line as "name: qty unit - $subtotal"
func (l LineItem) Describe() string {
	return fmt.Sprintf("%s: %s %s - $%s",
		l.Name, l.Quantity.String(), l.Unit.Label(), l.Subtotal().StringFixed(2))
}

// Draft is an uncommitted sale
type Draft struct {
	ID        uuid.UUID  `json:"id"`
	Lines     []LineItem `json:"lines"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewDraft returns an empty draft with a fresh handle
func NewDraft() *Draft {
	now := time.Now()
	return &Draft{
		ID:        uuid.New(),
		Lines:     []LineItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// QuantityFor sums the quantities already queued for a product
func (d *Draft) QuantityFor(productID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, l := range d.Lines {
		if l.ProductID == productID {
			total = total.Add(l.Quantity)
		}
	}
	return total
}

// Total sums the line subtotals
func (d *Draft) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range d.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Quantity sums the line quantities
func (d *Draft) Quantity() decimal.Decimal {
	total := decimal.Zero
	for _, l := range d.Lines {
		total = total.Add(l.Quantity)
	}
	return total
}

// ProductIDs returns the distinct products in first-seen order
func (d *Draft) ProductIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(d.Lines))
	ids := make([]uuid.UUID, 0, len(d.Lines))
	for _, l := range d.Lines {
		if !seen[l.ProductID] {
			seen[l.ProductID] = true
			ids = append(ids, l.ProductID)
		}
	}
	return ids
}

// Append adds a line
func (d *Draft) Append(l LineItem) {
	d.Lines = append(d.Lines, l)
	d.UpdatedAt = time.Now()
}

// Remove drops the line with the given id, reporting whether it existed
func (d *Draft) Remove(lineID uuid.UUID) bool {
	for i, l := range d.Lines {
		if l.LineID == lineID {
			d.Lines = append(d.Lines[:i], d.Lines[i+1:]...)
			d.UpdatedAt = time.Now()
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the draft
func (d *Draft) Clone() *Draft {
	c := *d
	c.Lines = append([]LineItem(nil), d.Lines...)
	return &c
}

// Describe serialises the lines into the stored sale description
func (d *Draft) Describe() string {
	parts := make([]string, len(d.Lines))
	for i, l := range d.Lines {
		parts[i] = l.Describe()
	}
	return strings.Join(parts, DescriptionSeparator)
}

// LineAdded is the result of adding a line to a draft
type LineAdded struct {
	DraftID uuid.UUID       `json:"draft_id"`
	Line    LineItem        `json:"line"`
	Total   decimal.Decimal `json:"total"`
}

// Sale is a committed, immutable ledger entry
type Sale struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Lines       []LineItem      `json:"lines,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	Total       decimal.Decimal `json:"total"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewSale builds the ledger entry for a draft committed at the given instant
func NewSale(d *Draft, at time.Time) *Sale {
	return &Sale{
		ID:          uuid.New(),
		Description: d.Describe(),
		Lines:       append([]LineItem(nil), d.Lines...),
		Quantity:    d.Quantity(),
		Total:       d.Total(),
		CreatedAt:   at.Truncate(time.Second),
	}
}
