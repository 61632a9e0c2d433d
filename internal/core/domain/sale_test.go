package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/mrstore-pos/internal/core/domain"
)

func newProduct(name string, price string, unit domain.UnitKind) *domain.Product {
	return &domain.Product{
		ID:    uuid.New(),
		Name:  name,
		Price: decimal.RequireFromString(price),
		Unit:  unit,
		Stock: decimal.NewFromInt(100),
	}
}

func TestDraft_Totals(t *testing.T) {
	p := newProduct("P", "5.00", domain.UnitPiece)
	ham := newProduct("Ham", "120.00", domain.UnitWeight)

	d := domain.NewDraft()
	d.Append(domain.NewLineItem(p, decimal.NewFromInt(3)))
	d.Append(domain.NewLineItem(ham, decimal.RequireFromString("0.5")))
	d.Append(domain.NewLineItem(p, decimal.NewFromInt(4)))

	assert.True(t, decimal.RequireFromString("95").Equal(d.Total()))
	assert.True(t, decimal.RequireFromString("7.5").Equal(d.Quantity()))
	assert.True(t, decimal.NewFromInt(7).Equal(d.QuantityFor(p.ID)))
	assert.Equal(t, []uuid.UUID{p.ID, ham.ID}, d.ProductIDs())
}

func TestDraft_Remove(t *testing.T) {
	p := newProduct("P", "1.00", domain.UnitPiece)
	d := domain.NewDraft()

	first := domain.NewLineItem(p, decimal.NewFromInt(1))
	second := domain.NewLineItem(p, decimal.NewFromInt(2))
	third := domain.NewLineItem(p, decimal.NewFromInt(3))
	d.Append(first)
	d.Append(second)
	d.Append(third)

	require.True(t, d.Remove(first.LineID))
	// ids stay valid after an earlier removal
	require.True(t, d.Remove(third.LineID))
	assert.False(t, d.Remove(first.LineID))

	require.Len(t, d.Lines, 1)
	assert.Equal(t, second.LineID, d.Lines[0].LineID)
}

func TestDraft_Describe(t *testing.T) {
	soda := newProduct("Soda", "18.50", domain.UnitPiece)
	ham := newProduct("Ham", "120", domain.UnitWeight)

	d := domain.NewDraft()
	d.Append(domain.NewLineItem(soda, decimal.NewFromInt(2)))
	d.Append(domain.NewLineItem(ham, decimal.RequireFromString("0.25")))

	assert.Equal(t, "Soda: 2 pcs - $37.00; Ham: 0.25 kg - $30.00", d.Describe())
}

func TestDraft_Clone(t *testing.T) {
	p := newProduct("P", "1.00", domain.UnitPiece)
	d := domain.NewDraft()
	d.Append(domain.NewLineItem(p, decimal.NewFromInt(1)))

	c := d.Clone()
	c.Append(domain.NewLineItem(p, decimal.NewFromInt(1)))

	assert.Len(t, d.Lines, 1)
	assert.Len(t, c.Lines, 2)
}

func TestNewSale(t *testing.T) {
	p := newProduct("P", "5.00", domain.UnitPiece)
	d := domain.NewDraft()
	d.Append(domain.NewLineItem(p, decimal.NewFromInt(3)))
	d.Append(domain.NewLineItem(p, decimal.NewFromInt(4)))

	at := time.Date(2024, 3, 9, 14, 30, 15, 987654321, time.UTC)
	sale := domain.NewSale(d, at)

	assert.NotEqual(t, uuid.Nil, sale.ID)
	assert.True(t, decimal.RequireFromString("35.00").Equal(sale.Total))
	assert.True(t, decimal.NewFromInt(7).Equal(sale.Quantity))
	assert.Equal(t, time.Date(2024, 3, 9, 14, 30, 15, 0, time.UTC), sale.CreatedAt)
	assert.Equal(t, "P: 3 pcs - $15.00; P: 4 pcs - $20.00", sale.Description)
	assert.Len(t, sale.Lines, 2)
}
