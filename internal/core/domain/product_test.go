package domain_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/mrstore-pos/internal/core/domain"
)

func TestProduct_Validate(t *testing.T) {
	tests := []struct {
		name      string
		product   *domain.Product
		wantError bool
		errorMsg  string
	}{
		{
			name: "valid_piece_product",
			product: &domain.Product{
				Name:  "Coca-Cola 600ml",
				Brand: "Coca-Cola",
				Price: decimal.NewFromFloat(18.5),
				Unit:  domain.UnitPiece,
				Stock: decimal.NewFromInt(24),
			},
		},
		{
			name: "valid_weight_product_with_fractional_stock",
			product: &domain.Product{
				Name:  "Queso Oaxaca",
				Price: decimal.NewFromInt(160),
				Unit:  domain.UnitWeight,
				Stock: decimal.RequireFromString("3.250"),
			},
		},
		{
			name:      "missing_name",
			product:   &domain.Product{Price: decimal.NewFromInt(1)},
			wantError: true,
			errorMsg:  "name is required",
		},
		{
			name: "negative_price",
			product: &domain.Product{
				Name:  "Test",
				Price: decimal.NewFromInt(-1),
			},
			wantError: true,
			errorMsg:  "price cannot be negative",
		},
		{
			name: "negative_stock",
			product: &domain.Product{
				Name:  "Test",
				Price: decimal.NewFromInt(1),
				Stock: decimal.NewFromInt(-2),
			},
			wantError: true,
			errorMsg:  "stock cannot be negative",
		},
		{
			name: "fractional_stock_for_pieces",
			product: &domain.Product{
				Name:  "Test",
				Price: decimal.NewFromInt(1),
				Unit:  domain.UnitPiece,
				Stock: decimal.RequireFromString("1.5"),
			},
			wantError: true,
			errorMsg:  "stock must be a whole number for piece products",
		},
		{
			name: "unknown_unit",
			product: &domain.Product{
				Name:  "Test",
				Price: decimal.NewFromInt(1),
				Unit:  "litre",
			},
			wantError: true,
			errorMsg:  `unknown unit "litre"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.product.Validate()
			if tt.wantError {
				require.Error(t, err)
				assert.Equal(t, tt.errorMsg, err.Error())
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestProduct_Validate_DefaultsUnit(t *testing.T) {
	p := &domain.Product{Name: "Test", Price: decimal.NewFromInt(1)}
	require.NoError(t, p.Validate())
	assert.Equal(t, domain.UnitPiece, p.Unit)
}

func TestProduct_CheckQuantity(t *testing.T) {
	piece := &domain.Product{Name: "Soap", Unit: domain.UnitPiece}
	weight := &domain.Product{Name: "Ham", Unit: domain.UnitWeight}

	tests := []struct {
		name    string
		product *domain.Product
		qty     decimal.Decimal
		wantErr bool
	}{
		{name: "whole_pieces", product: piece, qty: decimal.NewFromInt(2)},
		{name: "fractional_weight", product: weight, qty: decimal.RequireFromString("0.25")},
		{name: "zero", product: piece, qty: decimal.Zero, wantErr: true},
		{name: "negative", product: weight, qty: decimal.NewFromInt(-1), wantErr: true},
		{name: "fractional_pieces", product: piece, qty: decimal.RequireFromString("1.5"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.product.CheckQuantity(tt.qty)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestProduct_StockFlags(t *testing.T) {
	tests := []struct {
		name       string
		stock      int64
		lowStock   bool
		outOfStock bool
	}{
		{name: "plenty", stock: 25},
		{name: "at_threshold", stock: 10},
		{name: "below_threshold", stock: 9, lowStock: true},
		{name: "empty", stock: 0, lowStock: true, outOfStock: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &domain.Product{Stock: decimal.NewFromInt(tt.stock)}
			assert.Equal(t, tt.lowStock, p.LowStock())
			assert.Equal(t, tt.outOfStock, p.OutOfStock())
		})
	}
}

func TestProduct_SupplierLabel(t *testing.T) {
	assert.Equal(t, domain.UnknownSupplier, (&domain.Product{}).SupplierLabel())
	assert.Equal(t, "Bimbo", (&domain.Product{SupplierName: "Bimbo"}).SupplierLabel())
}

func TestCheckStock(t *testing.T) {
	p := &domain.Product{
		ID:    uuid.New(),
		Name:  "Q",
		Stock: decimal.NewFromInt(2),
	}

	assert.NoError(t, domain.CheckStock(p, decimal.NewFromInt(2)))

	err := domain.CheckStock(p, decimal.NewFromInt(3))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var stockErr *domain.StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, p.ID, stockErr.ProductID)
	assert.Equal(t, "insufficient stock for Q: requested 3, available 2", stockErr.Error())
}
