package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/mrstore-pos/internal/adapters/export"
	"github.com/ammerola/mrstore-pos/internal/core/domain"
	"github.com/ammerola/mrstore-pos/internal/core/ports"
	"github.com/ammerola/mrstore-pos/test/helpers"
)

func TestExportHandler_Inventory(t *testing.T) {
	f := newFixture(t)

	first := ports.ProductFilter{Page: 1, PageSize: 500}
	second := ports.ProductFilter{Page: 2, PageSize: 500}
	pageOne := make([]domain.Product, 500)
	for i := range pageOne {
		pageOne[i] = *helpers.CreateTestProduct()
	}
	low := helpers.CreateTestProduct(func(p *domain.Product) {
		p.Name = "Tortillas 1kg"
		p.Stock = helpers.Decimal(t, "3")
	})

	gomock.InOrder(
		f.catalog.EXPECT().ListProducts(gomock.Any(), first).
			Return(ports.NewProductPage(pageOne, first, 501), nil),
		f.catalog.EXPECT().ListProducts(gomock.Any(), second).
			Return(ports.NewProductPage([]domain.Product{*low}, second, 501), nil),
	)

	w := f.do(http.MethodGet, "/api/v1/export/inventory.xlsx", "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, export.ContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="inventory_`)

	book, err := xlsx.OpenBinary(w.Body.Bytes())
	require.NoError(t, err)
	sheet, ok := book.Sheet["Inventory"]
	require.True(t, ok)
	assert.Equal(t, 502, sheet.MaxRow)

	cell, err := sheet.Cell(501, 0)
	require.NoError(t, err)
	assert.Equal(t, "Tortillas 1kg", cell.Value)
}

func TestExportHandler_Sales(t *testing.T) {
	f := newFixture(t)
	f.reports.EXPECT().QueryHistory(gomock.Any(), domain.DateRange{
		Start: ptr(day(t, "2024-03-15")),
		End:   ptr(day(t, "2024-03-15")),
	}).Return([]domain.Sale{
		*helpers.CreateTestSale(day(t, "2024-03-15"), "12.00"),
	}, nil)

	w := f.do(http.MethodGet, "/api/v1/export/sales.xlsx?start=2024-03-15&end=2024-03-15", "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	book, err := xlsx.OpenBinary(w.Body.Bytes())
	require.NoError(t, err)
	_, ok := book.Sheet["Sales"]
	assert.True(t, ok)
}

func TestExportHandler_Errors(t *testing.T) {
	t.Run("unknown_export", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(http.MethodGet, "/api/v1/export/customers.xlsx", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad_range", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(http.MethodGet, "/api/v1/export/closings.xlsx?start=nope", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("storage_failure", func(t *testing.T) {
		f := newFixture(t)
		f.catalog.EXPECT().ListSuppliers(gomock.Any()).Return(nil, domain.ErrPersistenceFailure)

		w := f.do(http.MethodGet, "/api/v1/export/suppliers.xlsx", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
