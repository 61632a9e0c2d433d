// internal/adapters/memory/store_test.go
package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/mrstore-pos/internal/adapters/memory"
	"github.com/ammerola/mrstore-pos/internal/core/domain"
	"github.com/ammerola/mrstore-pos/internal/core/ports"
	"github.com/ammerola/mrstore-pos/test/helpers"
)

func TestStore_WithinTx(t *testing.T) {
	errAbort := errors.New("abort")

	tests := []struct {
		name      string
		fail      error
		wantStock string
		wantSales int
	}{
		{name: "commit_publishes_changes", wantStock: "7", wantSales: 1},
		{name: "error_discards_changes", fail: errAbort, wantStock: "10", wantSales: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := memory.NewStore(time.UTC)
			product := helpers.CreateTestProduct()
			require.NoError(t, store.Products().Create(ctx, product))

			err := store.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
				updated, err := tx.Products().AdjustStock(ctx, product.ID, helpers.Decimal(t, "-3"))
				require.NoError(t, err)
				assert.Equal(t, "7", updated.Stock.String())

				// live reads do not see the uncommitted snapshot
				live, err := store.Products().Lookup(ctx, product.ID)
				require.NoError(t, err)
				assert.Equal(t, "10", live.Stock.String())

				if err := tx.Sales().Append(ctx, helpers.CreateTestSale(time.Now(), "15.00")); err != nil {
					return err
				}
				return tt.fail
			})
			assert.ErrorIs(t, err, tt.fail)

			got, err := store.Products().Lookup(ctx, product.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStock, got.Stock.String())

			sales, err := store.Sales().Find(ctx, ports.SaleQuery{})
			require.NoError(t, err)
			assert.Len(t, sales, tt.wantSales)
		})
	}
}

func TestStore_WithinTx_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := memory.NewStore(time.UTC)
	product := helpers.CreateTestProduct()
	require.NoError(t, store.Products().Create(ctx, product))

	err := store.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		_, err := tx.Products().SetStock(ctx, product.ID, helpers.Decimal(t, "0"))
		cancel()
		return err
	})
	assert.ErrorIs(t, err, context.Canceled)

	got, err := store.Products().Lookup(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, "10", got.Stock.String())
}

func TestProductCatalog_AdjustStock(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(time.UTC)
	product := helpers.CreateTestProduct()
	require.NoError(t, store.Products().Create(ctx, product))

	_, err := store.Products().AdjustStock(ctx, product.ID, helpers.Decimal(t, "-11"))
	var stockErr *domain.StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "11", stockErr.Requested.String())
	assert.Equal(t, "10", stockErr.Available.String())

	updated, err := store.Products().AdjustStock(ctx, product.ID, helpers.Decimal(t, "-10"))
	require.NoError(t, err)
	assert.True(t, updated.OutOfStock())
}

func TestProductCatalog_SupplierName(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(time.UTC)
	supplier := helpers.CreateTestSupplier()
	require.NoError(t, store.Suppliers().Create(ctx, supplier))

	product := helpers.CreateTestProduct(func(p *domain.Product) { p.SupplierID = &supplier.ID })
	require.NoError(t, store.Products().Create(ctx, product))

	got, err := store.Products().Lookup(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, supplier.Name, got.SupplierName)

	found, err := store.Suppliers().FindByID(ctx, supplier.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, found.ProductCount)

	assert.Error(t, store.Products().Create(ctx, product), "duplicate id")
}

func TestSupplierRepository_DeleteDetachesProducts(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(time.UTC)
	supplier := helpers.CreateTestSupplier()
	require.NoError(t, store.Suppliers().Create(ctx, supplier))

	product := helpers.CreateTestProduct(func(p *domain.Product) { p.SupplierID = &supplier.ID })
	require.NoError(t, store.Products().Create(ctx, product))

	require.NoError(t, store.Suppliers().Delete(ctx, supplier.ID))
	assert.ErrorIs(t, store.Suppliers().Delete(ctx, supplier.ID), domain.ErrNotFound)

	got, err := store.Products().Lookup(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, got.SupplierID)
	assert.Equal(t, domain.UnknownSupplier, got.SupplierLabel())

	page, err := store.Products().List(ctx, ports.ProductFilter{SupplierID: &supplier.ID})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestProductCatalog_UpdateKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(time.UTC)
	product := helpers.CreateTestProduct()
	require.NoError(t, store.Products().Create(ctx, product))

	edit := *product
	edit.Name = "Agua Mineral 1L"
	edit.CreatedAt = time.Time{}
	require.NoError(t, store.Products().Update(ctx, &edit))

	got, err := store.Products().Lookup(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Agua Mineral 1L", got.Name)
	assert.Equal(t, product.CreatedAt, got.CreatedAt)

	require.NoError(t, store.Products().Delete(ctx, product.ID))
	_, err = store.Products().Lookup(ctx, product.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaleLedger_Find(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(time.UTC)
	base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Sales().Append(ctx, helpers.CreateTestSale(base.Add(time.Duration(i)*time.Hour), "1.00")))
	}

	from := base.Add(time.Hour)
	to := base.Add(3 * time.Hour)

	tests := []struct {
		name      string
		q         ports.SaleQuery
		wantHours []int
	}{
		{name: "newest_first", q: ports.SaleQuery{}, wantHours: []int{4, 3, 2, 1, 0}},
		{name: "ascending", q: ports.SaleQuery{Ascending: true}, wantHours: []int{0, 1, 2, 3, 4}},
		{name: "limit", q: ports.SaleQuery{Limit: 2}, wantHours: []int{4, 3}},
		{name: "half_open_range", q: ports.SaleQuery{From: &from, To: &to}, wantHours: []int{2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sales, err := store.Sales().Find(ctx, tt.q)
			require.NoError(t, err)

			hours := make([]int, len(sales))
			for i, s := range sales {
				hours[i] = int(s.CreatedAt.Sub(base) / time.Hour)
			}
			assert.Equal(t, tt.wantHours, hours)
		})
	}
}

func TestSaleLedger_AppendStripsLines(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(time.UTC)

	product := helpers.CreateTestProduct()
	draft := domain.NewDraft()
	draft.Append(domain.NewLineItem(product, helpers.Decimal(t, "2")))
	sale := domain.NewSale(draft, time.Now())

	require.NoError(t, store.Sales().Append(ctx, sale))
	assert.Error(t, store.Sales().Append(ctx, sale), "duplicate id")

	stored, err := store.Sales().FindByID(ctx, sale.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Lines)
	assert.Equal(t, "Test Soda 600ml: 2 pcs - $10.00", stored.Description)

	require.NoError(t, store.Sales().Delete(ctx, sale.ID))
	assert.ErrorIs(t, store.Sales().Delete(ctx, sale.ID), domain.ErrNotFound)
	_, err = store.Sales().FindByID(ctx, sale.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaleLedger_Aggregates(t *testing.T) {
	ctx := context.Background()
	loc := time.FixedZone("CST", -6*60*60)
	store := memory.NewStore(loc)

	// 05:00 UTC on the 15th is still the 14th in the store's zone
	for _, s := range []struct {
		at    time.Time
		total string
	}{
		{time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC), "10.00"},
		{time.Date(2026, 3, 15, 5, 0, 0, 0, time.UTC), "5.25"},
		{time.Date(2026, 3, 15, 7, 0, 0, 0, time.UTC), "3.00"},
	} {
		require.NoError(t, store.Sales().Append(ctx, helpers.CreateTestSale(s.at, s.total)))
	}

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, loc)
	summary, err := store.Sales().Summarize(ctx, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Count)
	assert.Equal(t, "15.25", summary.Total.String())

	totals, err := store.Sales().DailyTotals(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, loc), totals[0].Date)
	assert.Equal(t, "3", totals[0].Total.String())
	assert.Equal(t, day, totals[1].Date)
	assert.Equal(t, int64(2), totals[1].Count)

	empty, err := store.Sales().Summarize(ctx, day.AddDate(0, 0, 5), day.AddDate(0, 0, 6))
	require.NoError(t, err)
	assert.Zero(t, empty.Count)
	assert.True(t, empty.Total.IsZero())
}

func TestClosingRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(time.UTC)
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	first := &domain.Closing{Date: day, SaleCount: 3, TotalRevenue: helpers.Decimal(t, "30")}
	require.NoError(t, store.Closings().Upsert(ctx, first))
	require.NotEmpty(t, first.ID.String())

	second := &domain.Closing{Date: day, SaleCount: 2, TotalRevenue: helpers.Decimal(t, "20")}
	require.NoError(t, store.Closings().Upsert(ctx, second))
	assert.Equal(t, first.ID, second.ID)

	got, err := store.Closings().FindByDate(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.SaleCount)

	_, err = store.Closings().FindByDate(ctx, day.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
