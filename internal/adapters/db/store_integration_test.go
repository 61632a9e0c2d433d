//go:build integration
// +build integration

package db_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/ammerola/mrstore-pos/internal/adapters/db"
	"github.com/ammerola/mrstore-pos/internal/core/domain"
	"github.com/ammerola/mrstore-pos/internal/core/ports"
	"github.com/ammerola/mrstore-pos/internal/core/services"
	"github.com/ammerola/mrstore-pos/test/helpers"
)

type StoreSuite struct {
	suite.Suite
	testDB *helpers.TestDB
	store  *db.Store
	ctx    context.Context
}

func (s *StoreSuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.store = db.NewStore(s.testDB.Database, time.UTC, helpers.TestLogger())
	s.ctx = context.Background()
}

func (s *StoreSuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
}

func (s *StoreSuite) createProduct(overrides ...func(*domain.Product)) *domain.Product {
	p := helpers.CreateTestProduct(overrides...)
	s.Require().NoError(s.store.Products().Create(s.ctx, p))
	return p
}

func (s *StoreSuite) TestProductCatalog() {
	supplier := helpers.CreateTestSupplier()
	s.Require().NoError(s.store.Suppliers().Create(s.ctx, supplier))

	p := s.createProduct(func(p *domain.Product) {
		p.Name = "Queso Oaxaca"
		p.Unit = domain.UnitWeight
		p.Price = helpers.Decimal(s.T(), "189.90")
		p.Stock = helpers.Decimal(s.T(), "4.250")
		p.SupplierID = &supplier.ID
	})

	got, err := s.store.Products().Lookup(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("Queso Oaxaca", got.Name)
	s.Equal(domain.UnitWeight, got.Unit)
	s.Equal(supplier.Name, got.SupplierName)
	s.True(got.Price.Equal(p.Price))
	s.True(got.Stock.Equal(p.Stock))

	_, err = s.store.Products().Lookup(s.ctx, uuid.New())
	s.ErrorIs(err, domain.ErrNotFound)

	updated, err := s.store.Products().AdjustStock(s.ctx, p.ID, helpers.Decimal(s.T(), "-1.5"))
	s.Require().NoError(err)
	s.Equal("2.75", updated.Stock.String())

	_, err = s.store.Products().AdjustStock(s.ctx, p.ID, helpers.Decimal(s.T(), "-3"))
	var stockErr *domain.StockError
	s.Require().True(errors.As(err, &stockErr))
	s.Equal("3", stockErr.Requested.String())

	set, err := s.store.Products().SetStock(s.ctx, p.ID, helpers.Decimal(s.T(), "10"))
	s.Require().NoError(err)
	s.True(set.Stock.Equal(helpers.Decimal(s.T(), "10")))

	count, err := s.store.Products().Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), count)

	suppliers, err := s.store.Suppliers().List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(suppliers, 1)
	s.Equal(1, suppliers[0].ProductCount)
}

func (s *StoreSuite) TestProductList() {
	s.createProduct(func(p *domain.Product) {
		p.Name = "Arroz 1kg"
		p.Stock = helpers.Decimal(s.T(), "30")
	})
	s.createProduct(func(p *domain.Product) {
		p.Name = "Atun en Agua"
		p.Stock = helpers.Decimal(s.T(), "4")
	})
	s.createProduct(func(p *domain.Product) {
		p.Name = "Coca Cola 600ml"
		p.Brand = "Coca-Cola"
	})

	page, err := s.store.Products().List(s.ctx, ports.ProductFilter{Search: "coca", Page: 1, PageSize: 10})
	s.Require().NoError(err)
	s.Equal(int64(1), page.TotalCount)
	s.Equal("Coca Cola 600ml", page.Items[0].Name)

	page, err = s.store.Products().List(s.ctx, ports.ProductFilter{LowStockOnly: true, Page: 1, PageSize: 10})
	s.Require().NoError(err)
	s.Equal(int64(1), page.TotalCount)
	s.Equal("Atun en Agua", page.Items[0].Name)

	page, err = s.store.Products().List(s.ctx, ports.ProductFilter{Page: 2, PageSize: 2})
	s.Require().NoError(err)
	s.Equal(int64(3), page.TotalCount)
	s.Equal(2, page.TotalPages)
	s.Require().Len(page.Items, 1)
	s.Equal("Coca Cola 600ml", page.Items[0].Name)
}

func (s *StoreSuite) TestCatalogEditAndDelete() {
	bimbo := helpers.CreateTestSupplier(func(sup *domain.Supplier) { sup.Name = "Bimbo" })
	s.Require().NoError(s.store.Suppliers().Create(s.ctx, bimbo))
	lala := helpers.CreateTestSupplier(func(sup *domain.Supplier) { sup.Name = "Lala" })
	s.Require().NoError(s.store.Suppliers().Create(s.ctx, lala))

	bread := s.createProduct(func(p *domain.Product) {
		p.Name = "Pan Blanco"
		p.SupplierID = &bimbo.ID
	})
	milk := s.createProduct(func(p *domain.Product) {
		p.Name = "Leche Entera"
		p.SupplierID = &lala.ID
	})

	edit := *bread
	edit.Name = "Pan Integral"
	edit.Price = helpers.Decimal(s.T(), "48.50")
	edit.Stock = helpers.Decimal(s.T(), "7")
	edit.UpdatedAt = time.Now()
	s.Require().NoError(s.store.Products().Update(s.ctx, &edit))

	got, err := s.store.Products().Lookup(s.ctx, bread.ID)
	s.Require().NoError(err)
	s.Equal("Pan Integral", got.Name)
	s.Equal("7", got.Stock.String())
	s.Equal("Bimbo", got.SupplierName)

	missing := *bread
	missing.ID = uuid.New()
	s.ErrorIs(s.store.Products().Update(s.ctx, &missing), domain.ErrNotFound)

	page, err := s.store.Products().List(s.ctx, ports.ProductFilter{SupplierID: &lala.ID, Page: 1, PageSize: 10})
	s.Require().NoError(err)
	s.Require().Len(page.Items, 1)
	s.Equal(milk.ID, page.Items[0].ID)

	s.Require().NoError(s.store.Suppliers().Update(s.ctx, &domain.Supplier{ID: lala.ID, Name: "Grupo Lala"}))
	got, err = s.store.Products().Lookup(s.ctx, milk.ID)
	s.Require().NoError(err)
	s.Equal("Grupo Lala", got.SupplierName)

	s.Require().NoError(s.store.Suppliers().Delete(s.ctx, bimbo.ID))
	s.ErrorIs(s.store.Suppliers().Delete(s.ctx, bimbo.ID), domain.ErrNotFound)

	got, err = s.store.Products().Lookup(s.ctx, bread.ID)
	s.Require().NoError(err)
	s.Nil(got.SupplierID)
	s.Equal(domain.UnknownSupplier, got.SupplierLabel())

	s.Require().NoError(s.store.Products().Delete(s.ctx, milk.ID))
	s.ErrorIs(s.store.Products().Delete(s.ctx, milk.ID), domain.ErrNotFound)

	count, err := s.store.Products().Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), count)
}

func (s *StoreSuite) TestWithinTx_Rollback() {
	p := s.createProduct()
	errAbort := errors.New("abort")

	err := s.store.WithinTx(s.ctx, func(ctx context.Context, tx ports.Tx) error {
		if _, err := tx.Products().AdjustStock(ctx, p.ID, helpers.Decimal(s.T(), "-4")); err != nil {
			return err
		}
		if err := tx.Sales().Append(ctx, helpers.CreateTestSale(time.Now(), "20.00")); err != nil {
			return err
		}
		return errAbort
	})
	s.ErrorIs(err, errAbort)

	got, err := s.store.Products().Lookup(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("10", got.Stock.String())

	sales, err := s.store.Sales().Find(s.ctx, ports.SaleQuery{})
	s.Require().NoError(err)
	s.Empty(sales)
}

func (s *StoreSuite) TestCommitSale_Concurrent() {
	p := s.createProduct()
	svc := services.NewSaleService(s.store, nil, nil, services.Options{Location: time.UTC}, helpers.TestLogger())

	ids := make([]uuid.UUID, 15)
	for i := range ids {
		d, err := svc.BuildDraft(s.ctx)
		s.Require().NoError(err)
		_, err = svc.AddLine(s.ctx, d.ID, p.ID, helpers.Decimal(s.T(), "1"))
		s.Require().NoError(err)
		ids[i] = d.ID
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		committed int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			if _, err := svc.CommitSale(s.ctx, id); err == nil {
				mu.Lock()
				committed++
				mu.Unlock()
			} else {
				s.ErrorIs(err, domain.ErrInsufficientStock)
			}
		}(id)
	}
	wg.Wait()

	s.Equal(10, committed)
	got, err := s.store.Products().Lookup(s.ctx, p.ID)
	s.Require().NoError(err)
	s.True(got.Stock.IsZero())

	summary, err := s.store.Sales().Summarize(s.ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	s.Require().NoError(err)
	s.Equal(int64(10), summary.Count)
	s.Equal("50", summary.Total.String())
}

func (s *StoreSuite) TestSaleLedger() {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i, total := range []string{"10.00", "2.50", "7.25"} {
		s.Require().NoError(s.store.Sales().Append(s.ctx, helpers.CreateTestSale(base.Add(time.Duration(i)*time.Hour), total)))
	}
	s.Require().NoError(s.store.Sales().Append(s.ctx, helpers.CreateTestSale(base.AddDate(0, 0, -1), "1.00")))

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	next := day.AddDate(0, 0, 1)

	sales, err := s.store.Sales().Find(s.ctx, ports.SaleQuery{From: &day, To: &next})
	s.Require().NoError(err)
	s.Require().Len(sales, 3)
	s.True(sales[0].CreatedAt.After(sales[2].CreatedAt), "newest first")

	asc, err := s.store.Sales().Find(s.ctx, ports.SaleQuery{Ascending: true, Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(asc, 2)
	s.True(asc[0].CreatedAt.Before(asc[1].CreatedAt))

	summary, err := s.store.Sales().Summarize(s.ctx, day, next)
	s.Require().NoError(err)
	s.Equal(int64(3), summary.Count)
	s.Equal("19.75", summary.Total.String())

	totals, err := s.store.Sales().DailyTotals(s.ctx, nil, nil)
	s.Require().NoError(err)
	s.Require().Len(totals, 2)
	s.Equal(day, totals[0].Date)
	s.Equal(int64(3), totals[0].Count)
	s.Equal(day.AddDate(0, 0, -1), totals[1].Date)

	s.Require().NoError(s.store.Sales().Delete(s.ctx, sales[0].ID))
	s.ErrorIs(s.store.Sales().Delete(s.ctx, sales[0].ID), domain.ErrNotFound)
}

func (s *StoreSuite) TestClosings() {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	first := &domain.Closing{Date: day, SaleCount: 3, TotalRevenue: helpers.Decimal(s.T(), "30"), ClosedAt: time.Now()}
	s.Require().NoError(s.store.Closings().Upsert(s.ctx, first))

	second := &domain.Closing{Date: day, SaleCount: 2, TotalRevenue: helpers.Decimal(s.T(), "20"), ClosedAt: time.Now()}
	s.Require().NoError(s.store.Closings().Upsert(s.ctx, second))
	s.Equal(first.ID, second.ID, "re-close keeps the row")

	got, err := s.store.Closings().FindByDate(s.ctx, day.Add(15*time.Hour))
	s.Require().NoError(err)
	s.Equal(int64(2), got.SaleCount)
	s.Equal(day, got.Date)

	s.Require().NoError(s.store.Closings().Upsert(s.ctx, &domain.Closing{
		Date: day.AddDate(0, 0, 1), TotalRevenue: helpers.Decimal(s.T(), "0"), ClosedAt: time.Now(),
	}))

	all, err := s.store.Closings().List(s.ctx, nil, nil)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(day.AddDate(0, 0, 1), all[0].Date)

	_, err = s.store.Closings().FindByDate(s.ctx, day.AddDate(0, 0, -1))
	s.ErrorIs(err, domain.ErrNotFound)
}

func TestStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(StoreSuite))
}
