// internal/core/services/fixture_test.go
package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/mrstore-pos/internal/adapters/memory"
	"github.com/ammerola/mrstore-pos/internal/core/domain"
	"github.com/ammerola/mrstore-pos/internal/core/ports"
	"github.com/ammerola/mrstore-pos/internal/core/services"
	"github.com/ammerola/mrstore-pos/test/helpers"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type fixture struct {
	store *memory.Store
	clock *testClock
	opts  services.Options
	loc   *time.Location
}

func newFixture(t *testing.T, loc *time.Location) *fixture {
	t.Helper()
	if loc == nil {
		loc = time.UTC
	}
	clock := &testClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, loc)}
	return &fixture{
		store: memory.NewStore(loc),
		clock: clock,
		opts:  services.Options{Location: loc, Now: clock.Now, ReportTTL: time.Minute},
		loc:   loc,
	}
}

func (f *fixture) addProduct(t *testing.T, overrides ...func(*domain.Product)) *domain.Product {
	t.Helper()
	p := helpers.CreateTestProduct(overrides...)
	require.NoError(t, f.store.Products().Create(context.Background(), p))
	return p
}

func (f *fixture) addSale(t *testing.T, at time.Time, total string) *domain.Sale {
	t.Helper()
	s := helpers.CreateTestSale(at, total)
	require.NoError(t, f.store.Sales().Append(context.Background(), s))
	return s
}

func (f *fixture) stock(t *testing.T, p *domain.Product) string {
	t.Helper()
	got, err := f.store.Products().Lookup(context.Background(), p.ID)
	require.NoError(t, err)
	return got.Stock.String()
}

func (f *fixture) salesCount(t *testing.T) int {
	t.Helper()
	sales, err := f.store.Sales().Find(context.Background(), ports.SaleQuery{})
	require.NoError(t, err)
	return len(sales)
}

func decimalOf(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var errDiskFull = errors.New("disk full")

// brokenLedgerStore fails every Append made inside a transaction
type brokenLedgerStore struct {
	*memory.Store
}

func (s brokenLedgerStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	return s.Store.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		return fn(ctx, brokenLedgerTx{tx})
	})
}

type brokenLedgerTx struct {
	ports.Tx
}

func (t brokenLedgerTx) Sales() ports.SaleLedger {
	return brokenLedger{t.Tx.Sales()}
}

type brokenLedger struct {
	ports.SaleLedger
}

func (brokenLedger) Append(context.Context, *domain.Sale) error {
	return errDiskFull
}
