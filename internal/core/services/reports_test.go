// internal/core/services/reports_test.go
package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	redis_a "github.com/ammerola/mrstore-pos/internal/adapters/redis_adapter"
	"github.com/ammerola/mrstore-pos/internal/core/domain"
	"github.com/ammerola/mrstore-pos/internal/core/ports"
	"github.com/ammerola/mrstore-pos/internal/core/services"
	"github.com/ammerola/mrstore-pos/test/helpers"
	"github.com/ammerola/mrstore-pos/test/mocks"
)

// seedWeek appends sales on the 10th, 12th and 14th of March
func seedWeek(t *testing.T, f *fixture) map[string]*domain.Sale {
	t.Helper()
	at := func(day, hour int) time.Time {
		return time.Date(2026, 3, day, hour, 0, 0, 0, f.loc)
	}
	return map[string]*domain.Sale{
		"10_morning": f.addSale(t, at(10, 9), "10.00"),
		"12_morning": f.addSale(t, at(12, 9), "7.50"),
		"12_evening": f.addSale(t, at(12, 19), "2.50"),
		"14_noon":    f.addSale(t, at(14, 11), "30.00"),
	}
}

func TestReportService_QueryHistory(t *testing.T) {
	day := func(d int) *time.Time {
		v := time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
		return &v
	}

	tests := []struct {
		name string
		r    domain.DateRange
		want []string
	}{
		{
			name: "single_day_newest_first",
			r:    domain.DateRange{Start: day(12), End: day(12)},
			want: []string{"12_evening", "12_morning"},
		},
		{
			name: "open_range",
			r:    domain.DateRange{},
			want: []string{"14_noon", "12_evening", "12_morning", "10_morning"},
		},
		{
			name: "open_start",
			r:    domain.DateRange{End: day(11)},
			want: []string{"10_morning"},
		},
		{
			name: "open_end",
			r:    domain.DateRange{Start: day(13)},
			want: []string{"14_noon"},
		},
		{
			name: "day_without_sales",
			r:    domain.DateRange{Start: day(11), End: day(11)},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			svc := services.NewReportService(f.store, nil, f.opts, helpers.TestLogger())
			seeded := seedWeek(t, f)

			sales, err := svc.QueryHistory(context.Background(), tt.r)
			require.NoError(t, err)

			require.Len(t, sales, len(tt.want))
			for i, key := range tt.want {
				assert.Equal(t, seeded[key].ID, sales[i].ID, "position %d", i)
			}
		})
	}
}

func TestReportService_QueryDailyTotals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	svc := services.NewReportService(f.store, nil, f.opts, helpers.TestLogger())
	seedWeek(t, f)

	totals, err := svc.QueryDailyTotals(ctx, domain.DateRange{})
	require.NoError(t, err)
	require.Len(t, totals, 3)

	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), totals[0].Date)
	assert.Equal(t, int64(1), totals[0].Count)
	assert.Equal(t, "30", totals[0].Total.String())

	assert.Equal(t, time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC), totals[1].Date)
	assert.Equal(t, int64(2), totals[1].Count)
	assert.Equal(t, "10", totals[1].Total.String())

	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), totals[2].Date)
}

func TestReportService_DayDetail(t *testing.T) {
	f := newFixture(t, nil)
	svc := services.NewReportService(f.store, nil, f.opts, helpers.TestLogger())
	seeded := seedWeek(t, f)

	sales, err := svc.DayDetail(context.Background(), time.Date(2026, 3, 12, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, seeded["12_morning"].ID, sales[0].ID, "ascending")
	assert.Equal(t, seeded["12_evening"].ID, sales[1].ID)
}

func TestReportService_TodaySales(t *testing.T) {
	f := newFixture(t, nil)
	svc := services.NewReportService(f.store, nil, f.opts, helpers.TestLogger())
	seeded := seedWeek(t, f)

	sales, err := svc.TodaySales(context.Background())
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, seeded["14_noon"].ID, sales[0].ID)
}

func TestReportService_Dashboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	svc := services.NewReportService(f.store, nil, f.opts, helpers.TestLogger())

	supplier := helpers.CreateTestSupplier()
	require.NoError(t, f.store.Suppliers().Create(ctx, supplier))
	f.addProduct(t, func(p *domain.Product) { p.SupplierID = &supplier.ID })
	f.addProduct(t)

	seedWeek(t, f)
	today := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	for i := 0; i < domain.RecentSalesLimit; i++ {
		f.addSale(t, today.Add(time.Duration(i)*time.Minute), "1.00")
	}

	dash, err := svc.Dashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), dash.ProductCount)
	assert.Equal(t, int64(1), dash.SupplierCount)
	assert.Equal(t, int64(domain.RecentSalesLimit+1), dash.TodayCount)
	assert.Equal(t, "40", dash.TodayTotal.String())
	require.Len(t, dash.RecentSales, domain.RecentSalesLimit)
	assert.True(t, dash.RecentSales[0].CreatedAt.After(dash.RecentSales[1].CreatedAt))
}

func TestReportService_Dashboard_RedisCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	tr := helpers.SetupTestRedis(t)
	cache := redis_a.NewCache(tr.Client, time.Minute, helpers.TestLogger())
	svc := services.NewReportService(f.store, cache, f.opts, helpers.TestLogger())

	f.addSale(t, f.clock.Now(), "5.00")

	dash, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dash.TodayCount)
	assert.True(t, tr.Server.Exists("reports:0:dashboard:2026-03-14"))

	// written behind the service's back, so the cached view is stale
	f.addSale(t, f.clock.Now(), "5.00")

	dash, err = svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dash.TodayCount)

	svc.Invalidate(ctx)
	gen, err := tr.Server.Get("reports:generation")
	require.NoError(t, err)
	assert.Equal(t, "1", gen)

	dash, err = svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), dash.TodayCount)
	assert.Equal(t, "10", dash.TodayTotal.String())
	assert.True(t, tr.Server.Exists("reports:1:dashboard:2026-03-14"))
}

func TestReportService_Dashboard_RollsOverAtMidnight(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	tr := helpers.SetupTestRedis(t)
	cache := redis_a.NewCache(tr.Client, time.Hour, helpers.TestLogger())
	f.opts.ReportTTL = time.Hour
	svc := services.NewReportService(f.store, cache, f.opts, helpers.TestLogger())

	f.clock.Set(time.Date(2026, 3, 14, 23, 58, 0, 0, time.UTC))
	f.addSale(t, f.clock.Now(), "12.00")

	dash, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dash.TodayCount)

	f.clock.Set(time.Date(2026, 3, 15, 0, 2, 0, 0, time.UTC))

	dash, err = svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Zero(t, dash.TodayCount)
	assert.True(t, dash.TodayTotal.IsZero())
	require.Len(t, dash.RecentSales, 1)
}

// racingStore commits a sale right after the daily totals are read, the way
// a checkout landing mid-report would
type racingStore struct {
	ports.Store
	afterTotals func()
}

func (s *racingStore) Sales() ports.SaleLedger {
	return &racingLedger{SaleLedger: s.Store.Sales(), store: s}
}

type racingLedger struct {
	ports.SaleLedger
	store *racingStore
}

func (l *racingLedger) DailyTotals(ctx context.Context, from, to *time.Time) ([]domain.DailyTotal, error) {
	totals, err := l.SaleLedger.DailyTotals(ctx, from, to)
	if hook := l.store.afterTotals; hook != nil {
		l.store.afterTotals = nil
		hook()
	}
	return totals, err
}

func TestReportService_QueryDailyTotals_WriteDuringLoad(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	tr := helpers.SetupTestRedis(t)
	cache := redis_a.NewCache(tr.Client, time.Minute, helpers.TestLogger())
	racing := &racingStore{Store: f.store}
	svc := services.NewReportService(racing, cache, f.opts, helpers.TestLogger())

	today := domain.Day(f.clock.Now())
	racing.afterTotals = func() {
		f.addSale(t, f.clock.Now(), "5.00")
		svc.Invalidate(ctx)
	}

	totals, err := svc.QueryDailyTotals(ctx, today)
	require.NoError(t, err)
	assert.Empty(t, totals)
	assert.False(t, tr.Server.Exists("reports:0:daily:2026-03-14:2026-03-14"))

	totals, err = svc.QueryDailyTotals(ctx, today)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, int64(1), totals[0].Count)
	assert.Equal(t, "5", totals[0].Total.String())
}

func TestReportService_Dashboard_CacheUnavailable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	tr := helpers.SetupTestRedis(t)
	cache := redis_a.NewCache(tr.Client, time.Minute, helpers.TestLogger())
	svc := services.NewReportService(f.store, cache, f.opts, helpers.TestLogger())

	f.addSale(t, f.clock.Now(), "5.00")
	tr.Server.Close()

	dash, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dash.TodayCount)
}

func TestReportService_DeleteSale(t *testing.T) {
	tests := []struct {
		name       string
		known      bool
		setupMocks func(*mocks.MockCacheRepository)
		wantErr    error
	}{
		{
			name:  "invalidates_reports",
			known: true,
			setupMocks: func(m *mocks.MockCacheRepository) {
				m.EXPECT().Incr(gomock.Any(), "reports:generation").Return(int64(1), nil)
			},
		},
		{
			name:  "cache_failure_is_not_an_error",
			known: true,
			setupMocks: func(m *mocks.MockCacheRepository) {
				m.EXPECT().Incr(gomock.Any(), "reports:generation").Return(int64(0), errors.New("redis down"))
			},
		},
		{
			name:       "unknown_sale",
			setupMocks: func(m *mocks.MockCacheRepository) {},
			wantErr:    domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			ctx := context.Background()
			f := newFixture(t, nil)
			cache := mocks.NewMockCacheRepository(ctrl)
			tt.setupMocks(cache)
			svc := services.NewReportService(f.store, cache, f.opts, helpers.TestLogger())

			sale := f.addSale(t, f.clock.Now(), "5.00")
			id := uuid.New()
			if tt.known {
				id = sale.ID
			}

			err := svc.DeleteSale(ctx, id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 1, f.salesCount(t))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 0, f.salesCount(t))
		})
	}
}

func TestReportService_Warm(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	f := newFixture(t, nil)
	cache := mocks.NewMockCacheRepository(ctrl)
	svc := services.NewReportService(f.store, cache, f.opts, helpers.TestLogger())

	generation := func(_ context.Context, _ string, dest interface{}) error {
		*dest.(*int64) = 3
		return nil
	}

	gomock.InOrder(
		cache.EXPECT().Get(gomock.Any(), "reports:generation", gomock.Any()).DoAndReturn(generation),
		cache.EXPECT().Get(gomock.Any(), "reports:3:dashboard:2026-03-14", gomock.Any()).Return(redis_a.ErrCacheMiss),
		cache.EXPECT().Get(gomock.Any(), "reports:generation", gomock.Any()).DoAndReturn(generation),
		cache.EXPECT().SetWithTTL(gomock.Any(), "reports:3:dashboard:2026-03-14", gomock.Any(), time.Minute).Return(nil),
		cache.EXPECT().Get(gomock.Any(), "reports:generation", gomock.Any()).DoAndReturn(generation),
		cache.EXPECT().Get(gomock.Any(), "reports:3:daily:2026-03-07:2026-03-14", gomock.Any()).Return(redis_a.ErrCacheMiss),
		cache.EXPECT().Get(gomock.Any(), "reports:generation", gomock.Any()).DoAndReturn(generation),
		cache.EXPECT().SetWithTTL(gomock.Any(), "reports:3:daily:2026-03-07:2026-03-14", gomock.Any(), time.Minute).Return(nil),
	)

	require.NoError(t, svc.Warm(ctx, 7))
}
