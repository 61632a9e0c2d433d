package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/mrstore-pos/internal/handlers"
	"github.com/ammerola/mrstore-pos/test/helpers"
	"github.com/ammerola/mrstore-pos/test/mocks"
)

var storeLoc = time.FixedZone("CST", -6*60*60)

type fixture struct {
	sales    *mocks.MockSaleService
	reports  *mocks.MockReportService
	closings *mocks.MockClosingService
	catalog  *mocks.MockCatalogService
	archives *mocks.MockArchiveStorage
	mux      *http.ServeMux
}

func newFixture(t *testing.T) *fixture {
	return buildFixture(t, true)
}

func newFixtureWithoutArchive(t *testing.T) *fixture {
	return buildFixture(t, false)
}

func buildFixture(t *testing.T, withArchive bool) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := helpers.TestLogger()

	f := &fixture{
		sales:    mocks.NewMockSaleService(ctrl),
		reports:  mocks.NewMockReportService(ctrl),
		closings: mocks.NewMockClosingService(ctrl),
		catalog:  mocks.NewMockCatalogService(ctrl),
		archives: mocks.NewMockArchiveStorage(ctrl),
		mux:      http.NewServeMux(),
	}

	closingHandler := handlers.NewClosingHandler(f.closings, nil, storeLoc, logger)
	if withArchive {
		closingHandler = handlers.NewClosingHandler(f.closings, f.archives, storeLoc, logger)
	}

	h := &handlers.Handlers{
		Drafts:   handlers.NewDraftHandler(f.sales, logger),
		Reports:  handlers.NewReportHandler(f.reports, storeLoc, logger),
		Closings: closingHandler,
		Catalog:  handlers.NewCatalogHandler(f.catalog, logger),
		Export:   handlers.NewExportHandler(f.catalog, f.reports, f.closings, storeLoc, logger),
	}
	h.RegisterRoutes(f.mux)
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", s, storeLoc)
	require.NoError(t, err)
	return d
}

// decimalEq matches a decimal.Decimal by value rather than representation
type decimalEq struct{ want decimal.Decimal }

func eqDecimal(s string) gomock.Matcher {
	return decimalEq{want: decimal.RequireFromString(s)}
}

func (m decimalEq) Matches(x any) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalEq) String() string { return "is decimal " + m.want.String() }
