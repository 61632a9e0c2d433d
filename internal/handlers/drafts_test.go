package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/mrstore-pos/internal/core/domain"
	"github.com/ammerola/mrstore-pos/internal/handlers"
	"github.com/ammerola/mrstore-pos/test/helpers"
)

func TestDraftHandler_CreateDraft(t *testing.T) {
	f := newFixture(t)
	draft := domain.NewDraft()
	f.sales.EXPECT().BuildDraft(gomock.Any()).Return(draft, nil)

	w := f.do(http.MethodPost, "/api/v1/drafts", "")

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/v1/drafts/"+draft.ID.String(), w.Header().Get("Location"))

	var resp handlers.DraftResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, draft.ID, resp.ID)
	assert.Empty(t, resp.Lines)
	assert.True(t, resp.Total.IsZero())
}

func TestDraftHandler_GetDraft(t *testing.T) {
	f := newFixture(t)
	product := helpers.CreateTestProduct()
	draft := domain.NewDraft()
	draft.Append(domain.NewLineItem(product, helpers.Decimal(t, "3")))
	draft.Append(domain.NewLineItem(product, helpers.Decimal(t, "4")))
	f.sales.EXPECT().GetDraft(gomock.Any(), draft.ID).Return(draft, nil)

	w := f.do(http.MethodGet, "/api/v1/drafts/"+draft.ID.String(), "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp handlers.DraftResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, 2, resp.LineCount)
	assert.Equal(t, "35", resp.Total.String())
	assert.Equal(t, "15", resp.Lines[0].Subtotal.String())
	assert.Equal(t, draft.Lines[1].LineID, resp.Lines[1].LineID)
}

func TestDraftHandler_AddLine(t *testing.T) {
	draftID := uuid.New()
	productID := uuid.New()

	tests := []struct {
		name           string
		body           string
		setupMocks     func(f *fixture)
		expectedStatus int
		checkBody      func(t *testing.T, body string)
	}{
		{
			name: "adds_line",
			body: fmt.Sprintf(`{"product_id":%q,"quantity":3}`, productID),
			setupMocks: func(f *fixture) {
				f.sales.EXPECT().AddLine(gomock.Any(), draftID, productID, eqDecimal("3")).
					Return(&domain.LineAdded{
						DraftID: draftID,
						Line:    domain.LineItem{LineID: uuid.New(), ProductID: productID, Name: "Soda"},
						Total:   helpers.Decimal(t, "15.00"),
					}, nil)
			},
			expectedStatus: http.StatusCreated,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, `"total":"15"`)
			},
		},
		{
			name: "accepts_fractional_string_quantity",
			body: fmt.Sprintf(`{"product_id":%q,"quantity":"0.25"}`, productID),
			setupMocks: func(f *fixture) {
				f.sales.EXPECT().AddLine(gomock.Any(), draftID, productID, eqDecimal("0.25")).
					Return(&domain.LineAdded{DraftID: draftID}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "insufficient_stock_names_product",
			body: fmt.Sprintf(`{"product_id":%q,"quantity":3}`, productID),
			setupMocks: func(f *fixture) {
				f.sales.EXPECT().AddLine(gomock.Any(), draftID, productID, gomock.Any()).
					Return(nil, &domain.StockError{
						ProductID: productID,
						Name:      "Q",
						Requested: helpers.Decimal(t, "3"),
						Available: helpers.Decimal(t, "2"),
					})
			},
			expectedStatus: http.StatusConflict,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, "insufficient stock for Q: requested 3, available 2")
				assert.Contains(t, body, `"code":"insufficient_stock"`)
				assert.Contains(t, body, `"available":"2"`)
			},
		},
		{
			name: "invalid_quantity_from_service",
			body: fmt.Sprintf(`{"product_id":%q,"quantity":0}`, productID),
			setupMocks: func(f *fixture) {
				f.sales.EXPECT().AddLine(gomock.Any(), draftID, productID, gomock.Any()).
					Return(nil, fmt.Errorf("%w: 0 must be greater than zero", domain.ErrInvalidQuantity))
			},
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, `"code":"invalid_quantity"`)
			},
		},
		{
			name: "unknown_product",
			body: fmt.Sprintf(`{"product_id":%q,"quantity":1}`, productID),
			setupMocks: func(f *fixture) {
				f.sales.EXPECT().AddLine(gomock.Any(), draftID, productID, gomock.Any()).
					Return(nil, fmt.Errorf("product %s: %w", productID, domain.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "missing_quantity",
			body:           fmt.Sprintf(`{"product_id":%q}`, productID),
			setupMocks:     func(f *fixture) {},
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, "quantity is required")
			},
		},
		{
			name:           "non_numeric_quantity",
			body:           fmt.Sprintf(`{"product_id":%q,"quantity":"lots"}`, productID),
			setupMocks:     func(f *fixture) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing_product",
			body:           `{"quantity":1}`,
			setupMocks:     func(f *fixture) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed_body",
			body:           `{"product_id":`,
			setupMocks:     func(f *fixture) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown_field",
			body:           fmt.Sprintf(`{"product_id":%q,"quantity":1,"price":2}`, productID),
			setupMocks:     func(f *fixture) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMocks(f)

			w := f.do(http.MethodPost, "/api/v1/drafts/"+draftID.String()+"/lines", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.checkBody != nil {
				tt.checkBody(t, w.Body.String())
			}
		})
	}
}

func TestDraftHandler_RemoveLine(t *testing.T) {
	draftID := uuid.New()
	lineID := uuid.New()

	t.Run("returns_new_total", func(t *testing.T) {
		f := newFixture(t)
		gomock.InOrder(
			f.sales.EXPECT().RemoveLine(gomock.Any(), draftID, lineID).Return(nil),
			f.sales.EXPECT().CurrentTotal(gomock.Any(), draftID).Return(helpers.Decimal(t, "20"), nil),
		)

		w := f.do(http.MethodDelete, fmt.Sprintf("/api/v1/drafts/%s/lines/%s", draftID, lineID), "")

		require.Equal(t, http.StatusOK, w.Code)
		var resp handlers.TotalResponse
		decodeBody(t, w, &resp)
		assert.Equal(t, "20", resp.Total.String())
	})

	t.Run("unknown_line", func(t *testing.T) {
		f := newFixture(t)
		f.sales.EXPECT().RemoveLine(gomock.Any(), draftID, lineID).
			Return(fmt.Errorf("line %s: %w", lineID, domain.ErrNotFound))

		w := f.do(http.MethodDelete, fmt.Sprintf("/api/v1/drafts/%s/lines/%s", draftID, lineID), "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid_line_id", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(http.MethodDelete, fmt.Sprintf("/api/v1/drafts/%s/lines/not-a-uuid", draftID), "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDraftHandler_CurrentTotal(t *testing.T) {
	f := newFixture(t)
	draftID := uuid.New()
	f.sales.EXPECT().CurrentTotal(gomock.Any(), draftID).Return(helpers.Decimal(t, "35.00"), nil)

	w := f.do(http.MethodGet, "/api/v1/drafts/"+draftID.String()+"/total", "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp handlers.TotalResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, draftID, resp.DraftID)
	assert.Equal(t, "35", resp.Total.String())
}

func TestDraftHandler_CommitSale(t *testing.T) {
	draftID := uuid.New()

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{name: "commits", expectedStatus: http.StatusCreated},
		{name: "empty_sale", err: domain.ErrEmptySale, expectedStatus: http.StatusBadRequest, expectedCode: "empty_sale"},
		{
			name:           "stock_changed_since_add",
			err:            fmt.Errorf("commit: %w", &domain.StockError{Name: "P"}),
			expectedStatus: http.StatusConflict,
			expectedCode:   "insufficient_stock",
		},
		{
			name:           "storage_failure",
			err:            fmt.Errorf("%w: connection reset", domain.ErrPersistenceFailure),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "persistence_failure",
		},
		{name: "unknown_draft", err: domain.ErrNotFound, expectedStatus: http.StatusNotFound, expectedCode: "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			var sale *domain.Sale
			if tt.err == nil {
				sale = helpers.CreateTestSale(day(t, "2024-03-15"), "35.00")
			}
			f.sales.EXPECT().CommitSale(gomock.Any(), draftID).Return(sale, tt.err)

			w := f.do(http.MethodPost, "/api/v1/drafts/"+draftID.String()+"/commit", "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				var resp handlers.ErrorResponse
				decodeBody(t, w, &resp)
				assert.Equal(t, tt.expectedCode, resp.Code)
			}
			if tt.name == "storage_failure" {
				assert.NotContains(t, w.Body.String(), "connection reset")
			}
		})
	}
}

func TestDraftHandler_DiscardDraft(t *testing.T) {
	f := newFixture(t)
	draftID := uuid.New()
	f.sales.EXPECT().DiscardDraft(gomock.Any(), draftID).Return(nil)

	w := f.do(http.MethodDelete, "/api/v1/drafts/"+draftID.String(), "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}
