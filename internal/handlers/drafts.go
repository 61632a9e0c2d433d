// internal/handlers/drafts.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/mrstore-pos/internal/core/domain"
	"github.com/ammerola/mrstore-pos/internal/core/ports"
	"github.com/ammerola/mrstore-pos/internal/pkg/logger"
)

// DraftHandler handles the register's in-progress sales
type DraftHandler struct {
	sales  ports.SaleService
	logger *slog.Logger
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(sales ports.SaleService, logger *slog.Logger) *DraftHandler {
	return &DraftHandler{
		sales:  sales,
		logger: logger.With(slog.String("handler", "drafts")),
	}
}

// AddLineRequest is the body of POST /api/v1/drafts/{id}/lines
type AddLineRequest struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  json.RawMessage `json:"quantity"`
}

// DraftResponse renders a draft with its running total
type DraftResponse struct {
	ID        uuid.UUID       `json:"id"`
	Lines     []LineResponse  `json:"lines"`
	LineCount int             `json:"line_count"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// LineResponse renders one draft line with its subtotal
type LineResponse struct {
	domain.LineItem
	Subtotal decimal.Decimal `json:"subtotal"`
}

// TotalResponse is the body of GET /api/v1/drafts/{id}/total
type TotalResponse struct {
	DraftID uuid.UUID       `json:"draft_id"`
	Total   decimal.Decimal `json:"total"`
}

func newDraftResponse(d *domain.Draft) DraftResponse {
	lines := make([]LineResponse, 0, len(d.Lines))
	for _, l := range d.Lines {
		lines = append(lines, LineResponse{LineItem: l, Subtotal: l.Subtotal()})
	}
	return DraftResponse{
		ID:        d.ID,
		Lines:     lines,
		LineCount: len(lines),
		Total:     d.Total(),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// CreateDraft handles POST /api/v1/drafts
func (h *DraftHandler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	draft, err := h.sales.BuildDraft(ctx)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "create draft")
		return
	}

	w.Header().Set("Location", "/api/v1/drafts/"+draft.ID.String())
	respondJSON(w, h.logger, http.StatusCreated, newDraftResponse(draft))
}

// GetDraft handles GET /api/v1/drafts/{id}
func (h *DraftHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	draftID, err := pathUUID(r, "id")
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "get draft")
		return
	}

	draft, err := h.sales.GetDraft(ctx, draftID)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "get draft")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, newDraftResponse(draft))
}

// DiscardDraft handles DELETE /api/v1/drafts/{id}
func (h *DraftHandler) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	draftID, err := pathUUID(r, "id")
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "discard draft")
		return
	}

	if err := h.sales.DiscardDraft(ctx, draftID); err != nil {
		respondServiceError(ctx, w, h.logger, err, "discard draft")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddLine handles POST /api/v1/drafts/{id}/lines
func (h *DraftHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	draftID, err := pathUUID(r, "id")
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "add line")
		return
	}
	ctx = logger.With(ctx, logger.ContextKeyDraftID, draftID)

	var req AddLineRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondServiceError(ctx, w, h.logger, err, "add line")
		return
	}
	if req.ProductID == uuid.Nil {
		respondServiceError(ctx, w, h.logger, validationError("product_id is required"), "add line")
		return
	}
	qty, err := parseDecimal(req.Quantity, "quantity")
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "add line")
		return
	}

	added, err := h.sales.AddLine(ctx, draftID, req.ProductID, qty)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "add line")
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, added)
}

// RemoveLine handles DELETE /api/v1/drafts/{id}/lines/{lineID}
func (h *DraftHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	draftID, err := pathUUID(r, "id")
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "remove line")
		return
	}
	lineID, err := pathUUID(r, "lineID")
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "remove line")
		return
	}
	ctx = logger.With(ctx, logger.ContextKeyDraftID, draftID)

	if err := h.sales.RemoveLine(ctx, draftID, lineID); err != nil {
		respondServiceError(ctx, w, h.logger, err, "remove line")
		return
	}

	total, err := h.sales.CurrentTotal(ctx, draftID)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "remove line")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, TotalResponse{DraftID: draftID, Total: total})
}

// CurrentTotal handles GET /api/v1/drafts/{id}/total
func (h *DraftHandler) CurrentTotal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	draftID, err := pathUUID(r, "id")
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "get total")
		return
	}

	total, err := h.sales.CurrentTotal(ctx, draftID)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "get total")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, TotalResponse{DraftID: draftID, Total: total})
}

// CommitSale handles POST /api/v1/drafts/{id}/commit
func (h *DraftHandler) CommitSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	draftID, err := pathUUID(r, "id")
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "commit sale")
		return
	}
	ctx = logger.With(ctx, logger.ContextKeyDraftID, draftID)

	sale, err := h.sales.CommitSale(ctx, draftID)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "commit sale")
		return
	}

	h.logger.InfoContext(ctx, "sale committed",
		slog.String("sale_id", sale.ID.String()),
		slog.String("total", sale.Total.StringFixed(2)))

	respondJSON(w, h.logger, http.StatusCreated, sale)
}
