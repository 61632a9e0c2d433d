// internal/handlers/reports.go
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ammerola/mrstore-pos/internal/core/domain"
	"github.com/ammerola/mrstore-pos/internal/core/ports"
)

// ReportHandler serves the sales ledger and its aggregates
type ReportHandler struct {
	reports ports.ReportService
	loc     *time.Location
	logger  *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports ports.ReportService, loc *time.Location, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		loc:     loc,
		logger:  logger.With(slog.String("handler", "reports")),
	}
}

// SalesResponse lists sales with their count and sum
type SalesResponse struct {
	Sales []domain.Sale   `json:"sales"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// DailyTotalsResponse lists per-day aggregates
type DailyTotalsResponse struct {
	Days  []domain.DailyTotal `json:"days"`
	Count int64               `json:"count"`
	Total decimal.Decimal     `json:"total"`
}

func newSalesResponse(sales []domain.Sale) SalesResponse {
	if sales == nil {
		sales = []domain.Sale{}
	}
	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(s.Total)
	}
	return SalesResponse{Sales: sales, Count: len(sales), Total: total}
}

// History handles GET /api/v1/sales?start=&end=
func (h *ReportHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rng, err := queryRange(r, h.loc)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "query history")
		return
	}

	sales, err := h.reports.QueryHistory(ctx, rng)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "query history")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, newSalesResponse(sales))
}

// Today handles GET /api/v1/sales/today
func (h *ReportHandler) Today(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sales, err := h.reports.TodaySales(ctx)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "load today's sales")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, newSalesResponse(sales))
}

// DeleteSale handles DELETE /api/v1/sales/{id}
func (h *ReportHandler) DeleteSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathUUID(r, "id")
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "delete sale")
		return
	}

	if err := h.reports.DeleteSale(ctx, id); err != nil {
		respondServiceError(ctx, w, h.logger, err, "delete sale")
		return
	}

	h.logger.InfoContext(ctx, "sale deleted", slog.String("sale_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

// DailyTotals handles GET /api/v1/reports/daily?start=&end=
func (h *ReportHandler) DailyTotals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rng, err := queryRange(r, h.loc)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "query daily totals")
		return
	}

	days, err := h.reports.QueryDailyTotals(ctx, rng)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "query daily totals")
		return
	}

	resp := DailyTotalsResponse{Days: days, Total: decimal.Zero}
	if resp.Days == nil {
		resp.Days = []domain.DailyTotal{}
	}
	for _, d := range days {
		resp.Count += d.Count
		resp.Total = resp.Total.Add(d.Total)
	}

	respondJSON(w, h.logger, http.StatusOK, resp)
}

// DayDetail handles GET /api/v1/reports/daily/{date}
func (h *ReportHandler) DayDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	day, err := pathDay(r, "date", h.loc)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "load day detail")
		return
	}

	sales, err := h.reports.DayDetail(ctx, day)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "load day detail")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, newSalesResponse(sales))
}

// Dashboard handles GET /api/v1/dashboard
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dashboard, err := h.reports.Dashboard(ctx)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "load dashboard")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, dashboard)
}
