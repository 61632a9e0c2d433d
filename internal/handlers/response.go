// internal/handlers/response.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/mrstore-pos/internal/core/domain"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, fmt.Sprintf(format, args...))
}

func respondJSON(w http.ResponseWriter, logger *slog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func respondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	respondJSON(w, logger, status, ErrorResponse{Error: message})
}

// respondServiceError maps a core error onto its HTTP status
func respondServiceError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, err error, action string) {
	var stockErr *domain.StockError

	switch {
	case errors.As(err, &stockErr):
		respondJSON(w, logger, http.StatusConflict, ErrorResponse{
			Error: stockErr.Error(),
			Code:  "insufficient_stock",
			Details: map[string]any{
				"product_id": stockErr.ProductID,
				"product":    stockErr.Name,
				"requested":  stockErr.Requested,
				"available":  stockErr.Available,
			},
		})
	case errors.Is(err, domain.ErrInsufficientStock):
		respondJSON(w, logger, http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "insufficient_stock"})
	case errors.Is(err, domain.ErrInvalidQuantity):
		respondJSON(w, logger, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "invalid_quantity"})
	case errors.Is(err, domain.ErrEmptySale):
		respondJSON(w, logger, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "empty_sale"})
	case errors.Is(err, domain.ErrValidation):
		respondJSON(w, logger, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "validation"})
	case errors.Is(err, domain.ErrNotFound):
		respondJSON(w, logger, http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "not_found"})
	default:
		logger.ErrorContext(ctx, "failed to "+action,
			slog.String("error", err.Error()))
		respondJSON(w, logger, http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to " + action,
			Code:  "persistence_failure",
		})
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %w", domain.ErrValidation, err)
	}
	return nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, validationError("invalid %s %q", name, r.PathValue(name))
	}
	return id, nil
}

func pathDay(r *http.Request, name string, loc *time.Location) (time.Time, error) {
	day, err := domain.ParseDay(r.PathValue(name), loc)
	if err != nil {
		return time.Time{}, validationError("%v", err)
	}
	return day, nil
}

// queryRange reads the optional start and end query parameters
func queryRange(r *http.Request, loc *time.Location) (domain.DateRange, error) {
	var rng domain.DateRange
	q := r.URL.Query()

	if s := q.Get("start"); s != "" {
		day, err := domain.ParseDay(s, loc)
		if err != nil {
			return rng, validationError("start: %v", err)
		}
		rng.Start = &day
	}
	if s := q.Get("end"); s != "" {
		day, err := domain.ParseDay(s, loc)
		if err != nil {
			return rng, validationError("end: %v", err)
		}
		rng.End = &day
	}
	if rng.Start != nil && rng.End != nil && rng.End.Before(*rng.Start) {
		return rng, validationError("end %s is before start %s",
			rng.End.Format(domain.DateLayout), rng.Start.Format(domain.DateLayout))
	}
	return rng, nil
}

// parseDecimal accepts JSON numbers and strings
func parseDecimal(raw json.RawMessage, field string) (decimal.Decimal, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero, validationError("%s is required", field)
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return decimal.Zero, validationError("%s must be a number", field)
	}
	return d, nil
}
