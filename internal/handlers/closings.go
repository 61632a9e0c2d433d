// internal/handlers/closings.go
package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ammerola/mrstore-pos/internal/adapters/export"
	"github.com/ammerola/mrstore-pos/internal/core/domain"
	"github.com/ammerola/mrstore-pos/internal/core/ports"
)

// archiveLinkTTL is how long a closing archive link stays valid
const archiveLinkTTL = 15 * time.Minute

// ClosingHandler handles cash-register closings
type ClosingHandler struct {
	closings ports.ClosingService
	archives ports.ArchiveStorage
	loc      *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

// NewClosingHandler creates a new closing handler. archives may be nil when
// no archive storage is configured.
func NewClosingHandler(closings ports.ClosingService, archives ports.ArchiveStorage, loc *time.Location, logger *slog.Logger) *ClosingHandler {
	return &ClosingHandler{
		closings: closings,
		archives: archives,
		loc:      loc,
		now:      time.Now,
		logger:   logger.With(slog.String("handler", "closings")),
	}
}

// CloseRequest is the optional body of POST /api/v1/closings
type CloseRequest struct {
	Date string `json:"date,omitempty"`
}

// ArchiveResponse points at a stored closing workbook
type ArchiveResponse struct {
	Date      string    `json:"date"`
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CloseRegister handles POST /api/v1/closings; the date defaults to today
func (h *ClosingHandler) CloseRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CloseRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		respondServiceError(ctx, w, h.logger, err, "close register")
		return
	}

	day := domain.StartOfDay(h.now(), h.loc)
	if req.Date != "" {
		parsed, err := domain.ParseDay(req.Date, h.loc)
		if err != nil {
			respondServiceError(ctx, w, h.logger, validationError("%v", err), "close register")
			return
		}
		day = parsed
	}

	closing, err := h.closings.CloseRegister(ctx, day)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "close register")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, closing)
}

// ListClosings handles GET /api/v1/closings?start=&end=
func (h *ClosingHandler) ListClosings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rng, err := queryRange(r, h.loc)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "list closings")
		return
	}

	closings, err := h.closings.ListClosings(ctx, rng)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "list closings")
		return
	}
	if closings == nil {
		closings = []domain.Closing{}
	}

	respondJSON(w, h.logger, http.StatusOK, closings)
}

// GetClosing handles GET /api/v1/closings/{date}
func (h *ClosingHandler) GetClosing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	day, err := pathDay(r, "date", h.loc)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "get closing")
		return
	}

	closing, err := h.closings.GetClosing(ctx, day)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "get closing")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, closing)
}

// GetArchive handles GET /api/v1/closings/{date}/archive
func (h *ClosingHandler) GetArchive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.archives == nil {
		respondError(w, h.logger, http.StatusServiceUnavailable, "Archive storage is not configured")
		return
	}

	day, err := pathDay(r, "date", h.loc)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "get archive")
		return
	}

	key := export.ArchiveKey(day)
	exists, err := h.archives.Exists(ctx, key)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "get archive")
		return
	}
	if !exists {
		respondError(w, h.logger, http.StatusNotFound, "No archive for "+day.Format(domain.DateLayout))
		return
	}

	url, err := h.archives.GetPresignedURL(ctx, key, archiveLinkTTL)
	if err != nil {
		respondServiceError(ctx, w, h.logger, err, "get archive")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, ArchiveResponse{
		Date:      day.Format(domain.DateLayout),
		Key:       key,
		URL:       url,
		ExpiresAt: h.now().Add(archiveLinkTTL),
	})
}
