// internal/core/services/sales.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/mrstore-pos/internal/core/domain"
	"github.com/ammerola/mrstore-pos/internal/core/ports"
)

// SaleService builds drafts and commits them to the ledger
type SaleService struct {
	store  ports.Store
	cache  ports.CacheRepository
	events ports.EventPublisher
	drafts *draftRegistry
	opts   Options
	logger *slog.Logger
}

// Statically assert that *SaleService implements the SaleService interface.
var _ ports.SaleService = (*SaleService)(nil)

// NewSaleService creates a new sale service. cache and events may be nil.
func NewSaleService(store ports.Store, cache ports.CacheRepository, events ports.EventPublisher, opts Options, logger *slog.Logger) *SaleService {
	return &SaleService{
		store:  store,
		cache:  cache,
		events: events,
		drafts: newDraftRegistry(),
		opts:   opts.withDefaults(),
		logger: logger.With(slog.String("service", "sales")),
	}
}

// BuildDraft registers an empty draft
func (s *SaleService) BuildDraft(ctx context.Context) (*domain.Draft, error) {
	d := s.drafts.create()
	s.logger.DebugContext(ctx, "draft created", slog.String("draft_id", d.ID.String()))
	return d.Clone(), nil
}

// GetDraft returns a copy of the draft
func (s *SaleService) GetDraft(ctx context.Context, draftID uuid.UUID) (*domain.Draft, error) {
	entry, err := s.drafts.acquire(draftID)
	if err != nil {
		return nil, err
	}
	defer entry.mu.Unlock()

	return entry.draft.Clone(), nil
}

// DiscardDraft drops a draft without committing it
func (s *SaleService) DiscardDraft(ctx context.Context, draftID uuid.UUID) error {
	entry, err := s.drafts.acquire(draftID)
	if err != nil {
		return err
	}
	defer entry.mu.Unlock()

	s.drafts.drop(entry)
	s.logger.InfoContext(ctx, "draft discarded", slog.String("draft_id", draftID.String()))
	return nil
}

// AddLine validates qty against the product's current stock, counting what
// the draft already holds for it, and appends a priced line.
func (s *SaleService) AddLine(ctx context.Context, draftID, productID uuid.UUID, qty decimal.Decimal) (*domain.LineAdded, error) {
	if !qty.IsPositive() {
		return nil, fmt.Errorf("%w: %s must be greater than zero", domain.ErrInvalidQuantity, qty)
	}

	entry, err := s.drafts.acquire(draftID)
	if err != nil {
		return nil, err
	}
	defer entry.mu.Unlock()

	product, err := s.store.Products().Lookup(ctx, productID)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to look up product %s: %w", productID, err))
	}
	if err := product.CheckQuantity(qty); err != nil {
		return nil, err
	}

	requested := entry.draft.QuantityFor(productID).Add(qty)
	if err := domain.CheckStock(product, requested); err != nil {
		s.logger.WarnContext(ctx, "line rejected",
			slog.String("draft_id", draftID.String()),
			slog.String("product_id", productID.String()),
			slog.String("requested", requested.String()),
			slog.String("available", product.Stock.String()))
		return nil, err
	}

	line := domain.NewLineItem(product, qty)
	entry.draft.Append(line)

	return &domain.LineAdded{
		DraftID: draftID,
		Line:    line,
		Total:   entry.draft.Total(),
	}, nil
}

// RemoveLine removes a line by its id
func (s *SaleService) RemoveLine(ctx context.Context, draftID, lineID uuid.UUID) error {
	entry, err := s.drafts.acquire(draftID)
	if err != nil {
		return err
	}
	defer entry.mu.Unlock()

	if !entry.draft.Remove(lineID) {
		return fmt.Errorf("line %s: %w", lineID, domain.ErrNotFound)
	}
	return nil
}

// CurrentTotal returns the running total of the draft
func (s *SaleService) CurrentTotal(ctx context.Context, draftID uuid.UUID) (decimal.Decimal, error) {
	entry, err := s.drafts.acquire(draftID)
	if err != nil {
		return decimal.Zero, err
	}
	defer entry.mu.Unlock()

	return entry.draft.Total(), nil
}

// CommitSale re-checks every product against current stock, decrements it
// and appends the sale, all in one transaction. The draft survives a failed
// commit.
func (s *SaleService) CommitSale(ctx context.Context, draftID uuid.UUID) (*domain.Sale, error) {
	entry, err := s.drafts.acquire(draftID)
	if err != nil {
		return nil, err
	}
	defer entry.mu.Unlock()

	draft := entry.draft
	if len(draft.Lines) == 0 {
		return nil, domain.ErrEmptySale
	}

	var (
		sale    *domain.Sale
		touched []domain.Product
	)

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		touched = touched[:0]
		ids := draft.ProductIDs()

		for _, id := range ids {
			product, err := tx.Products().Lookup(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to re-read product %s: %w", id, err)
			}
			if err := domain.CheckStock(product, draft.QuantityFor(id)); err != nil {
				return err
			}
		}

		for _, id := range ids {
			updated, err := tx.Products().AdjustStock(ctx, id, draft.QuantityFor(id).Neg())
			if err != nil {
				return fmt.Errorf("failed to adjust stock for %s: %w", id, err)
			}
			touched = append(touched, *updated)
		}

		sale = domain.NewSale(draft, s.opts.Now())
		if err := tx.Sales().Append(ctx, sale); err != nil {
			return fmt.Errorf("failed to append sale: %w", err)
		}
		return nil
	})
	if err != nil {
		err = classify(err)
		var stockErr *domain.StockError
		if errors.As(err, &stockErr) {
			s.logger.WarnContext(ctx, "commit rejected",
				slog.String("draft_id", draftID.String()),
				slog.String("product", stockErr.Name),
				slog.String("requested", stockErr.Requested.String()),
				slog.String("available", stockErr.Available.String()))
		} else {
			s.logger.ErrorContext(ctx, "commit failed",
				slog.String("draft_id", draftID.String()),
				slog.String("error", err.Error()))
		}
		return nil, err
	}

	s.drafts.drop(entry)

	s.logger.InfoContext(ctx, "sale committed",
		slog.String("sale_id", sale.ID.String()),
		slog.Int("lines", len(sale.Lines)),
		slog.String("total", sale.Total.StringFixed(2)))

	s.afterCommit(ctx, touched)
	return sale, nil
}

// PruneDrafts drops drafts untouched for longer than maxAge
func (s *SaleService) PruneDrafts(ctx context.Context, maxAge time.Duration) int {
	n := s.drafts.prune(time.Now().Add(-maxAge))
	if n > 0 {
		s.logger.InfoContext(ctx, "pruned stale drafts", slog.Int("count", n))
	}
	return n
}

// OpenDrafts returns the number of drafts in progress
func (s *SaleService) OpenDrafts() int {
	return s.drafts.count()
}

func (s *SaleService) afterCommit(ctx context.Context, touched []domain.Product) {
	invalidateReports(ctx, s.cache, s.logger)

	if s.events == nil {
		return
	}
	for _, p := range touched {
		if !p.LowStock() {
			continue
		}
		if err := s.events.LowStock(ctx, p); err != nil {
			s.logger.WarnContext(ctx, "failed to publish low stock event",
				slog.String("product_id", p.ID.String()),
				slog.String("error", err.Error()))
		}
	}
}
