// internal/workers/notifications_processor.go
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ammerola/mrstore-pos/internal/core/domain"
	"github.com/ammerola/mrstore-pos/internal/core/ports"
)

// NotificationProcessor reports products that need restocking
type NotificationProcessor struct {
	catalog ports.CatalogService
	logger  *slog.Logger
}

// NewNotificationProcessor creates a new notification processor
func NewNotificationProcessor(catalog ports.CatalogService, logger *slog.Logger) *NotificationProcessor {
	return &NotificationProcessor{
		catalog: catalog,
		logger:  logger.With(slog.String("processor", "notification")),
	}
}

// LowStock handles stock:low. The product is re-read so a restock between
// the sale and the task suppresses the alert.
func (p *NotificationProcessor) LowStock(ctx context.Context, t *asynq.Task) error {
	var payload LowStockPayload
	if err := decodePayload(t, &payload); err != nil {
		return err
	}

	product, err := p.catalog.GetProduct(ctx, payload.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			p.logger.InfoContext(ctx, "low stock product no longer exists",
				slog.String("product_id", payload.ProductID.String()))
			return nil
		}
		return fmt.Errorf("failed to load product: %w", err)
	}

	if !product.LowStock() {
		p.logger.DebugContext(ctx, "product restocked before notification",
			slog.String("product_id", product.ID.String()))
		return nil
	}

	level := slog.LevelWarn
	msg := "product low on stock"
	if product.OutOfStock() {
		level = slog.LevelError
		msg = "product out of stock"
	}
	p.logger.Log(ctx, level, msg,
		slog.String("product_id", product.ID.String()),
		slog.String("name", product.Name),
		slog.String("supplier", product.SupplierLabel()),
		slog.String("stock", product.Stock.String()),
		slog.String("unit", product.Unit.Label()),
		slog.String("threshold", domain.LowStockThreshold.String()))

	return nil
}
