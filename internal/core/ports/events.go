// internal/core/ports/events.go
package ports

import (
	"context"

	"github.com/ammerola/mrstore-pos/internal/core/domain"
)

// EventPublisher hands follow-up work to background workers
type EventPublisher interface {
	LowStock(ctx context.Context, product domain.Product) error
	RegisterClosed(ctx context.Context, closing domain.Closing) error
}
