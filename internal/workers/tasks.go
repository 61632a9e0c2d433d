// internal/workers/tasks.go
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ammerola/mrstore-pos/internal/core/domain"
	"github.com/ammerola/mrstore-pos/internal/core/ports"
)

// Task types
const (
	// TypeCloseRegister closes one store day; the payload always names it
	TypeCloseRegister = "closing:register"
	// TypeArchiveClosing uploads a closed day's workbook to archive storage
	TypeArchiveClosing = "closing:archive"
	// TypeLowStock notifies that a product fell under the restock threshold
	TypeLowStock = "stock:low"
	// TypeWarmReports precomputes the dashboard and recent daily totals
	TypeWarmReports = "reports:warm"
)

// Queue names; priorities come from configuration
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// ClosingPayload names the day to close or archive as YYYY-MM-DD in the
// store timezone
type ClosingPayload struct {
	Date string `json:"date,omitempty"`
}

// LowStockPayload identifies a product that dropped below the threshold
type LowStockPayload struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Stock     string    `json:"stock"`
}

// WarmPayload sets how many days of daily totals to precompute
type WarmPayload struct {
	Days int `json:"days"`
}

// NewCloseRegisterTask builds a closing:register task
func NewCloseRegisterTask(date string) (*asynq.Task, error) {
	payload, err := json.Marshal(ClosingPayload{Date: date})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeCloseRegister, payload, asynq.Queue(QueueCritical), asynq.MaxRetry(5)), nil
}

// NewArchiveClosingTask builds a closing:archive task
func NewArchiveClosingTask(date string) (*asynq.Task, error) {
	payload, err := json.Marshal(ClosingPayload{Date: date})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeArchiveClosing, payload,
		asynq.Queue(QueueDefault),
		asynq.Timeout(2*time.Minute),
	), nil
}

// NewLowStockTask builds a stock:low task
func NewLowStockTask(p domain.Product) (*asynq.Task, error) {
	payload, err := json.Marshal(LowStockPayload{
		ProductID: p.ID,
		Name:      p.Name,
		Stock:     p.Stock.String(),
	})
	if err != nil {
		return nil, err
	}
	// one notification per product per hour
	return asynq.NewTask(TypeLowStock, payload, asynq.Queue(QueueLow), asynq.Unique(time.Hour)), nil
}

// NewWarmReportsTask builds a reports:warm task
func NewWarmReportsTask(days int) (*asynq.Task, error) {
	payload, err := json.Marshal(WarmPayload{Days: days})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeWarmReports, payload, asynq.Queue(QueueLow), asynq.MaxRetry(1)), nil
}

// Enqueuer is the part of *asynq.Client the publisher needs
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TaskPublisher turns domain events into background tasks
type TaskPublisher struct {
	client Enqueuer
}

var _ ports.EventPublisher = (*TaskPublisher)(nil)

// NewTaskPublisher creates a publisher over an asynq client
func NewTaskPublisher(client Enqueuer) *TaskPublisher {
	return &TaskPublisher{client: client}
}

// LowStock enqueues a low stock notification
func (p *TaskPublisher) LowStock(ctx context.Context, product domain.Product) error {
	task, err := NewLowStockTask(product)
	if err != nil {
		return fmt.Errorf("failed to build low stock task: %w", err)
	}
	return p.enqueue(ctx, task)
}

// RegisterClosed enqueues the archive of a closed day
func (p *TaskPublisher) RegisterClosed(ctx context.Context, closing domain.Closing) error {
	task, err := NewArchiveClosingTask(closing.Date.Format(domain.DateLayout))
	if err != nil {
		return fmt.Errorf("failed to build archive task: %w", err)
	}
	return p.enqueue(ctx, task)
}

func (p *TaskPublisher) enqueue(ctx context.Context, task *asynq.Task) error {
	_, err := p.client.EnqueueContext(ctx, task)
	if err != nil && !errors.Is(err, asynq.ErrDuplicateTask) {
		return fmt.Errorf("failed to enqueue %s: %w", task.Type(), err)
	}
	return nil
}

func decodePayload(t *asynq.Task, v any) error {
	if err := json.Unmarshal(t.Payload(), v); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}
	return nil
}
