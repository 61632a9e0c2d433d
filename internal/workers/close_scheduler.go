// internal/workers/close_scheduler.go
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"

	"github.com/ammerola/mrstore-pos/internal/core/domain"
)

// CloseScheduler fires the nightly close. The store day is resolved when the
// schedule fires and pinned in the task, so a worker that is down or behind
// past midnight still closes the day that ended.
type CloseScheduler struct {
	cron   *cron.Cron
	client Enqueuer
	loc    *time.Location
	logger *slog.Logger
}

// NewCloseScheduler parses spec as a standard five-field cron expression
// evaluated in loc
func NewCloseScheduler(spec string, client Enqueuer, loc *time.Location, logger *slog.Logger) (*CloseScheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := &CloseScheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		client: client,
		loc:    loc,
		logger: logger.With(slog.String("component", "close_scheduler")),
	}

	_, err := s.cron.AddFunc(spec, func() {
		if err := s.Dispatch(context.Background(), time.Now()); err != nil {
			s.logger.Error("failed to dispatch nightly close", slog.String("error", err.Error()))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid close schedule %q: %w", spec, err)
	}
	return s, nil
}

// Dispatch enqueues the close of the store day containing at. The task id
// is derived from the date, so a second dispatch for the same day is a no-op.
func (s *CloseScheduler) Dispatch(ctx context.Context, at time.Time) error {
	date := domain.StartOfDay(at, s.loc).Format(domain.DateLayout)

	task, err := NewCloseRegisterTask(date)
	if err != nil {
		return fmt.Errorf("failed to build close task: %w", err)
	}

	info, err := s.client.EnqueueContext(ctx, task, asynq.TaskID(TypeCloseRegister+":"+date))
	switch {
	case errors.Is(err, asynq.ErrTaskIDConflict):
		s.logger.InfoContext(ctx, "nightly close already queued", slog.String("date", date))
		return nil
	case err != nil:
		return fmt.Errorf("failed to enqueue close for %s: %w", date, err)
	}

	s.logger.InfoContext(ctx, "nightly close enqueued",
		slog.String("date", date),
		slog.String("task_id", info.ID))
	return nil
}

// Start runs the schedule in its own goroutine
func (s *CloseScheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running dispatch to finish
func (s *CloseScheduler) Stop() {
	<-s.cron.Stop().Done()
}
