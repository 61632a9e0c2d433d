// internal/core/services/options.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ammerola/mrstore-pos/internal/core/domain"
	"github.com/ammerola/mrstore-pos/internal/core/ports"
)

// Options holds the calendar and clock shared by the services
type Options struct {
	// Location decides which calendar day a sale falls on
	Location *time.Location
	Now      func() time.Time
	// ReportTTL bounds how long aggregates stay cached
	ReportTTL time.Duration
}

// DefaultOptions returns UTC days, the wall clock and a five minute report cache
func DefaultOptions() Options {
	return Options{
		Location:  time.UTC,
		Now:       time.Now,
		ReportTTL: 5 * time.Minute,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Location == nil {
		o.Location = def.Location
	}
	if o.Now == nil {
		o.Now = def.Now
	}
	if o.ReportTTL <= 0 {
		o.ReportTTL = def.ReportTTL
	}
	return o
}

func (o Options) today() time.Time {
	return domain.StartOfDay(o.Now(), o.Location)
}

// Report cache keys are versioned by a generation counter. Every ledger or
// catalog write bumps it, so a value computed before the write lands under a
// key no reader asks for afterwards.
const (
	cacheKeyGeneration  = "reports:generation"
	cacheKeyDailyTotals = "daily"
	cacheKeyDashboard   = "dashboard"
)

func reportKey(gen int64, parts ...string) string {
	return fmt.Sprintf("reports:%d:%s", gen, strings.Join(parts, ":"))
}

// reportGeneration reads the current generation. ok is false when the cache
// cannot be read, in which case callers bypass it.
func reportGeneration(ctx context.Context, cache ports.CacheRepository) (gen int64, ok bool) {
	err := cache.Get(ctx, cacheKeyGeneration, &gen)
	switch {
	case err == nil:
		return gen, true
	case errors.Is(err, ports.ErrCacheMiss):
		return 0, true
	default:
		return 0, false
	}
}

// invalidateReports retires every cached report by starting a new generation
func invalidateReports(ctx context.Context, cache ports.CacheRepository, logger *slog.Logger) {
	if cache == nil {
		return
	}
	if _, err := cache.Incr(ctx, cacheKeyGeneration); err != nil {
		logger.WarnContext(ctx, "failed to invalidate report cache",
			slog.String("error", err.Error()))
	}
}

// cached reads a report through the cache, loading it on a miss. The result
// is stored only if no write started a new generation during the load.
func cached[T any](ctx context.Context, cache ports.CacheRepository, logger *slog.Logger, ttl time.Duration, load func() (T, error), parts ...string) (T, error) {
	if cache == nil {
		return load()
	}
	gen, ok := reportGeneration(ctx, cache)
	if !ok {
		logger.WarnContext(ctx, "report cache unavailable, loading from store")
		return load()
	}

	key := reportKey(gen, parts...)
	var out T
	if err := cache.Get(ctx, key, &out); err == nil {
		return out, nil
	}

	out, err := load()
	if err != nil {
		return out, err
	}
	if now, ok := reportGeneration(ctx, cache); !ok || now != gen {
		return out, nil
	}
	if err := cache.SetWithTTL(ctx, key, out, ttl); err != nil {
		logger.WarnContext(ctx, "failed to cache report",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
	return out, nil
}

// classify leaves domain errors intact and marks everything else as a
// persistence failure
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrEmptySale),
		errors.Is(err, domain.ErrPersistenceFailure),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrPersistenceFailure, err)
	}
}
