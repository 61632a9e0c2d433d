// internal/adapters/memory/ledger.go
package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/mrstore-pos/internal/core/domain"
	"github.com/ammerola/mrstore-pos/internal/core/ports"
)

type saleLedger struct {
	sc *scope
}

// Append stores the sale without its structured lines, as the database does
func (r *saleLedger) Append(ctx context.Context, sale *domain.Sale) error {
	return r.sc.write(func(st *state) error {
		for _, s := range st.sales {
			if s.ID == sale.ID {
				return fmt.Errorf("sale %s already exists", sale.ID)
			}
		}
		stored := *sale
		stored.Lines = nil
		st.sales = append(st.sales, stored)
		return nil
	})
}

func (r *saleLedger) FindByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	var out domain.Sale
	err := r.sc.read(func(st *state) error {
		for _, s := range st.sales {
			if s.ID == id {
				out = s
				return nil
			}
		}
		return fmt.Errorf("sale %s: %w", id, domain.ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *saleLedger) Delete(ctx context.Context, id uuid.UUID) error {
	return r.sc.write(func(st *state) error {
		for i, s := range st.sales {
			if s.ID == id {
				st.sales = append(st.sales[:i:i], st.sales[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("sale %s: %w", id, domain.ErrNotFound)
	})
}

func (r *saleLedger) Find(ctx context.Context, q ports.SaleQuery) ([]domain.Sale, error) {
	out := []domain.Sale{}
	err := r.sc.read(func(st *state) error {
		for _, s := range st.sales {
			if inRange(s.CreatedAt, q.From, q.To) {
				out = append(out, s)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		if q.Ascending {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *saleLedger) Summarize(ctx context.Context, from, to time.Time) (domain.DaySummary, error) {
	summary := domain.DaySummary{Total: decimal.Zero}
	err := r.sc.read(func(st *state) error {
		for _, s := range st.sales {
			if inRange(s.CreatedAt, &from, &to) {
				summary.Count++
				summary.Total = summary.Total.Add(s.Total)
			}
		}
		return nil
	})
	return summary, err
}

func (r *saleLedger) DailyTotals(ctx context.Context, from, to *time.Time) ([]domain.DailyTotal, error) {
	loc := r.sc.loc()
	byDay := make(map[time.Time]*domain.DailyTotal)
	err := r.sc.read(func(st *state) error {
		for _, s := range st.sales {
			if !inRange(s.CreatedAt, from, to) {
				continue
			}
			day := domain.StartOfDay(s.CreatedAt, loc)
			agg, ok := byDay[day]
			if !ok {
				agg = &domain.DailyTotal{Date: day, Total: decimal.Zero}
				byDay[day] = agg
			}
			agg.Count++
			agg.Total = agg.Total.Add(s.Total)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.DailyTotal, 0, len(byDay))
	for _, agg := range byDay {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

type closingRepository struct {
	sc *scope
}

func (r *closingRepository) Upsert(ctx context.Context, closing *domain.Closing) error {
	key := closing.Date.In(r.sc.loc()).Format(domain.DateLayout)
	return r.sc.write(func(st *state) error {
		if existing, ok := st.closings[key]; ok {
			closing.ID = existing.ID
		} else if closing.ID == uuid.Nil {
			closing.ID = uuid.New()
		}
		st.closings[key] = *closing
		return nil
	})
}

func (r *closingRepository) FindByDate(ctx context.Context, date time.Time) (*domain.Closing, error) {
	key := date.In(r.sc.loc()).Format(domain.DateLayout)
	var out domain.Closing
	err := r.sc.read(func(st *state) error {
		c, ok := st.closings[key]
		if !ok {
			return fmt.Errorf("closing %s: %w", key, domain.ErrNotFound)
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *closingRepository) List(ctx context.Context, from, to *time.Time) ([]domain.Closing, error) {
	out := []domain.Closing{}
	err := r.sc.read(func(st *state) error {
		for _, c := range st.closings {
			if inRange(c.Date, from, to) {
				out = append(out, c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}
