// internal/core/domain/closing.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day format used in APIs and cache keys
const DateLayout = "2006-01-02"

// Closing is the cash-register reconciliation for one calendar day
type Closing struct {
	ID           uuid.UUID       `json:"id"`
	Date         time.Time       `json:"date"`
	SaleCount    int64           `json:"sale_count"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	ClosedAt     time.Time       `json:"closed_at"`
}

// DaySummary is the count and revenue of one day's sales
type DaySummary struct {
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// DailyTotal aggregates the sales of one calendar day
type DailyTotal struct {
	Date  time.Time       `json:"date"`
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// StartOfDay truncates t to midnight in loc
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// ParseDay parses a YYYY-MM-DD string as midnight in loc
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// DateRange selects calendar days; a nil bound is open
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Day returns a range covering exactly one calendar day
func Day(d time.Time) DateRange {
	return DateRange{Start: &d, End: &d}
}

// Bounds returns the half-open instant interval [from, to) covering the
// calendar days of the range in loc. Nil means unbounded.
func (r DateRange) Bounds(loc *time.Location) (from, to *time.Time) {
	if r.Start != nil {
		f := StartOfDay(*r.Start, loc)
		from = &f
	}
	if r.End != nil {
		t := StartOfDay(*r.End, loc).AddDate(0, 0, 1)
		to = &t
	}
	return from, to
}

// Contains reports whether the instant falls on one of the range's days
func (r DateRange) Contains(t time.Time, loc *time.Location) bool {
	from, to := r.Bounds(loc)
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && !t.Before(*to) {
		return false
	}
	return true
}

// Key renders the range's calendar days in loc for cache keys, so two
// ranges with the same Bounds share a key
func (r DateRange) Key(loc *time.Location) string {
	start, end := "open", "open"
	if r.Start != nil {
		start = StartOfDay(*r.Start, loc).Format(DateLayout)
	}
	if r.End != nil {
		end = StartOfDay(*r.End, loc).Format(DateLayout)
	}
	return start + ":" + end
}
