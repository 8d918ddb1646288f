package domain

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Day-granular point in time (UTC midnight)
// =============================================================================

// Date is a calendar day. All temporal reasoning in this system is
// day-granular and inclusive on both ends.
type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date {
	return DateOf(time.Now().UTC())
}

// ParseDate parses "2006-01-02".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }
func (d Date) IsZero() bool                  { return d.Time.IsZero() }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date  { return DateOf(d.Time.AddDate(0, 0, n)) }
func (d Date) AddWeeks(n int) Date { return d.AddDays(7 * n) }

func (d Date) String() string { return d.normalize().Format("2006-01-02") }

// WeekStart returns the Monday on or before d. Weeks run Monday-Sunday.
func (d Date) WeekStart() Date {
	wd := int(d.normalize().Weekday())
	if wd == 0 { // Sunday
		wd = 7
	}
	return d.AddDays(-(wd - 1))
}

// MonthStart returns the first day of d's month.
func (d Date) MonthStart() Date {
	return NewDate(d.Time.Year(), d.Time.Month(), 1)
}

// DaysBetween returns the number of days from one date to another.
// Negative when to is before from.
func DaysBetween(from, to Date) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

// =============================================================================
// DATE RANGE - Inclusive on both ends
// =============================================================================

type DateRange struct {
	Start Date
	End   Date
}

func NewDateRange(start, end Date) (DateRange, error) {
	if end.Before(start) {
		return DateRange{}, &InputError{
			Field:  "end_date",
			Reason: fmt.Sprintf("end %s before start %s", end, start),
			Err:    ErrInvalidRange,
		}
	}
	return DateRange{Start: start, End: end}, nil
}

// Contains reports whether date falls within [Start, End].
func (r DateRange) Contains(date Date) bool {
	return r.Start.BeforeOrEqual(date) && date.BeforeOrEqual(r.End)
}

// Overlaps reports whether two inclusive ranges share at least one day.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.Start.BeforeOrEqual(other.End) && other.Start.BeforeOrEqual(r.End)
}

// Days returns the inclusive day count of the range.
func (r DateRange) Days() int {
	return DaysBetween(r.Start, r.End) + 1
}

func (r DateRange) IsValid() bool {
	return !r.Start.IsZero() && !r.End.IsZero() && !r.End.Before(r.Start)
}

// WeekStarts returns the Monday of every week the range touches, in order.
func (r DateRange) WeekStarts() []Date {
	if !r.IsValid() {
		return nil
	}
	var weeks []Date
	for w := r.Start.WeekStart(); w.BeforeOrEqual(r.End); w = w.AddWeeks(1) {
		weeks = append(weeks, w)
	}
	return weeks
}
