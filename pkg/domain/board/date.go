package board

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date layout used in every tabular output.
const DateLayout = "2006-01-02"

// Date is a calendar day without a time-of-day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns a normalized date (e.g. Feb 30 becomes Mar 1 or 2).
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC), time.UTC)
}

// DateOf returns the calendar day of t as observed in loc.
func DateOf(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t, time.UTC), nil
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n), time.UTC)
}

func (d Date) Before(o Date) bool { return d.Time().Before(o.Time()) }
func (d Date) After(o Date) bool  { return d.Time().After(o.Time()) }

// DaysSince returns the number of whole days from o to d (negative when d is earlier).
func (d Date) DaysSince(o Date) int {
	return int(d.Time().Sub(o.Time()).Hours() / 24)
}

func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }

// WeekStart returns the Monday of the ISO week containing d.
func (d Date) WeekStart() Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

func (d Date) String() string { return d.Time().Format(DateLayout) }

// MaxDate returns the later of a and b.
func MaxDate(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}

// Window is an inclusive range of calendar days.
type Window struct {
	First Date
	Last  Date
}

// Days returns the number of days covered, or 0 for an inverted window.
func (w Window) Days() int {
	if w.Last.Before(w.First) {
		return 0
	}
	return w.Last.DaysSince(w.First) + 1
}

func (w Window) Contains(d Date) bool {
	return !d.Before(w.First) && !d.After(w.Last)
}

func (w Window) String() string {
	return fmt.Sprintf("%s..%s", w.First, w.Last)
}

// DeriveWindow picks the reporting window for a transition log.
//
// Without a lookback the window spans the earliest to the latest transition
// date. With a lookback of N days the first day is clamped forward to
// max(earliest, today-N), so the window never starts before data exists.
// The boolean is false when the log is empty.
func DeriveWindow(log TransitionLog, loc *time.Location, lookbackDays *int, today Date) (Window, bool) {
	earliest, latest, ok := log.Span()
	if !ok {
		return Window{}, false
	}

	w := Window{
		First: DateOf(earliest, loc),
		Last:  DateOf(latest, loc),
	}
	if lookbackDays != nil && *lookbackDays > 0 {
		w.First = MaxDate(w.First, today.AddDays(-*lookbackDays))
	}
	return w, true
}

// Cutoff returns today minus the lookback, or nil when no lookback is set.
func Cutoff(lookbackDays *int, today Date) *Date {
	if lookbackDays == nil || *lookbackDays <= 0 {
		return nil
	}
	c := today.AddDays(-*lookbackDays)
	return &c
}
