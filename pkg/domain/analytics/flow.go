// Package analytics provides flow metrics derived from a replayed board:
// cumulative flow snapshots, weekly throughput, and lead-time distributions.
package analytics

import (
	"time"

	"github.com/felixgeelhaar/boardflow/pkg/domain/board"
)

// DailySnapshot is the census of one day of the cumulative flow diagram.
type DailySnapshot struct {
	Date   board.Date
	Counts map[string]int // Issues per reporting column; every reporting column is present
}

// Count returns the number of issues in column, or 0 when absent.
func (s DailySnapshot) Count(column string) int {
	return s.Counts[column]
}

// Total returns the number of issues across all reported columns.
func (s DailySnapshot) Total() int {
	total := 0
	for _, n := range s.Counts {
		total += n
	}
	return total
}

// IssueHistory records the first entry of an issue into active work and into
// the terminal column. Both are first-write-wins.
type IssueHistory struct {
	IssueKey      string
	FirstActive   *time.Time
	TerminalEntry *time.Time
}

// Completed reports whether the issue reached the terminal column.
func (h IssueHistory) Completed() bool {
	return h.TerminalEntry != nil
}

// LeadTimeDays returns the inclusive day count between first active entry and
// terminal entry. The boolean is false when either endpoint is missing.
func (h IssueHistory) LeadTimeDays(loc *time.Location) (int, bool) {
	if h.FirstActive == nil || h.TerminalEntry == nil {
		return 0, false
	}
	start := board.DateOf(*h.FirstActive, loc)
	done := board.DateOf(*h.TerminalEntry, loc)
	return done.DaysSince(start) + 1, true
}

// ThroughputPeriod counts completions in the week starting on WeekStart (a Monday).
type ThroughputPeriod struct {
	WeekStart board.Date
	Count     int
}

// LeadTimeBucket counts issues that took exactly Days days.
type LeadTimeBucket struct {
	Days  int
	Count int
}

// LeadTimeSummary holds percentile statistics of a lead-time distribution.
type LeadTimeSummary struct {
	Count int     `json:"count" yaml:"count"`   // Number of issues
	Min   int     `json:"min" yaml:"min"`       // Shortest lead time in days
	Max   int     `json:"max" yaml:"max"`       // Longest lead time in days
	Mean  float64 `json:"mean" yaml:"mean"`     // Average lead time
	P50   float64 `json:"p50" yaml:"p50"`       // Median lead time
	P90   float64 `json:"p90" yaml:"p90"`       // 90th percentile lead time
}

// ThroughputSummary holds statistics over weekly throughput.
type ThroughputSummary struct {
	Weeks  int     `json:"weeks" yaml:"weeks"` // Number of weeks with completions
	Total  int     `json:"total" yaml:"total"` // Completions across those weeks
	Mean   float64 `json:"mean" yaml:"mean"`   // Average completions per week
	Median float64 `json:"median" yaml:"median"`
	Min    int     `json:"min" yaml:"min"`
	Max    int     `json:"max" yaml:"max"`
	CV     float64 `json:"cv" yaml:"cv"` // Coefficient of variation, percent
}

// Predictability returns the predictability class of the throughput.
func (s ThroughputSummary) Predictability() PredictabilityClass {
	return Predictability(s.CV)
}

// PredictabilityClass buckets a coefficient of variation.
type PredictabilityClass string

const (
	// Predictable means CV below 30%.
	Predictable PredictabilityClass = "predictable"
	// Moderate means CV between 30% and 50%.
	Moderate PredictabilityClass = "moderate"
	// Unstable means CV of 50% or more.
	Unstable PredictabilityClass = "unstable"
)

// Predictability classifies a coefficient of variation (in percent).
func Predictability(cv float64) PredictabilityClass {
	switch {
	case cv >= 50:
		return Unstable
	case cv >= 30:
		return Moderate
	default:
		return Predictable
	}
}
