// Package ticket holds the issue details fetched for completed work items.
package ticket

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Ticket is one completed issue as exported to tickets.csv.
type Ticket struct {
	Type          string    `json:"type" yaml:"type"`
	Key           string    `json:"key" yaml:"key"`
	ID            string    `json:"id" yaml:"id"`
	Summary       string    `json:"summary" yaml:"summary"`
	ParentID      string    `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	ParentKey     string    `json:"parent_key,omitempty" yaml:"parent_key,omitempty"`
	ParentSummary string    `json:"parent_summary,omitempty" yaml:"parent_summary,omitempty"`
	Status        string    `json:"status" yaml:"status"`
	Resolution    string    `json:"resolution,omitempty" yaml:"resolution,omitempty"`
	Updated       time.Time `json:"updated" yaml:"updated"`
}

// Header is the tickets.csv column layout, matching the Jira CSV export the
// chart tooling consumes.
var Header = []string{
	"Tipo de item",
	"Chave da item",
	"ID da item",
	"Resumo",
	"Pai",
	"Chave pai",
	"Parent summary",
	"Status",
	"Resolução",
	"Atualizado(a)",
}

// Record renders the ticket in Header order.
func (t Ticket) Record() []string {
	return []string{
		t.Type,
		t.Key,
		t.ID,
		t.Summary,
		t.ParentID,
		t.ParentKey,
		t.ParentSummary,
		t.Status,
		t.Resolution,
		FormatUpdated(t.Updated),
	}
}

var monthAbbrev = [...]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// FormatUpdated renders a timestamp the way the Jira export does:
// "DD/mmm/yy h:MM AM", with Portuguese month abbreviations and an
// unpadded two-digit year. The zero time renders as "".
func FormatUpdated(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	hour := t.Hour()
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	switch {
	case hour > 12:
		hour -= 12
	case hour == 0:
		hour = 12
	}
	return fmt.Sprintf("%02d/%s/%d %d:%02d %s",
		t.Day(), monthAbbrev[t.Month()-1], t.Year()%100, hour, t.Minute(), period)
}

// ParseUpdated reverses FormatUpdated in loc.
func ParseUpdated(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if loc == nil {
		loc = time.Local
	}

	var day, year, hour, minute int
	var month, period string
	if _, err := fmt.Sscanf(strings.Replace(s, "/", " ", 2), "%d %s %d %d:%d %s", &day, &month, &year, &hour, &minute, &period); err != nil {
		return time.Time{}, fmt.Errorf("parse updated %q: %w", s, err)
	}

	m := -1
	for i, abbrev := range monthAbbrev {
		if strings.EqualFold(abbrev, month) {
			m = i
			break
		}
	}
	if m < 0 {
		return time.Time{}, fmt.Errorf("parse updated %q: unknown month %q", s, month)
	}

	switch {
	case strings.EqualFold(period, "PM") && hour < 12:
		hour += 12
	case strings.EqualFold(period, "AM") && hour == 12:
		hour = 0
	}
	return time.Date(2000+year, time.Month(m+1), day, hour, minute, 0, 0, loc), nil
}

// TypeCount is the number of tickets of one issue type.
type TypeCount struct {
	Type  string `json:"type" yaml:"type"`
	Count int    `json:"count" yaml:"count"`
}

// TypeDistribution counts tickets by type, most frequent first. Ties are
// ordered by type name.
func TypeDistribution(tickets []Ticket) []TypeCount {
	counts := make(map[string]int)
	for _, t := range tickets {
		counts[t.Type]++
	}

	result := make([]TypeCount, 0, len(counts))
	for typ, n := range counts {
		result = append(result, TypeCount{Type: typ, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Type < result[j].Type
	})
	return result
}
