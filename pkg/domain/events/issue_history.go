package events

import (
	"sort"

	"github.com/felixgeelhaar/boardflow/pkg/domain/analytics"
	"github.com/felixgeelhaar/boardflow/pkg/domain/board"
)

// IssueHistoryProjection records, per issue, the first entry into the active
// column range [active, terminal) and the first entry into the terminal
// column. Exits are ignored. Replaying the same log yields the same histories.
type IssueHistoryProjection struct {
	active    int
	terminal  int
	histories map[string]*analytics.IssueHistory
}

// NewIssueHistoryProjection creates a projection for the resolved markers.
// An unresolved active boundary falls back to column 0; the caller is
// expected to surface that as a warning.
func NewIssueHistoryProjection(res board.Resolution) *IssueHistoryProjection {
	active := res.Active
	if !res.ActiveFound {
		active = 0
	}
	terminal := res.Terminal
	if !res.TerminalFound {
		terminal = -1
	}
	return &IssueHistoryProjection{
		active:    active,
		terminal:  terminal,
		histories: make(map[string]*analytics.IssueHistory),
	}
}

func (p *IssueHistoryProjection) Name() string { return "issue_history" }

func (p *IssueHistoryProjection) Apply(t board.Transition) error {
	p.record(t)
	return nil
}

func (p *IssueHistoryProjection) record(t board.Transition) {
	col, ok := t.Target()
	if !ok {
		return
	}

	h, exists := p.histories[t.IssueKey]
	if !exists {
		h = &analytics.IssueHistory{IssueKey: t.IssueKey}
		p.histories[t.IssueKey] = h
	}

	at := t.At
	if col >= p.active && col < p.terminal && h.FirstActive == nil {
		h.FirstActive = &at
	}
	if col == p.terminal && h.TerminalEntry == nil {
		h.TerminalEntry = &at
		if h.FirstActive == nil {
			h.FirstActive = &at
		}
	}
}

func (p *IssueHistoryProjection) Rebuild(log board.TransitionLog) error {
	if err := p.Reset(); err != nil {
		return err
	}
	for _, t := range log {
		if err := p.Apply(t); err != nil {
			return err
		}
	}
	return nil
}

func (p *IssueHistoryProjection) Reset() error {
	p.histories = make(map[string]*analytics.IssueHistory)
	return nil
}

// Histories returns all histories ordered by issue key.
func (p *IssueHistoryProjection) Histories() []analytics.IssueHistory {
	result := make([]analytics.IssueHistory, 0, len(p.histories))
	for _, h := range p.histories {
		result = append(result, *h)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].IssueKey < result[j].IssueKey })
	return result
}

// TrackIssueHistories replays log into issue histories.
//
// A missing terminal column yields no histories and a warning; a missing
// active boundary degrades to column 0 and also yields a warning.
func TrackIssueHistories(log board.TransitionLog, res board.Resolution) ([]analytics.IssueHistory, []Warning) {
	var warnings []Warning
	if !res.TerminalFound {
		return []analytics.IssueHistory{}, append(warnings, terminalMissing(res.Markers.Terminal))
	}
	if !res.ActiveFound {
		warnings = append(warnings, activeMissing(res.Markers.Active))
	}

	p := NewIssueHistoryProjection(res)
	for _, t := range log {
		p.record(t)
	}
	return p.Histories(), warnings
}
