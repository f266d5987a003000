package events

import (
	"time"

	"github.com/felixgeelhaar/boardflow/pkg/domain/board"
)

// ExtractDoneSet returns the distinct issue keys whose first entry into the
// terminal column falls on or after cutoff (every completed issue when cutoff
// is nil). Keys are ordered by that first entry. The log must be time-ordered.
func ExtractDoneSet(log board.TransitionLog, terminal int, cutoff *board.Date, loc *time.Location) []string {
	firstDone := make(map[string]bool)
	keys := make([]string, 0)
	for _, t := range log {
		col, ok := t.Target()
		if !ok || col != terminal || firstDone[t.IssueKey] {
			continue
		}
		firstDone[t.IssueKey] = true
		if cutoff != nil && t.Date(loc).Before(*cutoff) {
			continue
		}
		keys = append(keys, t.IssueKey)
	}
	return keys
}
