// Package events replays a board's transition log into projections: the
// daily cumulative-flow census, per-issue histories, and the done set.
package events

import "fmt"

// Warning codes surfaced to callers when a replay degrades instead of failing.
const (
	WarnTerminalColumnMissing = "terminal_column_missing"
	WarnActiveBoundaryMissing = "active_boundary_missing"
	WarnNoTransitions         = "no_transitions"
)

// Warning is a non-fatal diagnostic produced during replay.
type Warning struct {
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}

func terminalMissing(name string) Warning {
	return Warning{
		Code:    WarnTerminalColumnMissing,
		Message: fmt.Sprintf("column %q not found; throughput and lead time cannot be computed", name),
	}
}

func activeMissing(name string) Warning {
	return Warning{
		Code:    WarnActiveBoundaryMissing,
		Message: fmt.Sprintf("column %q not found; using the first column as active boundary", name),
	}
}
