// Package board models a project board's column schema and the transition
// log that records issues moving between its columns.
package board

import (
	"fmt"
	"time"
)

// TransitionKind distinguishes entering a column from leaving the board.
type TransitionKind int

const (
	// Enter moves an issue into a column.
	Enter TransitionKind = iota + 1
	// Exit removes an issue from the tracked column set (e.g. back to backlog).
	Exit
)

func (k TransitionKind) String() string {
	switch k {
	case Enter:
		return "enter"
	case Exit:
		return "exit"
	default:
		return fmt.Sprintf("TransitionKind(%d)", int(k))
	}
}

// Transition is a single immutable column move of one issue.
// Column is only meaningful for Enter transitions.
type Transition struct {
	IssueKey string
	At       time.Time
	Kind     TransitionKind
	Column   int
}

// EnterColumn builds an Enter transition.
func EnterColumn(key string, at time.Time, column int) Transition {
	return Transition{IssueKey: key, At: at, Kind: Enter, Column: column}
}

// ExitBoard builds an Exit transition.
func ExitBoard(key string, at time.Time) Transition {
	return Transition{IssueKey: key, At: at, Kind: Exit, Column: -1}
}

// Target returns the destination column, or false for an exit.
func (t Transition) Target() (int, bool) {
	if t.Kind != Enter {
		return 0, false
	}
	return t.Column, true
}

// Date returns the calendar day of the transition in loc.
func (t Transition) Date(loc *time.Location) Date {
	return DateOf(t.At, loc)
}

// TransitionLog is a slice of transitions in non-decreasing timestamp order.
type TransitionLog []Transition

// Span returns the earliest and latest timestamps in the log.
func (l TransitionLog) Span() (time.Time, time.Time, bool) {
	if len(l) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return l[0].At, l[len(l)-1].At, true
}
