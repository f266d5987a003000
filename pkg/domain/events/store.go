package events

import "github.com/felixgeelhaar/boardflow/pkg/domain/board"

// Projection rebuilds state from transitions.
type Projection interface {
	// Name returns the projection name for identification.
	Name() string

	// Apply processes a single transition to update the projection state.
	Apply(t board.Transition) error

	// Rebuild reprocesses a whole log to rebuild the projection from scratch.
	Rebuild(log board.TransitionLog) error

	// Reset clears the projection state.
	Reset() error
}
