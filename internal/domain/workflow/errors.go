package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a status/action pair is not in
	// the routing table.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidState is returned when a stored status is not a valid state.
	ErrInvalidState = errors.New("invalid state")
)
