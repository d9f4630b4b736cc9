package study

import "errors"

// Session state machine errors. Calling an operation in the wrong state is
// a programmer error and fails loudly rather than corrupting the tally or
// index.
var (
	// ErrEmptyDeck is returned when a session is begun on a deck with no cards.
	ErrEmptyDeck = errors.New("cannot study an empty deck")

	// ErrNotInProgress is returned when Rate or Skip is called before the
	// session has begun or after it has completed.
	ErrNotInProgress = errors.New("session is not in progress")

	// ErrAlreadyInProgress is returned when Begin is called on a running
	// session. Restart is the explicit way to start over.
	ErrAlreadyInProgress = errors.New("session is already in progress")

	// ErrNotComplete is returned when a summary is requested before the
	// session has reached its terminal state.
	ErrNotComplete = errors.New("session is not complete")

	// ErrInvalidConfidence is returned when a rating is outside 0..3.
	ErrInvalidConfidence = errors.New("confidence must be between 0 and 3")

	// ErrSessionNotFound is returned by the manager for an unknown session ID.
	ErrSessionNotFound = errors.New("session not found")
)
