package session

import (
	"errors"
	"fmt"
)

// Boundary errors. Transports map these onto their own status codes;
// everything else surfacing from this package is an internal fault.
var (
	ErrGameNotFound    = errors.New("game not found")
	ErrOutOfTurn       = errors.New("not your turn")
	ErrNotReady        = errors.New("hand still in progress")
	ErrSessionTerminal = errors.New("session already ended")
	ErrOverloaded      = errors.New("too many concurrent games")
	ErrInvalidConfig   = errors.New("invalid game configuration")
)

// InvalidActionError reports a proposed action the current state cannot
// accept, with the reason preserved for the client.
type InvalidActionError struct {
	Reason string
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("invalid action: %s", e.Reason)
}

// AgentFailureError wraps a seat agent's failure to produce a decision.
// Never fatal to the session; the turn degrades through the fallback
// ladder.
type AgentFailureError struct {
	Seat  int
	Cause error
}

func (e *AgentFailureError) Error() string {
	return fmt.Sprintf("agent for seat %d failed: %v", e.Seat, e.Cause)
}

func (e *AgentFailureError) Unwrap() error { return e.Cause }
