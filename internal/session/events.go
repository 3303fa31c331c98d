package session

import (
	"time"

	"github.com/lox/holdem-arena/internal/agent"
)

// EventType discriminates bus events on the wire.
type EventType string

const (
	EventTypeStateUpdate   EventType = "state_update"
	EventTypeActionApplied EventType = "action_applied"
	EventTypeError         EventType = "error"
	EventTypeTerminal      EventType = "terminal"
)

func (et EventType) String() string { return string(et) }

// Event is anything published on a session's bus.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

// StateUpdateEvent carries a full state snapshot at one revision. The
// bus delivers at most one per revision and may drop older ones for
// slow subscribers.
type StateUpdateEvent struct {
	Revision  uint64     `json:"revision"`
	State     *GameState `json:"state"`
	timestamp time.Time
}

func (e StateUpdateEvent) EventType() EventType { return EventTypeStateUpdate }
func (e StateUpdateEvent) Timestamp() time.Time { return e.timestamp }

// ActionAppliedEvent records one applied action, including any note the
// validator attached while legalizing the proposal.
type ActionAppliedEvent struct {
	Revision  uint64       `json:"revision"`
	Record    agent.Record `json:"record"`
	Note      string       `json:"note,omitempty"`
	timestamp time.Time
}

func (e ActionAppliedEvent) EventType() EventType { return EventTypeActionApplied }
func (e ActionAppliedEvent) Timestamp() time.Time { return e.timestamp }

// ErrorEvent is a non-fatal diagnostic: agent failures, decision
// timeouts, degraded paths.
type ErrorEvent struct {
	Kind      string `json:"kind"`
	Detail    string `json:"detail"`
	Seat      int    `json:"seat,omitempty"`
	timestamp time.Time
}

func (e ErrorEvent) EventType() EventType { return EventTypeError }
func (e ErrorEvent) Timestamp() time.Time { return e.timestamp }

// Diagnostic kinds for ErrorEvent.
const (
	ErrorKindLLMTimeout    = "LLMTimeout"
	ErrorKindAgentFailure  = "AgentFailure"
	ErrorKindTimeoutAction = "TimeoutAction"
	ErrorKindInvariant     = "InvariantViolation"
)

// TerminalEvent is the last event on a bus before it closes. Rankings
// are empty when the session died on an invariant failure.
type TerminalEvent struct {
	Status    Status    `json:"status"`
	Rankings  []Ranking `json:"final_rankings"`
	timestamp time.Time
}

func (e TerminalEvent) EventType() EventType { return EventTypeTerminal }
func (e TerminalEvent) Timestamp() time.Time { return e.timestamp }

// Ranking is one seat's final placing: chips descending, ties broken by
// player id ascending.
type Ranking struct {
	Rank     int    `json:"rank"`
	PlayerID int    `json:"player_id"`
	Name     string `json:"name"`
	Chips    int    `json:"chips"`
}
