// Package agent defines the decision contract between the session
// orchestrator and whatever plays a seat: rule bots, LLM players or a
// human bridge. The orchestrator builds one TurnView per decision and the
// agent answers with a Proposal, which the validator maps onto a legal
// engine move.
package agent

import (
	"context"
	rand "math/rand/v2"

	"github.com/lox/holdem-arena/internal/analysis"
	"github.com/lox/holdem-arena/internal/holdem"
)

// Agent plays one seat. Decide must not mutate anything outside the
// proposal; blocking implementations honor ctx cancellation.
type Agent interface {
	Decide(ctx context.Context, view *TurnView) (Proposal, error)
}

// TurnView is everything an agent may consider for one decision. It is a
// value snapshot: no live engine or session references.
type TurnView struct {
	Seat     int
	Name     string
	HandNum  int
	MaxHands int

	Phase holdem.Phase
	Board []holdem.Card
	Hole  []holdem.Card

	Chips       int // actor's remaining stack
	ChipsToCall int
	PotTotal    int
	BigBlind    int

	// Legal is the enforceable action set; MinRaiseTotal is the advisory
	// minimum raise total, which can exceed Legal.MaxTotal for short
	// stacks.
	Legal         holdem.MoveSet
	MinRaiseTotal int

	Button    int
	Seats     int
	Opponents []Opponent

	// Signals precomputed from the analysis package so every agent kind
	// scores the same situation identically.
	Strength   float64
	PotOdds    float64
	HasPotOdds bool
	Position   analysis.Position

	// Memory is the seat's per-hand action log, nil for agents that do
	// not keep one.
	Memory *HandMemory

	// Rand is the session's seeded RNG; stochastic agents draw from it so
	// games replay deterministically.
	Rand *rand.Rand
}

// FacingBet reports whether the actor owes chips to continue.
func (v *TurnView) FacingBet() bool {
	return v.ChipsToCall > 0
}

// Opponent is the slice of another seat an agent is allowed to see: no
// hole cards, just the public line.
type Opponent struct {
	Seat  int
	Name  string
	Chips int
	State string // wire seat state, e.g. "IN", "ALL_IN", "FOLDED"
	Bet   int    // chips committed this street
}

// Proposal is an agent's answer for one turn. Amount is the intended
// total street bet for Raise and ignored otherwise. Reasoning and
// Confidence are advisory; they flow into history and events untouched.
type Proposal struct {
	Kind       holdem.MoveKind
	Amount     int
	Reasoning  string
	Confidence float64
}
