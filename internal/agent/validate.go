package agent

import (
	"errors"
	"fmt"

	"github.com/lox/holdem-arena/internal/holdem"
)

// ErrNoLegalMoves means the seat has no action available at all. The
// orchestrator treats it as an agent failure for the turn.
var ErrNoLegalMoves = errors.New("no legal moves for seat")

// Validate maps a proposal onto the legal move set. Out-of-range raises
// clamp to the nearest endpoint while raising is legal and demote to a
// call otherwise; anything still illegal falls back through check, call,
// fold in that order. The returned note is non-empty when the proposal
// was rewritten, for history and logs.
func Validate(p Proposal, legal holdem.MoveSet) (holdem.Move, string, error) {
	if legal.Empty() {
		return holdem.Move{}, "", ErrNoLegalMoves
	}

	kind, amount := p.Kind, p.Amount
	note := ""

	if kind == holdem.Raise {
		switch {
		case !legal.Has(holdem.Raise):
			kind, amount = holdem.Call, 0
			note = "raise unavailable, demoted to call"
		case amount < legal.MinTotal:
			note = fmt.Sprintf("raise %d clamped up to minimum %d", amount, legal.MinTotal)
			amount = legal.MinTotal
		case amount > legal.MaxTotal:
			note = fmt.Sprintf("raise %d clamped down to all-in %d", amount, legal.MaxTotal)
			amount = legal.MaxTotal
		}
	}

	if legal.Has(kind) {
		if kind != holdem.Raise {
			amount = 0
		}
		return holdem.Move{Kind: kind, Amount: amount}, note, nil
	}

	for _, fallback := range []holdem.MoveKind{holdem.Check, holdem.Call, holdem.Fold} {
		if legal.Has(fallback) {
			return holdem.Move{Kind: fallback}, fmt.Sprintf("%s unavailable, fell back to %s", p.Kind, fallback), nil
		}
	}

	// Fold is in every non-empty set, so this is defensive only.
	return holdem.Move{}, "", ErrNoLegalMoves
}
