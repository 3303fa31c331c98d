package bot

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem-arena/internal/agent"
	"github.com/lox/holdem-arena/internal/holdem"
)

// bluffChance is how often the bot fires a bluff on the flop or turn.
const bluffChance = 0.15

// BluffBot plays the passive line but fires a min-raise bluff 15% of the
// time on the flop and turn, hand strength be damned.
type BluffBot struct {
	logger *log.Logger
}

func (b *BluffBot) Decide(_ context.Context, view *agent.TurnView) (agent.Proposal, error) {
	bluffStreet := view.Phase == holdem.Flop || view.Phase == holdem.Turn
	if bluffStreet && view.Legal.Has(holdem.Raise) && view.Rand.Float64() < bluffChance {
		return agent.Proposal{
			Kind:       holdem.Raise,
			Amount:     view.Legal.MinTotal,
			Reasoning:  "taking a stab at the pot",
			Confidence: 0.4,
		}, nil
	}
	return passiveLine(view), nil
}
