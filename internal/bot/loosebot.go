package bot

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem-arena/internal/agent"
	"github.com/lox/holdem-arena/internal/holdem"
)

// LooseBot plays most hands: anything with a pulse calls, decent hands
// raise the minimum.
type LooseBot struct {
	logger *log.Logger
}

func (b *LooseBot) Decide(_ context.Context, view *agent.TurnView) (agent.Proposal, error) {
	switch {
	case view.Strength >= 0.55 && view.Legal.Has(holdem.Raise):
		return agent.Proposal{
			Kind:       holdem.Raise,
			Amount:     view.Legal.MinTotal,
			Reasoning:  fmt.Sprintf("decent hand (%.2f), min-raising", view.Strength),
			Confidence: 0.6,
		}, nil
	case view.Strength >= 0.2:
		return checkOrCall(view, fmt.Sprintf("loose call at %.2f", view.Strength)), nil
	case view.FacingBet():
		return agent.Proposal{
			Kind:       holdem.Fold,
			Reasoning:  fmt.Sprintf("even a loose player folds %.2f", view.Strength),
			Confidence: 0.6,
		}, nil
	default:
		return checkOrCall(view, "checking the worst of it"), nil
	}
}
