package bot

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem-arena/internal/agent"
	"github.com/lox/holdem-arena/internal/holdem"
)

// TightBot plays only on hand strength: weak hands fold to any bet,
// medium hands call, strong hands raise to twice the minimum total.
type TightBot struct {
	logger *log.Logger
}

func (b *TightBot) Decide(_ context.Context, view *agent.TurnView) (agent.Proposal, error) {
	return strengthLine(view, 0.35, 0.6), nil
}

// strengthLine is the tight policy with injectable thresholds, shared
// with PositionBot which loosens them in late position.
func strengthLine(view *agent.TurnView, foldBelow, raiseAbove float64) agent.Proposal {
	switch {
	case view.Strength > raiseAbove:
		if view.Legal.Has(holdem.Raise) {
			total := clampRaise(view, 2*view.Legal.MinTotal)
			return agent.Proposal{
				Kind:       holdem.Raise,
				Amount:     total,
				Reasoning:  fmt.Sprintf("strong hand (%.2f), raising to %d", view.Strength, total),
				Confidence: 0.8,
			}
		}
		return checkOrCall(view, fmt.Sprintf("strong hand (%.2f), no raise available", view.Strength))

	case view.Strength < foldBelow:
		if view.FacingBet() {
			return agent.Proposal{
				Kind:       holdem.Fold,
				Reasoning:  fmt.Sprintf("weak hand (%.2f), folding to a bet", view.Strength),
				Confidence: 0.7,
			}
		}
		return checkOrCall(view, fmt.Sprintf("weak hand (%.2f), checking for free", view.Strength))

	default:
		return checkOrCall(view, fmt.Sprintf("playable hand (%.2f), continuing", view.Strength))
	}
}
