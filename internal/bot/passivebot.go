package bot

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem-arena/internal/agent"
	"github.com/lox/holdem-arena/internal/holdem"
)

// passiveFoldRatio is the share of the remaining stack a passive player
// refuses to put in with a call.
const passiveFoldRatio = 0.4

// PassiveBot checks whenever the action is free and calls small bets,
// but will not pay more than 40% of its stack to continue.
type PassiveBot struct {
	logger *log.Logger
}

func (b *PassiveBot) Decide(_ context.Context, view *agent.TurnView) (agent.Proposal, error) {
	return passiveLine(view), nil
}

// passiveLine is shared with BluffBot, whose non-bluff turns play the
// same way.
func passiveLine(view *agent.TurnView) agent.Proposal {
	if !view.FacingBet() {
		return agent.Proposal{Kind: holdem.Check, Reasoning: "checking for free", Confidence: 0.6}
	}
	if view.Chips > 0 && float64(view.ChipsToCall) > passiveFoldRatio*float64(view.Chips) {
		return agent.Proposal{Kind: holdem.Fold, Reasoning: "bet too large to call", Confidence: 0.6}
	}
	return agent.Proposal{Kind: holdem.Call, Reasoning: "calling a small bet", Confidence: 0.5}
}
