package bot

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem-arena/internal/agent"
)

// CallBot is the calling station: it calls any bet and checks when the
// action is free. Useful as a baseline opponent and in tests, since its
// line is fully determined by the table state.
type CallBot struct {
	logger *log.Logger
}

func (b *CallBot) Decide(_ context.Context, view *agent.TurnView) (agent.Proposal, error) {
	if view.FacingBet() {
		return checkOrCall(view, "call-bot calling"), nil
	}
	return checkOrCall(view, "call-bot checking"), nil
}
