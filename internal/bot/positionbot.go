package bot

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem-arena/internal/agent"
	"github.com/lox/holdem-arena/internal/analysis"
)

// PositionBot plays the tight strength line but loosens both thresholds
// by 0.1 in late position, where acting last makes marginal hands worth
// more.
type PositionBot struct {
	logger *log.Logger
}

func (b *PositionBot) Decide(_ context.Context, view *agent.TurnView) (agent.Proposal, error) {
	foldBelow, raiseAbove := 0.35, 0.6
	if view.Position == analysis.Late {
		foldBelow -= 0.1
		raiseAbove -= 0.1
	}
	p := strengthLine(view, foldBelow, raiseAbove)
	if view.Position == analysis.Late {
		p.Reasoning += " (late position)"
	}
	return p, nil
}
