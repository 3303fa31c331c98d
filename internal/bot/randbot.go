package bot

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem-arena/internal/agent"
	"github.com/lox/holdem-arena/internal/holdem"
)

// RandBot picks uniformly over the legal action kinds and sizes raises
// uniformly over the enforced range. With avoidFold set it drops Fold
// from the sample set whenever anything else is legal, which turns the
// same machinery into the aggressive_random personality.
type RandBot struct {
	logger    *log.Logger
	avoidFold bool
}

func (b *RandBot) Decide(_ context.Context, view *agent.TurnView) (agent.Proposal, error) {
	kinds := append([]holdem.MoveKind(nil), view.Legal.Kinds...)

	if b.avoidFold && len(kinds) > 1 {
		filtered := kinds[:0]
		for _, k := range kinds {
			if k != holdem.Fold {
				filtered = append(filtered, k)
			}
		}
		kinds = filtered
	}

	if len(kinds) == 0 {
		return agent.Proposal{Kind: holdem.Fold, Reasoning: "no moves"}, nil
	}

	kind := kinds[view.Rand.IntN(len(kinds))]
	p := agent.Proposal{Kind: kind, Reasoning: "feeling random", Confidence: 0.3}
	if kind == holdem.Raise {
		span := view.Legal.MaxTotal - view.Legal.MinTotal
		p.Amount = view.Legal.MinTotal
		if span > 0 {
			p.Amount += view.Rand.IntN(span + 1)
		}
		p.Reasoning = "random raise"
	}
	return p, nil
}
