// Package bot implements the rule-based seat agents. Each bot is a pure
// policy over the TurnView: it reads the precomputed strength, pot odds
// and position signals, draws stochastic choices from the session RNG,
// and returns a Proposal for the validator to legalize.
package bot

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem-arena/internal/agent"
	"github.com/lox/holdem-arena/internal/holdem"
)

// New builds the named rule agent. Names match agent.RuleNames.
func New(name string, logger *log.Logger) (agent.Agent, error) {
	logger = logger.WithPrefix("bot").With("rule", name)
	switch name {
	case "call":
		return &CallBot{logger: logger}, nil
	case "random":
		return &RandBot{logger: logger}, nil
	case "aggressive_random":
		return &RandBot{logger: logger, avoidFold: true}, nil
	case "passive":
		return &PassiveBot{logger: logger}, nil
	case "tight":
		return &TightBot{logger: logger}, nil
	case "loose":
		return &LooseBot{logger: logger}, nil
	case "bluff":
		return &BluffBot{logger: logger}, nil
	case "position_aware":
		return &PositionBot{logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown rule agent %q", name)
	}
}

// checkOrCall proposes the free action when there is one, a call
// otherwise.
func checkOrCall(view *agent.TurnView, reason string) agent.Proposal {
	kind := holdem.Check
	if view.FacingBet() {
		kind = holdem.Call
	}
	return agent.Proposal{Kind: kind, Reasoning: reason, Confidence: 0.5}
}

// clampRaise bounds a raise total to the enforced range.
func clampRaise(view *agent.TurnView, total int) int {
	if total < view.Legal.MinTotal {
		return view.Legal.MinTotal
	}
	if total > view.Legal.MaxTotal {
		return view.Legal.MaxTotal
	}
	return total
}
