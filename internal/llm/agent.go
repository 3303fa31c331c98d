package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem-arena/internal/agent"
	"github.com/lox/holdem-arena/internal/holdem"
)

// Agent plays a seat through a language model: build the prompt, ask for
// a structured completion, fall back to text parsing once, and interpret
// the numbers. Any failure bubbles up for the session's fallback ladder;
// the agent itself never invents an action.
type Agent struct {
	gateway     Gateway
	model       string
	personality string
	logger      *log.Logger
}

// NewAgent wires a seat to the shared gateway.
func NewAgent(gateway Gateway, model, personality string, logger *log.Logger) *Agent {
	if personality == "" {
		personality = "balanced"
	}
	return &Agent{
		gateway:     gateway,
		model:       model,
		personality: personality,
		logger:      logger.WithPrefix("llm").With("model", model, "personality", personality),
	}
}

// Model returns the configured model id.
func (a *Agent) Model() string { return a.model }

// Personality returns the configured playing style.
func (a *Agent) Personality() string { return a.personality }

// Decide implements agent.Agent.
func (a *Agent) Decide(ctx context.Context, view *agent.TurnView) (agent.Proposal, error) {
	prompt := BuildPrompt(view, a.personality)
	a.logger.Debug("requesting decision", "seat", view.Seat, "phase", view.Phase, "prompt_len", len(prompt))

	d, err := a.decide(ctx, prompt)
	if err != nil {
		return agent.Proposal{}, fmt.Errorf("llm decision for seat %d: %w", view.Seat, err)
	}

	kind, ok := holdem.ParseMoveKind(d.Action)
	if !ok {
		return agent.Proposal{}, fmt.Errorf("unparseable action %q", d.Action)
	}

	p := agent.Proposal{
		Kind:       kind,
		Amount:     d.Amount,
		Reasoning:  d.Reasoning,
		Confidence: d.Confidence,
	}

	// Models frequently answer with the raise increment instead of the
	// street total. An amount below the call price cannot be a total, so
	// treat it as a delta on top of the call.
	if p.Kind == holdem.Raise && p.Amount < view.ChipsToCall {
		rewritten := view.ChipsToCall + p.Amount
		a.logger.Debug("rewriting raise delta", "seat", view.Seat, "amount", p.Amount, "total", rewritten)
		p.Amount = rewritten
	}

	a.logger.Debug("decision received",
		"seat", view.Seat,
		"action", p.Kind,
		"amount", p.Amount,
		"confidence", p.Confidence)
	return p, nil
}

// decide runs the structured-then-text pipeline.
func (a *Agent) decide(ctx context.Context, prompt string) (Decision, error) {
	raw, err := a.gateway.CompleteStructured(ctx, a.model, prompt, DecisionSchema())
	if err == nil {
		d, decodeErr := DecodeDecision(raw)
		if decodeErr == nil {
			return d, nil
		}
		a.logger.Warn("structured response failed validation, retrying as text", "error", decodeErr)
		return a.decideText(ctx, prompt)
	}

	if errors.Is(err, ErrStructuredUnsupported) {
		a.logger.Debug("structured output unsupported, using text mode")
		return a.decideText(ctx, prompt)
	}
	return Decision{}, err
}

func (a *Agent) decideText(ctx context.Context, prompt string) (Decision, error) {
	content, err := a.gateway.CompleteText(ctx, a.model, prompt+textFormatSuffix)
	if err != nil {
		return Decision{}, err
	}
	return ParseTextDecision(content)
}
