package llm

import (
	"fmt"
	"strings"

	"github.com/lox/holdem-arena/internal/agent"
	"github.com/lox/holdem-arena/internal/analysis"
	"github.com/lox/holdem-arena/internal/holdem"
)

// BuildPrompt assembles the decision prompt for one turn: game state,
// the actor's hand and finances, opponents, the actor's own line so far
// this hand, the enforceable actions, and the personality framing.
func BuildPrompt(view *agent.TurnView, personality string) string {
	var b strings.Builder

	b.WriteString("POKER SITUATION ANALYSIS\n\n")

	b.WriteString("=== GAME STATE ===\n")
	fmt.Fprintf(&b, "Phase: %s\n", view.Phase)
	fmt.Fprintf(&b, "Hand: %d of %d\n", view.HandNum, view.MaxHands)
	fmt.Fprintf(&b, "Your Position: %s\n", view.Position)
	fmt.Fprintf(&b, "Pot: %d chips\n\n", view.PotTotal)

	b.WriteString("=== YOUR HAND ===\n")
	fmt.Fprintf(&b, "Hole Cards: %s\n", formatCards(view.Hole))
	fmt.Fprintf(&b, "Board Cards: %s\n", formatCards(view.Board))
	if label := analysis.RankLabel(view.Hole, view.Board); label != "" {
		fmt.Fprintf(&b, "Hand Description: %s\n", label)
	}
	fmt.Fprintf(&b, "Hand Strength: %.2f (0.0 = weakest, 1.0 = strongest)\n\n", view.Strength)

	b.WriteString("=== FINANCIAL SITUATION ===\n")
	fmt.Fprintf(&b, "Your Chips: %d\n", view.Chips)
	fmt.Fprintf(&b, "Chips to Call: %d\n", view.ChipsToCall)
	if view.HasPotOdds {
		fmt.Fprintf(&b, "Pot Odds: %.2f (lower = better odds)\n", view.PotOdds)
	}
	fmt.Fprintf(&b, "Big Blind: %d\n\n", view.BigBlind)

	b.WriteString("=== OPPONENTS ===\n")
	b.WriteString(describeOpponents(view.Opponents))
	b.WriteString("\n\n")

	b.WriteString(memorySection(view.Memory))

	b.WriteString("=== AVAILABLE ACTIONS ===\n")
	b.WriteString(describeActions(view.Legal))
	b.WriteString("\n\n")

	b.WriteString("=== PLAYING STYLE ===\n")
	b.WriteString(traitFor(personality))
	b.WriteString("\n\n")

	b.WriteString(`=== DECISION REQUIRED ===
Based on this comprehensive analysis, what action should you take? Consider:
1. Hand strength and pot odds
2. Position and opponent stacks
3. Current betting phase and board texture
4. Your playing style and image
5. Your previous actions this hand

Provide your decision with reasoning and confidence level.`)

	if coda, ok := personalityCodas[personality]; ok {
		b.WriteString("\n\n")
		b.WriteString(coda)
	}

	return b.String()
}

func formatCards(cards []holdem.Card) string {
	if len(cards) == 0 {
		return "None"
	}
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

func describeOpponents(opponents []agent.Opponent) string {
	if len(opponents) == 0 {
		return "No opponents remaining"
	}
	parts := make([]string, len(opponents))
	for i, o := range opponents {
		parts[i] = fmt.Sprintf("%s (%d chips, %s)", o.Name, o.Chips, o.State)
	}
	return fmt.Sprintf("%d opponents: %s", len(opponents), strings.Join(parts, ", "))
}

func describeActions(legal holdem.MoveSet) string {
	parts := make([]string, 0, len(legal.Kinds))
	for _, k := range legal.Kinds {
		parts = append(parts, k.String())
	}
	out := strings.Join(parts, ", ")
	if legal.Has(holdem.Raise) {
		out += fmt.Sprintf("\nRaise range: %d to %d chips (total street bet)", legal.MinTotal, legal.MaxTotal)
	}
	return out
}

// memorySection renders the actor's own applied actions this hand. Empty
// memory still gets a header so the model knows nothing has happened.
func memorySection(memory *agent.HandMemory) string {
	header := "=== MY PREVIOUS ACTIONS THIS HAND ===\n"
	if memory == nil || memory.Len() == 0 {
		return header + "No previous actions taken this hand.\n\n"
	}

	var b strings.Builder
	b.WriteString(header)
	for i, r := range memory.Records() {
		if r.Amount > 0 {
			fmt.Fprintf(&b, "%d. %s: %s %d chips (Confidence: %.2f)\n", i+1, r.Phase, r.Kind, r.Amount, r.Confidence)
		} else {
			fmt.Fprintf(&b, "%d. %s: %s (Confidence: %.2f)\n", i+1, r.Phase, r.Kind, r.Confidence)
		}
		if r.Reasoning != "" {
			fmt.Fprintf(&b, "   Reasoning: %s\n", r.Reasoning)
		}
	}
	b.WriteString("\n")
	return b.String()
}
