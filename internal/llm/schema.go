package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// systemPrompt frames every decision request.
const systemPrompt = `You are an expert poker player. Analyze the situation and make the best decision.

IMPORTANT: You must respond with valid JSON in this exact format:
{
  "action": "FOLD" | "CHECK" | "CALL" | "RAISE",
  "amount": integer (total street bet if RAISE, otherwise 0),
  "reasoning": "brief explanation",
  "confidence": number between 0.0 and 1.0
}`

// DecisionSchema is the poker_action schema for structured completions.
func DecisionSchema() Schema {
	return Schema{
		Name:   "poker_action",
		Strict: true,
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"action": map[string]any{
					"type":        "string",
					"enum":        []string{"FOLD", "CHECK", "CALL", "RAISE"},
					"description": "The poker action to take",
				},
				"amount": map[string]any{
					"type":        "integer",
					"minimum":     0,
					"description": "Total street bet for RAISE, 0 otherwise",
				},
				"reasoning": map[string]any{
					"type":        "string",
					"description": "Brief explanation of the decision (1-2 sentences)",
				},
				"confidence": map[string]any{
					"type":        "number",
					"minimum":     0.0,
					"maximum":     1.0,
					"description": "Confidence in this decision (0.0 to 1.0)",
				},
			},
			"required":             []string{"action", "amount", "reasoning", "confidence"},
			"additionalProperties": false,
		},
	}
}

// validActions is the accepted action vocabulary, upper-cased.
var validActions = map[string]bool{
	"FOLD":  true,
	"CHECK": true,
	"CALL":  true,
	"RAISE": true,
}

// DecodeDecision parses and validates a structured response body.
func DecodeDecision(raw json.RawMessage) (Decision, error) {
	var d Decision
	if err := json.Unmarshal(raw, &d); err != nil {
		return Decision{}, fmt.Errorf("decoding decision: %w", err)
	}
	d.Action = strings.ToUpper(strings.TrimSpace(d.Action))
	if !validActions[d.Action] {
		return Decision{}, fmt.Errorf("unknown action token %q", d.Action)
	}
	if d.Confidence < 0 {
		d.Confidence = 0
	}
	if d.Confidence > 1 {
		d.Confidence = 1
	}
	if d.Amount < 0 {
		d.Amount = 0
	}
	return d, nil
}
