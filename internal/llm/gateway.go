// Package llm drives language-model seats: the gateway contract for
// OpenAI-compatible providers, the per-personality prompt builder, and
// the decision pipeline that turns completions into validated proposals.
package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrStructuredUnsupported is returned by a Gateway whose provider (or
// the requested model) cannot honor schema-constrained output. The
// pipeline falls back to a text completion.
var ErrStructuredUnsupported = errors.New("structured output not supported")

// Schema is a JSON schema handed to structured completion requests.
type Schema struct {
	Name   string
	Strict bool
	Schema map[string]any
}

// Gateway is the completion backend shared across sessions. It must be
// safe for concurrent use; the pipeline enforces per-decision timeouts
// through ctx.
type Gateway interface {
	// CompleteStructured requests a completion constrained to schema and
	// returns the raw JSON object.
	CompleteStructured(ctx context.Context, model, prompt string, schema Schema) (json.RawMessage, error)

	// CompleteText requests a free-form completion.
	CompleteText(ctx context.Context, model, prompt string) (string, error)
}

// Decision is the typed form of a model's answer, before validation.
type Decision struct {
	Action     string  `json:"action"`
	Amount     int     `json:"amount"`
	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"`
}
