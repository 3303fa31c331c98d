package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// OpenAIConfig configures the chat-completions gateway. BaseURL accepts
// any OpenAI-compatible endpoint (OpenAI, OpenRouter, local inference
// servers).
type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// DefaultOpenAIConfig returns the stock OpenAI endpoint with a 60s
// transport ceiling; per-decision deadlines come from the caller's ctx.
func DefaultOpenAIConfig(apiKey string) OpenAIConfig {
	return OpenAIConfig{
		BaseURL: "https://api.openai.com/v1",
		APIKey:  apiKey,
		Timeout: 60 * time.Second,
	}
}

// OpenAIGateway implements Gateway over the chat-completions API. One
// instance is shared by every session; the http.Client handles
// concurrent requests.
type OpenAIGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *log.Logger
}

// NewOpenAIGateway constructs the shared gateway.
func NewOpenAIGateway(cfg OpenAIConfig, logger *log.Logger) *OpenAIGateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &OpenAIGateway{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger.WithPrefix("llm"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat any           `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// CompleteStructured requests a schema-constrained completion. Providers
// that reject the response_format surface ErrStructuredUnsupported so
// the pipeline can retry in text mode.
func (g *OpenAIGateway) CompleteStructured(ctx context.Context, model, prompt string, schema Schema) (json.RawMessage, error) {
	req := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   400,
		Temperature: 0.1,
		ResponseFormat: map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   schema.Name,
				"strict": schema.Strict,
				"schema": schema.Schema,
			},
		},
	}

	content, err := g.complete(ctx, req)
	if err != nil {
		return nil, err
	}

	obj, ok := extractJSONObject(content)
	if !ok {
		return nil, fmt.Errorf("no JSON object in structured response")
	}
	return json.RawMessage(obj), nil
}

// CompleteText requests a free-form completion.
func (g *OpenAIGateway) CompleteText(ctx context.Context, model, prompt string) (string, error) {
	req := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are an expert poker player. Always respond in the exact format requested."},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   400,
		Temperature: 0.7,
	}
	return g.complete(ctx, req)
}

func (g *OpenAIGateway) complete(ctx context.Context, payload chatRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading completion response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("completion response status %d: %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK || parsed.Error != nil {
		msg := strings.TrimSpace(string(raw))
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		if structuredUnsupported(resp.StatusCode, msg) {
			return "", fmt.Errorf("%s: %w", msg, ErrStructuredUnsupported)
		}
		return "", fmt.Errorf("completion failed with status %d: %s", resp.StatusCode, msg)
	}

	if len(parsed.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// structuredUnsupported recognizes the provider error shapes that mean
// "this model cannot do json_schema output", as opposed to a hard fault.
func structuredUnsupported(status int, message string) bool {
	if status != http.StatusBadRequest && status != http.StatusNotFound {
		return false
	}
	m := strings.ToLower(message)
	return strings.Contains(m, "response_format") ||
		strings.Contains(m, "json_schema") ||
		strings.Contains(m, "structured output")
}
