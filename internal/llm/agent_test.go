package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-arena/internal/agent"
	"github.com/lox/holdem-arena/internal/holdem"
)

// fakeGateway scripts gateway behavior per test.
type fakeGateway struct {
	structured    json.RawMessage
	structuredErr error
	text          string
	textErr       error

	structuredCalls int
	textCalls       int
	lastPrompt      string
}

func (f *fakeGateway) CompleteStructured(_ context.Context, _, prompt string, _ Schema) (json.RawMessage, error) {
	f.structuredCalls++
	f.lastPrompt = prompt
	return f.structured, f.structuredErr
}

func (f *fakeGateway) CompleteText(_ context.Context, _, prompt string) (string, error) {
	f.textCalls++
	f.lastPrompt = prompt
	return f.text, f.textErr
}

func llmView(toCall int) *agent.TurnView {
	return &agent.TurnView{
		Seat:        0,
		Name:        "gpt-seat",
		Phase:       holdem.PreFlop,
		Hole:        []holdem.Card{{Rank: holdem.Ace, Suit: holdem.Spades}, {Rank: holdem.King, Suit: holdem.Spades}},
		Chips:       1000,
		ChipsToCall: toCall,
		PotTotal:    60,
		BigBlind:    20,
		Legal: holdem.MoveSet{
			Kinds:    []holdem.MoveKind{holdem.Fold, holdem.Call, holdem.Raise},
			MinTotal: 80,
			MaxTotal: 1000,
		},
	}
}

func newTestAgent(gw Gateway) *Agent {
	return NewAgent(gw, "test-model", "balanced", log.New(io.Discard))
}

func TestDecideStructured(t *testing.T) {
	gw := &fakeGateway{
		structured: json.RawMessage(`{"action":"RAISE","amount":120,"reasoning":"premium hand","confidence":0.9}`),
	}
	a := newTestAgent(gw)

	p, err := a.Decide(context.Background(), llmView(40))
	require.NoError(t, err)
	assert.Equal(t, holdem.Raise, p.Kind)
	assert.Equal(t, 120, p.Amount)
	assert.Equal(t, "premium hand", p.Reasoning)
	assert.Equal(t, 0.9, p.Confidence)
	assert.Equal(t, 1, gw.structuredCalls)
	assert.Equal(t, 0, gw.textCalls)
}

func TestDecideRewritesRaiseDelta(t *testing.T) {
	// amount 20 with 40 to call cannot be a street total; read it as a
	// raise of 20 on top of the call.
	gw := &fakeGateway{
		structured: json.RawMessage(`{"action":"RAISE","amount":20,"reasoning":"small raise","confidence":0.6}`),
	}
	a := newTestAgent(gw)

	p, err := a.Decide(context.Background(), llmView(40))
	require.NoError(t, err)
	assert.Equal(t, holdem.Raise, p.Kind)
	assert.Equal(t, 60, p.Amount)
}

func TestDecideFallsBackToTextWhenUnsupported(t *testing.T) {
	gw := &fakeGateway{
		structuredErr: ErrStructuredUnsupported,
		text:          "ACTION: CALL\nREASONING: decent odds\nCONFIDENCE: 0.7",
	}
	a := newTestAgent(gw)

	p, err := a.Decide(context.Background(), llmView(40))
	require.NoError(t, err)
	assert.Equal(t, holdem.Call, p.Kind)
	assert.Equal(t, "decent odds", p.Reasoning)
	assert.Equal(t, 1, gw.textCalls)
}

func TestDecideRetriesTextOnSchemaViolation(t *testing.T) {
	gw := &fakeGateway{
		structured: json.RawMessage(`{"action":"YOLO","amount":0,"reasoning":"","confidence":0.5}`),
		text:       "ACTION: CHECK\nCONFIDENCE: 0.5",
	}
	a := newTestAgent(gw)

	p, err := a.Decide(context.Background(), llmView(0))
	require.NoError(t, err)
	assert.Equal(t, holdem.Check, p.Kind)
	assert.Equal(t, 1, gw.structuredCalls)
	assert.Equal(t, 1, gw.textCalls)
}

func TestDecideFailsWhenGatewayFails(t *testing.T) {
	gw := &fakeGateway{structuredErr: errors.New("provider on fire")}
	a := newTestAgent(gw)

	_, err := a.Decide(context.Background(), llmView(40))
	require.Error(t, err)
	assert.Equal(t, 0, gw.textCalls, "hard gateway failures must not retry as text")
}

func TestDecideFailsWhenTextUnparseable(t *testing.T) {
	gw := &fakeGateway{
		structuredErr: ErrStructuredUnsupported,
		text:          "I think I'd probably just call here, friend.",
	}
	a := newTestAgent(gw)

	_, err := a.Decide(context.Background(), llmView(40))
	require.Error(t, err)
}

func TestTextRetryAppendsFormatInstructions(t *testing.T) {
	gw := &fakeGateway{
		structuredErr: ErrStructuredUnsupported,
		text:          "ACTION: FOLD\nCONFIDENCE: 0.8",
	}
	a := newTestAgent(gw)

	_, err := a.Decide(context.Background(), llmView(40))
	require.NoError(t, err)
	assert.Contains(t, gw.lastPrompt, "ACTION: [FOLD/CHECK/CALL/RAISE]")
}
