package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-arena/internal/agent"
	"github.com/lox/holdem-arena/internal/gameid"
	"github.com/lox/holdem-arena/internal/holdem"
	"github.com/lox/holdem-arena/internal/llm"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func ruleSeat(rule string) SeatConfig {
	return SeatConfig{Spec: agent.SeatSpec{Kind: agent.KindRule, Rule: rule}}
}

func humanSeat(name string) SeatConfig {
	return SeatConfig{Name: name, Spec: agent.SeatSpec{Kind: agent.KindHuman}}
}

func llmSeat(model string) SeatConfig {
	return SeatConfig{Spec: agent.SeatSpec{Kind: agent.KindLLM, Model: model}}
}

func baseConfig(seats ...SeatConfig) Config {
	return Config{
		Seats:       seats,
		Buyin:       1000,
		SmallBlind:  10,
		BigBlind:    20,
		MaxHands:    1,
		Seed:        42,
		EventBuffer: 4096,
	}
}

func startSession(t *testing.T, cfg Config, opts Options) *Session {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = testLogger()
	}
	s, err := New(gameid.New(), cfg, opts)
	require.NoError(t, err)
	t.Cleanup(func() { s.End() })
	return s
}

// waitFor polls cond; the session loop runs in its own goroutine so
// tests observe it through snapshots.
func waitFor(t *testing.T, msg string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func waitForTurn(t *testing.T, s *Session, seat int) {
	t.Helper()
	waitFor(t, "turn", func() bool {
		gs := s.Snapshot()
		return gs.CurrentPlayer != nil && *gs.CurrentPlayer == seat
	})
}

func waitDone(t *testing.T, s *Session) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("session did not finish")
	}
}

func drainEvents(t *testing.T, sub *Subscription) []Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var events []Event
	for {
		e, err := sub.Next(ctx)
		if err != nil {
			require.ErrorIs(t, err, ErrSubscriptionClosed)
			return events
		}
		events = append(events, e)
	}
}

// scriptedGateway answers every structured completion with the same raw
// decision and records the prompts it saw.
type scriptedGateway struct {
	raw json.RawMessage

	mu      sync.Mutex
	prompts []string
}

func (g *scriptedGateway) CompleteStructured(_ context.Context, _, prompt string, _ llm.Schema) (json.RawMessage, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	return g.raw, nil
}

func (g *scriptedGateway) CompleteText(context.Context, string, string) (string, error) {
	return "", errors.New("unexpected text completion")
}

func (g *scriptedGateway) Prompts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.prompts...)
}

// stallGateway never answers until the decision deadline kills it.
type stallGateway struct{}

func (stallGateway) CompleteStructured(ctx context.Context, _, _ string, _ llm.Schema) (json.RawMessage, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (stallGateway) CompleteText(ctx context.Context, _, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestConfigValidate(t *testing.T) {
	t.Run("too few seats", func(t *testing.T) {
		cfg := baseConfig(ruleSeat("call"))
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})

	t.Run("unknown rule agent", func(t *testing.T) {
		cfg := baseConfig(ruleSeat("call"), ruleSeat("gto_wizard"))
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})

	t.Run("zero hand budget", func(t *testing.T) {
		cfg := baseConfig(ruleSeat("call"), ruleSeat("call"))
		cfg.MaxHands = 0
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})

	t.Run("bad blinds", func(t *testing.T) {
		cfg := baseConfig(ruleSeat("call"), ruleSeat("call"))
		cfg.SmallBlind = 20
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})

	t.Run("valid", func(t *testing.T) {
		cfg := baseConfig(ruleSeat("call"), humanSeat("Alice"))
		assert.NoError(t, cfg.Validate())
	})
}

func TestNewRequiresGatewayForLLMSeats(t *testing.T) {
	cfg := baseConfig(llmSeat("test-model"), ruleSeat("call"))
	_, err := New(gameid.New(), cfg, Options{Logger: testLogger()})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestBotsPlayToCompletion(t *testing.T) {
	cfg := baseConfig(ruleSeat("call"), ruleSeat("call"), ruleSeat("passive"))
	cfg.MaxHands = 5

	s := startSession(t, cfg, Options{})
	sub := s.Subscribe()
	defer sub.Close()

	waitDone(t, s)
	events := drainEvents(t, sub)
	require.NotEmpty(t, events)

	// Every snapshot balances: stacks plus pots always equal the table
	// total, including mid-hand states.
	var lastState uint64
	sawState := false
	for _, e := range events {
		su, ok := e.(StateUpdateEvent)
		if !ok {
			continue
		}
		assert.Equal(t, 3000, su.State.TotalChips(), "revision %d", su.Revision)
		if sawState {
			assert.Greater(t, su.Revision, lastState)
		}
		lastState = su.Revision
		sawState = true
	}

	// Each applied action is immediately followed by the snapshot it
	// produced, at the same revision.
	for i, e := range events {
		aa, ok := e.(ActionAppliedEvent)
		if !ok {
			continue
		}
		require.Less(t, i+1, len(events))
		su, ok := events[i+1].(StateUpdateEvent)
		require.True(t, ok, "action at %d not followed by a state update", i)
		assert.Equal(t, aa.Revision, su.Revision)
	}

	last := events[len(events)-1]
	term, ok := last.(TerminalEvent)
	require.True(t, ok, "last event must be terminal, got %s", last.EventType())
	assert.Equal(t, StatusCompleted, term.Status)
	require.Len(t, term.Rankings, 3)
	for i, r := range term.Rankings {
		assert.Equal(t, i+1, r.Rank)
		if i > 0 {
			prev := term.Rankings[i-1]
			assert.True(t, prev.Chips > r.Chips || (prev.Chips == r.Chips && prev.PlayerID < r.PlayerID))
		}
	}

	gs := s.Snapshot()
	assert.Equal(t, StatusCompleted, gs.Status)
	assert.Equal(t, 3000, gs.TotalChips())
	assert.Len(t, gs.FinalRankings, 3)
	for _, p := range gs.Pots {
		assert.Zero(t, p.Total, "settled pots must project to zero")
	}
}

func TestCallStationsReachShowdown(t *testing.T) {
	cfg := baseConfig(ruleSeat("call"), ruleSeat("call"))

	s := startSession(t, cfg, Options{})
	waitDone(t, s)

	gs := s.Snapshot()
	require.Equal(t, StatusCompleted, gs.Status)
	// Two stations check and call their way to showdown, so everyone's
	// hole cards are revealed in the final snapshot.
	for _, seat := range gs.Seats {
		assert.Len(t, seat.HoleCards, 2, "seat %d", seat.PlayerID)
	}
}

func TestHumanRaiseThenFoldSettlesHand(t *testing.T) {
	cfg := baseConfig(humanSeat("Alice"), humanSeat("Bob"))
	cfg.AutoStart = true

	s := startSession(t, cfg, Options{})

	// Heads-up the button posts the small blind and acts first.
	waitForTurn(t, s, 0)
	require.NoError(t, s.ProposeAction(0, holdem.Raise, 60))

	waitForTurn(t, s, 1)
	require.NoError(t, s.ProposeAction(1, holdem.Fold, 0))

	waitDone(t, s)

	gs := s.Snapshot()
	assert.Equal(t, StatusCompleted, gs.Status)
	assert.Equal(t, 1020, gs.Seats[0].Chips)
	assert.Equal(t, 980, gs.Seats[1].Chips)
	assert.Equal(t, 2000, gs.TotalChips())
	for _, p := range gs.Pots {
		assert.Zero(t, p.Total)
	}

	require.Len(t, gs.FinalRankings, 2)
	assert.Equal(t, 0, gs.FinalRankings[0].PlayerID)
	assert.Equal(t, "Alice", gs.FinalRankings[0].Name)
	assert.Equal(t, 1020, gs.FinalRankings[0].Chips)
}

func TestProposeActionRejections(t *testing.T) {
	cfg := baseConfig(humanSeat("Alice"), ruleSeat("call"))
	cfg.AutoStart = true

	s := startSession(t, cfg, Options{})
	waitForTurn(t, s, 0)
	before := s.Snapshot().Revision

	t.Run("out of turn", func(t *testing.T) {
		cfg := baseConfig(humanSeat("Alice"), humanSeat("Bob"))
		cfg.AutoStart = true
		s2 := startSession(t, cfg, Options{})
		waitForTurn(t, s2, 0)
		assert.ErrorIs(t, s2.ProposeAction(1, holdem.Fold, 0), ErrOutOfTurn)
	})

	t.Run("not a human seat", func(t *testing.T) {
		var invalid *InvalidActionError
		err := s.ProposeAction(1, holdem.Fold, 0)
		require.ErrorAs(t, err, &invalid)
	})

	t.Run("illegal kind", func(t *testing.T) {
		// Seat 0 posted the small blind and faces the big blind; a free
		// check is not on the table.
		var invalid *InvalidActionError
		err := s.ProposeAction(0, holdem.Check, 0)
		require.ErrorAs(t, err, &invalid)
	})

	t.Run("raise out of range", func(t *testing.T) {
		var invalid *InvalidActionError
		err := s.ProposeAction(0, holdem.Raise, 5)
		require.ErrorAs(t, err, &invalid)
	})

	// Rejections leave state untouched.
	assert.Equal(t, before, s.Snapshot().Revision)

	t.Run("after end", func(t *testing.T) {
		s.End()
		assert.ErrorIs(t, s.ProposeAction(0, holdem.Fold, 0), ErrSessionTerminal)
	})
}

func TestSessionWaitsForAdvance(t *testing.T) {
	cfg := baseConfig(humanSeat("Alice"), humanSeat("Bob"))

	s := startSession(t, cfg, Options{})
	assert.Equal(t, StatusWaiting, s.Status())

	gs := s.Snapshot()
	assert.Zero(t, gs.HandNumber)
	assert.Nil(t, gs.CurrentPlayer)

	require.NoError(t, s.Advance())
	waitFor(t, "first hand", func() bool { return s.Snapshot().HandNumber == 1 })
	assert.Equal(t, StatusRunning, s.Status())
}

func TestAdvanceRejectedMidHand(t *testing.T) {
	cfg := baseConfig(humanSeat("Alice"), humanSeat("Bob"))
	cfg.AutoStart = true

	s := startSession(t, cfg, Options{})
	waitForTurn(t, s, 0)
	assert.ErrorIs(t, s.Advance(), ErrNotReady)
}

func TestPausesBetweenHandsForHumans(t *testing.T) {
	cfg := baseConfig(humanSeat("Alice"), humanSeat("Bob"))
	cfg.MaxHands = 2
	cfg.AutoStart = true

	s := startSession(t, cfg, Options{})

	foldOut := func() {
		waitFor(t, "a turn", func() bool { return s.Snapshot().CurrentPlayer != nil })
		gs := s.Snapshot()
		require.NoError(t, s.ProposeAction(*gs.CurrentPlayer, holdem.Fold, 0))
	}

	foldOut()
	waitFor(t, "pause", func() bool { return s.Status() == StatusPaused })

	require.NoError(t, s.Advance())
	foldOut()

	waitDone(t, s)
	assert.Equal(t, StatusCompleted, s.Status())
	assert.Equal(t, 2, s.Snapshot().HandNumber)
}

func TestAdvanceAfterTerminal(t *testing.T) {
	cfg := baseConfig(ruleSeat("call"), ruleSeat("call"))
	s := startSession(t, cfg, Options{})
	waitDone(t, s)

	assert.ErrorIs(t, s.Advance(), ErrSessionTerminal)
	assert.Equal(t, StatusCompleted, s.Status())

	// End after completion is a no-op returning the frozen rankings.
	rankings := s.End()
	assert.Len(t, rankings, 2)
	assert.Equal(t, StatusCompleted, s.Status())
}

func TestHumanTurnTimeoutDefaultsToFold(t *testing.T) {
	cfg := baseConfig(humanSeat("Alice"), ruleSeat("call"))
	cfg.AutoStart = true
	cfg.TurnTimeout = 10 * time.Millisecond

	s := startSession(t, cfg, Options{})
	sub := s.Subscribe()
	defer sub.Close()

	waitDone(t, s)
	events := drainEvents(t, sub)

	var sawTimeout bool
	var folded bool
	for _, e := range events {
		if ee, ok := e.(ErrorEvent); ok && ee.Kind == ErrorKindTimeoutAction {
			sawTimeout = true
			assert.Equal(t, 0, ee.Seat)
		}
		if aa, ok := e.(ActionAppliedEvent); ok && aa.Record.PlayerID == 0 {
			assert.Equal(t, holdem.Fold, aa.Record.Kind)
			folded = true
		}
	}
	assert.True(t, sawTimeout, "expected a timeout diagnostic")
	assert.True(t, folded, "expected the defaulted fold to apply")

	// Facing the big blind, the defaulted fold forfeits the small blind.
	gs := s.Snapshot()
	assert.Equal(t, 990, gs.Seats[0].Chips)
	assert.Equal(t, 1010, gs.Seats[1].Chips)
}

func TestLateProposalAfterTimeoutDiscarded(t *testing.T) {
	cfg := baseConfig(humanSeat("Alice"), humanSeat("Bob"))
	cfg.AutoStart = true
	cfg.TurnTimeout = 200 * time.Millisecond

	s := startSession(t, cfg, Options{})

	// Seat 0 (button) completes the small blind well inside its clock.
	waitForTurn(t, s, 0)
	require.NoError(t, s.ProposeAction(0, holdem.Call, 0))
	waitForTurn(t, s, 1)

	// Hold the session lock across seat 1's clock expiry. The loop
	// cannot apply the timeout default until the lock frees, so a
	// proposal delivered now lands in exactly the window a slow
	// transport can hit.
	s.mu.Lock()
	time.Sleep(450 * time.Millisecond)
	require.NoError(t, s.mailbox[1].deliver(agent.Proposal{Kind: holdem.Raise, Amount: 200}))
	s.mu.Unlock()

	// The timeout default (check, nothing owed) closes preflop. Seat 1
	// opens the flop and must wait for fresh input, not consume the
	// stale raise.
	waitFor(t, "flop turn", func() bool {
		gs := s.Snapshot()
		return gs.Phase == holdem.Flop && gs.CurrentPlayer != nil && *gs.CurrentPlayer == 1
	})

	gs := s.Snapshot()
	pot := 0
	for _, p := range gs.Pots {
		pot += p.Total
	}
	assert.Equal(t, 40, pot)
	for _, seat := range gs.Seats {
		assert.Zero(t, seat.Bet)
	}

	// Fresh input is still accepted for the new turn.
	require.NoError(t, s.ProposeAction(1, holdem.Check, 0))
}

func TestLLMTimeoutFallsBackToCall(t *testing.T) {
	cfg := baseConfig(llmSeat("test-model"), ruleSeat("call"))
	cfg.LLMTimeout = 10 * time.Millisecond

	s := startSession(t, cfg, Options{Gateway: stallGateway{}})
	sub := s.Subscribe()
	defer sub.Close()

	waitDone(t, s)
	events := drainEvents(t, sub)

	var sawTimeout bool
	for _, e := range events {
		if ee, ok := e.(ErrorEvent); ok && ee.Kind == ErrorKindLLMTimeout {
			sawTimeout = true
			assert.Equal(t, 0, ee.Seat)
		}
		if aa, ok := e.(ActionAppliedEvent); ok && aa.Record.PlayerID == 0 {
			// The fallback ladder starts at Call; it may legalize to a
			// free check but never raises or folds on the seat's behalf.
			assert.Contains(t, []holdem.MoveKind{holdem.Call, holdem.Check}, aa.Record.Kind)
		}
	}
	assert.True(t, sawTimeout, "expected an LLM timeout diagnostic")

	// A dead model degrades the seat, never the session.
	gs := s.Snapshot()
	assert.Equal(t, StatusCompleted, gs.Status)
	assert.Equal(t, 2000, gs.TotalChips())
}

func TestLLMDecisionsApplied(t *testing.T) {
	gw := &scriptedGateway{
		raw: json.RawMessage(`{"action":"RAISE","amount":60,"reasoning":"pressure","confidence":0.9}`),
	}
	cfg := baseConfig(llmSeat("test-model"), ruleSeat("call"))

	s := startSession(t, cfg, Options{Gateway: gw})
	sub := s.Subscribe()
	defer sub.Close()

	waitDone(t, s)
	events := drainEvents(t, sub)

	var raises int
	for _, e := range events {
		aa, ok := e.(ActionAppliedEvent)
		if !ok || aa.Record.PlayerID != 0 {
			continue
		}
		assert.Equal(t, holdem.Raise, aa.Record.Kind)
		assert.Equal(t, 60, aa.Record.Amount)
		assert.Equal(t, "pressure", aa.Record.Reasoning)
		assert.InDelta(t, 0.9, aa.Record.Confidence, 0.001)
		raises++
	}
	assert.GreaterOrEqual(t, raises, 1)

	gs := s.Snapshot()
	assert.Equal(t, StatusCompleted, gs.Status)
	assert.Equal(t, 2000, gs.TotalChips())

	// The seat's memory feeds back into later prompts: the first prompt
	// has an empty history, later ones carry the applied raise.
	prompts := gw.Prompts()
	require.GreaterOrEqual(t, len(prompts), 2)
	assert.Contains(t, prompts[0], "No previous actions taken this hand")
	assert.Contains(t, prompts[1], "60 chips")
	assert.Contains(t, prompts[1], "pressure")

	// Memory is per seat. The call bot in seat 1 only calls and checks,
	// and this seat only raises, so those kinds appearing in the history
	// section would mean the opponent's actions leaked in.
	for _, p := range prompts {
		history := promptHistorySection(t, p)
		assert.NotContains(t, history, "CALL")
		assert.NotContains(t, history, "CHECK")
	}
}

// promptHistorySection extracts the previous-actions block of a prompt.
func promptHistorySection(t *testing.T, prompt string) string {
	t.Helper()
	const header = "=== MY PREVIOUS ACTIONS THIS HAND ==="
	start := strings.Index(prompt, header)
	require.GreaterOrEqual(t, start, 0)
	rest := prompt[start+len(header):]
	if end := strings.Index(rest, "==="); end >= 0 {
		rest = rest[:end]
	}
	return rest
}

func TestHoleCardVisibility(t *testing.T) {
	t.Run("opponents hidden from humans", func(t *testing.T) {
		cfg := baseConfig(humanSeat("Alice"), ruleSeat("call"))
		cfg.AutoStart = true
		s := startSession(t, cfg, Options{})
		waitForTurn(t, s, 0)

		gs := s.Snapshot()
		assert.Len(t, gs.Seats[0].HoleCards, 2)
		assert.Empty(t, gs.Seats[1].HoleCards)
	})

	t.Run("debug mode reveals everything", func(t *testing.T) {
		cfg := baseConfig(humanSeat("Alice"), ruleSeat("call"))
		cfg.AutoStart = true
		cfg.DebugMode = true
		s := startSession(t, cfg, Options{})
		waitForTurn(t, s, 0)

		gs := s.Snapshot()
		assert.Len(t, gs.Seats[0].HoleCards, 2)
		assert.Len(t, gs.Seats[1].HoleCards, 2)
	})
}

func TestSubscribeDeliversSnapshotFirst(t *testing.T) {
	cfg := baseConfig(humanSeat("Alice"), humanSeat("Bob"))
	s := startSession(t, cfg, Options{})

	sub := s.Subscribe()
	defer sub.Close()

	e, ok := sub.TryNext()
	require.True(t, ok, "subscribe must push an immediate snapshot")
	su, ok := e.(StateUpdateEvent)
	require.True(t, ok)
	assert.Equal(t, StatusWaiting, su.State.Status)
}

func TestEndMidHandCancelsCleanly(t *testing.T) {
	cfg := baseConfig(humanSeat("Alice"), humanSeat("Bob"))
	cfg.AutoStart = true

	s := startSession(t, cfg, Options{})
	sub := s.Subscribe()
	defer sub.Close()
	waitForTurn(t, s, 0)

	rankings := s.End()
	assert.Equal(t, StatusCompleted, s.Status())
	assert.Len(t, rankings, 2)

	events := drainEvents(t, sub)
	require.NotEmpty(t, events)
	assert.Equal(t, EventTypeTerminal, events[len(events)-1].EventType())
}

func TestSeedsReproduceDeals(t *testing.T) {
	run := func() []Ranking {
		cfg := baseConfig(ruleSeat("random"), ruleSeat("random"), ruleSeat("random"))
		cfg.MaxHands = 3
		cfg.Seed = 1234
		s := startSession(t, cfg, Options{})
		waitDone(t, s)
		return s.End()
	}

	first := run()
	second := run()
	assert.Equal(t, first, second)
}

// Property sweep: randomized tables must conserve chips, only ever apply
// legal actions and finish inside the hand budget.
func TestRandomTablesStayConserved(t *testing.T) {
	rules := []string{"random", "aggressive_random", "call", "passive", "tight", "loose", "bluff", "position_aware"}

	for seed := int64(1); seed <= 6; seed++ {
		seats := make([]SeatConfig, 0, 4)
		for i := 0; i < 4; i++ {
			seats = append(seats, ruleSeat(rules[(int(seed)+i)%len(rules)]))
		}
		cfg := baseConfig(seats...)
		cfg.MaxHands = 10
		cfg.Seed = seed

		s := startSession(t, cfg, Options{})
		sub := s.Subscribe()
		waitDone(t, s)

		for _, e := range drainEvents(t, sub) {
			if su, ok := e.(StateUpdateEvent); ok {
				assert.Equal(t, 4000, su.State.TotalChips(), "seed %d revision %d", seed, su.Revision)
			}
		}
		sub.Close()

		gs := s.Snapshot()
		assert.Equal(t, StatusCompleted, gs.Status, "seed %d", seed)
		assert.LessOrEqual(t, gs.HandNumber, 10, "seed %d", seed)
		assert.Equal(t, 4000, gs.TotalChips(), "seed %d", seed)
	}
}

func TestRecorderReceivesSettledHands(t *testing.T) {
	rec := &captureRecorder{}
	cfg := baseConfig(ruleSeat("call"), ruleSeat("call"))
	cfg.MaxHands = 2

	s := startSession(t, cfg, Options{Recorder: rec})
	waitDone(t, s)

	waitFor(t, "records", func() bool { return len(rec.Records()) == 2 })
	records := rec.Records()

	assert.Equal(t, s.ID().String(), records[0].GameID)
	assert.Equal(t, 1, records[0].HandNumber)
	assert.Equal(t, 2, records[1].HandNumber)
	for _, r := range records {
		assert.NotEmpty(t, r.Actions)
		assert.NotEmpty(t, r.Winners)
		assert.Equal(t, "showdown", r.Settlement)
		total := 0
		for _, c := range r.Chips {
			total += c
		}
		assert.Equal(t, 2000, total)
		awarded := 0
		for _, w := range r.Winners {
			awarded += w.Amount
		}
		assert.Equal(t, r.PotTotal, awarded)
	}
}

type captureRecorder struct {
	mu      sync.Mutex
	records []HandRecord
}

func (r *captureRecorder) RecordHand(_ context.Context, rec HandRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func (r *captureRecorder) Records() []HandRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]HandRecord(nil), r.records...)
	return out
}

func TestTimeoutDefault(t *testing.T) {
	facing := &agent.TurnView{ChipsToCall: 40}
	assert.Equal(t, holdem.Fold, timeoutDefault(facing).Kind)

	free := &agent.TurnView{ChipsToCall: 0}
	assert.Equal(t, holdem.Check, timeoutDefault(free).Kind)
}

func TestGameStateMarshalKeepsEmptySlices(t *testing.T) {
	gs := &GameState{GameID: "g", Status: StatusWaiting}
	data, err := json.Marshal(gs)
	require.NoError(t, err)
	body := string(data)
	assert.True(t, strings.Contains(body, `"board":[]`), body)
	assert.True(t, strings.Contains(body, `"pots":[]`), body)
	assert.True(t, strings.Contains(body, `"available_actions":[]`), body)
}
