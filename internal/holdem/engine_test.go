package holdem

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem-arena/internal/randutil"
)

func testEngine(t *testing.T, cfg Config, seed int64) *Engine {
	t.Helper()
	eng, err := NewEngine(cfg, randutil.New(seed), log.New(io.Discard))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return eng
}

func TestConfigValidation(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"valid", Config{Seats: 6, Buyin: 1000, SmallBlind: 10, BigBlind: 20}, true},
		{"one seat", Config{Seats: 1, Buyin: 1000, SmallBlind: 10, BigBlind: 20}, false},
		{"ten seats", Config{Seats: 10, Buyin: 1000, SmallBlind: 10, BigBlind: 20}, false},
		{"zero buyin", Config{Seats: 3, Buyin: 0, SmallBlind: 10, BigBlind: 20}, false},
		{"sb above bb", Config{Seats: 3, Buyin: 1000, SmallBlind: 20, BigBlind: 10}, false},
		{"sb equals bb", Config{Seats: 3, Buyin: 1000, SmallBlind: 20, BigBlind: 20}, false},
		{"bb above buyin", Config{Seats: 3, Buyin: 15, SmallBlind: 10, BigBlind: 20}, false},
	}
	for _, tc := range cases {
		err := tc.cfg.Validate()
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestEngineLifecycle(t *testing.T) {
	t.Parallel()
	eng := testEngine(t, Config{Seats: 3, Buyin: 1000, SmallBlind: 10, BigBlind: 20}, 42)

	if eng.HandPhase() != PreHand {
		t.Errorf("Phase before the first deal should be PreHand, got %v", eng.HandPhase())
	}
	if eng.IsHandRunning() {
		t.Error("No hand should be running yet")
	}
	if !eng.IsGameRunning() {
		t.Error("Game should be runnable with every seat funded")
	}

	if err := eng.StartHand(); err != nil {
		t.Fatalf("StartHand: %v", err)
	}
	if eng.Button() != 0 {
		t.Errorf("First deal should put the button on seat 0, got %d", eng.Button())
	}
	if eng.HandNumber() != 1 {
		t.Errorf("Hand number should be 1, got %d", eng.HandNumber())
	}
	if eng.HandPhase() != PreFlop {
		t.Errorf("Phase should be PreFlop, got %v", eng.HandPhase())
	}
	if _, ok := eng.CurrentPlayer(); !ok {
		t.Error("A decision should be pending")
	}
	if err := eng.StartHand(); err == nil {
		t.Error("StartHand should fail while a hand runs")
	}
}

func TestEngineValidateMove(t *testing.T) {
	t.Parallel()
	eng := testEngine(t, Config{Seats: 3, Buyin: 1000, SmallBlind: 10, BigBlind: 20}, 42)
	if err := eng.StartHand(); err != nil {
		t.Fatalf("StartHand: %v", err)
	}

	seat, _ := eng.CurrentPlayer()
	if !eng.ValidateMove(seat, Move{Kind: Call}) {
		t.Error("Call should validate for the current seat")
	}
	if eng.ValidateMove(seat+1, Move{Kind: Call}) {
		t.Error("Moves by other seats must not validate")
	}
	if eng.ValidateMove(seat, Move{Kind: Check}) {
		t.Error("Check facing the blind must not validate")
	}
	if eng.ValidateMove(seat, Move{Kind: Raise, Amount: 25}) {
		t.Error("Raise below the minimum total must not validate")
	}
	if !eng.ValidateMove(seat, Move{Kind: Raise, Amount: 40}) {
		t.Error("Minimum raise should validate")
	}
	if eng.ValidateMove(seat, Move{Kind: Raise, Amount: 1200}) {
		t.Error("Raise beyond the stack must not validate")
	}
}

func TestChipsToCallTracksCurrentBet(t *testing.T) {
	t.Parallel()
	eng := testEngine(t, Config{Seats: 3, Buyin: 1000, SmallBlind: 10, BigBlind: 20}, 42)
	if err := eng.StartHand(); err != nil {
		t.Fatalf("StartHand: %v", err)
	}

	// UTG owes the full big blind, the small blind owes the difference.
	if got := eng.ChipsToCall(0); got != 20 {
		t.Errorf("UTG to call: got %d, want 20", got)
	}
	if got := eng.ChipsToCall(1); got != 10 {
		t.Errorf("SB to call: got %d, want 10", got)
	}
	if got := eng.ChipsToCall(2); got != 0 {
		t.Errorf("BB to call: got %d, want 0", got)
	}

	if err := eng.TakeAction(Move{Kind: Raise, Amount: 60}); err != nil {
		t.Fatalf("Raise: %v", err)
	}
	if got := eng.ChipsToCall(1); got != 50 {
		t.Errorf("SB to call after raise: got %d, want 50", got)
	}
}

// Between hands the settled pot breakdown stays visible while the chips are
// already back in the stacks, so a naive stacks-plus-pots sum over-counts.
func TestSettledPotsSurviveUntilNextDeal(t *testing.T) {
	t.Parallel()
	eng := testEngine(t, Config{Seats: 3, Buyin: 1000, SmallBlind: 10, BigBlind: 20}, 42)
	if err := eng.StartHand(); err != nil {
		t.Fatalf("StartHand: %v", err)
	}

	// Fold to the big blind.
	if err := eng.TakeAction(Move{Kind: Fold}); err != nil {
		t.Fatalf("UTG fold: %v", err)
	}
	if err := eng.TakeAction(Move{Kind: Fold}); err != nil {
		t.Fatalf("SB fold: %v", err)
	}

	if eng.IsHandRunning() {
		t.Fatal("Hand should be settled")
	}
	if eng.HandPhase() != Settle {
		t.Errorf("Phase should be Settle, got %v", eng.HandPhase())
	}

	stacks := 0
	for seat := 0; seat < eng.Seats(); seat++ {
		stacks += eng.Chips(seat)
	}
	if stacks != 3000 {
		t.Errorf("Stacks should already hold every chip: %d", stacks)
	}

	pots := 0
	for _, pot := range eng.Pots() {
		pots += pot.Amount
	}
	if pots != 30 {
		t.Errorf("Settled pots should still report the blinds: %d", pots)
	}
	// The over-count observers must correct for.
	if stacks+pots != 3030 {
		t.Errorf("Expected the settled snapshot to double-count the pot: %d", stacks+pots)
	}

	// The next deal replaces the snapshot with the live layout.
	if err := eng.StartHand(); err != nil {
		t.Fatalf("StartHand: %v", err)
	}
	stacks = 0
	for seat := 0; seat < eng.Seats(); seat++ {
		stacks += eng.Chips(seat)
	}
	pots = 0
	for _, pot := range eng.Pots() {
		pots += pot.Amount
	}
	if stacks+pots != 3000 {
		t.Errorf("Live layout should conserve chips: stacks=%d pots=%d", stacks, pots)
	}
}

func TestSettlementAccessor(t *testing.T) {
	t.Parallel()
	eng := testEngine(t, Config{Seats: 2, Buyin: 500, SmallBlind: 10, BigBlind: 20}, 5)

	if eng.Settlement() != nil {
		t.Error("Settlement should be nil before the first hand")
	}
	if err := eng.StartHand(); err != nil {
		t.Fatalf("StartHand: %v", err)
	}
	if eng.Settlement() != nil {
		t.Error("Settlement should be nil while the hand runs")
	}
	if err := eng.TakeAction(Move{Kind: Fold}); err != nil {
		t.Fatalf("Fold: %v", err)
	}
	s := eng.Settlement()
	if s == nil || s.Kind != "fold" {
		t.Fatalf("Expected fold settlement, got %+v", s)
	}
}

func TestAdvisoryMinRaiseExceedsShortStackMax(t *testing.T) {
	t.Parallel()
	eng := testEngine(t, Config{Seats: 2, Buyin: 100, SmallBlind: 10, BigBlind: 20}, 42)
	if err := eng.StartHand(); err != nil {
		t.Fatalf("StartHand: %v", err)
	}

	// Button raises to 90; the advisory minimum re-raise (160) exceeds the
	// big blind's 100-chip stack, while the enforced range collapses to the
	// all-in shove.
	if err := eng.TakeAction(Move{Kind: Raise, Amount: 90}); err != nil {
		t.Fatalf("Raise: %v", err)
	}

	ms := eng.AvailableMoves()
	if !ms.Has(Raise) {
		t.Fatal("Shove should be legal")
	}
	if ms.MinTotal != 100 || ms.MaxTotal != 100 {
		t.Errorf("Enforced range should collapse to the shove: [%d,%d]", ms.MinTotal, ms.MaxTotal)
	}
	if eng.MinRaise() != 160 {
		t.Errorf("Advisory minimum should ignore the stack: got %d, want 160", eng.MinRaise())
	}
	if eng.MinRaise() <= ms.MaxTotal {
		t.Error("Expected the advisory minimum to exceed the enforceable maximum")
	}
}

// Random legal play across many hands must conserve chips and never hit a
// rules-engine defect.
func TestChipConservationUnderRandomPlay(t *testing.T) {
	t.Parallel()
	cfg := Config{Seats: 4, Buyin: 200, SmallBlind: 5, BigBlind: 10}
	rng := randutil.New(99)
	eng, err := NewEngine(cfg, randutil.New(7), log.New(io.Discard))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	for hand := 0; hand < 50 && eng.IsGameRunning(); hand++ {
		if err := eng.StartHand(); err != nil {
			t.Fatalf("Hand %d: StartHand: %v", hand, err)
		}

		for eng.IsHandRunning() {
			seat, ok := eng.CurrentPlayer()
			if !ok {
				t.Fatalf("Hand %d: running with no decision pending", hand)
			}
			ms := eng.AvailableMoves()
			if ms.Empty() {
				t.Fatalf("Hand %d: no legal moves for seat %d", hand, seat)
			}

			var move Move
			switch roll := rng.IntN(10); {
			case roll == 0 && ms.Has(Fold):
				move = Move{Kind: Fold}
			case roll <= 2 && ms.Has(Raise):
				move = Move{Kind: Raise, Amount: ms.MinTotal + rng.IntN(ms.MaxTotal-ms.MinTotal+1)}
			case ms.Has(Check):
				move = Move{Kind: Check}
			case ms.Has(Call):
				move = Move{Kind: Call}
			default:
				move = Move{Kind: Fold}
			}

			if !eng.ValidateMove(seat, move) {
				t.Fatalf("Hand %d: generated illegal move %v for seat %d", hand, move, seat)
			}
			if err := eng.TakeAction(move); err != nil {
				t.Fatalf("Hand %d: TakeAction(%v): %v", hand, move, err)
			}
		}

		total := 0
		for seat := 0; seat < eng.Seats(); seat++ {
			total += eng.Chips(seat)
		}
		if total != 800 {
			t.Fatalf("Hand %d: chips not conserved: %d", hand, total)
		}
	}

	if !eng.IsGameRunning() {
		if err := eng.StartHand(); err == nil {
			t.Error("StartHand should fail once fewer than two seats are solvent")
		}
	}
}
