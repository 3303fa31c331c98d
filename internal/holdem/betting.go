package holdem

import (
	"encoding/json"
	"fmt"
)

// Phase is the hand lifecycle phase. PreHand and Settle bracket the four
// betting streets; the engine reports Settle from the moment a hand
// completes until the next deal.
type Phase int

const (
	PreHand Phase = iota
	PreFlop
	Flop
	Turn
	River
	Settle
)

func (p Phase) String() string {
	return [...]string{"PREHAND", "PREFLOP", "FLOP", "TURN", "RIVER", "SETTLE"}[p]
}

// Betting reports whether the phase is a betting street.
func (p Phase) Betting() bool {
	return p >= PreFlop && p <= River
}

// ParsePhase maps a symbolic phase name to its value.
func ParsePhase(s string) (Phase, bool) {
	for p := PreHand; p <= Settle; p++ {
		if p.String() == s {
			return p, true
		}
	}
	return 0, false
}

// MarshalJSON renders the phase as its symbolic name.
func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON parses a symbolic phase name.
func (p *Phase) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParsePhase(s)
	if !ok {
		return fmt.Errorf("unknown phase %q", s)
	}
	*p = parsed
	return nil
}

// MoveKind is a player action kind.
type MoveKind int

const (
	Fold MoveKind = iota
	Check
	Call
	Raise
)

func (k MoveKind) String() string {
	return [...]string{"FOLD", "CHECK", "CALL", "RAISE"}[k]
}

// ParseMoveKind maps a symbolic action name to its kind.
func ParseMoveKind(s string) (MoveKind, bool) {
	switch s {
	case "FOLD", "fold":
		return Fold, true
	case "CHECK", "check":
		return Check, true
	case "CALL", "call":
		return Call, true
	case "RAISE", "raise":
		return Raise, true
	}
	return 0, false
}

// MarshalJSON renders the kind as its symbolic name.
func (k MoveKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON parses a symbolic action name.
func (k *MoveKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParseMoveKind(s)
	if !ok {
		return fmt.Errorf("unknown action %q", s)
	}
	*k = parsed
	return nil
}

// Move is a concrete player action. For Raise, Amount is the player's new
// TOTAL bet for the current street, never the increment.
type Move struct {
	Kind   MoveKind
	Amount int
}

func (m Move) String() string {
	if m.Kind == Raise {
		return fmt.Sprintf("%s to %d", m.Kind, m.Amount)
	}
	return m.Kind.String()
}

// MoveSet is the legal action set for the seat to act, with the enforced
// raise range. MinTotal and MaxTotal are meaningful only when Raise is
// legal; MaxTotal is the actor's all-in street total.
type MoveSet struct {
	Kinds    []MoveKind
	MinTotal int
	MaxTotal int
}

// Has reports whether kind is legal.
func (ms MoveSet) Has(kind MoveKind) bool {
	for _, k := range ms.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Empty reports whether no action is legal (no seat to act).
func (ms MoveSet) Empty() bool {
	return len(ms.Kinds) == 0
}

// bettingState tracks one street of betting: the prevailing bet, the
// min-raise increment, and who still owes an action.
type bettingState struct {
	currentBet int
	minRaise   int // increment a full raise must add
	lastRaiser int
	bbSeat     int // big blind seat, for the preflop option
	bbActed    bool
	acted      []bool
	bigBlind   int
}

func newBettingState(numSeats, bigBlind, bbSeat int) *bettingState {
	return &bettingState{
		minRaise:   bigBlind,
		lastRaiser: -1,
		bbSeat:     bbSeat,
		acted:      make([]bool, numSeats),
		bigBlind:   bigBlind,
	}
}

func (bs *bettingState) resetForStreet(numSeats int) {
	bs.currentBet = 0
	bs.minRaise = bs.bigBlind
	bs.lastRaiser = -1
	bs.acted = make([]bool, numSeats)
	// bbActed persists; the option only exists preflop.
}

func (bs *bettingState) markActed(seat int) {
	if seat >= 0 && seat < len(bs.acted) {
		bs.acted[seat] = true
	}
}

// advisoryMinRaise is the raw minimum total for a full raise, ignoring the
// actor's stack. Known to exceed the enforceable maximum for short stacks;
// consumers wanting the real range must use MoveSet.
func (bs *bettingState) advisoryMinRaise() int {
	return bs.currentBet + bs.minRaise
}

// legalMoves computes the action set for a player.
func (bs *bettingState) legalMoves(p *Player) MoveSet {
	if !p.CanAct() {
		return MoveSet{}
	}

	ms := MoveSet{Kinds: []MoveKind{Fold}}
	toCall := bs.currentBet - p.Bet
	allInTotal := p.Bet + p.Chips

	if toCall <= 0 {
		ms.Kinds = append(ms.Kinds, Check)
	} else {
		ms.Kinds = append(ms.Kinds, Call)
	}

	// A raise is legal whenever the player can push their street total
	// above the prevailing bet. Short all-ins shrink the range to a
	// single point.
	if allInTotal > bs.currentBet {
		ms.Kinds = append(ms.Kinds, Raise)
		ms.MinTotal = min(bs.advisoryMinRaise(), allInTotal)
		ms.MaxTotal = allInTotal
	}

	return ms
}

// complete reports whether the street's betting is finished.
func (bs *bettingState) complete(players []*Player, phase Phase) bool {
	live := 0
	for _, p := range players {
		if p.CanAct() {
			live++
		}
	}

	if live == 0 {
		return true
	}

	if live == 1 {
		for _, p := range players {
			if p.CanAct() && p.Bet != bs.currentBet {
				return false
			}
		}
		return true
	}

	for i, p := range players {
		if !p.CanAct() {
			continue
		}
		if p.Bet != bs.currentBet || !bs.acted[i] {
			return false
		}
	}

	// Preflop the big blind keeps the option to raise an unraised pot.
	if phase == PreFlop && bs.lastRaiser == -1 {
		bb := players[bs.bbSeat]
		if bb.CanAct() && !bs.bbActed {
			return false
		}
	}

	return true
}
