// Package analysis derives decision signals from table state: hand
// strength, pot odds and position. Everything here is a pure function so
// rule bots and prompt building can share one implementation.
package analysis

import (
	"github.com/lox/holdem-arena/internal/holdem"
)

// Strength scores a hand in [0,1], 1 being the nuts. Postflop it is the
// percentile of the best five-card hand across the 7462 equivalence
// classes. Preflop it falls back to a hole-card heuristic: pocket pairs
// scale with rank, unpaired hands score on high cards with suited and
// connector bonuses.
func Strength(hole, board []holdem.Card) float64 {
	if len(hole) != 2 {
		return 0
	}
	if len(board) == 0 {
		return preflopStrength(hole[0], hole[1])
	}

	cards := make([]holdem.Card, 0, len(hole)+len(board))
	cards = append(cards, hole...)
	cards = append(cards, board...)
	rank := holdem.Evaluate(cards)

	strength := 1.0 - float64(rank-1)/float64(holdem.WorstHandRank-1)
	return clamp01(strength)
}

func preflopStrength(a, b holdem.Card) float64 {
	high, low := a.Rank, b.Rank
	if low > high {
		high, low = low, high
	}

	if high == low {
		// 22 scores 0.50, aces 0.95.
		return 0.50 + 0.45*rankScale(high)
	}

	s := 0.10 + 0.25*rankScale(high) + 0.15*rankScale(low)
	if a.Suit == b.Suit {
		s += 0.05
	}
	switch high - low {
	case 1:
		s += 0.04
	case 2:
		s += 0.02
	}
	return clamp01(s)
}

// rankScale maps Two..Ace onto [0,1].
func rankScale(r holdem.Rank) float64 {
	return float64(r-holdem.Two) / float64(holdem.Ace-holdem.Two)
}

// PotOdds returns chipsToCall / (pot + chipsToCall), the share of the
// final pot the caller is buying in for. ok is false when there is
// nothing to call, where the ratio is meaningless.
func PotOdds(chipsToCall, pot int) (float64, bool) {
	if chipsToCall <= 0 {
		return 0, false
	}
	if pot < 0 {
		pot = 0
	}
	return float64(chipsToCall) / float64(pot+chipsToCall), true
}

// Position buckets a seat by its distance from the button.
type Position int

const (
	Early Position = iota
	Middle
	Late
)

func (p Position) String() string {
	switch p {
	case Early:
		return "Early"
	case Middle:
		return "Middle"
	case Late:
		return "Late"
	default:
		return "Unknown"
	}
}

// PositionOf returns the seat's position bucket at a table of the given
// size: thirds of the action order starting left of the button.
func PositionOf(seat, button, seats int) Position {
	if seats <= 0 {
		return Early
	}
	idx := ((seat-button-1)%seats + seats) % seats
	switch 3 * idx / seats {
	case 0:
		return Early
	case 1:
		return Middle
	default:
		return Late
	}
}

// RankLabel names the best five-card hand for display, empty preflop.
func RankLabel(hole, board []holdem.Card) string {
	if len(hole) != 2 || len(board) == 0 {
		return ""
	}
	cards := make([]holdem.Card, 0, len(hole)+len(board))
	cards = append(cards, hole...)
	cards = append(cards, board...)
	return holdem.RankName(holdem.Evaluate(cards))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
