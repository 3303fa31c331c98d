package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lox/holdem-arena/internal/holdem"
)

// Status is the session lifecycle state.
type Status string

const (
	StatusWaiting   Status = "WAITING"
	StatusRunning   Status = "RUNNING"
	StatusPaused    Status = "PAUSED" // hand done, waiting for advance
	StatusCompleted Status = "COMPLETED"
	StatusError     Status = "ERROR"
)

// Terminal reports whether the session can never run another hand.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// SeatState is the wire projection of a seat's standing in the current
// hand.
type SeatState string

const (
	SeatIn     SeatState = "IN"      // live, nothing owed
	SeatToCall SeatState = "TO_CALL" // live, owes chips to continue
	SeatAllIn  SeatState = "ALL_IN"
	SeatFolded SeatState = "FOLDED"
	SeatSkip   SeatState = "SKIP" // broke, sitting out
)

// SeatView is one seat on the wire. HoleCards is nil unless the viewer
// is entitled to them.
type SeatView struct {
	PlayerID  int           `json:"player_id"`
	Name      string        `json:"display_name"`
	Agent     string        `json:"agent"`
	Chips     int           `json:"chips"`
	Bet       int           `json:"bet"`
	State     SeatState     `json:"state"`
	HoleCards []holdem.Card `json:"hole_cards,omitempty"`
}

// PotView is one pot on the wire.
type PotView struct {
	PotID    int   `json:"pot_id"`
	Total    int   `json:"total"`
	Eligible []int `json:"eligible_players"`
}

// GameState is the full wire snapshot of one session at one revision.
type GameState struct {
	GameID         string        `json:"game_id"`
	Status         Status        `json:"status"`
	Phase          holdem.Phase  `json:"phase"`
	HandNumber     int           `json:"hand_number"`
	MaxHands       int           `json:"max_hands"`
	Revision       uint64        `json:"revision"`
	Board          []holdem.Card `json:"board"`
	Seats          []SeatView    `json:"seats"`
	Pots           []PotView     `json:"pots"`
	CurrentPlayer  *int          `json:"current_player,omitempty"`
	Actions        []string      `json:"available_actions"`
	MinRaiseAmount *int          `json:"min_raise_amount,omitempty"`
	MaxRaiseAmount *int          `json:"max_raise_amount,omitempty"`
	FinalRankings  []Ranking     `json:"final_rankings,omitempty"`
	DebugMode      bool          `json:"debug_mode"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// TotalChips sums pots and stacks, the quantity conserved across every
// applied action. Street bets are already folded into the live pot
// totals and must not be counted again.
func (gs *GameState) TotalChips() int {
	total := 0
	for _, p := range gs.Pots {
		total += p.Total
	}
	for _, s := range gs.Seats {
		total += s.Chips
	}
	return total
}

// String renders a compact one-line summary for logs.
func (gs *GameState) String() string {
	return fmt.Sprintf("game=%s status=%s phase=%s hand=%d/%d rev=%d",
		gs.GameID, gs.Status, gs.Phase, gs.HandNumber, gs.MaxHands, gs.Revision)
}

// Clone returns a deep copy safe to hand outside the session lock.
func (gs *GameState) Clone() *GameState {
	out := *gs
	out.Board = append([]holdem.Card(nil), gs.Board...)
	out.Seats = make([]SeatView, len(gs.Seats))
	for i, s := range gs.Seats {
		out.Seats[i] = s
		out.Seats[i].HoleCards = append([]holdem.Card(nil), s.HoleCards...)
	}
	out.Pots = make([]PotView, len(gs.Pots))
	for i, p := range gs.Pots {
		out.Pots[i] = p
		out.Pots[i].Eligible = append([]int(nil), p.Eligible...)
	}
	out.Actions = append([]string(nil), gs.Actions...)
	out.FinalRankings = append([]Ranking(nil), gs.FinalRankings...)
	if gs.CurrentPlayer != nil {
		cp := *gs.CurrentPlayer
		out.CurrentPlayer = &cp
	}
	if gs.MinRaiseAmount != nil {
		mr := *gs.MinRaiseAmount
		out.MinRaiseAmount = &mr
	}
	if gs.MaxRaiseAmount != nil {
		mr := *gs.MaxRaiseAmount
		out.MaxRaiseAmount = &mr
	}
	return &out
}

// MarshalJSON keeps empty slices as [] rather than null on the wire.
func (gs *GameState) MarshalJSON() ([]byte, error) {
	type alias GameState
	out := (*alias)(gs.Clone())
	if out.Board == nil {
		out.Board = []holdem.Card{}
	}
	if out.Pots == nil {
		out.Pots = []PotView{}
	}
	if out.Actions == nil {
		out.Actions = []string{}
	}
	return json.Marshal(out)
}
