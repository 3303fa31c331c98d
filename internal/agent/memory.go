package agent

import (
	"github.com/lox/holdem-arena/internal/holdem"
)

// Record is one applied action as history and LLM memory see it.
type Record struct {
	PlayerID   int             `json:"player_id"`
	Phase      holdem.Phase    `json:"phase"`
	Kind       holdem.MoveKind `json:"action"`
	Amount     int             `json:"amount,omitempty"`
	Reasoning  string          `json:"reasoning,omitempty"`
	Confidence float64         `json:"confidence,omitempty"`
	PotBefore  int             `json:"pot_before"`
	ChipsAfter int             `json:"chips_after"`
}

// HandMemory is a seat's ordered log of its own applied actions within
// one hand. Created empty at the deal, discarded at settlement; it never
// carries information across hands or seats. Not safe for concurrent use;
// the session lock guards it.
type HandMemory struct {
	records []Record
}

func NewHandMemory() *HandMemory {
	return &HandMemory{}
}

// Remember appends an applied action.
func (m *HandMemory) Remember(r Record) {
	m.records = append(m.records, r)
}

// Records returns the full log in application order.
func (m *HandMemory) Records() []Record {
	return append([]Record(nil), m.records...)
}

// Recent returns up to n of the latest records, oldest first.
func (m *HandMemory) Recent(n int) []Record {
	if n <= 0 || len(m.records) == 0 {
		return nil
	}
	if n > len(m.records) {
		n = len(m.records)
	}
	return append([]Record(nil), m.records[len(m.records)-n:]...)
}

func (m *HandMemory) Len() int {
	return len(m.records)
}

// Reset clears the log for the next hand.
func (m *HandMemory) Reset() {
	m.records = m.records[:0]
}
