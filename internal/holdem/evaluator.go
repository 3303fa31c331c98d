package holdem

import (
	"github.com/chehsunliu/poker"
)

// WorstHandRank is the weakest 5-card equivalence class. Evaluator ranks
// run 1 (royal flush) through 7462, lower is stronger.
const WorstHandRank = 7462

// Evaluate ranks the best five-card hand from the given cards (5, 6 or 7).
func Evaluate(cards []Card) int32 {
	converted := make([]poker.Card, len(cards))
	for i, c := range cards {
		converted[i] = poker.NewCard(c.Notation())
	}
	return poker.Evaluate(converted)
}

// RankName describes an evaluator rank, e.g. "Full House".
func RankName(rank int32) string {
	return poker.RankString(rank)
}
