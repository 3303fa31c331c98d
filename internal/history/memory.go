package history

import (
	"context"
	"sync"

	"github.com/lox/holdem-arena/internal/session"
)

// DefaultHandsPerGame bounds the retained tail per game.
const DefaultHandsPerGame = 100

// DefaultMemoryGames bounds the number of games retained at once.
const DefaultMemoryGames = 256

// MemoryRecorder keeps a bounded per-game tail of settled hands. It is
// the store the REST history endpoint reads from; durable sinks hang
// off the same fan-out.
type MemoryRecorder struct {
	handsPerGame int
	maxGames     int

	mu    sync.RWMutex
	games map[string][]session.HandRecord
	order []string // insertion order, for whole-game eviction
}

// NewMemoryRecorder creates a recorder retaining up to handsPerGame
// hands for up to maxGames games. Non-positive values take defaults.
func NewMemoryRecorder(handsPerGame, maxGames int) *MemoryRecorder {
	if handsPerGame <= 0 {
		handsPerGame = DefaultHandsPerGame
	}
	if maxGames <= 0 {
		maxGames = DefaultMemoryGames
	}
	return &MemoryRecorder{
		handsPerGame: handsPerGame,
		maxGames:     maxGames,
		games:        make(map[string][]session.HandRecord),
	}
}

// RecordHand appends the hand to its game's tail, evicting the oldest
// hand of the game, or the oldest whole game, at the caps.
func (r *MemoryRecorder) RecordHand(_ context.Context, rec session.HandRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.games[rec.GameID]; !ok {
		if len(r.order) >= r.maxGames {
			oldest := r.order[0]
			r.order = r.order[1:]
			delete(r.games, oldest)
		}
		r.order = append(r.order, rec.GameID)
	}

	tail := append(r.games[rec.GameID], rec)
	if len(tail) > r.handsPerGame {
		tail = tail[len(tail)-r.handsPerGame:]
	}
	r.games[rec.GameID] = tail
	return nil
}

// Hands returns the retained tail for a game, oldest first.
func (r *MemoryRecorder) Hands(_ context.Context, gameID string, limit int) ([]session.HandRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tail := r.games[gameID]
	if limit > 0 && len(tail) > limit {
		tail = tail[len(tail)-limit:]
	}
	return append([]session.HandRecord(nil), tail...), nil
}

// Drop discards a game's retained hands.
func (r *MemoryRecorder) Drop(gameID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[gameID]; !ok {
		return
	}
	delete(r.games, gameID)
	for i, id := range r.order {
		if id == gameID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Len reports the number of games currently retained.
func (r *MemoryRecorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}
