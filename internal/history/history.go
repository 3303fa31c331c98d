// Package history persists settled hands. Recorders are sinks behind
// session.HandRecorder; the in-memory recorder doubles as the read
// store the API serves hand history from.
package history

import (
	"context"

	"github.com/lox/holdem-arena/internal/session"
)

// Store serves recorded hands back to read paths.
type Store interface {
	session.HandRecorder

	// Hands returns a game's settled hands in hand-number order. A
	// non-positive limit returns everything retained.
	Hands(ctx context.Context, gameID string, limit int) ([]session.HandRecord, error)
}
