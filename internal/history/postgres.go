package history

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lox/holdem-arena/internal/session"
)

//go:embed schema.sql
var schema string

// PostgresRecorder persists settled hands into Postgres, one row per
// hand with the full record as JSONB.
type PostgresRecorder struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// OpenPostgres connects, verifies the connection and applies the
// schema.
func OpenPostgres(ctx context.Context, dsn string, logger *log.Logger) (*PostgresRecorder, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &PostgresRecorder{pool: pool, logger: logger.WithPrefix("history")}, nil
}

// RecordHand inserts the hand. Replays of the same hand are ignored.
func (r *PostgresRecorder) RecordHand(ctx context.Context, rec session.HandRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding hand %d: %w", rec.HandNumber, err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO hands (game_id, hand_number, settled_at, settlement, pot_total, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (game_id, hand_number) DO NOTHING
	`, rec.GameID, rec.HandNumber, rec.SettledAt, rec.Settlement, rec.PotTotal, payload)
	if err != nil {
		return fmt.Errorf("inserting hand %d: %w", rec.HandNumber, err)
	}
	return nil
}

// Hands returns a game's recorded hands in hand-number order.
func (r *PostgresRecorder) Hands(ctx context.Context, gameID string, limit int) ([]session.HandRecord, error) {
	query := `SELECT payload FROM hands WHERE game_id = $1 ORDER BY hand_number`
	args := []any{gameID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying hands: %w", err)
	}
	defer rows.Close()

	var out []session.HandRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning hand: %w", err)
		}
		var rec session.HandRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("decoding hand: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close releases the connection pool.
func (r *PostgresRecorder) Close() {
	r.pool.Close()
}
