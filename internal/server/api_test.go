package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-arena/internal/session"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestServer(t *testing.T, mutate ...func(*Config)) *Server {
	t.Helper()
	cfg := DefaultConfig()
	cfg.LLM.APIKeyEnv = "ARENA_TEST_NO_SUCH_KEY"
	for _, m := range mutate {
		m(cfg)
	}
	s, err := New(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s
}

func newTestAPI(t *testing.T, mutate ...func(*Config)) *httptest.Server {
	t.Helper()
	s := newTestServer(t, mutate...)
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return ts
}

func request(t *testing.T, method, url string, body any) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func createGame(t *testing.T, ts *httptest.Server, body any) session.GameState {
	t.Helper()
	status, data := request(t, http.MethodPost, ts.URL+"/api/games", body)
	require.Equal(t, http.StatusCreated, status, string(data))
	var state session.GameState
	require.NoError(t, json.Unmarshal(data, &state))
	require.NotEmpty(t, state.GameID)
	return state
}

func getGame(t *testing.T, ts *httptest.Server, gameID string) session.GameState {
	t.Helper()
	status, data := request(t, http.MethodGet, ts.URL+"/api/games/"+gameID, nil)
	require.Equal(t, http.StatusOK, status, string(data))
	var state session.GameState
	require.NoError(t, json.Unmarshal(data, &state))
	return state
}

// pollGame re-fetches a game until cond holds.
func pollGame(t *testing.T, ts *httptest.Server, gameID string, cond func(session.GameState) bool, msg string) session.GameState {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		state := getGame(t, ts, gameID)
		if cond(state) {
			return state
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
	return session.GameState{}
}

func humanSeats(n int) []seatPayload {
	seats := make([]seatPayload, n)
	for i := range seats {
		seats[i] = seatPayload{Kind: "human"}
	}
	return seats
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestAPI(t)
	status, data := request(t, http.MethodGet, ts.URL+"/healthz", nil)
	require.Equal(t, http.StatusOK, status)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "ok", body["status"])
}

func TestListAgents(t *testing.T) {
	ts := newTestAPI(t)
	status, data := request(t, http.MethodGet, ts.URL+"/api/agents", nil)
	require.Equal(t, http.StatusOK, status)

	var agents []struct {
		ID        string `json:"id"`
		Kind      string `json:"kind"`
		Available bool   `json:"available"`
	}
	require.NoError(t, json.Unmarshal(data, &agents))
	assert.GreaterOrEqual(t, len(agents), 8)

	// The test server has no LLM API key, so llm entries report
	// unavailable while rule and human seats stay usable.
	for _, a := range agents {
		if a.Kind == "llm" {
			assert.False(t, a.Available, "llm agent %s", a.ID)
		} else {
			assert.True(t, a.Available, "agent %s", a.ID)
		}
	}
}

func TestListPresets(t *testing.T) {
	ts := newTestAPI(t)
	status, data := request(t, http.MethodGet, ts.URL+"/api/presets", nil)
	require.Equal(t, http.StatusOK, status)

	var presets []struct {
		Name  string        `json:"name"`
		Seats []seatPayload `json:"seats"`
	}
	require.NoError(t, json.Unmarshal(data, &presets))

	names := make(map[string]int)
	for _, p := range presets {
		names[p.Name] = len(p.Seats)
	}
	assert.Equal(t, 2, names["test"])
	assert.Equal(t, 6, names["balanced"])
	assert.Equal(t, 2, names["human_vs_llm"])
}

func TestCreateGameFromPreset(t *testing.T) {
	ts := newTestAPI(t)
	state := createGame(t, ts, createGameRequest{Preset: "test", Seed: 7})

	assert.Len(t, state.Seats, 2)
	assert.Equal(t, 10, state.MaxHands)
}

func TestCreateGameExplicitSeats(t *testing.T) {
	ts := newTestAPI(t)
	state := createGame(t, ts, createGameRequest{
		Seats:    humanSeats(2),
		Buyin:    750,
		MaxHands: 1,
	})

	assert.Equal(t, session.StatusWaiting, state.Status)
	require.Len(t, state.Seats, 2)
	for _, seat := range state.Seats {
		assert.Equal(t, 750, seat.Chips)
	}
}

func TestCreateGameExplicitSeatsReplacePreset(t *testing.T) {
	ts := newTestAPI(t)
	state := createGame(t, ts, createGameRequest{
		Preset: "balanced",
		Seats:  humanSeats(2),
	})
	// Two human seats, not the six-bot lineup.
	assert.Len(t, state.Seats, 2)
	assert.Equal(t, session.StatusWaiting, state.Status)
}

func TestCreateGameRejections(t *testing.T) {
	ts := newTestAPI(t)

	cases := []struct {
		name string
		body any
		want int
	}{
		{"unknown preset", createGameRequest{Preset: "nope"}, http.StatusBadRequest},
		{"too few seats", createGameRequest{Seats: humanSeats(1)}, http.StatusBadRequest},
		{"too many seats", createGameRequest{Seats: humanSeats(10)}, http.StatusBadRequest},
		{"model seats without gateway", createGameRequest{Seats: []seatPayload{
			{Kind: "llm", Model: "gpt-4o-mini"},
			{Kind: "rule", Rule: "call"},
		}}, http.StatusBadRequest},
		{"malformed body", "not an object", http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, data := request(t, http.MethodPost, ts.URL+"/api/games", tc.body)
			assert.Equal(t, tc.want, status, string(data))
		})
	}
}

func TestGameNotFound(t *testing.T) {
	ts := newTestAPI(t)

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/games/nope"},
		{http.MethodDelete, "/api/games/nope"},
		{http.MethodPost, "/api/games/nope/advance"},
		{http.MethodGet, "/api/games/nope/history"},
	} {
		status, _ := request(t, route.method, ts.URL+route.path, nil)
		assert.Equal(t, http.StatusNotFound, status, "%s %s", route.method, route.path)
	}

	status, _ := request(t, http.MethodPost, ts.URL+"/api/games/nope/actions",
		actionRequest{PlayerID: 0, Action: "fold"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestListGames(t *testing.T) {
	ts := newTestAPI(t)

	a := createGame(t, ts, createGameRequest{Seats: humanSeats(2)})
	b := createGame(t, ts, createGameRequest{Seats: humanSeats(3)})

	status, data := request(t, http.MethodGet, ts.URL+"/api/games", nil)
	require.Equal(t, http.StatusOK, status)

	var games []session.GameState
	require.NoError(t, json.Unmarshal(data, &games))
	require.Len(t, games, 2)

	ids := map[string]bool{games[0].GameID: true, games[1].GameID: true}
	assert.True(t, ids[a.GameID])
	assert.True(t, ids[b.GameID])
}

func TestActionFlow(t *testing.T) {
	ts := newTestAPI(t)
	state := createGame(t, ts, createGameRequest{
		Seats:     humanSeats(2),
		MaxHands:  1,
		AutoStart: true,
		Seed:      1,
	})
	id := state.GameID

	state = pollGame(t, ts, id, func(s session.GameState) bool {
		return s.CurrentPlayer != nil
	}, "first turn")
	actor := *state.CurrentPlayer

	// Heads-up: the button posts the small blind and acts first.
	assert.Equal(t, 0, actor)

	t.Run("out of turn", func(t *testing.T) {
		status, data := request(t, http.MethodPost, ts.URL+"/api/games/"+id+"/actions",
			actionRequest{PlayerID: 1, Action: "fold"})
		assert.Equal(t, http.StatusConflict, status, string(data))
	})

	t.Run("unknown action", func(t *testing.T) {
		status, _ := request(t, http.MethodPost, ts.URL+"/api/games/"+id+"/actions",
			actionRequest{PlayerID: actor, Action: "jump"})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("raise above stack", func(t *testing.T) {
		status, _ := request(t, http.MethodPost, ts.URL+"/api/games/"+id+"/actions",
			actionRequest{PlayerID: actor, Action: "raise", Amount: 100000})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	status, data := request(t, http.MethodPost, ts.URL+"/api/games/"+id+"/actions",
		actionRequest{PlayerID: actor, Action: "fold"})
	require.Equal(t, http.StatusOK, status, string(data))

	state = pollGame(t, ts, id, func(s session.GameState) bool {
		return s.Status == session.StatusCompleted
	}, "game completion")

	// Button folded its small blind to the big blind.
	assert.Equal(t, 990, state.Seats[0].Chips)
	assert.Equal(t, 1010, state.Seats[1].Chips)
	require.Len(t, state.FinalRankings, 2)
	assert.Equal(t, 1, state.FinalRankings[0].PlayerID)
}

func TestAdvanceStartsWaitingGame(t *testing.T) {
	ts := newTestAPI(t)
	state := createGame(t, ts, createGameRequest{
		Seats:    humanSeats(2),
		MaxHands: 2,
		Seed:     1,
	})
	id := state.GameID
	require.Equal(t, session.StatusWaiting, state.Status)

	status, data := request(t, http.MethodPost, ts.URL+"/api/games/"+id+"/advance", nil)
	require.Equal(t, http.StatusOK, status, string(data))

	state = pollGame(t, ts, id, func(s session.GameState) bool {
		return s.CurrentPlayer != nil
	}, "first turn after advance")

	// Advancing mid-hand is a conflict.
	status, _ = request(t, http.MethodPost, ts.URL+"/api/games/"+id+"/advance", nil)
	assert.Equal(t, http.StatusConflict, status)
}

func TestEndGame(t *testing.T) {
	ts := newTestAPI(t)
	state := createGame(t, ts, createGameRequest{Seats: humanSeats(2)})
	id := state.GameID

	status, data := request(t, http.MethodDelete, ts.URL+"/api/games/"+id, nil)
	require.Equal(t, http.StatusOK, status, string(data))

	var body struct {
		GameID        string            `json:"game_id"`
		Status        session.Status    `json:"status"`
		FinalRankings []session.Ranking `json:"final_rankings"`
	}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, id, body.GameID)
	assert.Equal(t, session.StatusCompleted, body.Status)
	assert.Len(t, body.FinalRankings, 2)

	// Readable during the removal grace period.
	state = getGame(t, ts, id)
	assert.Equal(t, session.StatusCompleted, state.Status)

	// Actions against an ended game are gone.
	status, _ = request(t, http.MethodPost, ts.URL+"/api/games/"+id+"/actions",
		actionRequest{PlayerID: 0, Action: "fold"})
	assert.Equal(t, http.StatusGone, status)
}

func TestCapacityLimit(t *testing.T) {
	ts := newTestAPI(t, func(cfg *Config) {
		cfg.Games.MaxConcurrent = 1
	})

	createGame(t, ts, createGameRequest{Seats: humanSeats(2)})

	status, data := request(t, http.MethodPost, ts.URL+"/api/games",
		createGameRequest{Seats: humanSeats(2)})
	assert.Equal(t, http.StatusServiceUnavailable, status, string(data))
}

func TestHistoryEndpoint(t *testing.T) {
	ts := newTestAPI(t)
	state := createGame(t, ts, createGameRequest{Preset: "test", Seed: 11})
	id := state.GameID

	pollGame(t, ts, id, func(s session.GameState) bool {
		return s.Status == session.StatusCompleted
	}, "bots to finish")

	type historyResponse struct {
		GameID string               `json:"game_id"`
		Hands  []session.HandRecord `json:"hands"`
	}

	status, data := request(t, http.MethodGet, ts.URL+"/api/games/"+id+"/history", nil)
	require.Equal(t, http.StatusOK, status, string(data))

	var body historyResponse
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, id, body.GameID)
	require.Len(t, body.Hands, 10)
	assert.Equal(t, 1, body.Hands[0].HandNumber)

	status, data = request(t, http.MethodGet, ts.URL+"/api/games/"+id+"/history?limit=3", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Len(t, body.Hands, 3)

	status, _ = request(t, http.MethodGet, ts.URL+"/api/games/"+id+"/history?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
