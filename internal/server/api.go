package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lox/holdem-arena/internal/gameid"
	"github.com/lox/holdem-arena/internal/holdem"
	"github.com/lox/holdem-arena/internal/session"
)

// Router builds the HTTP surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/agents", s.handleListAgents)
		r.Get("/presets", s.handleListPresets)

		r.Route("/games", func(r chi.Router) {
			r.Post("/", s.handleCreateGame)
			r.Get("/", s.handleListGames)

			r.Route("/{gameID}", func(r chi.Router) {
				r.Get("/", s.handleGetGame)
				r.Delete("/", s.handleEndGame)
				r.Post("/actions", s.handleAction)
				r.Post("/advance", s.handleAdvance)
				r.Get("/history", s.handleHistory)
				r.Get("/ws", s.handleWebSocket)
			})
		})
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

// seatPayload is a seat on the wire, flattened from the session spec.
type seatPayload struct {
	Name        string `json:"name,omitempty"`
	Kind        string `json:"kind"`
	Rule        string `json:"rule,omitempty"`
	Model       string `json:"model,omitempty"`
	Personality string `json:"personality,omitempty"`
}

type createGameRequest struct {
	Preset             string        `json:"preset,omitempty"`
	Seats              []seatPayload `json:"seats,omitempty"`
	Buyin              int           `json:"buyin,omitempty"`
	SmallBlind         int           `json:"small_blind,omitempty"`
	BigBlind           int           `json:"big_blind,omitempty"`
	MaxHands           int           `json:"max_hands,omitempty"`
	DebugMode          bool          `json:"debug_mode,omitempty"`
	AutoStart          bool          `json:"auto_start,omitempty"`
	Seed               int64         `json:"seed,omitempty"`
	TurnTimeoutSeconds *int          `json:"turn_timeout_seconds,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"games":  s.registry.Len(),
	})
}

func (s *Server) handleListAgents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.ListAgents())
}

func (s *Server) handleListPresets(w http.ResponseWriter, _ *http.Request) {
	type presetSummary struct {
		Name        string        `json:"name"`
		Description string        `json:"description,omitempty"`
		Seats       []seatPayload `json:"seats"`
		MaxHands    int           `json:"max_hands,omitempty"`
	}
	out := make([]presetSummary, 0, len(s.catalog))
	for _, p := range s.catalog {
		summary := presetSummary{Name: p.Name, Description: p.Description, MaxHands: p.MaxHands}
		for _, seat := range p.Seats {
			summary.Seats = append(summary.Seats, seatPayload{
				Name:        seat.Name,
				Kind:        seat.Kind,
				Rule:        seat.Rule,
				Model:       seat.Model,
				Personality: seat.Personality,
			})
		}
		out = append(out, summary)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	cfg, err := s.sessionConfig(req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	game, err := s.registry.Create(cfg)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, game.Snapshot())
}

// sessionConfig resolves a creation request against the preset catalog
// and the configured table defaults.
func (s *Server) sessionConfig(req createGameRequest) (session.Config, error) {
	cfg := session.Config{
		Buyin:       s.cfg.Games.DefaultBuyin,
		SmallBlind:  s.cfg.Games.DefaultSmallBlind,
		BigBlind:    s.cfg.Games.DefaultBigBlind,
		MaxHands:    s.cfg.Games.DefaultMaxHands,
		Seed:        s.cfg.Games.DefaultSeed,
		TurnTimeout: s.cfg.TurnTimeout(),
		LLMTimeout:  s.cfg.LLMTimeout(),
	}

	if req.Preset != "" {
		preset, ok := findPreset(s.catalog, req.Preset)
		if !ok {
			return session.Config{}, &session.InvalidActionError{Reason: "unknown preset " + strconv.Quote(req.Preset)}
		}
		for _, seat := range preset.Seats {
			cfg.Seats = append(cfg.Seats, session.SeatConfig{Name: seat.Name, Spec: seat.Spec()})
		}
		if preset.Buyin > 0 {
			cfg.Buyin = preset.Buyin
		}
		if preset.SmallBlind > 0 {
			cfg.SmallBlind = preset.SmallBlind
		}
		if preset.BigBlind > 0 {
			cfg.BigBlind = preset.BigBlind
		}
		if preset.MaxHands > 0 {
			cfg.MaxHands = preset.MaxHands
		}
		cfg.DebugMode = preset.DebugMode
		cfg.AutoStart = preset.AutoStart
	}

	// Explicit seats replace the preset lineup entirely.
	if len(req.Seats) > 0 {
		cfg.Seats = nil
		for _, seat := range req.Seats {
			cfg.Seats = append(cfg.Seats, session.SeatConfig{
				Name: seat.Name,
				Spec: SeatConfig{
					Kind:        seat.Kind,
					Rule:        seat.Rule,
					Model:       seat.Model,
					Personality: seat.Personality,
				}.Spec(),
			})
		}
	}

	if req.Buyin > 0 {
		cfg.Buyin = req.Buyin
	}
	if req.SmallBlind > 0 {
		cfg.SmallBlind = req.SmallBlind
	}
	if req.BigBlind > 0 {
		cfg.BigBlind = req.BigBlind
	}
	if req.MaxHands > 0 {
		cfg.MaxHands = req.MaxHands
	}
	if req.DebugMode {
		cfg.DebugMode = true
	}
	if req.AutoStart {
		cfg.AutoStart = true
	}
	if req.Seed != 0 {
		cfg.Seed = req.Seed
	}
	if req.TurnTimeoutSeconds != nil {
		cfg.TurnTimeout = time.Duration(*req.TurnTimeoutSeconds) * time.Second
	}
	return cfg, nil
}

func (s *Server) handleListGames(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.List())
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game, err := s.lookupGame(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game.Snapshot())
}

func (s *Server) handleEndGame(w http.ResponseWriter, r *http.Request) {
	game, err := s.lookupGame(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	rankings := game.End()
	writeJSON(w, http.StatusOK, map[string]any{
		"game_id":        game.ID().String(),
		"status":         game.Status(),
		"final_rankings": rankings,
	})
}

type actionRequest struct {
	PlayerID int    `json:"player_id"`
	Action   string `json:"action"`
	Amount   int    `json:"amount,omitempty"`
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	game, err := s.lookupGame(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	kind, ok := holdem.ParseMoveKind(req.Action)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown action " + strconv.Quote(req.Action)})
		return
	}

	if err := game.ProposeAction(req.PlayerID, kind, req.Amount); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game.Snapshot())
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	game, err := s.lookupGame(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := game.Advance(); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game.Snapshot())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	game, err := s.lookupGame(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
			return
		}
	}

	hands, err := s.store.Hands(r.Context(), game.ID().String(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if hands == nil {
		hands = []session.HandRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"game_id": game.ID().String(),
		"hands":   hands,
	})
}

func (s *Server) lookupGame(r *http.Request) (*session.Session, error) {
	id, err := gameid.Parse(chi.URLParam(r, "gameID"))
	if err != nil {
		return nil, session.ErrGameNotFound
	}
	return s.registry.Get(id)
}

// writeError maps session errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var invalid *session.InvalidActionError
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrGameNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrOutOfTurn), errors.Is(err, session.ErrNotReady):
		status = http.StatusConflict
	case errors.Is(err, session.ErrSessionTerminal):
		status = http.StatusGone
	case errors.Is(err, session.ErrOverloaded):
		status = http.StatusServiceUnavailable
	case errors.Is(err, session.ErrInvalidConfig), errors.As(err, &invalid):
		status = http.StatusBadRequest
	default:
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
