// Package server exposes the arena over HTTP: a REST surface for game
// lifecycle and human actions, and a WebSocket stream per game fed from
// the session event bus.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/holdem-arena/internal/history"
	"github.com/lox/holdem-arena/internal/llm"
	"github.com/lox/holdem-arena/internal/session"
)

// Server wires the registry, history and transports together.
type Server struct {
	cfg      *Config
	logger   *log.Logger
	registry *session.Registry
	store    history.Store
	catalog  []PresetConfig
	upgrader websocket.Upgrader

	dir *history.DirRecorder
	pg  *history.PostgresRecorder

	http *http.Server
}

// New builds a server from configuration. The LLM gateway is only
// constructed when an API key is present; without one, games with model
// seats are rejected at creation.
func New(ctx context.Context, cfg *Config, logger *log.Logger) (*Server, error) {
	s := &Server{
		cfg:     cfg,
		logger:  logger.WithPrefix("server"),
		catalog: presetCatalog(cfg.Presets),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	var gateway llm.Gateway
	if key := os.Getenv(cfg.LLM.APIKeyEnv); key != "" {
		gateway = llm.NewOpenAIGateway(llm.OpenAIConfig{
			BaseURL: cfg.LLM.BaseURL,
			APIKey:  key,
		}, logger)
		s.logger.Info("llm gateway enabled", "base_url", cfg.LLM.BaseURL)
	} else {
		s.logger.Warn("no llm api key, model seats disabled", "env", cfg.LLM.APIKeyEnv)
	}

	memory := history.NewMemoryRecorder(cfg.History.MemoryHands, 0)
	s.store = memory
	sinks := []session.HandRecorder{memory}

	if cfg.History.Dir != "" {
		dir, err := history.NewDirRecorder(history.DirConfig{
			BaseDir:       cfg.History.Dir,
			FlushInterval: time.Duration(cfg.History.FlushIntervalSeconds) * time.Second,
		}, logger)
		if err != nil {
			return nil, err
		}
		s.dir = dir
		sinks = append(sinks, dir)
	}
	if cfg.History.PostgresDSN != "" {
		pg, err := history.OpenPostgres(ctx, cfg.History.PostgresDSN, logger)
		if err != nil {
			return nil, err
		}
		s.pg = pg
		sinks = append(sinks, pg)
	}

	s.registry = session.NewRegistry(session.RegistryConfig{
		MaxGames: cfg.Games.MaxConcurrent,
		EndGrace: time.Duration(cfg.Games.EndGraceSeconds) * time.Second,
	}, gateway, history.Multi(sinks...), nil, logger)

	s.http = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Registry exposes the session directory, for tests and tooling.
func (s *Server) Registry() *session.Registry { return s.registry }

// Start serves HTTP until ctx ends, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown stops the listener, ends every session and flushes history.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	if rerr := s.registry.Close(ctx); rerr != nil && err == nil {
		err = rerr
	}
	if s.dir != nil {
		s.dir.Shutdown()
	}
	if s.pg != nil {
		s.pg.Close()
	}
	s.logger.Info("server stopped")
	return err
}
