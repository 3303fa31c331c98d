package session

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/semaphore"

	"github.com/lox/holdem-arena/internal/agent"
	"github.com/lox/holdem-arena/internal/gameid"
	"github.com/lox/holdem-arena/internal/llm"
)

// DefaultMaxGames caps concurrent sessions per process.
const DefaultMaxGames = 100

// DefaultEndGrace keeps ended sessions addressable long enough for a
// final snapshot read.
const DefaultEndGrace = 60 * time.Second

// RegistryConfig tunes the process-wide session directory.
type RegistryConfig struct {
	MaxGames int
	EndGrace time.Duration
}

// Registry is the directory of live sessions. Its lock covers directory
// operations only, never hand progress.
type Registry struct {
	cfg      RegistryConfig
	gateway  llm.Gateway
	recorder HandRecorder
	clock    quartz.Clock
	logger   *log.Logger
	slots    *semaphore.Weighted

	mu       sync.RWMutex
	sessions map[gameid.ID]*Session
	closed   bool
}

// NewRegistry constructs an empty registry. gateway and recorder may be
// nil, disabling LLM seats and history respectively.
func NewRegistry(cfg RegistryConfig, gateway llm.Gateway, recorder HandRecorder, clock quartz.Clock, logger *log.Logger) *Registry {
	if cfg.MaxGames <= 0 {
		cfg.MaxGames = DefaultMaxGames
	}
	if cfg.EndGrace < 0 {
		cfg.EndGrace = DefaultEndGrace
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Registry{
		cfg:      cfg,
		gateway:  gateway,
		recorder: recorder,
		clock:    clock,
		logger:   logger.WithPrefix("registry"),
		slots:    semaphore.NewWeighted(int64(cfg.MaxGames)),
		sessions: make(map[gameid.ID]*Session),
	}
}

// Create validates the config, mints an id and starts a session.
// Returns ErrOverloaded at the concurrency cap.
func (r *Registry) Create(cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !r.slots.TryAcquire(1) {
		return nil, ErrOverloaded
	}

	id := gameid.New()
	s, err := New(id, cfg, Options{
		Gateway:  r.gateway,
		Clock:    r.clock,
		Logger:   r.logger,
		Recorder: r.recorder,
	})
	if err != nil {
		r.slots.Release(1)
		return nil, err
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		s.End()
		r.slots.Release(1)
		return nil, ErrSessionTerminal
	}
	r.sessions[id] = s
	count := len(r.sessions)
	r.mu.Unlock()

	r.logger.Info("game created", "game", id, "active", count)

	// Sessions that end on their own (hand budget, bust-outs) still need
	// their directory entry reaped after the grace period.
	go func() {
		<-s.Done()
		r.scheduleRemoval(id)
	}()
	return s, nil
}

// Get looks a session up by id.
func (r *Registry) Get(id gameid.ID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return s, nil
}

// End terminates a session and returns its final rankings. The entry
// stays readable for the grace period.
func (r *Registry) End(id gameid.ID) ([]Ranking, error) {
	s, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return s.End(), nil
}

// scheduleRemoval reaps the directory entry after the grace period.
// Idempotent per id: only the first removal releases the slot.
func (r *Registry) scheduleRemoval(id gameid.ID) {
	r.clock.AfterFunc(r.cfg.EndGrace, func() {
		r.mu.Lock()
		_, ok := r.sessions[id]
		if ok {
			delete(r.sessions, id)
		}
		r.mu.Unlock()
		if ok {
			r.slots.Release(1)
			r.logger.Debug("game reaped", "game", id)
		}
	})
}

// List returns snapshots of every live session, newest-last by id.
func (r *Registry) List() []*GameState {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	out := make([]*GameState, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Snapshot())
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].GameID < out[i].GameID {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

// ListAgents returns the agent catalog. LLM entries are marked
// unavailable when no gateway is configured, since Create would reject
// such seats anyway.
func (r *Registry) ListAgents() []agent.Descriptor {
	out := agent.Catalog()
	if r.gateway == nil {
		for i := range out {
			if out[i].Kind == agent.KindLLM {
				out[i].Available = false
			}
		}
	}
	return out
}

// Len reports live sessions, including those in their end grace.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close ends every session and stops accepting new ones.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.End()
	}
	r.logger.Info("registry closed", "ended", len(sessions))
	return nil
}
