// Package session is the game-orchestration layer: one authoritative
// state machine per table that advances hands, solicits decisions from
// rule bots, LLM seats and humans, validates and applies actions,
// corrects the engine's phantom-chip defect at hand boundaries, and fans
// state deltas out to subscribers. A process-wide Registry owns the live
// sessions.
package session

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdem-arena/internal/agent"
	"github.com/lox/holdem-arena/internal/analysis"
	"github.com/lox/holdem-arena/internal/bot"
	"github.com/lox/holdem-arena/internal/gameid"
	"github.com/lox/holdem-arena/internal/holdem"
	"github.com/lox/holdem-arena/internal/llm"
	"github.com/lox/holdem-arena/internal/randutil"
)

// RulesEngine is the hold'em engine contract the orchestrator consumes.
// *holdem.Engine satisfies it; tests substitute scripted engines.
type RulesEngine interface {
	IsGameRunning() bool
	IsHandRunning() bool
	StartHand() error
	CurrentPlayer() (int, bool)
	HandPhase() holdem.Phase
	Board() []holdem.Card
	HandOf(seat int) []holdem.Card
	ChipsToCall(seat int) int
	MinRaise() int
	AvailableMoves() holdem.MoveSet
	ValidateMove(seat int, m holdem.Move) bool
	TakeAction(m holdem.Move) error
	Pots() []holdem.Pot
	Chips(seat int) int
	StreetBet(seat int) int
	Seats() int
	Button() int
	HandNumber() int
	Settlement() *holdem.Settlement
	Folded(seat int) bool
	AllIn(seat int) bool
}

// SeatConfig assigns an agent and a display name to one seat.
type SeatConfig struct {
	Name string         `json:"name,omitempty"`
	Spec agent.SeatSpec `json:"spec"`
}

// Config describes one session.
type Config struct {
	Seats       []SeatConfig
	Buyin       int
	SmallBlind  int
	BigBlind    int
	MaxHands    int
	DebugMode   bool
	AutoStart   bool // run immediately even with human seats
	Seed        int64
	TurnTimeout time.Duration // human decision clock, 0 waits forever
	LLMTimeout  time.Duration
	EventBuffer int
}

// DefaultLLMTimeout bounds one LLM decision.
const DefaultLLMTimeout = 30 * time.Second

// Validate checks the session parameters, wrapping failures in
// ErrInvalidConfig.
func (c Config) Validate() error {
	if len(c.Seats) < 2 || len(c.Seats) > 9 {
		return fmt.Errorf("%w: need 2-9 seats, got %d", ErrInvalidConfig, len(c.Seats))
	}
	for i, seat := range c.Seats {
		if err := seat.Spec.Validate(); err != nil {
			return fmt.Errorf("%w: seat %d: %v", ErrInvalidConfig, i, err)
		}
	}
	if c.MaxHands <= 0 {
		return fmt.Errorf("%w: max_hands must be positive, got %d", ErrInvalidConfig, c.MaxHands)
	}
	table := holdem.Config{
		Seats:      len(c.Seats),
		Buyin:      c.Buyin,
		SmallBlind: c.SmallBlind,
		BigBlind:   c.BigBlind,
	}
	if err := table.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// HasHumanSeats reports whether any seat is driven by propose_action.
func (c Config) HasHumanSeats() bool {
	for _, seat := range c.Seats {
		if seat.Spec.Kind == agent.KindHuman {
			return true
		}
	}
	return false
}

// WinnerShare is one seat's slice of a settled hand.
type WinnerShare struct {
	PlayerID int    `json:"player_id"`
	Amount   int    `json:"amount"`
	HandRank string `json:"hand_rank,omitempty"`
}

// HandRecord summarizes one completed hand for history recorders.
type HandRecord struct {
	GameID     string         `json:"game_id"`
	HandNumber int            `json:"hand_number"`
	StartedAt  time.Time      `json:"started_at"`
	SettledAt  time.Time      `json:"settled_at"`
	Board      []holdem.Card  `json:"board"`
	Actions    []agent.Record `json:"actions"`
	Winners    []WinnerShare  `json:"winners"`
	PotTotal   int            `json:"pot_total"`
	Chips      []int          `json:"chips"` // per-seat stacks after settle
	Settlement string         `json:"settlement"`
}

// HandRecorder receives completed hands. Implementations must not block
// the caller for long; failures are logged, never fatal.
type HandRecorder interface {
	RecordHand(ctx context.Context, rec HandRecord) error
}

// seatRunner is one seat's decision source.
type seatRunner struct {
	spec  agent.SeatSpec
	agent agent.Agent // nil for human seats
	label string
}

// Session drives one table. All mutable state sits behind mu; the run
// goroutine releases it across every external wait.
type Session struct {
	id       gameid.ID
	cfg      Config
	engine   RulesEngine
	runners  []seatRunner
	names    []string
	mailbox  map[int]*mailbox
	memories map[int]*agent.HandMemory
	bus      *Bus
	clock    quartz.Clock
	logger   *log.Logger
	rng      *rand.Rand
	recorder HandRecorder

	expectedTotal int

	mu          sync.Mutex
	status      Status
	revision    uint64
	createdAt   time.Time
	updatedAt   time.Time
	rankings    []Ranking
	handStarted time.Time
	handActions []agent.Record

	advanceCh chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
}

// Options carries the shared collaborators a session needs.
type Options struct {
	Gateway  llm.Gateway
	Clock    quartz.Clock
	Logger   *log.Logger
	Recorder HandRecorder
}

// New constructs and starts a session. The returned session is already
// Running unless human seats require an explicit first advance.
func New(id gameid.ID, cfg Config, opts Options) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = DefaultLLMTimeout
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	logger := opts.Logger.WithPrefix("session").With("game", id.String())

	seed := cfg.Seed
	if seed == 0 {
		seed = randutil.Seed()
	}
	rng := randutil.New(seed)

	engine, err := holdem.NewEngine(holdem.Config{
		Seats:      len(cfg.Seats),
		Buyin:      cfg.Buyin,
		SmallBlind: cfg.SmallBlind,
		BigBlind:   cfg.BigBlind,
	}, rng, logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	s, err := newWithEngine(id, cfg, engine, rng, opts, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("session created",
		"seats", len(cfg.Seats),
		"buyin", cfg.Buyin,
		"blinds", fmt.Sprintf("%d/%d", cfg.SmallBlind, cfg.BigBlind),
		"max_hands", cfg.MaxHands,
		"seed", seed,
		"status", s.Status())
	return s, nil
}

// newWithEngine finishes construction around an injected engine. Split
// out so tests can drive scripted engines through the same loop.
func newWithEngine(id gameid.ID, cfg Config, engine RulesEngine, rng *rand.Rand, opts Options, logger *log.Logger) (*Session, error) {
	runners := make([]seatRunner, len(cfg.Seats))
	names := make([]string, len(cfg.Seats))
	mailboxes := make(map[int]*mailbox)
	memories := make(map[int]*agent.HandMemory)

	for i, seat := range cfg.Seats {
		names[i] = seat.Name
		if names[i] == "" {
			names[i] = fmt.Sprintf("Player %d", i)
		}

		switch seat.Spec.Kind {
		case agent.KindHuman:
			mailboxes[i] = newMailbox()
			runners[i] = seatRunner{spec: seat.Spec, label: "human"}

		case agent.KindRule:
			b, err := bot.New(seat.Spec.Rule, logger)
			if err != nil {
				return nil, fmt.Errorf("%w: seat %d: %v", ErrInvalidConfig, i, err)
			}
			runners[i] = seatRunner{spec: seat.Spec, agent: b, label: seat.Spec.Rule}

		case agent.KindLLM:
			if opts.Gateway == nil {
				return nil, fmt.Errorf("%w: seat %d wants an LLM but no gateway is configured", ErrInvalidConfig, i)
			}
			personality := seat.Spec.Personality
			a := llm.NewAgent(opts.Gateway, seat.Spec.Model, personality, logger)
			memories[i] = agent.NewHandMemory()
			runners[i] = seatRunner{spec: seat.Spec, agent: a, label: seat.Spec.Model + ":" + a.Personality()}
		}
	}

	now := time.Now()
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:            id,
		cfg:           cfg,
		engine:        engine,
		runners:       runners,
		names:         names,
		mailbox:       mailboxes,
		memories:      memories,
		bus:           NewBus(cfg.EventBuffer),
		clock:         opts.Clock,
		logger:        logger,
		rng:           rng,
		recorder:      opts.Recorder,
		expectedTotal: len(cfg.Seats) * cfg.Buyin,
		status:        StatusWaiting,
		createdAt:     now,
		updatedAt:     now,
		advanceCh:     make(chan struct{}, 1),
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
	}

	if cfg.AutoStart || !cfg.HasHumanSeats() {
		s.status = StatusRunning
	}

	go s.run()
	return s, nil
}

// ID returns the session's identifier.
func (s *Session) ID() gameid.ID { return s.id }

// Status returns the current lifecycle status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Snapshot returns a value copy of the wire state at the current
// revision.
func (s *Session) Snapshot() *GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Subscribe attaches an event stream. Running sessions get an immediate
// StateUpdate so new subscribers start from a full snapshot.
func (s *Session) Subscribe() *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := s.bus.Subscribe()
	sub.seed(StateUpdateEvent{Revision: s.revision, State: s.stateLocked(), timestamp: time.Now()})
	return sub
}

// ProposeAction delivers a human decision for the seat currently to
// act. Rejections never disturb game state.
func (s *Session) ProposeAction(playerID int, kind holdem.MoveKind, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.Terminal() {
		return ErrSessionTerminal
	}
	mb, ok := s.mailbox[playerID]
	if !ok {
		return &InvalidActionError{Reason: fmt.Sprintf("seat %d is not a human seat", playerID)}
	}
	current, running := s.engine.CurrentPlayer()
	if !running || current != playerID {
		return ErrOutOfTurn
	}

	legal := s.engine.AvailableMoves()
	if !legal.Has(kind) {
		return &InvalidActionError{Reason: fmt.Sprintf("%s is not available", kind)}
	}
	if kind == holdem.Raise && (amount < legal.MinTotal || amount > legal.MaxTotal) {
		return &InvalidActionError{
			Reason: fmt.Sprintf("raise must total between %d and %d, got %d", legal.MinTotal, legal.MaxTotal, amount),
		}
	}

	return mb.deliver(agent.Proposal{Kind: kind, Amount: amount, Confidence: 1})
}

// Advance starts the next hand when the table is waiting for one.
func (s *Session) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.status.Terminal():
		return ErrSessionTerminal
	case s.engine.IsHandRunning():
		s.logger.Debug("advance ignored, hand in progress")
		return ErrNotReady
	}

	select {
	case s.advanceCh <- struct{}{}:
	default:
	}
	return nil
}

// End terminates the session, cancelling any in-flight decision, and
// returns the final rankings once the bus has drained.
func (s *Session) End() []Ranking {
	s.cancel()
	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Ranking(nil), s.rankings...)
}

// Done is closed once the session reaches a terminal status.
func (s *Session) Done() <-chan struct{} { return s.done }

// run is the session driver: gate, play a hand, settle, repeat.
func (s *Session) run() {
	defer close(s.done)

	if !s.gateStart() {
		s.finish(StatusCompleted)
		return
	}

	for {
		if err := s.playHand(); err != nil {
			switch {
			case errors.Is(err, context.Canceled):
				s.finish(StatusCompleted)
			default:
				s.logger.Error("session failed", "error", err)
				s.publishError(ErrorKindInvariant, err.Error(), -1)
				s.finish(StatusError)
			}
			return
		}

		if s.tableDone() {
			s.finish(StatusCompleted)
			return
		}

		if !s.gateNextHand() {
			s.finish(StatusCompleted)
			return
		}
	}
}

// gateStart blocks a Waiting session until the first Advance.
func (s *Session) gateStart() bool {
	s.mu.Lock()
	waiting := s.status == StatusWaiting
	s.mu.Unlock()
	if !waiting {
		return true
	}
	return s.awaitAdvance()
}

// gateNextHand pauses between hands while a human decider remains,
// resuming on Advance. Tables with no live humans roll straight on.
func (s *Session) gateNextHand() bool {
	s.mu.Lock()
	pause := s.hasLiveHumanLocked()
	if pause {
		s.setStatusLocked(StatusPaused)
	}
	s.mu.Unlock()
	if !pause {
		return true
	}
	return s.awaitAdvance()
}

func (s *Session) awaitAdvance() bool {
	select {
	case <-s.advanceCh:
		s.mu.Lock()
		s.setStatusLocked(StatusRunning)
		s.mu.Unlock()
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *Session) hasLiveHumanLocked() bool {
	for seat := range s.mailbox {
		if s.engine.Chips(seat) > 0 {
			return true
		}
	}
	return false
}

// tableDone reports whether the session has run its course: the hand
// budget is spent or fewer than two seats can fund another deal.
func (s *Session) tableDone() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.HandNumber() >= s.cfg.MaxHands || !s.engine.IsGameRunning()
}

// playHand deals one hand and drives it to settlement.
func (s *Session) playHand() error {
	s.mu.Lock()
	if err := s.ctx.Err(); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.engine.StartHand(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("starting hand: %w", err)
	}
	s.handStarted = time.Now()
	s.handActions = s.handActions[:0]
	for _, mem := range s.memories {
		mem.Reset()
	}
	for _, mb := range s.mailbox {
		mb.drain()
	}
	handNum := s.engine.HandNumber()
	s.bumpAndPublishLocked()
	s.mu.Unlock()

	s.logger.Info("hand started", "hand", handNum)

	for {
		s.mu.Lock()
		if err := s.ctx.Err(); err != nil {
			s.mu.Unlock()
			return err
		}
		if !s.engine.IsHandRunning() {
			s.mu.Unlock()
			break
		}
		seat, ok := s.engine.CurrentPlayer()
		if !ok {
			// All remaining players are all-in; the engine runs the
			// board out on the next street transition.
			s.mu.Unlock()
			break
		}
		legal := s.engine.AvailableMoves()
		if legal.Empty() {
			s.mu.Unlock()
			return fmt.Errorf("no legal moves for seat %d", seat)
		}
		view := s.turnViewLocked(seat, legal)
		runner := s.runners[seat]
		s.mu.Unlock()

		// External wait happens without the lock: LLM round trips and
		// human mailbox reads must not freeze snapshots.
		proposal, timedOut := s.decide(seat, runner, view)

		s.mu.Lock()
		if err := s.ctx.Err(); err != nil {
			s.mu.Unlock()
			return err
		}
		if timedOut {
			// A proposal that raced the expired clock is for this turn,
			// not a later one. ProposeAction holds the same lock, so no
			// delivery can land between this drain and the apply.
			s.mailbox[seat].drain()
		}
		if err := s.applyLocked(seat, view, proposal); err != nil {
			s.mu.Unlock()
			return err
		}
		s.mu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Phantom-chip boundary: the engine still reports the settled pots;
	// the projection zeroes them and the audit asserts nothing leaked.
	if err := auditConservation(s.engine, s.engine.Seats(), s.expectedTotal); err != nil {
		return err
	}
	s.recordHandLocked()
	s.bumpAndPublishLocked()
	s.logger.Info("hand settled", "hand", handNum, "pot", settledPot(s.engine))
	return nil
}

// decide dispatches one turn to the seat's decision source and absorbs
// every failure into the fallback ladder, starting at Call. The second
// result reports that a human turn clock expired, so the caller must
// discard any proposal that raced the timer.
func (s *Session) decide(seat int, runner seatRunner, view *agent.TurnView) (agent.Proposal, bool) {
	switch runner.spec.Kind {
	case agent.KindHuman:
		p, err := s.mailbox[seat].await(s.ctx, s.clock, s.cfg.TurnTimeout)
		switch {
		case err == nil:
			return p, false
		case errors.Is(err, errTurnTimeout):
			def := timeoutDefault(view)
			s.logger.Warn("human turn timed out", "seat", seat, "default", def.Kind)
			s.publishError(ErrorKindTimeoutAction,
				fmt.Sprintf("seat %d timed out, defaulting to %s", seat, def.Kind), seat)
			return def, true
		default:
			// Session ending; the loop aborts before applying this.
			return agent.Proposal{Kind: holdem.Fold}, false
		}

	case agent.KindLLM:
		ctx, cancel := context.WithTimeout(s.ctx, s.cfg.LLMTimeout)
		p, err := runner.agent.Decide(ctx, view)
		cancel()
		if err != nil {
			failure := &AgentFailureError{Seat: seat, Cause: err}
			kind := ErrorKindAgentFailure
			if errors.Is(err, context.DeadlineExceeded) {
				kind = ErrorKindLLMTimeout
			}
			s.logger.Warn("llm decision failed", "seat", seat, "kind", kind, "error", err)
			s.publishError(kind, failure.Error(), seat)
			return agent.Proposal{Kind: holdem.Call, Reasoning: "fallback after agent failure"}, false
		}
		return p, false

	default:
		p, err := runner.agent.Decide(s.ctx, view)
		if err != nil {
			s.logger.Warn("rule agent failed", "seat", seat, "error", err)
			s.publishError(ErrorKindAgentFailure, (&AgentFailureError{Seat: seat, Cause: err}).Error(), seat)
			return agent.Proposal{Kind: holdem.Call, Reasoning: "fallback after agent failure"}, false
		}
		return p, false
	}
}

// timeoutDefault is the action a missed human turn costs: fold facing a
// bet, check otherwise. The seat stays live for the next turn.
func timeoutDefault(view *agent.TurnView) agent.Proposal {
	if view.FacingBet() {
		return agent.Proposal{Kind: holdem.Fold, Reasoning: "turn timeout"}
	}
	return agent.Proposal{Kind: holdem.Check, Reasoning: "turn timeout"}
}

// applyLocked validates a proposal against the live legal set, applies
// it, and publishes the resulting events.
func (s *Session) applyLocked(seat int, view *agent.TurnView, proposal agent.Proposal) error {
	move, note, err := agent.Validate(proposal, s.engine.AvailableMoves())
	if err != nil {
		return fmt.Errorf("seat %d: %w", seat, err)
	}
	if note != "" {
		s.logger.Debug("proposal rewritten", "seat", seat, "note", note)
	}

	potBefore := potTotal(s.engine)
	if err := s.engine.TakeAction(move); err != nil {
		return fmt.Errorf("applying %s for seat %d: %w", move, seat, err)
	}

	rec := agent.Record{
		PlayerID:   seat,
		Phase:      view.Phase,
		Kind:       move.Kind,
		Amount:     move.Amount,
		Reasoning:  proposal.Reasoning,
		Confidence: proposal.Confidence,
		PotBefore:  potBefore,
		ChipsAfter: s.engine.Chips(seat),
	}
	s.handActions = append(s.handActions, rec)
	if mem, ok := s.memories[seat]; ok {
		// Memory reflects applied actions only, never raw proposals.
		mem.Remember(rec)
	}

	if err := auditConservation(s.engine, s.engine.Seats(), s.expectedTotal); err != nil {
		return err
	}

	s.revision++
	s.updatedAt = time.Now()
	s.bus.Publish(ActionAppliedEvent{
		Revision:  s.revision,
		Record:    rec,
		Note:      note,
		timestamp: s.updatedAt,
	})
	s.bus.Publish(StateUpdateEvent{
		Revision:  s.revision,
		State:     s.stateLocked(),
		timestamp: s.updatedAt,
	})
	return nil
}

// finish freezes rankings, emits the terminal events and closes the
// bus. Safe to call exactly once, from the run goroutine.
func (s *Session) finish(status Status) {
	s.mu.Lock()
	if s.status.Terminal() {
		s.mu.Unlock()
		return
	}
	s.status = status
	if status == StatusCompleted {
		s.rankings = s.computeRankingsLocked()
	} else {
		// An invariant break leaves chip counts untrustworthy.
		s.rankings = []Ranking{}
	}
	s.revision++
	s.updatedAt = time.Now()
	state := s.stateLocked()
	rankings := append([]Ranking(nil), s.rankings...)
	rev := s.revision
	s.mu.Unlock()

	s.bus.Publish(StateUpdateEvent{Revision: rev, State: state, timestamp: time.Now()})
	s.bus.Publish(TerminalEvent{Status: status, Rankings: rankings, timestamp: time.Now()})
	s.bus.Close()
	s.logger.Info("session finished", "status", status, "hands", s.engine.HandNumber())
}

// computeRankingsLocked orders seats by chips descending, ties broken
// by player id ascending.
func (s *Session) computeRankingsLocked() []Ranking {
	n := s.engine.Seats()
	out := make([]Ranking, 0, n)
	for seat := 0; seat < n; seat++ {
		out = append(out, Ranking{PlayerID: seat, Name: s.names[seat], Chips: s.engine.Chips(seat)})
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			a, b := out[i], out[j]
			if b.Chips > a.Chips || (b.Chips == a.Chips && b.PlayerID < a.PlayerID) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// recordHandLocked hands the settled hand to the recorder, if any.
func (s *Session) recordHandLocked() {
	if s.recorder == nil {
		return
	}
	settlement := s.engine.Settlement()
	if settlement == nil {
		return
	}

	rec := HandRecord{
		GameID:     s.id.String(),
		HandNumber: s.engine.HandNumber(),
		StartedAt:  s.handStarted,
		SettledAt:  time.Now(),
		Board:      append([]holdem.Card(nil), settlement.Board...),
		Actions:    append([]agent.Record(nil), s.handActions...),
		PotTotal:   settlement.PotTotal,
		Settlement: settlement.Kind,
	}
	for _, award := range settlement.Awards {
		for i, seat := range award.Winners {
			amount := award.Share
			if i == 0 {
				amount += award.Amount - award.Share*len(award.Winners)
			}
			rec.Winners = append(rec.Winners, WinnerShare{
				PlayerID: seat,
				Amount:   amount,
				HandRank: settlement.BestHands[seat],
			})
		}
	}
	for seat := 0; seat < s.engine.Seats(); seat++ {
		rec.Chips = append(rec.Chips, s.engine.Chips(seat))
	}

	// Recorders get a detached context: a slow sink must not be able to
	// stall or outlive-block the table.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.recorder.RecordHand(ctx, rec); err != nil {
			s.logger.Warn("hand record failed", "hand", rec.HandNumber, "error", err)
		}
	}()
}

// turnViewLocked assembles the decision context for one seat.
func (s *Session) turnViewLocked(seat int, legal holdem.MoveSet) *agent.TurnView {
	hole := s.engine.HandOf(seat)
	board := s.engine.Board()
	toCall := s.engine.ChipsToCall(seat)
	pot := potTotal(s.engine)

	view := &agent.TurnView{
		Seat:          seat,
		Name:          s.names[seat],
		HandNum:       s.engine.HandNumber(),
		MaxHands:      s.cfg.MaxHands,
		Phase:         s.engine.HandPhase(),
		Board:         board,
		Hole:          hole,
		Chips:         s.engine.Chips(seat),
		ChipsToCall:   toCall,
		PotTotal:      pot,
		BigBlind:      s.cfg.BigBlind,
		Legal:         legal,
		MinRaiseTotal: s.engine.MinRaise(),
		Button:        s.engine.Button(),
		Seats:         s.engine.Seats(),
		Strength:      analysis.Strength(hole, board),
		Position:      analysis.PositionOf(seat, s.engine.Button(), s.engine.Seats()),
		Memory:        s.memories[seat],
		Rand:          s.rng,
	}
	view.PotOdds, view.HasPotOdds = analysis.PotOdds(toCall, pot)

	for other := 0; other < s.engine.Seats(); other++ {
		if other == seat {
			continue
		}
		view.Opponents = append(view.Opponents, agent.Opponent{
			Seat:  other,
			Name:  s.names[other],
			Chips: s.engine.Chips(other),
			State: string(s.seatStateLocked(other)),
			Bet:   s.engine.StreetBet(other),
		})
	}
	return view
}

// stateLocked builds the wire snapshot at the current revision.
func (s *Session) stateLocked() *GameState {
	gs := &GameState{
		GameID:     s.id.String(),
		Status:     s.status,
		Phase:      s.engine.HandPhase(),
		HandNumber: s.engine.HandNumber(),
		MaxHands:   s.cfg.MaxHands,
		Revision:   s.revision,
		Board:      s.engine.Board(),
		Pots:       projectPots(s.engine),
		DebugMode:  s.cfg.DebugMode,
		CreatedAt:  s.createdAt,
		UpdatedAt:  s.updatedAt,
	}

	showdown := false
	if settlement := s.engine.Settlement(); settlement != nil && !s.engine.IsHandRunning() {
		showdown = settlement.Kind == "showdown"
	}

	for seat := 0; seat < s.engine.Seats(); seat++ {
		view := SeatView{
			PlayerID: seat,
			Name:     s.names[seat],
			Agent:    s.runners[seat].label,
			Chips:    s.engine.Chips(seat),
			Bet:      s.engine.StreetBet(seat),
			State:    s.seatStateLocked(seat),
		}
		_, isHuman := s.mailbox[seat]
		if s.cfg.DebugMode || isHuman || showdown {
			view.HoleCards = s.engine.HandOf(seat)
		}
		gs.Seats = append(gs.Seats, view)
	}

	if s.status == StatusRunning {
		if current, ok := s.engine.CurrentPlayer(); ok {
			gs.CurrentPlayer = &current
			legal := s.engine.AvailableMoves()
			for _, k := range legal.Kinds {
				gs.Actions = append(gs.Actions, k.String())
			}
			if legal.Has(holdem.Raise) {
				minTotal, maxTotal := legal.MinTotal, legal.MaxTotal
				gs.MinRaiseAmount = &minTotal
				gs.MaxRaiseAmount = &maxTotal
			}
		}
	}

	if s.status == StatusCompleted {
		gs.FinalRankings = append([]Ranking(nil), s.rankings...)
	}
	return gs
}

// seatStateLocked projects a seat's standing in the current hand.
func (s *Session) seatStateLocked(seat int) SeatState {
	handRunning := s.engine.IsHandRunning()
	switch {
	case handRunning && s.engine.AllIn(seat):
		return SeatAllIn
	case s.engine.Chips(seat) == 0:
		return SeatSkip
	case handRunning && s.engine.Folded(seat):
		return SeatFolded
	case handRunning && s.engine.ChipsToCall(seat) > 0:
		return SeatToCall
	default:
		return SeatIn
	}
}

// bumpAndPublishLocked increments the revision and publishes the
// snapshot, for state changes with no causing action.
func (s *Session) bumpAndPublishLocked() {
	s.revision++
	s.updatedAt = time.Now()
	s.bus.Publish(StateUpdateEvent{
		Revision:  s.revision,
		State:     s.stateLocked(),
		timestamp: s.updatedAt,
	})
}

// setStatusLocked transitions status and publishes the change.
func (s *Session) setStatusLocked(status Status) {
	if s.status == status || s.status.Terminal() {
		return
	}
	s.status = status
	s.bumpAndPublishLocked()
}

func (s *Session) publishError(kind, detail string, seat int) {
	s.bus.Publish(ErrorEvent{Kind: kind, Detail: detail, Seat: seat, timestamp: time.Now()})
}

func potTotal(engine RulesEngine) int {
	total := 0
	if !engine.IsHandRunning() {
		return 0
	}
	for _, p := range engine.Pots() {
		total += p.Amount
	}
	return total
}

func settledPot(engine RulesEngine) int {
	if s := engine.Settlement(); s != nil {
		return s.PotTotal
	}
	return 0
}
