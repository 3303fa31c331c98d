package holdem

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
)

// Config describes a table.
type Config struct {
	Seats      int
	Buyin      int
	SmallBlind int
	BigBlind   int
}

// Validate checks the table parameters.
func (c Config) Validate() error {
	if c.Seats < 2 || c.Seats > 9 {
		return fmt.Errorf("seats must be between 2 and 9, got %d", c.Seats)
	}
	if c.Buyin <= 0 {
		return fmt.Errorf("buyin must be positive, got %d", c.Buyin)
	}
	if c.SmallBlind <= 0 || c.BigBlind <= 0 {
		return fmt.Errorf("blinds must be positive, got %d/%d", c.SmallBlind, c.BigBlind)
	}
	if c.SmallBlind >= c.BigBlind {
		return fmt.Errorf("small blind %d must be below big blind %d", c.SmallBlind, c.BigBlind)
	}
	if c.BigBlind > c.Buyin {
		return fmt.Errorf("big blind %d exceeds buyin %d", c.BigBlind, c.Buyin)
	}
	return nil
}

// Engine is one table's rules engine across multiple hands. It is not
// safe for concurrent use; the session layer serializes access.
//
// Between hands Pots() keeps reporting the previous hand's settled
// breakdown even though the chips are already back in player stacks, so a
// naive pots-plus-stacks audit over-counts until the next deal. Callers
// projecting table state must zero the pot totals at hand boundaries.
type Engine struct {
	cfg     Config
	players []*Player
	button  int
	handNum int
	hand    *handState
	deck    *Deck
	rng     *rand.Rand
	logger  *log.Logger

	initialTotal int
}

// NewEngine creates a table with every seat bought in.
func NewEngine(cfg Config, rng *rand.Rand, logger *log.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	players := make([]*Player, cfg.Seats)
	for i := range players {
		players[i] = &Player{Seat: i, Chips: cfg.Buyin}
	}

	return &Engine{
		cfg:          cfg,
		players:      players,
		button:       cfg.Seats - 1, // first deal moves it to seat 0
		rng:          rng,
		deck:         NewDeck(rng),
		logger:       logger,
		initialTotal: cfg.Seats * cfg.Buyin,
	}, nil
}

// IsGameRunning reports whether at least two seats can fund another hand.
func (e *Engine) IsGameRunning() bool {
	solvent := 0
	for _, p := range e.players {
		if p.Solvent() {
			solvent++
		}
	}
	return solvent >= 2
}

// IsHandRunning reports whether a hand is between deal and settlement.
func (e *Engine) IsHandRunning() bool {
	return e.hand != nil && !e.hand.complete()
}

// StartHand deals the next hand: advances the button to the next solvent
// seat, posts blinds and deals hole cards.
func (e *Engine) StartHand() error {
	if e.IsHandRunning() {
		return fmt.Errorf("hand %d still running", e.handNum)
	}
	if !e.IsGameRunning() {
		return fmt.Errorf("table is down to %d solvent seats", e.solventCount())
	}

	e.button = e.nextSolventSeat(e.button + 1)
	e.handNum++
	e.deck.Reset()
	e.hand = newHand(e.players, e.button, e.cfg.SmallBlind, e.cfg.BigBlind, e.deck)

	e.logger.Debug("hand started",
		"hand", e.handNum,
		"button", e.button,
		"sb", e.hand.sbSeat,
		"bb", e.hand.bbSeat)
	return nil
}

// CurrentPlayer returns the seat with a decision pending.
func (e *Engine) CurrentPlayer() (int, bool) {
	if !e.IsHandRunning() || e.hand.active < 0 {
		return 0, false
	}
	return e.hand.active, true
}

// HandPhase returns the lifecycle phase: PreHand before the first deal,
// the live street during a hand, Settle afterwards.
func (e *Engine) HandPhase() Phase {
	if e.hand == nil {
		return PreHand
	}
	return e.hand.phase
}

// Board returns the community cards dealt so far.
func (e *Engine) Board() []Card {
	if e.hand == nil {
		return nil
	}
	return append([]Card(nil), e.hand.board...)
}

// HandOf returns a seat's hole cards for the current hand.
func (e *Engine) HandOf(seat int) []Card {
	if e.hand == nil || seat < 0 || seat >= len(e.players) {
		return nil
	}
	return append([]Card(nil), e.players[seat].HoleCards...)
}

// ChipsToCall returns the chips the seat owes to continue.
func (e *Engine) ChipsToCall(seat int) int {
	if !e.IsHandRunning() || seat < 0 || seat >= len(e.players) {
		return 0
	}
	owed := e.hand.betting.currentBet - e.players[seat].Bet
	if owed < 0 {
		return 0
	}
	return owed
}

// MinRaise returns the advisory minimum raise total for the seat to act.
// It ignores the actor's stack and can exceed the enforceable maximum;
// validation must use AvailableMoves.
func (e *Engine) MinRaise() int {
	if !e.IsHandRunning() {
		return 0
	}
	return e.hand.betting.advisoryMinRaise()
}

// AvailableMoves returns the legal action set and enforced raise range for
// the seat to act. Empty when no decision is pending.
func (e *Engine) AvailableMoves() MoveSet {
	if !e.IsHandRunning() {
		return MoveSet{}
	}
	return e.hand.legalMoves()
}

// ValidateMove reports whether the move is legal for the seat right now.
func (e *Engine) ValidateMove(seat int, m Move) bool {
	current, ok := e.CurrentPlayer()
	if !ok || current != seat {
		return false
	}
	legal := e.AvailableMoves()
	if !legal.Has(m.Kind) {
		return false
	}
	if m.Kind == Raise {
		return m.Amount >= legal.MinTotal && m.Amount <= legal.MaxTotal
	}
	return true
}

// TakeAction applies a move for the current player. The hand may advance
// streets or settle as a result. Chip conservation is re-checked after
// every application.
func (e *Engine) TakeAction(m Move) error {
	if !e.IsHandRunning() {
		return fmt.Errorf("no hand running")
	}
	seat := e.hand.active
	if err := e.hand.processMove(m); err != nil {
		return err
	}

	e.logger.Debug("action applied", "seat", seat, "move", m.String(), "phase", e.hand.phase.String())

	if err := e.checkConservation(); err != nil {
		return fmt.Errorf("rules engine defect: %w", err)
	}
	return nil
}

// Pots returns the pot layout: live pots (with uncollected street bets)
// during a hand, the settled breakdown afterwards.
func (e *Engine) Pots() []Pot {
	if e.hand == nil {
		return nil
	}
	return e.hand.pots.snapshotWithUncollected(e.players)
}

// Chips returns a seat's stack.
func (e *Engine) Chips(seat int) int {
	if seat < 0 || seat >= len(e.players) {
		return 0
	}
	return e.players[seat].Chips
}

// StreetBet returns the chips a seat has committed to the current
// betting street.
func (e *Engine) StreetBet(seat int) int {
	if !e.IsHandRunning() || seat < 0 || seat >= len(e.players) {
		return 0
	}
	return e.players[seat].Bet
}

// Seats returns the number of seats at the table.
func (e *Engine) Seats() int {
	return len(e.players)
}

// Button returns the dealer seat for the current hand.
func (e *Engine) Button() int {
	return e.button
}

// HandNumber returns the 1-based index of the current or last hand, 0
// before the first deal.
func (e *Engine) HandNumber() int {
	return e.handNum
}

// Settlement returns the last completed hand's outcome, nil while a hand
// runs or before the first hand completes.
func (e *Engine) Settlement() *Settlement {
	if e.hand == nil || !e.hand.complete() {
		return nil
	}
	return e.hand.settlement
}

// Folded reports whether the seat has folded the current hand.
func (e *Engine) Folded(seat int) bool {
	if e.hand == nil || seat < 0 || seat >= len(e.players) {
		return false
	}
	return e.players[seat].Folded
}

// AllIn reports whether the seat is all-in for the current hand.
func (e *Engine) AllIn(seat int) bool {
	if e.hand == nil || seat < 0 || seat >= len(e.players) {
		return false
	}
	return e.players[seat].AllIn
}

func (e *Engine) solventCount() int {
	solvent := 0
	for _, p := range e.players {
		if p.Solvent() {
			solvent++
		}
	}
	return solvent
}

func (e *Engine) nextSolventSeat(from int) int {
	n := len(e.players)
	for i := 0; i < n; i++ {
		pos := ((from+i)%n + n) % n
		if e.players[pos].Solvent() {
			return pos
		}
	}
	return from % n
}

// checkConservation verifies that stacks plus pots still add up to the
// table's initial total. During a hand the live pots carry the difference;
// after settlement the stacks alone must account for everything.
func (e *Engine) checkConservation() error {
	chips := 0
	for _, p := range e.players {
		chips += p.Chips
	}

	total := chips
	if e.IsHandRunning() {
		total += e.hand.pots.Total()
		for _, p := range e.players {
			total += p.Bet
		}
	}

	if total != e.initialTotal {
		return fmt.Errorf("table total %d, expected %d", total, e.initialTotal)
	}
	return nil
}
