package holdem

import (
	"fmt"
)

// PotAward records one pot's settlement.
type PotAward struct {
	PotID   int
	Amount  int
	Winners []int // seats, in seat order
	Share   int   // chips each winner received (remainder goes to the first)
}

// Settlement summarizes a completed hand.
type Settlement struct {
	Kind      string // "fold" or "showdown"
	Board     []Card
	Awards    []PotAward
	PotTotal  int
	BestHands map[int]string // seat -> rank name, showdown only
}

// handState drives a single hand: blinds, betting streets, side pots and
// settlement. Player pointers are shared with the engine roster so chip
// movements persist across hands.
type handState struct {
	players []*Player
	button  int
	phase   Phase
	board   []Card
	pots    *potManager
	active  int // seat to act, -1 when none
	deck    *Deck
	betting *bettingState

	sbSeat     int
	bbSeat     int
	settlement *Settlement
}

func newHand(players []*Player, button, smallBlind, bigBlind int, deck *Deck) *handState {
	h := &handState{
		players: players,
		button:  button,
		phase:   PreFlop,
		deck:    deck,
		active:  -1,
	}

	// Seats that cannot fund the hand sit this one out.
	for _, p := range players {
		p.resetForHand()
		if !p.Solvent() {
			p.Folded = true
		}
	}

	h.pots = newPotManager(players)
	h.placeBlinds(smallBlind, bigBlind)
	h.dealHoleCards()
	h.active = h.nextActor(h.bbSeat + 1)
	if h.active == -1 {
		// The blinds put everyone all-in; run the board out immediately.
		h.nextStreet()
	}
	return h
}

// placeBlinds posts the small and big blind. Heads-up the button posts the
// small blind and acts first preflop.
func (h *handState) placeBlinds(smallBlind, bigBlind int) {
	if h.liveSeats() == 2 {
		h.sbSeat = h.nextSolvent(h.button)
		h.bbSeat = h.nextSolvent(h.sbSeat + 1)
	} else {
		h.sbSeat = h.nextSolvent(h.button + 1)
		h.bbSeat = h.nextSolvent(h.sbSeat + 1)
	}

	h.betting = newBettingState(len(h.players), bigBlind, h.bbSeat)

	h.post(h.players[h.sbSeat], smallBlind)
	h.post(h.players[h.bbSeat], bigBlind)
	h.betting.currentBet = bigBlind
}

func (h *handState) post(p *Player, blind int) {
	amount := min(blind, p.Chips)
	p.Bet = amount
	p.TotalBet = amount
	p.Chips -= amount
	if p.Chips == 0 {
		p.AllIn = true
	}
}

func (h *handState) dealHoleCards() {
	for _, p := range h.players {
		if !p.Folded {
			p.HoleCards = h.deck.DealN(2)
		}
	}
}

// nextSolvent returns the first seat at or after from (wrapping) that was
// dealt into the hand. Broke seats are folded at deal time.
func (h *handState) nextSolvent(from int) int {
	n := len(h.players)
	for i := 0; i < n; i++ {
		pos := ((from+i)%n + n) % n
		if !h.players[pos].Folded {
			return pos
		}
	}
	return -1
}

// nextActor returns the first seat at or after from (wrapping) with a
// decision left, or -1.
func (h *handState) nextActor(from int) int {
	n := len(h.players)
	for i := 0; i < n; i++ {
		pos := ((from+i)%n + n) % n
		if h.players[pos].CanAct() {
			return pos
		}
	}
	return -1
}

func (h *handState) liveSeats() int {
	live := 0
	for _, p := range h.players {
		if !p.Folded {
			live++
		}
	}
	return live
}

func (h *handState) complete() bool {
	return h.phase == Settle
}

// legalMoves returns the action set for the seat to act.
func (h *handState) legalMoves() MoveSet {
	if h.active < 0 || h.complete() {
		return MoveSet{}
	}
	return h.betting.legalMoves(h.players[h.active])
}

// processMove applies a move for the active player and advances the hand.
func (h *handState) processMove(m Move) error {
	if h.complete() {
		return fmt.Errorf("hand already settled")
	}
	if h.active < 0 {
		return fmt.Errorf("no seat to act")
	}

	p := h.players[h.active]
	legal := h.betting.legalMoves(p)
	if !legal.Has(m.Kind) {
		return fmt.Errorf("%s is not legal for seat %d", m.Kind, p.Seat)
	}

	switch m.Kind {
	case Fold:
		p.Folded = true
		if h.betting.lastRaiser == h.active {
			h.betting.lastRaiser = -1
		}

	case Check:
		if h.betting.currentBet != p.Bet {
			return fmt.Errorf("cannot check facing a bet of %d", h.betting.currentBet)
		}

	case Call:
		toCall := min(h.betting.currentBet-p.Bet, p.Chips)
		p.Bet += toCall
		p.TotalBet += toCall
		p.Chips -= toCall
		if p.Chips == 0 {
			p.AllIn = true
		}

	case Raise:
		if err := h.applyRaise(p, m.Amount); err != nil {
			return err
		}
	}

	h.betting.markActed(h.active)
	if h.phase == PreFlop && h.active == h.betting.bbSeat {
		h.betting.bbActed = true
	}

	h.advanceAction()
	return nil
}

// applyRaise moves the player's street total to amount. Amount is the new
// TOTAL bet, already range-checked against legalMoves by the caller's
// validator; the checks here are the engine's own guarantees.
func (h *handState) applyRaise(p *Player, amount int) error {
	allInTotal := p.Chips + p.Bet
	if amount > allInTotal {
		return fmt.Errorf("raise to %d exceeds stack total %d", amount, allInTotal)
	}
	if amount <= h.betting.currentBet {
		return fmt.Errorf("raise to %d does not exceed current bet %d", amount, h.betting.currentBet)
	}
	if amount < h.betting.advisoryMinRaise() && amount < allInTotal {
		return fmt.Errorf("raise to %d below minimum %d", amount, h.betting.advisoryMinRaise())
	}

	increment := amount - h.betting.currentBet

	// A full raise resets the bar for the next one. A short all-in does
	// not shrink it.
	if increment >= h.betting.minRaise {
		h.betting.minRaise = increment
	}
	h.betting.currentBet = amount
	h.betting.lastRaiser = h.active

	spend := amount - p.Bet
	p.Chips -= spend
	p.Bet = amount
	p.TotalBet += spend
	if p.Chips == 0 {
		p.AllIn = true
	}

	// Everyone else owes a response to the new bet.
	for i := range h.betting.acted {
		h.betting.acted[i] = false
	}
	h.betting.acted[h.active] = true
	return nil
}

// advanceAction rotates to the next actor, moving streets or settling when
// the round is done.
func (h *handState) advanceAction() {
	if h.liveSeats() <= 1 {
		h.settle()
		return
	}

	h.active = h.nextActor(h.active + 1)
	if h.active == -1 || h.betting.complete(h.players, h.phase) {
		h.nextStreet()
	}
}

// nextStreet collects bets, rebuilds side pots and deals the next street.
// When no decisions remain it runs the board out to showdown.
func (h *handState) nextStreet() {
	h.pots.collectBets(h.players)
	h.pots.rebuildSidePots(h.players)
	for _, p := range h.players {
		p.Bet = 0
	}
	h.betting.resetForStreet(len(h.players))

	switch h.phase {
	case PreFlop:
		h.phase = Flop
		h.board = append(h.board, h.deck.DealN(3)...)
	case Flop:
		h.phase = Turn
		h.board = append(h.board, h.deck.DealN(1)...)
	case Turn:
		h.phase = River
		h.board = append(h.board, h.deck.DealN(1)...)
	case River:
		h.settle()
		return
	default:
		return
	}

	h.active = h.nextActor(h.button + 1)
	if h.active == -1 {
		// All live players are all-in; keep dealing to showdown.
		h.nextStreet()
	}
}

// settle finishes the hand: final pot layout, winners per pot, chip awards.
// The pot snapshot survives until the next deal so late observers still see
// the final breakdown.
func (h *handState) settle() {
	h.pots.collectBets(h.players)
	h.pots.rebuildSidePots(h.players)

	kind := "showdown"
	if h.liveSeats() <= 1 {
		kind = "fold"
	}

	s := &Settlement{
		Kind:      kind,
		Board:     append([]Card(nil), h.board...),
		PotTotal:  h.pots.Total(),
		BestHands: map[int]string{},
	}

	for _, pot := range h.pots.pots {
		if pot.Amount == 0 {
			continue
		}
		winners := h.potWinners(pot, kind, s.BestHands)
		if len(winners) == 0 {
			continue
		}
		share := pot.Amount / len(winners)
		remainder := pot.Amount - share*len(winners)
		for i, seat := range winners {
			amount := share
			if i == 0 {
				// Odd chip to the earliest winner after the button.
				amount += remainder
			}
			h.players[seat].Chips += amount
		}
		s.Awards = append(s.Awards, PotAward{
			PotID:   pot.ID,
			Amount:  pot.Amount,
			Winners: winners,
			Share:   share,
		})
	}

	h.settlement = s
	h.phase = Settle
	h.active = -1
}

// potWinners picks the winning seats for one pot, ordered from the first
// seat after the button.
func (h *handState) potWinners(pot Pot, kind string, bestHands map[int]string) []int {
	live := make([]int, 0, len(pot.Eligible))
	for _, seat := range pot.Eligible {
		if !h.players[seat].Folded {
			live = append(live, seat)
		}
	}
	if len(live) == 0 {
		// Orphaned pot: every eligible seat folded. Route it to the last
		// live player at the table rather than losing the chips.
		for _, p := range h.players {
			if !p.Folded {
				live = append(live, p.Seat)
				break
			}
		}
		return live
	}
	if len(live) == 1 || kind == "fold" {
		return live[:1]
	}

	best := int32(WorstHandRank + 1)
	winners := make([]int, 0, 2)
	for _, seat := range h.orderFromButton(live) {
		p := h.players[seat]
		rank := Evaluate(append(append([]Card(nil), p.HoleCards...), h.board...))
		bestHands[seat] = RankName(rank)
		switch {
		case rank < best:
			best = rank
			winners = winners[:0]
			winners = append(winners, seat)
		case rank == best:
			winners = append(winners, seat)
		}
	}
	return winners
}

// orderFromButton sorts seats into action order starting left of the button.
func (h *handState) orderFromButton(seats []int) []int {
	n := len(h.players)
	ordered := make([]int, len(seats))
	copy(ordered, seats)
	pos := func(seat int) int { return ((seat-h.button-1)%n + n) % n }
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if pos(ordered[j]) < pos(ordered[i]) {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}
	return ordered
}
