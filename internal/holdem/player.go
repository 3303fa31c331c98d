package holdem

// Player is one seat's engine-side state. The struct persists across hands;
// Bet, TotalBet, HoleCards, Folded and AllIn reset each deal.
type Player struct {
	Seat      int
	Chips     int
	HoleCards []Card
	Folded    bool
	AllIn     bool
	Bet       int // chips committed this street
	TotalBet  int // chips committed this hand
}

// CanAct reports whether the player still has decisions left in the hand.
func (p *Player) CanAct() bool {
	return !p.Folded && !p.AllIn && p.Chips > 0
}

// Solvent reports whether the player can be dealt into the next hand.
func (p *Player) Solvent() bool {
	return p.Chips > 0
}

func (p *Player) resetForHand() {
	p.HoleCards = nil
	p.Folded = false
	p.AllIn = false
	p.Bet = 0
	p.TotalBet = 0
}
