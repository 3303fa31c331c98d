package holdem

import "sort"

// Pot is a main or side pot. ID is the dense index within the hand.
type Pot struct {
	ID           int
	Amount       int
	Eligible     []int // seats eligible to win this pot
	maxPerPlayer int   // contribution cap that formed this pot (side pots)
}

// potManager collects street bets and splits them into side pots at each
// all-in level.
type potManager struct {
	pots []Pot
}

func newPotManager(players []*Player) *potManager {
	eligible := make([]int, 0, len(players))
	for _, p := range players {
		if !p.Folded {
			eligible = append(eligible, p.Seat)
		}
	}
	return &potManager{
		pots: []Pot{{Eligible: eligible}},
	}
}

// Total returns the chips across all pots.
func (pm *potManager) Total() int {
	total := 0
	for _, pot := range pm.pots {
		total += pot.Amount
	}
	return total
}

// collectBets moves each player's street bet into the main pot.
func (pm *potManager) collectBets(players []*Player) {
	for _, p := range players {
		if p.Bet > 0 {
			pm.pots[0].Amount += p.Bet
			p.Bet = 0
		}
	}
}

// rebuildSidePots recomputes the pot layout from hand-total contributions,
// creating one pot per all-in level. Must run after collectBets.
func (pm *potManager) rebuildSidePots(players []*Player) {
	levels := map[int]bool{}
	for _, p := range players {
		if p.AllIn && p.TotalBet > 0 {
			levels[p.TotalBet] = true
		}
	}
	if len(levels) == 0 {
		pm.renumber()
		return
	}

	caps := make([]int, 0, len(levels))
	for amount := range levels {
		caps = append(caps, amount)
	}
	sort.Ints(caps)

	pm.pots = pm.pots[:0]
	prev := 0
	for _, level := range caps {
		pot := Pot{maxPerPlayer: level}
		for _, p := range players {
			if !p.Folded && p.TotalBet > prev {
				pot.Eligible = append(pot.Eligible, p.Seat)
			}
		}
		for _, p := range players {
			contribution := min(p.TotalBet-prev, level-prev)
			if contribution > 0 {
				pot.Amount += contribution
			}
		}
		if pot.Amount > 0 && len(pot.Eligible) > 0 {
			pm.pots = append(pm.pots, pot)
		}
		prev = level
	}

	// Chips above the highest all-in level go to a final pot contested by
	// the remaining live players.
	overflow := Pot{}
	for _, p := range players {
		if p.TotalBet > prev {
			if !p.Folded {
				overflow.Eligible = append(overflow.Eligible, p.Seat)
			}
			overflow.Amount += p.TotalBet - prev
		}
	}
	if overflow.Amount > 0 && len(overflow.Eligible) > 0 {
		pm.pots = append(pm.pots, overflow)
	}
	pm.renumber()
}

func (pm *potManager) renumber() {
	for i := range pm.pots {
		pm.pots[i].ID = i
	}
}

// snapshotWithUncollected copies the pots, folding any not-yet-collected
// street bets into the pot currently being contested.
func (pm *potManager) snapshotWithUncollected(players []*Player) []Pot {
	uncollected := 0
	for _, p := range players {
		uncollected += p.Bet
	}

	out := make([]Pot, len(pm.pots))
	for i, pot := range pm.pots {
		out[i] = pot
		out[i].Eligible = append([]int(nil), pot.Eligible...)
	}
	if uncollected > 0 && len(out) > 0 {
		out[len(out)-1].Amount += uncollected
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
