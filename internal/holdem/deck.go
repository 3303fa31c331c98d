package holdem

import rand "math/rand/v2"

// Deck is a shuffled 52-card deck. The shuffle order comes entirely from
// the injected RNG, so a table seeded for replay deals identical hands.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewDeck builds a full deck and shuffles it with rng.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{
		cards: make([]Card, 0, 52),
		rng:   rng,
	}
	d.Reset()
	return d
}

// Reset restores the full 52 cards and reshuffles.
func (d *Deck) Reset() {
	d.cards = d.cards[:0]
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(rank, suit))
		}
	}
	d.shuffle()
}

func (d *Deck) shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes and returns the top card.
func (d *Deck) Deal() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, true
}

// DealN deals up to n cards.
func (d *Deck) DealN(n int) []Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	cards := make([]Card, n)
	for i := 0; i < n; i++ {
		cards[i], _ = d.Deal()
	}
	return cards
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int {
	return len(d.cards)
}
