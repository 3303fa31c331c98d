package holdem

import (
	"encoding/json"
	"fmt"
)

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// String returns the suit symbol
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// Letter returns the single-letter suit code used in compact notation ("As").
func (s Suit) Letter() string {
	switch s {
	case Spades:
		return "s"
	case Hearts:
		return "h"
	case Diamonds:
		return "d"
	case Clubs:
		return "c"
	default:
		return "?"
	}
}

// Rank represents a card rank, aces high
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the single-character rank code
func (r Rank) String() string {
	switch r {
	case Ten:
		return "T"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		if r >= Two && r <= Nine {
			return string(rune('0' + int(r)))
		}
		return "?"
	}
}

// Card is an immutable playing card.
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a new card
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// String returns the display pair, e.g. "A♠".
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// Notation returns the compact two-character form, e.g. "As".
func (c Card) Notation() string {
	return c.Rank.String() + c.Suit.Letter()
}

// ID returns a dense numeric identifier in [0,51].
func (c Card) ID() int {
	return int(c.Suit)*13 + int(c.Rank-Two)
}

// CardFromID is the inverse of Card.ID.
func CardFromID(id int) (Card, error) {
	if id < 0 || id > 51 {
		return Card{}, fmt.Errorf("card id out of range: %d", id)
	}
	return Card{Rank: Rank(id%13) + Two, Suit: Suit(id / 13)}, nil
}

// ParseCard parses compact notation ("As", "Th") or a display pair ("A♠").
func ParseCard(s string) (Card, error) {
	runes := []rune(s)
	if len(runes) != 2 {
		return Card{}, fmt.Errorf("malformed card %q", s)
	}

	var rank Rank
	switch runes[0] {
	case 'T', 't':
		rank = Ten
	case 'J', 'j':
		rank = Jack
	case 'Q', 'q':
		rank = Queen
	case 'K', 'k':
		rank = King
	case 'A', 'a':
		rank = Ace
	default:
		if runes[0] >= '2' && runes[0] <= '9' {
			rank = Rank(runes[0] - '0')
		} else {
			return Card{}, fmt.Errorf("unknown rank %q in card %q", runes[0], s)
		}
	}

	var suit Suit
	switch runes[1] {
	case 's', 'S', '♠':
		suit = Spades
	case 'h', 'H', '♥':
		suit = Hearts
	case 'd', 'D', '♦':
		suit = Diamonds
	case 'c', 'C', '♣':
		suit = Clubs
	default:
		return Card{}, fmt.Errorf("unknown suit %q in card %q", runes[1], s)
	}

	return Card{Rank: rank, Suit: suit}, nil
}

type cardWire struct {
	Rank   string `json:"rank"`
	Suit   string `json:"suit"`
	Pretty string `json:"pretty_string"`
}

// MarshalJSON renders the wire form: rank and suit letters plus the
// display pair clients show directly.
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(cardWire{
		Rank:   c.Rank.String(),
		Suit:   c.Suit.Letter(),
		Pretty: c.String(),
	})
}

// UnmarshalJSON parses the wire form, ignoring the display pair.
func (c *Card) UnmarshalJSON(data []byte) error {
	var w cardWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	parsed, err := ParseCard(w.Rank + w.Suit)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// FormatCards renders a board or hand as space-separated display pairs.
func FormatCards(cards []Card) string {
	out := ""
	for i, c := range cards {
		if i > 0 {
			out += " "
		}
		out += c.String()
	}
	return out
}
