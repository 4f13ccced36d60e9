package game

import (
	"fmt"
	"strings"
)

type Suit string
type Rank string

const (
	Hearts   Suit = "Hearts"
	Diamonds Suit = "Diamonds"
	Clubs    Suit = "Clubs"
	Spades   Suit = "Spades"
)

const (
	Ace   Rank = "A"
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
)

var (
	Suits = []Suit{Hearts, Diamonds, Clubs, Spades}
	Ranks = []Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}
)

// Card is an immutable playing card. The suit is cosmetic.
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// Value returns the blackjack value of the card. Aces count 11 here; the
// hand evaluator downgrades them to 1 when needed.
func (c Card) Value() int {
	switch c.Rank {
	case Ace:
		return 11
	case Ten, Jack, Queen, King:
		return 10
	case Two:
		return 2
	case Three:
		return 3
	case Four:
		return 4
	case Five:
		return 5
	case Six:
		return 6
	case Seven:
		return 7
	case Eight:
		return 8
	case Nine:
		return 9
	default:
		return 0
	}
}

// IsAce reports whether the card is an Ace.
func (c Card) IsAce() bool {
	return c.Rank == Ace
}

func (c Card) String() string {
	var suit string
	switch c.Suit {
	case Hearts:
		suit = "♥"
	case Diamonds:
		suit = "♦"
	case Clubs:
		suit = "♣"
	case Spades:
		suit = "♠"
	}
	return string(c.Rank) + suit
}

// ParseCard parses a card such as "A", "10", "K♠" or "qh". A missing suit
// defaults to Spades. "1" and "11" are accepted as an Ace so up-card values
// can be passed straight through.
func ParseCard(s string) (Card, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return Card{}, fmt.Errorf("%w: empty", ErrInvalidCard)
	}

	suit := Spades
	for glyph, st := range map[string]Suit{
		"♥": Hearts, "H": Hearts,
		"♦": Diamonds, "D": Diamonds,
		"♣": Clubs, "C": Clubs,
		"♠": Spades, "S": Spades,
	} {
		if strings.HasSuffix(s, glyph) && len(s) > len(glyph) {
			suit = st
			s = strings.TrimSuffix(s, glyph)
			break
		}
	}

	switch s {
	case "1", "11", "ACE":
		s = string(Ace)
	case "T":
		s = string(Ten)
	}
	for _, r := range Ranks {
		if string(r) == s {
			return Card{Suit: suit, Rank: r}, nil
		}
	}
	return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, s)
}
