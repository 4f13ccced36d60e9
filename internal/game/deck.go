package game

import (
	"math/rand"
)

const cardsPerDeck = 52

// Deck is a single 52-card deck; shoes are built from them.
type Deck struct {
	Cards []Card
}

// NewDeck creates a new standard 52-card deck
func NewDeck() *Deck {
	deck := &Deck{Cards: make([]Card, 0, cardsPerDeck)}
	for _, suit := range Suits {
		for _, rank := range Ranks {
			deck.Cards = append(deck.Cards, Card{Suit: suit, Rank: rank})
		}
	}
	return deck
}

// Fisher-Yates
func shuffleCards(cards []Card, r *rand.Rand) {
	for i := len(cards) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// Shoe is the multi-deck card supply used across many rounds. It is owned by
// a single simulation and is not safe for concurrent use.
type Shoe struct {
	decks      int
	threshold  float64
	rng        *rand.Rand
	cards      []Card
	reshuffles int
}

// NewShoe builds a shuffled shoe of the given number of decks. threshold is
// the fraction of a full shoe at or below which NeedsReshuffle reports true.
func NewShoe(decks int, threshold float64, rng *rand.Rand) *Shoe {
	if decks < 1 {
		decks = 1
	}
	if threshold < 0 {
		threshold = 0
	}
	if threshold >= 1 {
		threshold = 0.99
	}

	s := &Shoe{decks: decks, threshold: threshold, rng: rng}
	s.fill()
	return s
}

func (s *Shoe) fill() {
	s.cards = make([]Card, 0, s.FullSize())
	for i := 0; i < s.decks; i++ {
		s.cards = append(s.cards, NewDeck().Cards...)
	}
	shuffleCards(s.cards, s.rng)
}

// DrawCard removes and returns the top card. An exhausted shoe is rebuilt
// and reshuffled first, so a card is always returned.
func (s *Shoe) DrawCard() Card {
	card, err := s.pop()
	if err != nil {
		s.Reshuffle()
		card, _ = s.pop()
	}
	return card
}

func (s *Shoe) pop() (Card, error) {
	if len(s.cards) == 0 {
		return Card{}, ErrEmptyShoe
	}
	card := s.cards[len(s.cards)-1]
	s.cards = s.cards[:len(s.cards)-1]
	return card, nil
}

// ShoeSize returns the number of cards left in the shoe
func (s *Shoe) ShoeSize() int {
	return len(s.cards)
}

// FullSize returns the number of cards in a freshly built shoe
func (s *Shoe) FullSize() int {
	return s.decks * cardsPerDeck
}

// NeedsReshuffle reports whether the shoe has fallen to the reshuffle threshold.
func (s *Shoe) NeedsReshuffle() bool {
	return float64(len(s.cards)) <= s.threshold*float64(s.FullSize())
}

// Reshuffle returns every card to the shoe and shuffles it.
func (s *Shoe) Reshuffle() {
	s.fill()
	s.reshuffles++
}

// Reshuffles returns how many times the shoe has been rebuilt.
func (s *Shoe) Reshuffles() int {
	return s.reshuffles
}
