package game

import "math/rand"

func card(r Rank) Card {
	return Card{Suit: Spades, Rank: r}
}

func hand(ranks ...Rank) Hand {
	h := make(Hand, len(ranks))
	for i, r := range ranks {
		h[i] = card(r)
	}
	return h
}

// stackedShoe returns a shoe that deals ranks in the given order.
func stackedShoe(ranks ...Rank) *Shoe {
	s := &Shoe{decks: 1, threshold: 0, rng: rand.New(rand.NewSource(1))}
	for i := len(ranks) - 1; i >= 0; i-- {
		s.cards = append(s.cards, card(ranks[i]))
	}
	return s
}
