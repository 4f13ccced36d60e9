package game

import "strings"

// Hand is an ordered set of cards held by one participant.
type Hand []Card

// evaluate returns the best total and how many Aces are still counted as 11.
func evaluate(hand Hand) (total, softAces int) {
	for _, card := range hand {
		if card.IsAce() {
			softAces++
		}
		total += card.Value()
	}

	// Convert aces from 11 to 1 while the hand would bust
	for softAces > 0 && total > 21 {
		total -= 10
		softAces--
	}
	return total, softAces
}

// TotalValue calculates the blackjack total of a hand, counting each Ace as
// 11 unless that would bust the hand.
func TotalValue(hand Hand) int {
	total, _ := evaluate(hand)
	return total
}

// IsBust reports whether the hand is over 21.
func IsBust(hand Hand) bool {
	return TotalValue(hand) > 21
}

// IsSoft reports whether an Ace in the hand is currently counted as 11.
func IsSoft(hand Hand) bool {
	_, softAces := evaluate(hand)
	return softAces > 0
}

// IsPair reports whether the hand is an initial two-card pair. Cards pair on
// value, so any two ten-value cards (K and J for example) form a pair.
func IsPair(hand Hand) bool {
	return len(hand) == 2 && hand[0].Value() == hand[1].Value()
}

// IsNatural reports whether the hand is a two-card 21.
func IsNatural(hand Hand) bool {
	return len(hand) == 2 && TotalValue(hand) == 21
}

func (h Hand) String() string {
	parts := make([]string, len(h))
	for i, card := range h {
		parts[i] = card.String()
	}
	return strings.Join(parts, ", ")
}
