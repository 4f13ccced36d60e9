package game

import "fmt"

// Participant is anyone holding a hand at the table. The dealer is a
// Participant with IsDealer set; it never bets.
type Participant struct {
	Name     string `json:"name"`
	Hand     Hand   `json:"hand"`
	Bankroll int    `json:"bankroll"`
	Bet      int    `json:"bet"`
	IsDealer bool   `json:"isDealer"`
}

// NewPlayer creates a player with the given starting bankroll
func NewPlayer(name string, bankroll int) *Participant {
	return &Participant{Name: name, Hand: Hand{}, Bankroll: bankroll}
}

// NewDealer creates the house participant
func NewDealer() *Participant {
	return &Participant{Name: "Dealer", Hand: Hand{}, IsDealer: true}
}

// ReceiveCard adds a dealt card to the hand
func (p *Participant) ReceiveCard(card Card) {
	p.Hand = append(p.Hand, card)
}

// ClearHand empties the hand at round end
func (p *Participant) ClearHand() {
	p.Hand = Hand{}
}

// Total returns the best total of the current hand
func (p *Participant) Total() int {
	return TotalValue(p.Hand)
}

// UpCard returns the first card dealt, which the dealer shows face up.
func (p *Participant) UpCard() (Card, bool) {
	if len(p.Hand) == 0 {
		return Card{}, false
	}
	return p.Hand[0], true
}

// PlaceBet moves amount from the bankroll onto the table.
func (p *Participant) PlaceBet(amount int) error {
	if amount <= 0 {
		return ErrInvalidBet
	}
	if amount > p.Bankroll {
		return fmt.Errorf("%w: bet %d, bankroll %d", ErrInsufficientFunds, amount, p.Bankroll)
	}
	p.Bet += amount
	p.Bankroll -= amount
	return nil
}

// Settle pays out the round and clears the stake. payout includes the
// returned stake, so a push pays Bet and a loss pays 0.
func (p *Participant) Settle(payout int) {
	p.Bankroll += payout
	p.Bet = 0
}

func (p *Participant) String() string {
	return fmt.Sprintf("%s: %s (Value: %d)", p.Name, p.Hand, p.Total())
}

// DealerShouldHit applies the house rule: draw below 17 and on soft 17.
func DealerShouldHit(hand Hand) bool {
	total, softAces := evaluate(hand)
	return total < 17 || (total == 17 && softAces > 0)
}
