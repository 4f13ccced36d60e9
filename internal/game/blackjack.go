package game

import (
	"fmt"
	"io"
	"math/rand"
	"time"
)

// Outcome is how a round ended for the player.
type Outcome string

const (
	Win  Outcome = "win"
	Loss Outcome = "lose"
	Push Outcome = "push"
)

// DoublePolicy decides what a "double" does to the wager.
type DoublePolicy string

const (
	// DoubleStake doubles the wager when the bankroll covers it, then takes
	// exactly one card.
	DoubleStake DoublePolicy = "stake"
	// DoubleCardOnly takes exactly one card and leaves the wager unchanged.
	DoubleCardOnly DoublePolicy = "cardOnly"
)

// Config describes one simulated table.
type Config struct {
	Decks              int          `json:"decks"`
	ReshuffleThreshold float64      `json:"threshold"`
	FlatBet            int          `json:"bet"`
	Bankroll           int          `json:"bankroll"`
	Double             DoublePolicy `json:"double"`
	// Seed for the shoe; zero picks a time-based seed.
	Seed int64 `json:"seed"`
}

// DefaultConfig is a six-deck shoe reshuffled at 25% with a flat bet of 10.
func DefaultConfig() Config {
	return Config{
		Decks:              6,
		ReshuffleThreshold: 0.25,
		FlatBet:            10,
		Bankroll:           1000,
		Double:             DoubleStake,
	}
}

// Statistics are running counters for a simulation. Every round ends in
// exactly one of Wins, Losses or Pushes.
type Statistics struct {
	Rounds      int `json:"rounds"`
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`
	Pushes      int `json:"pushes"`
	Blackjacks  int `json:"blackjacks"`
	Doubles     int `json:"doubles"`
	Splits      int `json:"splits"`
	PlayerBusts int `json:"playerBusts"`
	DealerBusts int `json:"dealerBusts"`
	Reshuffles  int `json:"reshuffles"`
	NetWinnings int `json:"netWinnings"`
}

// RoundResult records how a single round played out.
type RoundResult struct {
	Round       int      `json:"round"`
	PlayerHand  Hand     `json:"playerHand"`
	DealerHand  Hand     `json:"dealerHand"`
	PlayerTotal int      `json:"playerTotal"`
	DealerTotal int      `json:"dealerTotal"`
	Actions     []Action `json:"actions"`
	Outcome     Outcome  `json:"outcome"`
	Natural     bool     `json:"natural"`
	Doubled     bool     `json:"doubled"`
	Reshuffled  bool     `json:"reshuffled"`
	Bet         int      `json:"bet"`
	Payout      int      `json:"payout"`
	Bankroll    int      `json:"bankroll"`
}

// Simulation plays rounds between one automated player and the dealer.
// It is single-threaded: a Simulation must not be shared between goroutines.
type Simulation struct {
	cfg      Config
	shoe     *Shoe
	strategy *StrategyTable
	player   *Participant
	dealer   *Participant
	stats    Statistics
	trace    io.Writer
	onRound  func(RoundResult)
}

// NewSimulation creates a simulation with a freshly shuffled shoe. Round
// traces are written to trace, which may be nil.
func NewSimulation(cfg Config, strategy *StrategyTable, trace io.Writer) *Simulation {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	shoe := NewShoe(cfg.Decks, cfg.ReshuffleThreshold, rand.New(rand.NewSource(seed)))
	return NewSimulationWithShoe(cfg, strategy, shoe, trace)
}

// NewSimulationWithShoe is NewSimulation with a caller-supplied shoe.
func NewSimulationWithShoe(cfg Config, strategy *StrategyTable, shoe *Shoe, trace io.Writer) *Simulation {
	if trace == nil {
		trace = io.Discard
	}
	if strategy == nil {
		strategy = NewBasicStrategy()
	}
	if cfg.Double == "" {
		cfg.Double = DoubleStake
	}
	return &Simulation{
		cfg:      cfg,
		shoe:     shoe,
		strategy: strategy,
		player:   NewPlayer("Player 1", cfg.Bankroll),
		dealer:   NewDealer(),
		trace:    trace,
	}
}

// OnRound registers a callback invoked after every completed round.
func (s *Simulation) OnRound(fn func(RoundResult)) {
	s.onRound = fn
}

// Player returns the automated player.
func (s *Simulation) Player() *Participant {
	return s.player
}

// Statistics returns a snapshot of the running counters.
func (s *Simulation) Statistics() Statistics {
	stats := s.stats
	stats.Reshuffles = s.shoe.Reshuffles()
	return stats
}

// Run plays n rounds and returns the final statistics.
func (s *Simulation) Run(n int) Statistics {
	for i := 0; i < n; i++ {
		s.PlayRound()
	}
	return s.Statistics()
}

// PlayRound deals, plays and settles one round.
func (s *Simulation) PlayRound() RoundResult {
	result := RoundResult{Round: s.stats.Rounds + 1}
	s.printf("\nStarting round %d...\n", result.Round)

	if s.shoe.NeedsReshuffle() {
		s.shoe.Reshuffle()
		result.Reshuffled = true
		s.printf("Reshuffling the shoe (%d cards).\n", s.shoe.ShoeSize())
	}

	s.placeBet()
	s.dealInitialHands()
	result.Actions, result.Doubled = s.playerTurn()
	s.dealerTurn()
	s.resolve(&result)
	s.resetHands()

	s.record(result)
	if s.onRound != nil {
		s.onRound(result)
	}
	return result
}

func (s *Simulation) placeBet() {
	if s.cfg.FlatBet <= 0 {
		return
	}
	if err := s.player.PlaceBet(s.cfg.FlatBet); err != nil {
		s.printf("%s cannot bet %d (%v); playing the round unstaked.\n", s.player.Name, s.cfg.FlatBet, err)
	}
}

// dealInitialHands deals two cards each, alternating player and dealer.
func (s *Simulation) dealInitialHands() {
	for i := 0; i < 2; i++ {
		s.player.ReceiveCard(s.shoe.DrawCard())
		s.dealer.ReceiveCard(s.shoe.DrawCard())
	}
}

func (s *Simulation) playerTurn() (actions []Action, doubled bool) {
	s.printf("\n%s's turn:\n", s.player.Name)
	upCard, _ := s.dealer.UpCard()
	s.printf("Dealer shows %s.\n", upCard)

	for !IsBust(s.player.Hand) {
		s.printf("%s\n", s.player)
		action := s.strategy.Decide(s.player.Hand, upCard.Value())
		actions = append(actions, action)
		s.printf("%s chooses to %s.\n", s.player.Name, action)

		switch action {
		case Stand:
			s.printf("%s ends their turn.\n", s.player.Name)
			return actions, doubled
		case Double:
			doubled = true
			s.doubleStake()
			s.player.ReceiveCard(s.shoe.DrawCard())
			s.printf("%s\n%s ends their turn.\n", s.player, s.player.Name)
			return actions, doubled
		case Split:
			// Split hands are not played; the pair is hit instead.
			s.stats.Splits++
			s.printf("Splitting is not supported; %s hits instead.\n", s.player.Name)
		}
		s.player.ReceiveCard(s.shoe.DrawCard())
	}

	s.printf("%s\n%s busts.\n", s.player, s.player.Name)
	return actions, doubled
}

func (s *Simulation) doubleStake() {
	s.stats.Doubles++
	if s.cfg.Double != DoubleStake || s.player.Bet == 0 {
		return
	}
	if err := s.player.PlaceBet(s.player.Bet); err != nil {
		s.printf("%s cannot double the stake (%v); taking one card.\n", s.player.Name, err)
	}
}

func (s *Simulation) dealerTurn() {
	s.printf("\nDealer's turn:\n")
	for DealerShouldHit(s.dealer.Hand) {
		s.printf("%s\n", s.dealer)
		s.dealer.ReceiveCard(s.shoe.DrawCard())
	}
	s.printf("Dealer ends their turn with:\n%s\n", s.dealer)
}

func (s *Simulation) resolve(result *RoundResult) {
	player, dealer := s.player, s.dealer
	playerTotal, dealerTotal := player.Total(), dealer.Total()
	bet := player.Bet

	result.PlayerHand = append(Hand{}, player.Hand...)
	result.DealerHand = append(Hand{}, dealer.Hand...)
	result.PlayerTotal = playerTotal
	result.DealerTotal = dealerTotal
	result.Bet = bet

	switch {
	case playerTotal > 21:
		result.Outcome = Loss
		s.printf("%s busted! Dealer wins.\n", player.Name)
	case IsNatural(player.Hand) && !IsNatural(dealer.Hand):
		// Blackjack pays 3:2; the odd half chip of an odd bet is not paid
		result.Outcome = Win
		result.Natural = true
		result.Payout = bet + bet*3/2
		s.printf("%s has blackjack and wins!\n", player.Name)
	case dealerTotal > 21 || playerTotal > dealerTotal:
		result.Outcome = Win
		result.Payout = bet * 2
		s.printf("%s wins!\n", player.Name)
	case playerTotal == dealerTotal:
		result.Outcome = Push
		result.Payout = bet
		s.printf("%s pushes.\n", player.Name)
	default:
		result.Outcome = Loss
		s.printf("%s loses.\n", player.Name)
	}

	player.Settle(result.Payout)
	result.Bankroll = player.Bankroll
}

func (s *Simulation) resetHands() {
	s.player.ClearHand()
	s.dealer.ClearHand()
}

func (s *Simulation) record(r RoundResult) {
	s.stats.Rounds++
	switch r.Outcome {
	case Win:
		s.stats.Wins++
	case Push:
		s.stats.Pushes++
	default:
		s.stats.Losses++
	}
	if r.Natural {
		s.stats.Blackjacks++
	}
	if r.PlayerTotal > 21 {
		s.stats.PlayerBusts++
	}
	if r.DealerTotal > 21 {
		s.stats.DealerBusts++
	}
	s.stats.NetWinnings += r.Payout - r.Bet
}

func (s *Simulation) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.trace, format, args...)
}

// PrintSummary writes the final counters in a human-readable form.
func PrintSummary(w io.Writer, stats Statistics) {
	fmt.Fprintf(w, "\nSimulation summary\n")
	fmt.Fprintf(w, "  Rounds:       %d\n", stats.Rounds)
	fmt.Fprintf(w, "  Wins:         %d\n", stats.Wins)
	fmt.Fprintf(w, "  Losses:       %d\n", stats.Losses)
	fmt.Fprintf(w, "  Pushes:       %d\n", stats.Pushes)
	fmt.Fprintf(w, "  Blackjacks:   %d\n", stats.Blackjacks)
	fmt.Fprintf(w, "  Doubles:      %d\n", stats.Doubles)
	fmt.Fprintf(w, "  Splits (hit): %d\n", stats.Splits)
	fmt.Fprintf(w, "  Reshuffles:   %d\n", stats.Reshuffles)
	fmt.Fprintf(w, "  Net winnings: %+d\n", stats.NetWinnings)
}
