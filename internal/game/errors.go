package game

import "errors"

var (
	// ErrInsufficientFunds is returned when a bet exceeds the bankroll.
	ErrInsufficientFunds = errors.New("insufficient funds to place bet")
	// ErrInvalidBet is returned for a zero or negative bet.
	ErrInvalidBet = errors.New("bet must be positive")

	// ErrEmptyShoe never leaves the shoe; DrawCard rebuilds instead.
	ErrEmptyShoe = errors.New("shoe is empty")

	// ErrInvalidCard is returned when a card string cannot be parsed.
	ErrInvalidCard = errors.New("invalid card")
)
