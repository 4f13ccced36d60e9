package main

import (
	"os"

	"github.com/calvinwijaya/blackjack-sim/internal/game"
)

const rounds = 100

func main() {
	// Six-deck shoe reshuffled at 25%, one automated player
	sim := game.NewSimulation(game.DefaultConfig(), game.NewBasicStrategy(), os.Stdout)

	stats := sim.Run(rounds)
	game.PrintSummary(os.Stdout, stats)
}
