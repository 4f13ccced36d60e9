// Package config loads server settings from the environment and flags.
package config

import (
	"errors"
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Server holds the HTTP simulation server configuration.
type Server struct {
	Port        string `env:"BLACKJACK_PORT" envDefault:"8080"`
	FrontendURL string `env:"BLACKJACK_FRONTEND_URL" envDefault:"http://localhost:5173"`
	// MaxRounds caps a single simulation request.
	MaxRounds int `env:"BLACKJACK_MAX_ROUNDS" envDefault:"100000"`
}

// ParseServer loads environment defaults and then lets flags override them.
func ParseServer(fs *flag.FlagSet, args []string) (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.Port, "port", cfg.Port, "Server port")
	fs.StringVar(&cfg.FrontendURL, "frontend", cfg.FrontendURL, "Frontend URL for CORS")
	fs.IntVar(&cfg.MaxRounds, "max-rounds", cfg.MaxRounds, "Largest simulation a request may run")
	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return Server{}, err
	}

	if cfg.MaxRounds <= 0 {
		return Server{}, errors.New("max-rounds must be positive")
	}
	return cfg, nil
}
