package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calvinwijaya/blackjack-sim/internal/api"
	"github.com/calvinwijaya/blackjack-sim/internal/config"
	"github.com/calvinwijaya/blackjack-sim/internal/game"
	"github.com/calvinwijaya/blackjack-sim/internal/store"
)

func main() {
	log.SetPrefix("[SERVER] ")

	cfg, err := config.ParseServer(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Reports live in memory only
	reportStore := store.NewMemoryStore()
	log.Println("In-memory report store initialized")

	hub := api.NewHub()
	go hub.Run(ctx)
	log.Println("WebSocket hub started")

	// The strategy table is built once and shared read-only by every request
	handlers := api.NewHandlers(reportStore, game.NewBasicStrategy(), hub, cfg.MaxRounds)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewRouter(handlers, cfg.FrontendURL),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
