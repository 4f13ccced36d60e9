package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/calvinwijaya/blackjack-sim/internal/game"
	"github.com/calvinwijaya/blackjack-sim/internal/store"
	"github.com/gorilla/mux"
)

const (
	defaultRounds = 100
	maxDecks      = 8

	// rounds kept per stored simulation
	defaultKeepRounds = 1000
)

// Handlers contains all the API handlers
type Handlers struct {
	store      store.Store
	strategy   *game.StrategyTable
	hub        *Hub
	maxRounds  int
	keepRounds int
}

// NewHandlers creates a new instance of Handlers. hub may be nil; a hub
// that is not running drops its events.
func NewHandlers(store store.Store, strategy *game.StrategyTable, hub *Hub, maxRounds int) *Handlers {
	return &Handlers{
		store:      store,
		strategy:   strategy,
		hub:        hub,
		maxRounds:  maxRounds,
		keepRounds: defaultKeepRounds,
	}
}

// RegisterRoutes registers all API routes
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	// Simulation endpoints
	r.HandleFunc("/api/table/{id}/simulate", h.Simulate).Methods("POST")
	r.HandleFunc("/api/table/{id}/simulations", h.TableSimulations).Methods("GET")
	r.HandleFunc("/api/table/list", h.ListTables).Methods("GET")
	r.HandleFunc("/api/simulation/{id}", h.GetSimulation).Methods("GET")
	r.HandleFunc("/api/simulation/{id}", h.DeleteSimulation).Methods("DELETE")

	// Strategy endpoints
	r.HandleFunc("/api/strategy", h.GetStrategy).Methods("GET")
	r.HandleFunc("/api/strategy/decide", h.Decide).Methods("POST")

	// WebSocket endpoint
	if h.hub != nil {
		r.HandleFunc("/ws", h.hub.WebSocketHandler)
	}
}

// response helper function to send JSON responses
func response(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// error response helper function
func errorResponse(w http.ResponseWriter, status int, message string) {
	response(w, status, map[string]string{"error": message})
}

// decodeBody decodes an optional JSON body; an empty body leaves dst untouched.
func decodeBody(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

type simulateRequest struct {
	Rounds        int     `json:"rounds"`
	Decks         int     `json:"decks"`
	Threshold     float64 `json:"threshold"`
	Bet           int     `json:"bet"`
	Bankroll      int     `json:"bankroll"`
	Double        string  `json:"double"`
	Seed          int64   `json:"seed"`
	IncludeRounds bool    `json:"includeRounds"`
}

// config applies the request on top of the default table
func (req simulateRequest) config() (game.Config, error) {
	cfg := game.DefaultConfig()
	if req.Decks < 0 || req.Decks > maxDecks {
		return cfg, fmt.Errorf("decks must be between 1 and %d", maxDecks)
	}
	if req.Decks > 0 {
		cfg.Decks = req.Decks
	}
	if req.Threshold < 0 || req.Threshold >= 1 {
		return cfg, errors.New("threshold must be in [0, 1)")
	}
	if req.Threshold > 0 {
		cfg.ReshuffleThreshold = req.Threshold
	}
	if req.Bet < 0 || req.Bankroll < 0 {
		return cfg, errors.New("bet and bankroll must not be negative")
	}
	if req.Bet > 0 {
		cfg.FlatBet = req.Bet
	}
	if req.Bankroll > 0 {
		cfg.Bankroll = req.Bankroll
	}
	switch game.DoublePolicy(req.Double) {
	case "":
	case game.DoubleStake, game.DoubleCardOnly:
		cfg.Double = game.DoublePolicy(req.Double)
	default:
		return cfg, fmt.Errorf("unknown double policy %q", req.Double)
	}
	cfg.Seed = req.Seed
	return cfg, nil
}

// Simulate runs a simulation at a table and streams each round to the
// table's WebSocket subscribers
func (h *Handlers) Simulate(w http.ResponseWriter, r *http.Request) {
	tableID := mux.Vars(r)["id"]

	req := simulateRequest{Rounds: defaultRounds}
	if err := decodeBody(r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Rounds < 0 || req.Rounds > h.maxRounds {
		errorResponse(w, http.StatusBadRequest, fmt.Sprintf("rounds must be between 0 and %d", h.maxRounds))
		return
	}
	cfg, err := req.config()
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	report := game.NewReport(tableID, cfg)
	start := time.Now()
	report.Run(h.strategy, req.Rounds, h.keepRounds, func(round game.RoundResult) {
		if h.hub != nil {
			h.hub.BroadcastToTable(tableID, Message{
				Type:     MessageRoundCompleted,
				ReportID: report.ID,
				TableID:  tableID,
				Data:     round,
			})
		}
	})
	log.Printf("Simulated %d rounds at table %s in %s", req.Rounds, tableID, time.Since(start))

	if err := h.store.SaveReport(report); err != nil {
		log.Printf("Error saving report %s: %v", report.ID, err)
		errorResponse(w, http.StatusInternalServerError, "Failed to save simulation")
		return
	}

	if h.hub != nil {
		h.hub.BroadcastToTable(tableID, Message{
			Type:     MessageSimulationCompleted,
			ReportID: report.ID,
			TableID:  tableID,
			Data:     report.Statistics,
		})
		h.hub.Broadcast(Message{Type: MessageTablesUpdated, TableID: tableID})
	}

	response(w, http.StatusCreated, summarize(report, req.IncludeRounds))
}

// summarize copies a report, dropping per-round detail unless asked for it
func summarize(report *game.Report, includeRounds bool) game.Report {
	out := *report
	if !includeRounds {
		out.Rounds = nil
	}
	return out
}

// GetSimulation returns a stored simulation with its rounds
func (h *Handlers) GetSimulation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	report, err := h.store.GetReport(id)
	if err != nil {
		errorResponse(w, http.StatusNotFound, "Simulation not found")
		return
	}

	response(w, http.StatusOK, report)
}

// DeleteSimulation removes a stored simulation
func (h *Handlers) DeleteSimulation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	report, err := h.store.GetReport(id)
	if err != nil {
		errorResponse(w, http.StatusNotFound, "Simulation not found")
		return
	}
	if err := h.store.DeleteReport(id); err != nil {
		errorResponse(w, http.StatusInternalServerError, "Failed to delete simulation")
		return
	}

	if h.hub != nil {
		h.hub.BroadcastToTable(report.TableID, Message{
			Type:     MessageReportDeleted,
			ReportID: id,
			TableID:  report.TableID,
		})
		h.hub.Broadcast(Message{Type: MessageTablesUpdated, TableID: report.TableID})
	}

	response(w, http.StatusOK, map[string]string{
		"success": "true",
		"message": "Simulation deleted",
	})
}

// TableSimulations lists the simulations run at a table, without rounds
func (h *Handlers) TableSimulations(w http.ResponseWriter, r *http.Request) {
	tableID := mux.Vars(r)["id"]

	reports, err := h.store.GetTableReports(tableID)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "Error retrieving simulations")
		return
	}

	out := make([]game.Report, len(reports))
	for i, report := range reports {
		out[i] = summarize(report, false)
	}
	response(w, http.StatusOK, out)
}

type tableInfo struct {
	ID             string    `json:"id"`
	Simulations    int       `json:"simulations"`
	Rounds         int       `json:"rounds"`
	LastSimulation string    `json:"lastSimulation"`
	LastUpdated    time.Time `json:"lastUpdated"`
	Subscribers    int       `json:"subscribers"`
}

// ListTables returns every table that has run a simulation
func (h *Handlers) ListTables(w http.ResponseWriter, r *http.Request) {
	reports, err := h.store.GetAllReports()
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "Error retrieving tables")
		return
	}

	tables := make(map[string]*tableInfo)
	for _, report := range reports {
		info, exists := tables[report.TableID]
		if !exists {
			info = &tableInfo{ID: report.TableID}
			if h.hub != nil {
				info.Subscribers = h.hub.Subscribers(report.TableID)
			}
			tables[report.TableID] = info
		}
		info.Simulations++
		info.Rounds += report.Statistics.Rounds
		if report.CreatedAt.After(info.LastUpdated) {
			info.LastUpdated = report.CreatedAt
			info.LastSimulation = report.ID
		}
	}

	list := make([]*tableInfo, 0, len(tables))
	for _, info := range tables {
		list = append(list, info)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].LastUpdated.After(list[j].LastUpdated)
	})

	response(w, http.StatusOK, list)
}

// GetStrategy returns the basic-strategy table
func (h *Handlers) GetStrategy(w http.ResponseWriter, r *http.Request) {
	response(w, http.StatusOK, map[string]interface{}{
		"hard":  h.strategy.Hard(),
		"soft":  h.strategy.Soft(),
		"pairs": h.strategy.Pairs(),
	})
}

// Decide evaluates a hand against a dealer up-card
func (h *Handlers) Decide(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Hand         []string `json:"hand"`
		DealerUpCard string   `json:"dealerUpCard"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Hand) == 0 {
		errorResponse(w, http.StatusBadRequest, "hand is required")
		return
	}

	hand := make(game.Hand, 0, len(req.Hand))
	for _, s := range req.Hand {
		card, err := game.ParseCard(s)
		if err != nil {
			errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		hand = append(hand, card)
	}
	upCard, err := game.ParseCard(req.DealerUpCard)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "dealerUpCard: "+err.Error())
		return
	}

	response(w, http.StatusOK, map[string]interface{}{
		"action": h.strategy.Decide(hand, upCard.Value()),
		"total":  game.TotalValue(hand),
		"soft":   game.IsSoft(hand),
		"pair":   game.IsPair(hand),
		"bust":   game.IsBust(hand),
	})
}
