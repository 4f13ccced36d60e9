package game

import (
	"time"

	"github.com/google/uuid"
)

// Report is a simulation run at a table as served by the API. Truncated is
// set when more rounds were played than kept in Rounds.
type Report struct {
	ID         string        `json:"id"`
	TableID    string        `json:"tableId"`
	Config     Config        `json:"config"`
	Statistics Statistics    `json:"statistics"`
	Rounds     []RoundResult `json:"rounds,omitempty"`
	Truncated  bool          `json:"truncated,omitempty"`
	Bankroll   int           `json:"bankroll"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// NewReport creates an empty report with a fresh ID.
func NewReport(tableID string, cfg Config) *Report {
	if tableID == "" {
		tableID = uuid.New().String()
	}
	return &Report{
		ID:        uuid.New().String(),
		TableID:   tableID,
		Config:    cfg,
		Bankroll:  cfg.Bankroll,
		CreatedAt: time.Now(),
	}
}

// Run plays n rounds with the report's config, keeping the first keep
// rounds. onRound, if set, sees every round as soon as it is settled.
func (r *Report) Run(strategy *StrategyTable, n, keep int, onRound func(RoundResult)) {
	sim := NewSimulation(r.Config, strategy, nil)

	if keep > n {
		keep = n
	}
	if keep < 0 {
		keep = 0
	}
	r.Rounds = make([]RoundResult, 0, keep)
	r.Truncated = n > keep
	sim.OnRound(func(result RoundResult) {
		if len(r.Rounds) < keep {
			r.Rounds = append(r.Rounds, result)
		}
		if onRound != nil {
			onRound(result)
		}
	})
	r.Statistics = sim.Run(n)
	r.Bankroll = sim.Player().Bankroll
}
