package store

import "github.com/calvinwijaya/blackjack-sim/internal/game"

// Store defines the interface for simulation report storage
type Store interface {
	// SaveReport saves a report to the store
	SaveReport(r *game.Report) error

	// GetReport retrieves a report by ID
	GetReport(id string) (*game.Report, error)

	// GetTableReports retrieves all reports for a table, oldest first
	GetTableReports(tableID string) ([]*game.Report, error)

	// GetLatestTableReport retrieves the most recent report for a table
	GetLatestTableReport(tableID string) (*game.Report, error)

	// DeleteReport removes a report from the store
	DeleteReport(id string) error

	// GetAllReports returns all reports in the store
	GetAllReports() ([]*game.Report, error)
}
