package store

import (
	"errors"
	"sort"
	"sync"

	"github.com/calvinwijaya/blackjack-sim/internal/game"
)

var (
	ErrReportNotFound = errors.New("report not found")
	ErrTableNotFound  = errors.New("table not found")
)

// MemoryStore is an in-memory implementation of report storage. Reports are
// lost when the process exits.
type MemoryStore struct {
	reports map[string]*game.Report
	tables  map[string][]*game.Report
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		reports: make(map[string]*game.Report),
		tables:  make(map[string][]*game.Report),
	}
}

// SaveReport saves a report to the store. Saving the same ID twice replaces it.
func (s *MemoryStore) SaveReport(r *game.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reports[r.ID]; exists {
		s.removeFromTable(r.ID)
	}
	s.reports[r.ID] = r
	s.tables[r.TableID] = append(s.tables[r.TableID], r)

	return nil
}

// GetReport retrieves a report by ID
func (s *MemoryStore) GetReport(id string) (*game.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.reports[id]
	if !exists {
		return nil, ErrReportNotFound
	}
	return r, nil
}

// GetTableReports retrieves all reports for a table
func (s *MemoryStore) GetTableReports(tableID string) ([]*game.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports := s.tables[tableID]
	return append([]*game.Report{}, reports...), nil
}

// GetLatestTableReport retrieves the most recent report for a table
func (s *MemoryStore) GetLatestTableReport(tableID string) (*game.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports, exists := s.tables[tableID]
	if !exists || len(reports) == 0 {
		return nil, ErrTableNotFound
	}
	return reports[len(reports)-1], nil
}

// DeleteReport removes a report from the store
func (s *MemoryStore) DeleteReport(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reports[id]; !exists {
		return ErrReportNotFound
	}
	s.removeFromTable(id)
	delete(s.reports, id)
	return nil
}

// removeFromTable drops report id from its table list. Callers hold mu.
func (s *MemoryStore) removeFromTable(id string) {
	r := s.reports[id]
	tableReports := s.tables[r.TableID]
	for i, tr := range tableReports {
		if tr.ID == id {
			s.tables[r.TableID] = append(tableReports[:i:i], tableReports[i+1:]...)
			break
		}
	}
	if len(s.tables[r.TableID]) == 0 {
		delete(s.tables, r.TableID)
	}
}

// GetAllReports returns all reports, newest first
func (s *MemoryStore) GetAllReports() ([]*game.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports := make([]*game.Report, 0, len(s.reports))
	for _, r := range s.reports {
		reports = append(reports, r)
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	return reports, nil
}
