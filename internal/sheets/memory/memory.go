// Package memory is the in-process ReportWriter used in tests and when no
// spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"envelopes/internal/services"
)

type Store struct {
	mu      sync.Mutex
	reports []services.MonthlyReport
}

func New() *Store {
	return &Store{}
}

func (s *Store) AppendMonthlyReport(_ context.Context, r *services.MonthlyReport) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, *r)
	return fmt.Sprintf("mem:%d", len(s.reports)), nil
}

// Reports returns a copy of everything appended so far.
func (s *Store) Reports() []services.MonthlyReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]services.MonthlyReport(nil), s.reports...)
}
