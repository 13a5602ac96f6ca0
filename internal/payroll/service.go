package payroll

import (
	"context"
	"sync"
	"time"
)

// Service combines the attendance source with the console's working-session
// overrides. Overrides live in memory per instance only; they are never
// written back to the attendance source.
type Service struct {
	repo Repository

	mu        sync.Mutex
	overrides map[string]Override
}

// NewService wires a Repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, overrides: make(map[string]Override)}
}

// Project loads the attendance window and derives the payroll rows under the
// current overrides.
func (s *Service) Project(ctx context.Context, from, to time.Time) ([]Row, Totals, error) {
	summary, err := s.repo.AttendanceSummary(ctx, from, to)
	if err != nil {
		return nil, Totals{}, err
	}
	rows, totals := Project(summary, s.snapshotOverrides())
	return rows, totals, nil
}

// SetOverride replaces the working-session override for one employee.
func (s *Service) SetOverride(userID string, ov Override) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[userID] = ov
}

// ClearOverride drops an employee's override, restoring defaults.
func (s *Service) ClearOverride(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides, userID)
}

func (s *Service) snapshotOverrides() map[string]Override {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Override, len(s.overrides))
	for k, v := range s.overrides {
		out[k] = v
	}
	return out
}
