package application

import (
	"context"
	"errors"
	"log"
	"time"

	monitor "github.com/Hossam-Nazih/gestion-de-maintenance/internal/monitor/domain"
	reports "github.com/Hossam-Nazih/gestion-de-maintenance/internal/reports/domain"
	"github.com/google/uuid"
)

// HistoryRepository persists the status transition log.
type HistoryRepository interface {
	Insert(ctx context.Context, e *reports.HistoryEntry) error
	ListPeriod(ctx context.Context, period reports.Period) ([]reports.HistoryEntry, error)
}

// Service records transitions and builds period summaries. It plugs
// into the polling loop as a transition sink.
type Service struct {
	repo   HistoryRepository
	logger *log.Logger
	newID  func() string
	now    func() time.Time
}

// Option configures the service.
type Option func(*Service)

// WithIDFactory overrides id generation, for tests.
func WithIDFactory(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// WithClock overrides the clock, for tests.
func WithClock(fn func() time.Time) Option {
	return func(s *Service) { s.now = fn }
}

// NewService constructs a service.
func NewService(repo HistoryRepository, logger *log.Logger, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, errors.New("reports service: nil repository")
	}
	if logger == nil {
		return nil, errors.New("reports service: nil logger")
	}
	s := &Service{
		repo:   repo,
		logger: logger,
		newID:  uuid.NewString,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ObserveTransition appends a history row for the transition.
func (s *Service) ObserveTransition(ctx context.Context, prev *monitor.EquipmentStatus, next monitor.EquipmentStatus) error {
	entry := &reports.HistoryEntry{
		ID:            s.newID(),
		EquipmentID:   next.ID,
		EquipmentName: next.Name,
		ToStatus:      string(next.Status),
		Priority:      next.Priority,
		RecordedAt:    s.now().UTC(),
	}
	if prev != nil {
		entry.FromStatus = string(prev.Status)
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	return s.repo.Insert(ctx, entry)
}

// Summary aggregates the history over a period.
func (s *Service) Summary(ctx context.Context, period reports.Period) (reports.Summary, error) {
	if !period.From.IsZero() && !period.To.IsZero() && !period.From.Before(period.To) {
		return reports.Summary{}, errors.New("reports: period from must precede to")
	}
	entries, err := s.repo.ListPeriod(ctx, period)
	if err != nil {
		return reports.Summary{}, err
	}
	return reports.Summarize(period, entries, s.now()), nil
}
