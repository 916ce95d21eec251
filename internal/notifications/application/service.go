package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	monitor "github.com/Hossam-Nazih/gestion-de-maintenance/internal/monitor/domain"
	notifications "github.com/Hossam-Nazih/gestion-de-maintenance/internal/notifications/domain"
	"github.com/Hossam-Nazih/gestion-de-maintenance/internal/observability/metrics"
	"github.com/google/uuid"
)

// Repository persists the notification journal.
type Repository interface {
	Insert(ctx context.Context, n *notifications.Notification) error
	List(ctx context.Context, filter notifications.Filter, limit int) ([]notifications.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) (int, error)
	Counts(ctx context.Context) (notifications.Counts, error)
}

const defaultListLimit = 100

// Service records status transitions as notifications and serves
// the journal. It plugs into the polling loop as a transition sink.
type Service struct {
	repo   Repository
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
func NewService(repo Repository, logger *log.Logger, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, errors.New("notifications service: nil repository")
	}
	if logger == nil {
		return nil, errors.New("notifications service: nil logger")
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

// ObserveTransition journals an equipment status transition.
func (s *Service) ObserveTransition(ctx context.Context, prev *monitor.EquipmentStatus, next monitor.EquipmentStatus) error {
	info := monitor.Classify(next.Status)
	n := &notifications.Notification{
		ID:            s.newID(),
		Type:          notifications.TypeStatusChange,
		Title:         fmt.Sprintf("%s %s", info.Icon, info.Label),
		Message:       transitionMessage(prev, next, info),
		EquipmentID:   next.ID,
		EquipmentName: next.Name,
		Status:        string(next.Status),
		Priority:      next.Priority,
		CreatedAt:     s.now().UTC(),
	}
	if err := n.Validate(); err != nil {
		return err
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		return err
	}
	metrics.NotificationRecorded()
	s.logger.Printf("notifications: recorded %s equipment=%s status=%s", n.ID, n.EquipmentID, n.Status)
	return nil
}

func transitionMessage(prev *monitor.EquipmentStatus, next monitor.EquipmentStatus, info monitor.StatusInfo) string {
	if prev == nil {
		return fmt.Sprintf("%s : %s", next.Name, info.Message)
	}
	prevInfo := monitor.Classify(prev.Status)
	return fmt.Sprintf("%s : %s (précédemment %s)", next.Name, info.Message, prevInfo.Label)
}

// List returns journal entries passing the filter, newest first.
func (s *Service) List(ctx context.Context, filter notifications.Filter, limit int) ([]notifications.Notification, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.repo.List(ctx, filter, limit)
}

// MarkRead marks one entry as read.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	if id == "" {
		return notifications.ErrNotFound
	}
	return s.repo.MarkRead(ctx, id)
}

// MarkAllRead marks every entry as read and returns how many changed.
func (s *Service) MarkAllRead(ctx context.Context) (int, error) {
	return s.repo.MarkAllRead(ctx)
}

// Counts returns the tab badge counters.
func (s *Service) Counts(ctx context.Context) (notifications.Counts, error) {
	return s.repo.Counts(ctx)
}
