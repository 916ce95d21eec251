package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	notifications "github.com/Hossam-Nazih/gestion-de-maintenance/internal/notifications/domain"
)

// NotificationRepository is an in-memory journal for demo/testing.
type NotificationRepository struct {
	mu      sync.RWMutex
	entries []notifications.Notification
}

// NewNotificationRepository constructs a repository.
func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

// Insert appends a journal entry.
func (r *NotificationRepository) Insert(ctx context.Context, n *notifications.Notification) error {
	_ = ctx
	if n == nil {
		return errors.New("notification repo: nil notification")
	}
	if err := n.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *n)
	return nil
}

// List returns entries passing the filter, newest first.
func (r *NotificationRepository) List(ctx context.Context, filter notifications.Filter, limit int) ([]notifications.Notification, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]notifications.Notification, 0, len(r.entries))
	for _, n := range r.entries {
		if n.Matches(filter) {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MarkRead marks one entry as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		if r.entries[i].ID == id {
			r.entries[i].Read = true
			return nil
		}
	}
	return notifications.ErrNotFound
}

// MarkAllRead marks every entry as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context) (int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	changed := 0
	for i := range r.entries {
		if !r.entries[i].Read {
			r.entries[i].Read = true
			changed++
		}
	}
	return changed, nil
}

// Counts returns the tab badge counters.
func (r *NotificationRepository) Counts(ctx context.Context) (notifications.Counts, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var c notifications.Counts
	for _, n := range r.entries {
		c.Total++
		if !n.Read {
			c.Unread++
		}
		if n.Urgent() {
			c.Urgent++
		}
		if n.Completed() {
			c.Completed++
		}
	}
	return c, nil
}
