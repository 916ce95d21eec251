package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	reports "github.com/Hossam-Nazih/gestion-de-maintenance/internal/reports/domain"
)

// HistoryRepository is an in-memory transition log for demo/testing.
type HistoryRepository struct {
	mu      sync.RWMutex
	entries []reports.HistoryEntry
}

// NewHistoryRepository constructs a repository.
func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{}
}

// Insert appends a history row.
func (r *HistoryRepository) Insert(ctx context.Context, e *reports.HistoryEntry) error {
	_ = ctx
	if e == nil {
		return errors.New("history repo: nil entry")
	}
	if err := e.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *e)
	return nil
}

// ListPeriod returns rows inside the period, oldest first.
func (r *HistoryRepository) ListPeriod(ctx context.Context, period reports.Period) ([]reports.HistoryEntry, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]reports.HistoryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if period.Contains(e.RecordedAt) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RecordedAt.Before(out[j].RecordedAt)
	})
	return out, nil
}
