package application

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	monitor "github.com/Hossam-Nazih/gestion-de-maintenance/internal/monitor/domain"
	"github.com/Hossam-Nazih/gestion-de-maintenance/internal/observability/metrics"
)

// StatusSource fetches the raw status batch from the backend.
type StatusSource interface {
	FetchStatuses(ctx context.Context) ([]map[string]any, error)
}

// SourceFunc adapts a function to StatusSource.
type SourceFunc func(ctx context.Context) ([]map[string]any, error)

// FetchStatuses implements StatusSource.
func (f SourceFunc) FetchStatuses(ctx context.Context) ([]map[string]any, error) {
	return f(ctx)
}

// TransitionSink observes status transitions. prev is nil when the
// equipment is seen for the first time.
type TransitionSink interface {
	ObserveTransition(ctx context.Context, prev *monitor.EquipmentStatus, next monitor.EquipmentStatus) error
}

// Snapshot is the poller's last known state, served to UI clients.
// A failed fetch keeps the previous statuses and raises Err.
type Snapshot struct {
	Statuses  []monitor.EquipmentStatus
	FetchedAt time.Time
	Err       error
}

// SnapshotPublisher receives the result of every successful refresh.
type SnapshotPublisher interface {
	PublishSnapshot(ctx context.Context, snap Snapshot)
}

// Poller drives the periodic status refresh: one immediate fetch on
// start, then a fixed interval. Fetch failures retain the previous
// snapshot and never stop the schedule. Alerts are fed to the manager
// only on transitions into (or within) the banner-qualifying set, so a
// long-running intervention does not re-alert each cycle.
type Poller struct {
	source    StatusSource
	manager   *AlertManager
	sinks     []TransitionSink
	publisher SnapshotPublisher
	interval  time.Duration
	logger    *log.Logger
	now       func() time.Time

	mu       sync.RWMutex
	last     Snapshot
	previous map[string]monitor.StatusCode
}

// PollerOption customizes a Poller.
type PollerOption func(*Poller)

// WithInterval overrides the poll interval.
func WithInterval(interval time.Duration) PollerOption {
	return func(p *Poller) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

// WithSinks registers transition sinks.
func WithSinks(sinks ...TransitionSink) PollerOption {
	return func(p *Poller) {
		p.sinks = append(p.sinks, sinks...)
	}
}

// WithSnapshotPublisher streams each successful refresh result out,
// alongside the REST snapshot endpoint.
func WithSnapshotPublisher(publisher SnapshotPublisher) PollerOption {
	return func(p *Poller) {
		p.publisher = publisher
	}
}

// WithPollerClock overrides the time source.
func WithPollerClock(now func() time.Time) PollerOption {
	return func(p *Poller) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPoller constructs a Poller.
func NewPoller(source StatusSource, manager *AlertManager, logger *log.Logger, opts ...PollerOption) (*Poller, error) {
	if source == nil {
		return nil, errors.New("poller: nil source")
	}
	if manager == nil {
		return nil, errors.New("poller: nil alert manager")
	}
	poller := &Poller{
		source:   source,
		manager:  manager,
		interval: 30 * time.Second,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		previous: make(map[string]monitor.StatusCode),
	}
	for _, opt := range opts {
		opt(poller)
	}
	return poller, nil
}

// Start runs the poll loop until ctx is cancelled. It performs one
// immediate fetch, then refetches on the fixed interval.
func (p *Poller) Start(ctx context.Context) {
	if p == nil {
		return
	}
	p.refresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

// Refresh performs one out-of-band fetch. The periodic schedule keeps
// its phase; a manual refresh between ticks does not delay the next one.
func (p *Poller) Refresh(ctx context.Context) error {
	return p.refresh(ctx)
}

// Snapshot returns the last known state.
func (p *Poller) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	statuses := make([]monitor.EquipmentStatus, len(p.last.Statuses))
	copy(statuses, p.last.Statuses)
	return Snapshot{Statuses: statuses, FetchedAt: p.last.FetchedAt, Err: p.last.Err}
}

type transition struct {
	prev *monitor.EquipmentStatus
	next monitor.EquipmentStatus
}

func (p *Poller) refresh(ctx context.Context) error {
	start := time.Now()
	items, err := p.source.FetchStatuses(ctx)
	if ctx.Err() != nil {
		// Torn down while the fetch was in flight; drop the result.
		return ctx.Err()
	}
	if err != nil {
		metrics.ObservePoll("error", time.Since(start))
		if p.logger != nil {
			p.logger.Printf("poll: fetch failed: %v", err)
		}
		p.mu.Lock()
		p.last.Err = err
		p.mu.Unlock()
		return err
	}

	fetchedAt := p.now()
	statuses := monitor.NormalizeBatch(items, fetchedAt)

	p.mu.Lock()
	prevStatuses := make(map[string]monitor.EquipmentStatus, len(p.last.Statuses))
	for _, status := range p.last.Statuses {
		prevStatuses[status.ID] = status
	}

	var fresh []monitor.EquipmentStatus
	var transitions []transition
	nextCodes := make(map[string]monitor.StatusCode, len(statuses))
	for _, status := range statuses {
		nextCodes[status.ID] = status.Status
		prevCode, seen := p.previous[status.ID]
		if seen && prevCode == status.Status {
			continue
		}
		if monitor.BannerQualifies(status.Status) {
			fresh = append(fresh, status)
		}
		tr := transition{next: status}
		if prev, ok := prevStatuses[status.ID]; ok {
			prevCopy := prev
			tr.prev = &prevCopy
		}
		transitions = append(transitions, tr)
	}
	p.previous = nextCodes
	p.last = Snapshot{Statuses: statuses, FetchedAt: fetchedAt}
	p.mu.Unlock()

	metrics.ObservePoll("success", time.Since(start))

	if p.publisher != nil {
		p.publisher.PublishSnapshot(ctx, Snapshot{Statuses: statuses, FetchedAt: fetchedAt})
	}

	// Banner derivation is capped; a batch of qualifying transitions
	// only surfaces the most recent entries.
	fresh = monitor.DeriveAlerts(fresh, monitor.ModeBanner)
	if len(fresh) > 0 {
		p.manager.Add(ctx, fresh)
	}
	for _, tr := range transitions {
		for _, sink := range p.sinks {
			if sink == nil {
				continue
			}
			if err := sink.ObserveTransition(ctx, tr.prev, tr.next); err != nil && p.logger != nil {
				p.logger.Printf("poll: transition sink error: equipment=%s err=%v", tr.next.ID, err)
			}
		}
	}
	return nil
}
