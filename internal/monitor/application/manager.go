package application

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	monitor "github.com/Hossam-Nazih/gestion-de-maintenance/internal/monitor/domain"
	"github.com/Hossam-Nazih/gestion-de-maintenance/internal/observability/metrics"
)

const (
	defaultExpiryBase = 9 * time.Second
	defaultExpiryStep = time.Second
)

// AlertManager owns the banner-mode active-alert set: creation,
// manual dismissal, staggered auto-expiry and teardown. All mutations
// funnel through its lock; expiry timers are cancellable tasks keyed by
// alert id.
type AlertManager struct {
	mu     sync.Mutex
	alerts []monitor.Alert
	timers map[string]*time.Timer
	closed bool

	expiryBase time.Duration
	expiryStep time.Duration
	notifier   AlertNotifier
	logger     *log.Logger
	newID      func() string
	now        func() time.Time
}

// ManagerOption customizes an AlertManager.
type ManagerOption func(*AlertManager)

// WithExpiry overrides the auto-expiry base delay and per-alert stagger.
func WithExpiry(base, step time.Duration) ManagerOption {
	return func(m *AlertManager) {
		if base > 0 {
			m.expiryBase = base
		}
		if step >= 0 {
			m.expiryStep = step
		}
	}
}

// WithNotifier assigns a lifecycle notifier.
func WithNotifier(notifier AlertNotifier) ManagerOption {
	return func(m *AlertManager) {
		m.notifier = notifier
	}
}

// WithManagerLogger assigns a logger.
func WithManagerLogger(logger *log.Logger) ManagerOption {
	return func(m *AlertManager) {
		m.logger = logger
	}
}

// WithIDFactory overrides alert id generation.
func WithIDFactory(factory func() string) ManagerOption {
	return func(m *AlertManager) {
		if factory != nil {
			m.newID = factory
		}
	}
}

// WithManagerClock overrides the time source.
func WithManagerClock(now func() time.Time) ManagerOption {
	return func(m *AlertManager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewAlertManager constructs an AlertManager.
func NewAlertManager(opts ...ManagerOption) *AlertManager {
	manager := &AlertManager{
		timers:     make(map[string]*time.Timer),
		expiryBase: defaultExpiryBase,
		expiryStep: defaultExpiryStep,
		newID:      uuid.NewString,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(manager)
	}
	return manager
}

// ExpiryDelay returns the auto-expiry delay for the nth alert of a
// batch (0-indexed). Staggering keeps a batch from vanishing all at
// once.
func (m *AlertManager) ExpiryDelay(index int) time.Duration {
	return m.expiryBase + time.Duration(index)*m.expiryStep
}

// Add creates one new alert per status: fresh identity, snapshot copy,
// auto-expiry scheduled at ExpiryDelay(i). Re-detection of the same
// equipment always yields a new alert id.
func (m *AlertManager) Add(ctx context.Context, statuses []monitor.EquipmentStatus) []monitor.Alert {
	if len(statuses) == 0 {
		return nil
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	created := make([]monitor.Alert, 0, len(statuses))
	for i, status := range statuses {
		alert := monitor.Alert{
			ID:        m.newID(),
			Equipment: status,
			CreatedAt: m.now(),
		}
		m.alerts = append(m.alerts, alert)
		created = append(created, alert)

		id := alert.ID
		m.timers[id] = time.AfterFunc(m.ExpiryDelay(i), func() {
			m.expire(id)
		})
	}
	m.mu.Unlock()

	for _, alert := range created {
		metrics.AlertCreated()
		m.notify(ctx, AlertEvent{Type: EventCreated, Alert: alert})
	}
	metrics.SetActiveAlerts(m.count())
	return created
}

// Dismiss removes one alert and cancels its pending expiry. Dismissing
// an unknown or already-removed id is a no-op.
func (m *AlertManager) Dismiss(ctx context.Context, id string) bool {
	alert, ok := m.remove(id)
	if !ok {
		return false
	}
	metrics.AlertDismissed()
	metrics.SetActiveAlerts(m.count())
	alert.Dismissed = true
	m.notify(ctx, AlertEvent{Type: EventDismissed, Alert: alert})
	return true
}

// DismissAll clears the active set and cancels every pending timer.
func (m *AlertManager) DismissAll(ctx context.Context) {
	m.mu.Lock()
	dismissed := m.alerts
	m.alerts = nil
	for id, timer := range m.timers {
		timer.Stop()
		delete(m.timers, id)
	}
	m.mu.Unlock()

	for _, alert := range dismissed {
		metrics.AlertDismissed()
		alert.Dismissed = true
		m.notify(ctx, AlertEvent{Type: EventDismissed, Alert: alert})
	}
	metrics.SetActiveAlerts(0)
}

// Active returns the active alerts in insertion order.
func (m *AlertManager) Active() []monitor.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]monitor.Alert, len(m.alerts))
	copy(out, m.alerts)
	return out
}

// Stop tears the manager down: all timers cancelled, later callbacks
// and Add calls become no-ops. Safe to call more than once.
func (m *AlertManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for id, timer := range m.timers {
		timer.Stop()
		delete(m.timers, id)
	}
	m.alerts = nil
}

func (m *AlertManager) expire(id string) {
	alert, ok := m.remove(id)
	if !ok {
		// Lost the race against a manual dismissal or teardown.
		return
	}
	metrics.AlertExpired()
	metrics.SetActiveAlerts(m.count())
	alert.Dismissed = true
	m.notify(context.Background(), AlertEvent{Type: EventExpired, Alert: alert})
}

func (m *AlertManager) remove(id string) (monitor.Alert, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return monitor.Alert{}, false
	}
	if timer, ok := m.timers[id]; ok {
		timer.Stop()
		delete(m.timers, id)
	}
	for i, alert := range m.alerts {
		if alert.ID == id {
			m.alerts = append(m.alerts[:i], m.alerts[i+1:]...)
			return alert, true
		}
	}
	return monitor.Alert{}, false
}

func (m *AlertManager) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.alerts)
}

func (m *AlertManager) notify(ctx context.Context, event AlertEvent) {
	if m.notifier == nil {
		return
	}
	m.notifier.Notify(ctx, event)
	if m.logger != nil {
		m.logger.Printf("alert %s: id=%s equipment=%s status=%s", event.Type, event.Alert.ID, event.Alert.Equipment.ID, event.Alert.Equipment.Status)
	}
}
