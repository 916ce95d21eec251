package application

import (
	"context"

	monitor "github.com/Hossam-Nazih/gestion-de-maintenance/internal/monitor/domain"
)

// Alert lifecycle event types.
const (
	EventCreated   = "created"
	EventDismissed = "dismissed"
	EventExpired   = "expired"
)

// AlertEvent is one lifecycle update of a banner alert.
type AlertEvent struct {
	Type  string        `json:"type"`
	Alert monitor.Alert `json:"alert"`
}

// AlertNotifier receives alert lifecycle events.
type AlertNotifier interface {
	Notify(ctx context.Context, event AlertEvent)
}

// MultiNotifier fans an event out to several notifiers.
type MultiNotifier struct {
	notifiers []AlertNotifier
}

// NewMultiNotifier constructs a MultiNotifier.
func NewMultiNotifier(notifiers ...AlertNotifier) *MultiNotifier {
	return &MultiNotifier{notifiers: notifiers}
}

// Notify forwards the event to all notifiers.
func (m *MultiNotifier) Notify(ctx context.Context, event AlertEvent) {
	if m == nil {
		return
	}
	for _, notifier := range m.notifiers {
		if notifier != nil {
			notifier.Notify(ctx, event)
		}
	}
}
