package notifications

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a notification id does not exist.
var ErrNotFound = errors.New("notification not found")

// Notification types.
const (
	TypeStatusChange = "status_change"
	TypeAlert        = "alert"
)

// Filter selects a notification subset the way the UI tabs do.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterUnread    Filter = "unread"
	FilterUrgent    Filter = "urgent"
	FilterCompleted Filter = "completed"
)

// ParseFilter maps a query value to a filter, defaulting to all.
func ParseFilter(raw string) (Filter, error) {
	switch Filter(raw) {
	case FilterAll, FilterUnread, FilterUrgent, FilterCompleted:
		return Filter(raw), nil
	case "":
		return FilterAll, nil
	default:
		return "", errors.New("notifications: unknown filter " + raw)
	}
}

// Notification is one journal entry derived from an equipment
// status transition.
type Notification struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	EquipmentID   string    `json:"equipment_id"`
	EquipmentName string    `json:"equipment_name"`
	Status        string    `json:"status"`
	Priority      string    `json:"priority"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"created_at"`
}

// Validate checks required fields.
func (n *Notification) Validate() error {
	if n == nil {
		return errors.New("nil notification")
	}
	if n.ID == "" {
		return errors.New("notification id is required")
	}
	if n.Title == "" {
		return errors.New("notification title is required")
	}
	if n.EquipmentID == "" {
		return errors.New("notification equipment id is required")
	}
	return nil
}

// Urgent reports whether the entry belongs on the urgent tab.
func (n Notification) Urgent() bool {
	return n.Priority == "high" || n.Priority == "critical"
}

// Completed reports whether the underlying work is finished.
func (n Notification) Completed() bool {
	return n.Status == "TERMINEE" || n.Status == "REPARE_RECENT"
}

// Matches reports whether the entry passes the given filter.
func (n Notification) Matches(f Filter) bool {
	switch f {
	case FilterUnread:
		return !n.Read
	case FilterUrgent:
		return n.Urgent()
	case FilterCompleted:
		return n.Completed()
	default:
		return true
	}
}

// Counts summarises a journal for the UI tab badges.
type Counts struct {
	Total     int `json:"total"`
	Unread    int `json:"unread"`
	Urgent    int `json:"urgent"`
	Completed int `json:"completed"`
}
