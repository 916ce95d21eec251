package reports

import (
	"errors"
	"time"
)

// HistoryEntry is one recorded status transition.
type HistoryEntry struct {
	ID            string    `json:"id"`
	EquipmentID   string    `json:"equipment_id"`
	EquipmentName string    `json:"equipment_name"`
	FromStatus    string    `json:"from_status"`
	ToStatus      string    `json:"to_status"`
	Priority      string    `json:"priority"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// Validate checks required fields.
func (e *HistoryEntry) Validate() error {
	if e == nil {
		return errors.New("nil history entry")
	}
	if e.ID == "" {
		return errors.New("history id is required")
	}
	if e.EquipmentID == "" {
		return errors.New("history equipment id is required")
	}
	if e.ToStatus == "" {
		return errors.New("history to_status is required")
	}
	if e.RecordedAt.IsZero() {
		return errors.New("history recorded_at is required")
	}
	return nil
}

// Period bounds a summary query. To is exclusive.
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether ts falls in the period. Zero bounds are
// open on that side.
func (p Period) Contains(ts time.Time) bool {
	if !p.From.IsZero() && ts.Before(p.From) {
		return false
	}
	if !p.To.IsZero() && !ts.Before(p.To) {
		return false
	}
	return true
}

// Summary aggregates recorded transitions over a period.
type Summary struct {
	Period      Period         `json:"period"`
	Total       int            `json:"total"`
	ByStatus    map[string]int `json:"by_status"`
	ByPriority  map[string]int `json:"by_priority"`
	ByEquipment map[string]int `json:"by_equipment"`
	Breakdowns  []HistoryEntry `json:"-"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// Summarize builds a summary from entries already filtered to the
// period, keeping them for report rendering.
func Summarize(period Period, entries []HistoryEntry, now time.Time) Summary {
	s := Summary{
		Period:      period,
		ByStatus:    make(map[string]int),
		ByPriority:  make(map[string]int),
		ByEquipment: make(map[string]int),
		Breakdowns:  entries,
		GeneratedAt: now.UTC(),
	}
	for _, e := range entries {
		s.Total++
		s.ByStatus[e.ToStatus]++
		priority := e.Priority
		if priority == "" {
			priority = "normal"
		}
		s.ByPriority[priority]++
		s.ByEquipment[e.EquipmentID]++
	}
	return s
}
