package postgres

import (
	"context"
	"database/sql"
	"errors"

	reports "github.com/Hossam-Nazih/gestion-de-maintenance/internal/reports/domain"
)

// HistoryRepository is a Postgres transition log.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository constructs a repository.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// EnsureSchema creates the status_history table when missing.
func (r *HistoryRepository) EnsureSchema(ctx context.Context) error {
	if r == nil || r.db == nil {
		return errors.New("history repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS status_history (
	id TEXT PRIMARY KEY,
	equipment_id TEXT NOT NULL,
	equipment_name TEXT NOT NULL DEFAULT '',
	from_status TEXT NOT NULL DEFAULT '',
	to_status TEXT NOT NULL,
	priority TEXT NOT NULL DEFAULT 'normal',
	recorded_at TIMESTAMPTZ NOT NULL
)`)
	return err
}

// Insert appends a history row.
func (r *HistoryRepository) Insert(ctx context.Context, e *reports.HistoryEntry) error {
	if r == nil || r.db == nil {
		return errors.New("history repo: nil db")
	}
	if e == nil {
		return errors.New("history repo: nil entry")
	}
	if err := e.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO status_history (
	id, equipment_id, equipment_name, from_status, to_status, priority, recorded_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7
)`, e.ID, e.EquipmentID, e.EquipmentName, e.FromStatus, e.ToStatus, e.Priority, e.RecordedAt)
	return err
}

// ListPeriod returns rows inside the period, oldest first. Zero
// bounds are open on that side.
func (r *HistoryRepository) ListPeriod(ctx context.Context, period reports.Period) ([]reports.HistoryEntry, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("history repo: nil db")
	}
	query := `
SELECT id, equipment_id, equipment_name, from_status, to_status, priority, recorded_at
FROM status_history
WHERE 1 = 1`
	args := make([]any, 0, 2)
	if !period.From.IsZero() {
		args = append(args, period.From)
		query += ` AND recorded_at >= $1`
	}
	if !period.To.IsZero() {
		args = append(args, period.To)
		if len(args) == 2 {
			query += ` AND recorded_at < $2`
		} else {
			query += ` AND recorded_at < $1`
		}
	}
	query += `
ORDER BY recorded_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []reports.HistoryEntry
	for rows.Next() {
		var e reports.HistoryEntry
		if err := rows.Scan(
			&e.ID,
			&e.EquipmentID,
			&e.EquipmentName,
			&e.FromStatus,
			&e.ToStatus,
			&e.Priority,
			&e.RecordedAt,
		); err != nil {
			return nil, err
		}
		e.RecordedAt = e.RecordedAt.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
