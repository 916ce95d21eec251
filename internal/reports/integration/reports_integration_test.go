package integration_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	reports "github.com/Hossam-Nazih/gestion-de-maintenance/internal/reports/domain"
	historyrepo "github.com/Hossam-Nazih/gestion-de-maintenance/internal/reports/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func TestStatusHistory_RoundTrip(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	repo := historyrepo.NewHistoryRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	_, _ = db.ExecContext(ctx, "DELETE FROM status_history")

	base := time.Date(2026, 6, 2, 9, 0, 0, 0, time.UTC)
	entries := []reports.HistoryEntry{
		{ID: "hist-1", EquipmentID: "1", EquipmentName: "Presse A", FromStatus: "OPERATIONNEL", ToStatus: "EN_ARRET", Priority: "critical", RecordedAt: base},
		{ID: "hist-2", EquipmentID: "2", EquipmentName: "Four B", ToStatus: "EN_ATTENTE", Priority: "normal", RecordedAt: base.Add(time.Hour)},
		{ID: "hist-3", EquipmentID: "1", EquipmentName: "Presse A", FromStatus: "EN_ARRET", ToStatus: "EN_COURS", Priority: "high", RecordedAt: base.Add(2 * time.Hour)},
	}
	for i := range entries {
		if err := repo.Insert(ctx, &entries[i]); err != nil {
			t.Fatalf("insert %s: %v", entries[i].ID, err)
		}
	}

	all, err := repo.ListPeriod(ctx, reports.Period{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 || all[0].ID != "hist-1" || all[2].ID != "hist-3" {
		t.Fatalf("unexpected list: %+v", all)
	}

	window, err := repo.ListPeriod(ctx, reports.Period{
		From: base.Add(30 * time.Minute),
		To:   base.Add(90 * time.Minute),
	})
	if err != nil {
		t.Fatalf("list window: %v", err)
	}
	if len(window) != 1 || window[0].ID != "hist-2" {
		t.Fatalf("unexpected window: %+v", window)
	}

	summary := reports.Summarize(reports.Period{}, all, time.Now())
	if summary.Total != 3 || summary.ByEquipment["1"] != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
