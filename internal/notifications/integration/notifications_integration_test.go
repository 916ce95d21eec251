package integration_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	notifications "github.com/Hossam-Nazih/gestion-de-maintenance/internal/notifications/domain"
	notifrepo "github.com/Hossam-Nazih/gestion-de-maintenance/internal/notifications/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func TestNotificationJournal_RoundTrip(t *testing.T) {
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
	repo := notifrepo.NewNotificationRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	_, _ = db.ExecContext(ctx, "DELETE FROM notifications")

	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	entries := []notifications.Notification{
		{ID: "it-1", Type: notifications.TypeStatusChange, Title: "🚨 EN ARRÊT",
			EquipmentID: "1", EquipmentName: "Presse A", Status: "EN_ARRET",
			Priority: "critical", CreatedAt: base},
		{ID: "it-2", Type: notifications.TypeStatusChange, Title: "⏳ EN ATTENTE",
			EquipmentID: "2", EquipmentName: "Four B", Status: "EN_ATTENTE",
			Priority: "normal", CreatedAt: base.Add(time.Minute)},
		{ID: "it-3", Type: notifications.TypeStatusChange, Title: "✅ TERMINÉE",
			EquipmentID: "3", EquipmentName: "Broyeur C", Status: "TERMINEE",
			Priority: "medium", CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range entries {
		if err := repo.Insert(ctx, &entries[i]); err != nil {
			t.Fatalf("insert %s: %v", entries[i].ID, err)
		}
	}

	all, err := repo.List(ctx, notifications.FilterAll, 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 || all[0].ID != "it-3" {
		t.Fatalf("unexpected list: %+v", all)
	}

	urgent, err := repo.List(ctx, notifications.FilterUrgent, 0)
	if err != nil {
		t.Fatalf("list urgent: %v", err)
	}
	if len(urgent) != 1 || urgent[0].ID != "it-1" {
		t.Fatalf("unexpected urgent list: %+v", urgent)
	}

	completed, err := repo.List(ctx, notifications.FilterCompleted, 0)
	if err != nil {
		t.Fatalf("list completed: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != "it-3" {
		t.Fatalf("unexpected completed list: %+v", completed)
	}

	if err := repo.MarkRead(ctx, "it-2"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if err := repo.MarkRead(ctx, "missing"); err != notifications.ErrNotFound {
		t.Fatalf("missing id err = %v", err)
	}

	counts, err := repo.Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	want := notifications.Counts{Total: 3, Unread: 2, Urgent: 1, Completed: 1}
	if counts != want {
		t.Fatalf("counts = %+v, want %+v", counts, want)
	}

	changed, err := repo.MarkAllRead(ctx)
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if changed != 2 {
		t.Fatalf("want 2 changed, got %d", changed)
	}
}
