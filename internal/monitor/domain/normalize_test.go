package monitor

import (
	"testing"
	"time"
)

var fetchedAt = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func TestNormalizeAllDefaults(t *testing.T) {
	status := Normalize(map[string]any{}, 4, fetchedAt)

	if status.ID != "EQ-4" {
		t.Fatalf("expected fallback id EQ-4, got %q", status.ID)
	}
	if status.Name != "Équipement EQ-4" {
		t.Fatalf("expected fallback name, got %q", status.Name)
	}
	if status.Status != CodeUnknown {
		t.Fatalf("expected UNKNOWN, got %s", status.Status)
	}
	if status.Location != "Zone non spécifiée" {
		t.Fatalf("expected default location, got %q", status.Location)
	}
	if !status.LastUpdate.Equal(fetchedAt) {
		t.Fatalf("expected fetch time as last update, got %v", status.LastUpdate)
	}
	if status.Priority != PriorityNormal {
		t.Fatalf("expected normal priority, got %q", status.Priority)
	}
}

func TestNormalizeCasingEquivalence(t *testing.T) {
	snake := map[string]any{
		"equipment_id":   float64(7),
		"equipment_name": "Presse hydraulique #1",
		"current_status": "en_cours",
		"location":       "Atelier A",
		"priorite":       "elevee",
	}
	camel := map[string]any{
		"equipmentId":   "7",
		"equipmentName": "Presse hydraulique #1",
		"currentStatus": "EN COURS",
		"zone":          "Atelier A",
		"priority":      "high",
	}

	a := Normalize(snake, 0, fetchedAt)
	b := Normalize(camel, 0, fetchedAt)
	if a != b {
		t.Fatalf("expected identical canonical records, got %+v vs %+v", a, b)
	}
	if a.ID != "7" || a.Status != CodeEnCours || a.Priority != PriorityHigh {
		t.Fatalf("unexpected canonical record: %+v", a)
	}
}

func TestNormalizeNestedEquipmentInfo(t *testing.T) {
	raw := map[string]any{
		"intervention_status": "en_attente",
		"equipment_info": map[string]any{
			"equipment_id":       float64(12),
			"equipment_name":     "Convoyeur principal",
			"equipment_location": "Ligne 2",
		},
	}

	status := Normalize(raw, 0, fetchedAt)
	if status.ID != "12" {
		t.Fatalf("expected nested id, got %q", status.ID)
	}
	if status.Name != "Convoyeur principal" {
		t.Fatalf("expected nested name, got %q", status.Name)
	}
	if status.Location != "Ligne 2" {
		t.Fatalf("expected nested location, got %q", status.Location)
	}
	if status.Status != CodeEnAttente {
		t.Fatalf("expected EN_ATTENTE, got %s", status.Status)
	}
}

func TestNormalizeFlatWinsOverNested(t *testing.T) {
	raw := map[string]any{
		"equipment_id": "outer",
		"equipment_info": map[string]any{
			"equipment_id": "inner",
		},
	}
	if status := Normalize(raw, 0, fetchedAt); status.ID != "outer" {
		t.Fatalf("expected flat field to win, got %q", status.ID)
	}
}

func TestNormalizeLastUpdateFormats(t *testing.T) {
	cases := map[string]any{
		"rfc3339": "2026-03-08T10:00:00Z",
		"sql":     "2026-03-08 10:00:00",
		"unix":    float64(1772964000),
	}
	for name, value := range cases {
		status := Normalize(map[string]any{"last_update": value}, 0, fetchedAt)
		if status.LastUpdate.Equal(fetchedAt) || status.LastUpdate.IsZero() {
			t.Fatalf("%s: expected parsed timestamp, got %v", name, status.LastUpdate)
		}
	}
	status := Normalize(map[string]any{"last_update": "not-a-date"}, 0, fetchedAt)
	if !status.LastUpdate.Equal(fetchedAt) {
		t.Fatalf("expected malformed timestamp to fall back to fetch time, got %v", status.LastUpdate)
	}
}

func TestNormalizeBatchDeduplicatesByID(t *testing.T) {
	items := []map[string]any{
		{"equipment_id": float64(1), "current_status": "en_cours"},
		{"equipment_id": float64(1), "current_status": "terminee"},
		{"equipment_id": float64(2), "current_status": "operationnel"},
	}
	statuses := NormalizeBatch(items, fetchedAt)
	if len(statuses) != 2 {
		t.Fatalf("expected 2 unique statuses, got %d", len(statuses))
	}
	if statuses[0].Status != CodeEnCours {
		t.Fatalf("expected first occurrence to win, got %s", statuses[0].Status)
	}
}

func TestParseStatusCodeAliases(t *testing.T) {
	cases := map[string]StatusCode{
		"en_cours":     CodeEnCours,
		"EN_COURS":     CodeEnCours,
		"en cours":     CodeEnCours,
		"En-Cours":     CodeEnCours,
		"actif":        CodeOperationnel,
		"annulee":      CodeTerminee,
		"  en_attente": CodeEnAttente,
		"panne":        CodePanne,
		"whatever":     CodeUnknown,
		"":             CodeUnknown,
	}
	for raw, want := range cases {
		if got := ParseStatusCode(raw); got != want {
			t.Fatalf("ParseStatusCode(%q) = %s, want %s", raw, got, want)
		}
	}
}
