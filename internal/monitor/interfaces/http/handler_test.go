package http

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	monitorapp "github.com/Hossam-Nazih/gestion-de-maintenance/internal/monitor/application"
	monitor "github.com/Hossam-Nazih/gestion-de-maintenance/internal/monitor/domain"
)

func newTestHandler(t *testing.T, items []map[string]any) (*Handler, *monitorapp.AlertManager) {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	manager := monitorapp.NewAlertManager(monitorapp.WithManagerLogger(logger))
	t.Cleanup(manager.Stop)

	source := monitorapp.SourceFunc(func(ctx context.Context) ([]map[string]any, error) {
		return items, nil
	})
	poller, err := monitorapp.NewPoller(source, manager, logger)
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}
	if err := poller.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	handler, err := NewHandler(poller, manager)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler, manager
}

func testItems() []map[string]any {
	return []map[string]any{
		{"equipment_id": "1", "nom": "Presse A", "statut": "en_cours"},
		{"equipment_id": "2", "nom": "Four B", "statut": "operationnel"},
		{"equipment_id": "3", "nom": "Broyeur C", "statut": "en_arret"},
	}
}

func TestHandlerStatusListsAll(t *testing.T) {
	handler, _ := newTestHandler(t, testItems())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status code %d", rec.Code)
	}
	var resp struct {
		Statuses []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
			Info   struct {
				Color string `json:"color"`
			} `json:"info"`
		} `json:"statuses"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Statuses) != 3 {
		t.Fatalf("want 3 statuses, got %d", len(resp.Statuses))
	}
	if resp.Statuses[2].Status != string(monitor.CodeEnArret) {
		t.Fatalf("third status = %s", resp.Statuses[2].Status)
	}
	if resp.Statuses[2].Info.Color != "#dc2626" {
		t.Fatalf("en_arret color = %s", resp.Statuses[2].Info.Color)
	}
}

func TestHandlerStatusBarFiltersOperational(t *testing.T) {
	handler, _ := newTestHandler(t, testItems())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status/bar", nil))
	var resp struct {
		Statuses []struct {
			ID string `json:"id"`
		} `json:"statuses"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Statuses) != 2 {
		t.Fatalf("want 2 bar entries, got %d", len(resp.Statuses))
	}
	for _, s := range resp.Statuses {
		if s.ID == "2" {
			t.Fatalf("operational equipment leaked into the bar")
		}
	}
}

func TestHandlerAlertsAndDismiss(t *testing.T) {
	handler, manager := newTestHandler(t, testItems())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil))
	var alerts []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &alerts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Only en_cours qualifies for banner alerts here.
	if len(alerts) != 1 {
		t.Fatalf("want 1 alert, got %d", len(alerts))
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/alerts/"+alerts[0].ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("dismiss code %d", rec.Code)
	}
	if got := len(manager.Active()); got != 0 {
		t.Fatalf("want 0 active alerts after dismiss, got %d", got)
	}

	// Dismissing again is a quiet no-op.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/alerts/"+alerts[0].ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("repeat dismiss code %d", rec.Code)
	}
}

func TestHandlerDismissAll(t *testing.T) {
	handler, manager := newTestHandler(t, []map[string]any{
		{"equipment_id": "1", "statut": "en_cours"},
		{"equipment_id": "2", "statut": "en_attente"},
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/alerts", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("dismiss all code %d", rec.Code)
	}
	if got := len(manager.Active()); got != 0 {
		t.Fatalf("want 0 active alerts, got %d", got)
	}
}

func TestHandlerRefresh(t *testing.T) {
	handler, _ := newTestHandler(t, testItems())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/refresh", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("refresh code %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/refresh", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET refresh code %d", rec.Code)
	}
}

func TestHandlerUnknownPath(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown path code %d", rec.Code)
	}
}
