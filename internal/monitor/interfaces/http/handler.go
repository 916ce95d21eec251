package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	monitorapp "github.com/Hossam-Nazih/gestion-de-maintenance/internal/monitor/application"
	monitor "github.com/Hossam-Nazih/gestion-de-maintenance/internal/monitor/domain"
)

// Handler provides the live status and alert HTTP endpoints.
type Handler struct {
	poller  *monitorapp.Poller
	manager *monitorapp.AlertManager
}

// NewHandler constructs a handler.
func NewHandler(poller *monitorapp.Poller, manager *monitorapp.AlertManager) (*Handler, error) {
	if poller == nil {
		return nil, errors.New("monitor handler: nil poller")
	}
	if manager == nil {
		return nil, errors.New("monitor handler: nil alert manager")
	}
	return &Handler{poller: poller, manager: manager}, nil
}

// classifiedStatus pairs a canonical record with the presentation
// metadata the UI renders it with.
type classifiedStatus struct {
	monitor.EquipmentStatus
	Info monitor.StatusInfo `json:"info"`
}

type statusResponse struct {
	Statuses  []classifiedStatus `json:"statuses"`
	FetchedAt time.Time          `json:"fetched_at"`
	Error     string             `json:"error,omitempty"`
}

type classifiedAlert struct {
	monitor.Alert
	Info monitor.StatusInfo `json:"info"`
}

// ServeHTTP routes /api/v1/status, /api/v1/alerts and /api/v1/refresh.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/status":
		h.handleStatus(w, r, monitor.AlertMode(""))
	case r.URL.Path == "/api/v1/status/bar":
		h.handleStatus(w, r, monitor.ModeBar)
	case r.URL.Path == "/api/v1/refresh":
		h.handleRefresh(w, r)
	case r.URL.Path == "/api/v1/alerts":
		h.handleAlerts(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/v1/alerts/"):
		h.handleDismiss(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request, mode monitor.AlertMode) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	snap := h.poller.Snapshot()
	statuses := snap.Statuses
	if mode != "" {
		statuses = monitor.DeriveAlerts(statuses, mode)
	}

	resp := statusResponse{
		Statuses:  make([]classifiedStatus, 0, len(statuses)),
		FetchedAt: snap.FetchedAt,
	}
	if snap.Err != nil {
		resp.Error = snap.Err.Error()
	}
	for _, status := range statuses {
		resp.Statuses = append(resp.Statuses, classifiedStatus{
			EquipmentStatus: status,
			Info:            monitor.Classify(status.Status),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := h.poller.Refresh(r.Context()); err != nil {
		// Stale data stays available; tell the caller the refresh failed.
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAlerts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		alerts := h.manager.Active()
		out := make([]classifiedAlert, 0, len(alerts))
		for _, alert := range alerts {
			out = append(out, classifiedAlert{
				Alert: alert,
				Info:  monitor.Classify(alert.Equipment.Status),
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	case http.MethodDelete:
		h.manager.DismissAll(r.Context())
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleDismiss(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/alerts/")
	if id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	// Dismissing an already-gone alert is a no-op, not an error.
	h.manager.Dismiss(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}
