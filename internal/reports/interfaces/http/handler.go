package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Hossam-Nazih/gestion-de-maintenance/internal/observability/metrics"
	"github.com/Hossam-Nazih/gestion-de-maintenance/internal/reports/application"
	reports "github.com/Hossam-Nazih/gestion-de-maintenance/internal/reports/domain"
	"github.com/Hossam-Nazih/gestion-de-maintenance/internal/reports/interfaces"
)

// Handler exposes period summaries and report exports.
type Handler struct {
	service *application.Service
}

// NewHandler constructs a handler.
func NewHandler(service *application.Service) (*Handler, error) {
	if service == nil {
		return nil, errors.New("reports handler: nil service")
	}
	return &Handler{service: service}, nil
}

// ServeHTTP routes /api/v1/reports and /api/v1/exports.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/v1/reports/summary":
		h.handleSummary(w, r)
	case "/api/v1/exports/maintenance.xlsx":
		h.handleExport(w, r, "xlsx")
	case "/api/v1/exports/maintenance.pdf":
		h.handleExport(w, r, "pdf")
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// parsePeriod reads from/to query bounds, date or RFC 3339.
func parsePeriod(r *http.Request) (reports.Period, error) {
	var period reports.Period
	parse := func(raw string) (time.Time, error) {
		if ts, err := time.Parse("2006-01-02", raw); err == nil {
			return ts, nil
		}
		return time.Parse(time.RFC3339, raw)
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		ts, err := parse(raw)
		if err != nil {
			return period, fmt.Errorf("invalid from: %s", raw)
		}
		period.From = ts
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		ts, err := parse(raw)
		if err != nil {
			return period, fmt.Errorf("invalid to: %s", raw)
		}
		period.To = ts
	}
	return period, nil
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	period, err := parsePeriod(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	summary, err := h.service.Summary(r.Context(), period)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(summary)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request, format string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	period, err := parsePeriod(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	start := time.Now()
	summary, err := h.service.Summary(r.Context(), period)
	if err != nil {
		metrics.ObserveReportExport(format, "error", time.Since(start))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var payload []byte
	var contentType string
	switch format {
	case "xlsx":
		payload, err = interfaces.BuildMaintenanceXLSX(summary)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		payload, err = interfaces.BuildMaintenancePDF(summary)
		contentType = "application/pdf"
	}
	if err != nil {
		metrics.ObserveReportExport(format, "error", time.Since(start))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	metrics.ObserveReportExport(format, "ok", time.Since(start))

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename=maintenance."+format)
	_, _ = w.Write(payload)
}
