package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Hossam-Nazih/gestion-de-maintenance/internal/gmaoapi"
	"github.com/Hossam-Nazih/gestion-de-maintenance/internal/interventions/application"
	interventions "github.com/Hossam-Nazih/gestion-de-maintenance/internal/interventions/domain"
)

// Handler exposes the intervention write path over HTTP.
type Handler struct {
	service *application.Service
}

// NewHandler constructs a handler.
func NewHandler(service *application.Service) (*Handler, error) {
	if service == nil {
		return nil, errors.New("interventions handler: nil service")
	}
	return &Handler{service: service}, nil
}

// ServeHTTP routes /api/v1/interventions and /api/v1/traitements.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/interventions":
		h.handleSubmit(w, r)
	case r.URL.Path == "/api/v1/traitements":
		h.handleTreatment(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/v1/traitements/"):
		h.handleAmend(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req interventions.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	submitted, err := h.service.SubmitRequest(r.Context(), req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, gmaoapi.ErrUnauthorized) {
			status = http.StatusUnauthorized
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(submitted)
}

func (h *Handler) handleTreatment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var t gmaoapi.Traitement
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	created, err := h.service.RecordTreatment(r.Context(), t)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(created)
}

func (h *Handler) handleAmend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/api/v1/traitements/")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		http.Error(w, "invalid treatment id", http.StatusBadRequest)
		return
	}
	var t gmaoapi.Traitement
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := h.service.AmendTreatment(r.Context(), id, t); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, gmaoapi.ErrNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
