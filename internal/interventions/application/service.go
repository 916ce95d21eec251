package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/Hossam-Nazih/gestion-de-maintenance/internal/audit"
	"github.com/Hossam-Nazih/gestion-de-maintenance/internal/auth"
	"github.com/Hossam-Nazih/gestion-de-maintenance/internal/gmaoapi"
	interventions "github.com/Hossam-Nazih/gestion-de-maintenance/internal/interventions/domain"
	"github.com/Hossam-Nazih/gestion-de-maintenance/internal/observability/metrics"
)

// Upstream is the slice of the maintenance backend the service
// writes through.
type Upstream interface {
	CreateIntervention(ctx context.Context, req gmaoapi.InterventionRequest) error
	CreateTraitement(ctx context.Context, t gmaoapi.Traitement) (gmaoapi.Traitement, error)
	UpdateTraitement(ctx context.Context, id int, t gmaoapi.Traitement) error
}

// Service validates and forwards intervention writes.
type Service struct {
	upstream Upstream
	logger   *log.Logger
	audit    audit.Logger
}

// Option configures the service.
type Option func(*Service)

// WithAudit adds an audit trail for write operations.
func WithAudit(logger audit.Logger) Option {
	return func(s *Service) { s.audit = logger }
}

// NewService constructs a service.
func NewService(upstream Upstream, logger *log.Logger, opts ...Option) (*Service, error) {
	if upstream == nil {
		return nil, errors.New("interventions service: nil upstream")
	}
	if logger == nil {
		return nil, errors.New("interventions service: nil logger")
	}
	s := &Service{upstream: upstream, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// recordAudit writes a trail entry for a write operation. Audit
// failures are logged, never surfaced to the caller.
func (s *Service) recordAudit(ctx context.Context, action, resourceType, resourceID, equipmentID string, payload any) {
	if s.audit == nil {
		return
	}
	metadata, _ := json.Marshal(payload)
	entry := audit.Entry{
		Actor:        auth.UsernameFromContext(ctx),
		Role:         string(auth.RoleFromContext(ctx)),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		EquipmentID:  equipmentID,
		Metadata:     metadata,
	}
	if err := s.audit.Log(ctx, entry); err != nil {
		s.logger.Printf("interventions: audit write failed: %v", err)
	}
}

// SubmitRequest normalizes, validates and forwards a demand. The
// returned request carries the inferred problem type and priority.
func (s *Service) SubmitRequest(ctx context.Context, req interventions.Request) (interventions.Request, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		metrics.IncInterventionRequest("rejected")
		return req, err
	}
	err := s.upstream.CreateIntervention(ctx, gmaoapi.InterventionRequest{
		EquipementID: req.EquipementID,
		TypeArret:    req.TypeArret,
		Description:  req.Description,
		Priorite:     req.Priorite,
		TypeProbleme: req.TypeProbleme,
		DemandeurNom: req.DemandeurNom,
	})
	if err != nil {
		metrics.IncInterventionRequest("error")
		return req, err
	}
	metrics.IncInterventionRequest("accepted")
	s.logger.Printf("interventions: submitted equipement=%d probleme=%s priorite=%s",
		req.EquipementID, req.TypeProbleme, req.Priorite)
	s.recordAudit(ctx, "intervention.submit", "intervention", "", fmt.Sprintf("%d", req.EquipementID), req)
	return req, nil
}

// RecordTreatment files a technician treatment report.
func (s *Service) RecordTreatment(ctx context.Context, t gmaoapi.Traitement) (gmaoapi.Traitement, error) {
	if t.InterventionID <= 0 {
		return gmaoapi.Traitement{}, errors.New("intervention_id is required")
	}
	if t.DureeFixation < 0 || t.HeuresArretMachine < 0 {
		return gmaoapi.Traitement{}, errors.New("durations must not be negative")
	}
	created, err := s.upstream.CreateTraitement(ctx, t)
	if err != nil {
		return gmaoapi.Traitement{}, err
	}
	s.logger.Printf("interventions: treatment %d recorded for intervention %d", created.ID, created.InterventionID)
	s.recordAudit(ctx, "traitement.create", "traitement", fmt.Sprintf("%d", created.ID), "", created)
	return created, nil
}

// AmendTreatment updates a previously filed report.
func (s *Service) AmendTreatment(ctx context.Context, id int, t gmaoapi.Traitement) error {
	if id <= 0 {
		return errors.New("treatment id is required")
	}
	if t.DureeFixation < 0 || t.HeuresArretMachine < 0 {
		return errors.New("durations must not be negative")
	}
	if err := s.upstream.UpdateTraitement(ctx, id, t); err != nil {
		return err
	}
	s.recordAudit(ctx, "traitement.update", "traitement", fmt.Sprintf("%d", id), "", t)
	return nil
}
