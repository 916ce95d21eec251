package monitor

import (
	"strings"
	"time"
)

// StatusCode is the canonical equipment status, a closed set distinct
// from the free-form strings the backend returns.
type StatusCode string

const (
	CodeEnArret      StatusCode = "EN_ARRET"
	CodeMaintenance  StatusCode = "MAINTENANCE"
	CodeRepareRecent StatusCode = "REPARE_RECENT"
	CodeAlerte       StatusCode = "ALERTE"
	CodeEnCours      StatusCode = "EN_COURS"
	CodeEnAttente    StatusCode = "EN_ATTENTE"
	CodeTerminee     StatusCode = "TERMINEE"
	CodePanne        StatusCode = "PANNE"
	CodeOperationnel StatusCode = "OPERATIONNEL"
	CodeUnknown      StatusCode = "UNKNOWN"
)

const (
	PriorityNormal   = "normal"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// EquipmentStatus is the normalized status record for one equipment.
type EquipmentStatus struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Status              StatusCode `json:"status"`
	Location            string     `json:"location"`
	EstimatedRepairTime string     `json:"estimated_repair_time,omitempty"`
	LastUpdate          time.Time  `json:"last_update"`
	Priority            string     `json:"priority"`
}

var statusAliases = map[string]StatusCode{
	"EN_ARRET":       CodeEnArret,
	"ARRET":          CodeEnArret,
	"ARRETE":         CodeEnArret,
	"MAINTENANCE":    CodeMaintenance,
	"EN_MAINTENANCE": CodeMaintenance,
	"REPARE_RECENT":  CodeRepareRecent,
	"REPARE":         CodeRepareRecent,
	"ALERTE":         CodeAlerte,
	"ALERT":          CodeAlerte,
	"EN_COURS":       CodeEnCours,
	"EN_ATTENTE":     CodeEnAttente,
	"ATTENTE":        CodeEnAttente,
	"TERMINEE":       CodeTerminee,
	"TERMINE":        CodeTerminee,
	// The backend closes out cancelled interventions; they carry no
	// alerting weight of their own, so they fold into TERMINEE.
	"ANNULEE":      CodeTerminee,
	"ANNULE":       CodeTerminee,
	"PANNE":        CodePanne,
	"EN_PANNE":     CodePanne,
	"OPERATIONNEL": CodeOperationnel,
	"ACTIF":        CodeOperationnel,
	"OK":           CodeOperationnel,
	"DISPONIBLE":   CodeOperationnel,
}

// ParseStatusCode folds an arbitrary backend status string onto the
// canonical set. Unmatched input maps to UNKNOWN, never to an error.
func ParseStatusCode(raw string) StatusCode {
	folded := strings.ToUpper(strings.TrimSpace(raw))
	folded = strings.ReplaceAll(folded, " ", "_")
	folded = strings.ReplaceAll(folded, "-", "_")
	if code, ok := statusAliases[folded]; ok {
		return code
	}
	return CodeUnknown
}

var priorityAliases = map[string]string{
	"normal":   PriorityNormal,
	"low":      PriorityNormal,
	"basse":    PriorityNormal,
	"medium":   PriorityMedium,
	"moyenne":  PriorityMedium,
	"high":     PriorityHigh,
	"elevee":   PriorityHigh,
	"haute":    PriorityHigh,
	"critical": PriorityCritical,
	"critique": PriorityCritical,
}

// ParsePriority folds a backend priority string onto the canonical
// levels, defaulting to normal.
func ParsePriority(raw string) string {
	if level, ok := priorityAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return level
	}
	return PriorityNormal
}
