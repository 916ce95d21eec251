package monitor

const (
	SeverityInfo     = "info"
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// StatusInfo is the presentation metadata for one status code.
type StatusInfo struct {
	Color           string `json:"color"`
	BackgroundColor string `json:"background_color"`
	Icon            string `json:"icon"`
	Label           string `json:"label"`
	Message         string `json:"message"`
	Severity        string `json:"severity"`
}

// Classify maps a canonical status code to its presentation metadata.
// Total over the closed StatusCode set; the default branch only serves
// genuinely unknown runtime values and matches the UNKNOWN entry.
func Classify(code StatusCode) StatusInfo {
	switch code {
	case CodeEnArret:
		return StatusInfo{
			Color:           "#dc2626",
			BackgroundColor: "#fef2f2",
			Icon:            "🚨",
			Label:           "EN ARRÊT",
			Message:         "Équipement hors service",
			Severity:        SeverityCritical,
		}
	case CodePanne:
		return StatusInfo{
			Color:           "#dc2626",
			BackgroundColor: "#fef2f2",
			Icon:            "⚠️",
			Label:           "EN PANNE",
			Message:         "Panne signalée",
			Severity:        SeverityCritical,
		}
	case CodeAlerte:
		return StatusInfo{
			Color:           "#ef4444",
			BackgroundColor: "#fef2f2",
			Icon:            "🔔",
			Label:           "ALERTE",
			Message:         "Surveillance requise",
			Severity:        SeverityHigh,
		}
	case CodeMaintenance:
		return StatusInfo{
			Color:           "#f59e0b",
			BackgroundColor: "#fffbeb",
			Icon:            "🔧",
			Label:           "MAINTENANCE",
			Message:         "Intervention en cours",
			Severity:        SeverityHigh,
		}
	case CodeEnCours:
		return StatusInfo{
			Color:           "#3b82f6",
			BackgroundColor: "#eff6ff",
			Icon:            "🔧",
			Label:           "EN COURS",
			Message:         "Intervention en cours de traitement",
			Severity:        SeverityHigh,
		}
	case CodeEnAttente:
		return StatusInfo{
			Color:           "#f59e0b",
			BackgroundColor: "#fffbeb",
			Icon:            "⏳",
			Label:           "EN ATTENTE",
			Message:         "Intervention en attente de traitement",
			Severity:        SeverityMedium,
		}
	case CodeRepareRecent:
		return StatusInfo{
			Color:           "#10b981",
			BackgroundColor: "#f0fdf4",
			Icon:            "✅",
			Label:           "DISPONIBLE",
			Message:         "Équipement réparé et opérationnel",
			Severity:        SeverityLow,
		}
	case CodeTerminee:
		return StatusInfo{
			Color:           "#10b981",
			BackgroundColor: "#f0fdf4",
			Icon:            "✅",
			Label:           "TERMINÉE",
			Message:         "Intervention terminée",
			Severity:        SeverityLow,
		}
	case CodeOperationnel:
		return StatusInfo{
			Color:           "#10b981",
			BackgroundColor: "#f0fdf4",
			Icon:            "🟢",
			Label:           "OPÉRATIONNEL",
			Message:         "Équipement en service",
			Severity:        SeverityInfo,
		}
	default:
		return StatusInfo{
			Color:           "#6b7280",
			BackgroundColor: "#f9fafb",
			Icon:            "❓",
			Label:           "INCONNU",
			Message:         "Statut non reconnu",
			Severity:        SeverityInfo,
		}
	}
}
