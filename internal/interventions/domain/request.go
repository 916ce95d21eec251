package interventions

import (
	"errors"
	"strings"
)

// Stop types as the maintenance planners code them.
const (
	StopAM = "AM" // arrêt machine
	StopAP = "AP" // arrêt programmé
	StopAN = "AN" // arrêt non programmé
	StopCM = "CM" // contrôle machine
)

// Problem families a request is routed to.
const (
	ProblemMecanique   = "mecanique"
	ProblemElectrique  = "electrique"
	ProblemHydraulique = "hydraulique"
	ProblemPneumatique = "pneumatique"
)

// Request priorities on the planner scale.
const (
	PriorityBasse   = "basse"
	PriorityMoyenne = "moyenne"
	PriorityElevee  = "elevee"
)

var validStops = map[string]bool{
	StopAM: true,
	StopAP: true,
	StopAN: true,
	StopCM: true,
}

var validProblems = map[string]bool{
	ProblemMecanique:   true,
	ProblemElectrique:  true,
	ProblemHydraulique: true,
	ProblemPneumatique: true,
}

var validPriorities = map[string]bool{
	PriorityBasse:   true,
	PriorityMoyenne: true,
	PriorityElevee:  true,
}

// Request is a maintenance intervention demand.
type Request struct {
	EquipementID  int    `json:"equipement_id"`
	EquipmentName string `json:"equipment_name"`
	TypeArret     string `json:"type_arret"`
	Description   string `json:"description"`
	Priorite      string `json:"priorite"`
	TypeProbleme  string `json:"type_probleme"`
	DemandeurNom  string `json:"demandeur_nom"`
}

// Validate checks required fields and closed sets.
func (r *Request) Validate() error {
	if r == nil {
		return errors.New("nil request")
	}
	if r.EquipementID <= 0 {
		return errors.New("equipement_id is required")
	}
	if strings.TrimSpace(r.Description) == "" {
		return errors.New("description is required")
	}
	if strings.TrimSpace(r.DemandeurNom) == "" {
		return errors.New("demandeur_nom is required")
	}
	if !validStops[r.TypeArret] {
		return errors.New("invalid type_arret: " + r.TypeArret)
	}
	if r.Priorite != "" && !validPriorities[r.Priorite] {
		return errors.New("invalid priorite: " + r.Priorite)
	}
	if r.TypeProbleme != "" && !validProblems[r.TypeProbleme] {
		return errors.New("invalid type_probleme: " + r.TypeProbleme)
	}
	return nil
}

var problemKeywords = []struct {
	problem  string
	keywords []string
}{
	{ProblemHydraulique, []string{"huile", "pression", "fuite", "verin", "vérin", "hydraulique"}},
	{ProblemMecanique, []string{"moteur", "bruit", "vibration", "roulement", "courroie", "mecanique", "mécanique"}},
	{ProblemElectrique, []string{"cable", "câble", "court-circuit", "court circuit", "fusible", "tension", "electrique", "électrique"}},
	{ProblemPneumatique, []string{"air comprime", "air comprimé", "compresseur", "pneumatique"}},
}

// DetectProblemType infers the problem family from the free-text
// description. Unmatched descriptions default to mechanical.
func DetectProblemType(description string) string {
	text := strings.ToLower(description)
	for _, entry := range problemKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				return entry.problem
			}
		}
	}
	return ProblemMecanique
}

// SuggestPriority picks a default priority for the request. Press
// equipment is critical to the line, so it escalates by name.
func SuggestPriority(equipmentName, typeArret string) string {
	if strings.Contains(strings.ToUpper(equipmentName), "PRESSE") {
		return PriorityElevee
	}
	if typeArret == StopAM || typeArret == StopAN {
		return PriorityMoyenne
	}
	return PriorityBasse
}

// Normalize fills the inferable fields before submission.
func (r *Request) Normalize() {
	if r.TypeProbleme == "" {
		r.TypeProbleme = DetectProblemType(r.Description)
	}
	if r.Priorite == "" {
		r.Priorite = SuggestPriority(r.EquipmentName, r.TypeArret)
	}
}
