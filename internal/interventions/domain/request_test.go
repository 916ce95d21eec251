package interventions

import "testing"

func TestDetectProblemType(t *testing.T) {
	cases := []struct {
		description string
		want        string
	}{
		{"fuite d'huile sous la presse", ProblemHydraulique},
		{"perte de pression sur le circuit", ProblemHydraulique},
		{"court-circuit dans l'armoire", ProblemElectrique},
		{"moteur qui chauffe", ProblemMecanique},
		// Mechanical keywords take precedence over electrical ones
		// when a description mentions both.
		{"câble sectionné près du moteur", ProblemMecanique},
		{"bruit côté armoire, fusible grillé", ProblemMecanique},
		{"bruit anormal au démarrage", ProblemMecanique},
		{"compresseur ne monte plus en charge", ProblemPneumatique},
		{"machine bloquée sans cause visible", ProblemMecanique},
		{"", ProblemMecanique},
	}
	for _, tc := range cases {
		if got := DetectProblemType(tc.description); got != tc.want {
			t.Errorf("DetectProblemType(%q) = %s, want %s", tc.description, got, tc.want)
		}
	}
}

func TestSuggestPriority(t *testing.T) {
	if got := SuggestPriority("PRESSE 400T", StopCM); got != PriorityElevee {
		t.Fatalf("presse priority = %s", got)
	}
	if got := SuggestPriority("presse plieuse", StopAP); got != PriorityElevee {
		t.Fatalf("lowercase presse priority = %s", got)
	}
	if got := SuggestPriority("Four tunnel", StopAM); got != PriorityMoyenne {
		t.Fatalf("machine stop priority = %s", got)
	}
	if got := SuggestPriority("Four tunnel", StopAP); got != PriorityBasse {
		t.Fatalf("planned stop priority = %s", got)
	}
}

func TestRequestNormalizeFillsGaps(t *testing.T) {
	req := Request{
		EquipementID:  4,
		EquipmentName: "Presse hydraulique",
		TypeArret:     StopAN,
		Description:   "fuite d'huile importante",
		DemandeurNom:  "A. Benali",
	}
	req.Normalize()
	if req.TypeProbleme != ProblemHydraulique {
		t.Fatalf("type_probleme = %s", req.TypeProbleme)
	}
	if req.Priorite != PriorityElevee {
		t.Fatalf("priorite = %s", req.Priorite)
	}

	// Explicit values are preserved.
	req2 := Request{
		EquipementID: 5,
		TypeArret:    StopCM,
		Description:  "pression basse",
		DemandeurNom: "B. Salah",
		Priorite:     PriorityBasse,
		TypeProbleme: ProblemElectrique,
	}
	req2.Normalize()
	if req2.TypeProbleme != ProblemElectrique || req2.Priorite != PriorityBasse {
		t.Fatalf("normalize overwrote explicit fields: %+v", req2)
	}
}

func TestRequestValidate(t *testing.T) {
	valid := Request{
		EquipementID: 1,
		TypeArret:    StopAM,
		Description:  "panne moteur",
		DemandeurNom: "C. Idrissi",
		Priorite:     PriorityMoyenne,
		TypeProbleme: ProblemMecanique,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Request)
	}{
		{"missing equipment", func(r *Request) { r.EquipementID = 0 }},
		{"blank description", func(r *Request) { r.Description = "   " }},
		{"missing requester", func(r *Request) { r.DemandeurNom = "" }},
		{"bad stop type", func(r *Request) { r.TypeArret = "XX" }},
		{"bad priority", func(r *Request) { r.Priorite = "urgent" }},
		{"bad problem", func(r *Request) { r.TypeProbleme = "informatique" }},
	}
	for _, tc := range cases {
		req := valid
		tc.mutate(&req)
		if err := req.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}
