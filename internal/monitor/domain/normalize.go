package monitor

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Field alias priority, first non-empty wins. The backend exposes the
// same records under several revisions of field naming (snake_case,
// camelCase, French) and sometimes nested under an equipment object.
var (
	idKeys       = []string{"equipment_id", "equipmentId", "equipement_id", "id", "intervention_id"}
	nameKeys     = []string{"equipment_name", "equipmentName", "equipement_name", "name", "nom"}
	statusKeys   = []string{"current_status", "currentStatus", "status", "intervention_status", "statut"}
	locationKeys = []string{"location", "zone", "localisation", "equipment_location"}
	repairKeys   = []string{"estimated_repair_time", "estimatedRepairTime", "temps_estime"}
	updateKeys   = []string{"last_update", "lastUpdate", "updated_at", "last_intervention_date", "created_at"}
	priorityKeys = []string{"priority", "priorite", "intervention_priority"}
	nestedKeys   = []string{"equipment_info", "equipement", "equipment"}
)

// Normalize converts one loosely-shaped backend record into the
// canonical EquipmentStatus. It never panics: missing or malformed
// fields degrade to documented defaults. index is only used to build a
// fallback identity when the record carries none. now supplies the
// LastUpdate default.
func Normalize(raw map[string]any, index int, now time.Time) EquipmentStatus {
	flat := raw
	var nested map[string]any
	for _, key := range nestedKeys {
		if sub, ok := raw[key].(map[string]any); ok {
			nested = sub
			break
		}
	}

	id := lookupString(flat, nested, idKeys)
	if id == "" {
		id = fmt.Sprintf("EQ-%d", index)
	}
	name := lookupString(flat, nested, nameKeys)
	if name == "" {
		name = "Équipement " + id
	}
	location := lookupString(flat, nested, locationKeys)
	if location == "" {
		location = "Zone non spécifiée"
	}
	lastUpdate := lookupTime(flat, nested, updateKeys)
	if lastUpdate.IsZero() {
		lastUpdate = now
	}

	return EquipmentStatus{
		ID:                  id,
		Name:                name,
		Status:              ParseStatusCode(lookupString(flat, nested, statusKeys)),
		Location:            location,
		EstimatedRepairTime: lookupString(flat, nested, repairKeys),
		LastUpdate:          lastUpdate,
		Priority:            ParsePriority(lookupString(flat, nested, priorityKeys)),
	}
}

// NormalizeBatch normalizes a fetched batch, deduplicating on id: the
// first occurrence of an equipment wins since the backend orders
// interventions most recent first.
func NormalizeBatch(items []map[string]any, now time.Time) []EquipmentStatus {
	statuses := make([]EquipmentStatus, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		status := Normalize(item, i, now)
		if _, dup := seen[status.ID]; dup {
			continue
		}
		seen[status.ID] = struct{}{}
		statuses = append(statuses, status)
	}
	return statuses
}

func lookupString(flat, nested map[string]any, aliases []string) string {
	for _, key := range aliases {
		if value, ok := stringValue(flat[key]); ok {
			return value
		}
	}
	for _, key := range aliases {
		if value, ok := stringValue(nested[key]); ok {
			return value
		}
	}
	return ""
}

func lookupTime(flat, nested map[string]any, aliases []string) time.Time {
	for _, key := range aliases {
		if ts, ok := timeValue(flat[key]); ok {
			return ts
		}
	}
	for _, key := range aliases {
		if ts, ok := timeValue(nested[key]); ok {
			return ts
		}
	}
	return time.Time{}
}

func stringValue(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		return trimmed, trimmed != ""
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10), true
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

func timeValue(value any) (time.Time, bool) {
	switch v := value.(type) {
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
			if ts, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
				return ts, true
			}
		}
		return time.Time{}, false
	case float64:
		if v <= 0 {
			return time.Time{}, false
		}
		return time.Unix(int64(v), 0).UTC(), true
	case time.Time:
		return v, !v.IsZero()
	default:
		return time.Time{}, false
	}
}
