package monitor

import "time"

// AlertMode selects which presentation a derivation feeds.
type AlertMode string

const (
	// ModeBar is the persistent, uncapped alert list.
	ModeBar AlertMode = "bar"
	// ModeBanner is the ephemeral, auto-expiring banner, capped to the
	// three most recent qualifying statuses.
	ModeBanner AlertMode = "banner"
)

// BannerCap bounds the banner derivation. A stopped-equipment banner is
// an urgent glanceable signal, not a log.
const BannerCap = 3

var bannerCodes = map[StatusCode]struct{}{
	CodeEnCours:   {},
	CodeEnAttente: {},
}

// BannerQualifies reports whether a status code belongs to the
// banner-alerting set.
func BannerQualifies(code StatusCode) bool {
	_, ok := bannerCodes[code]
	return ok
}

// DeriveAlerts filters a status snapshot down to the alerting entries
// for the given mode. Bar mode keeps everything except OPERATIONNEL and
// UNKNOWN, unbounded. Banner mode keeps only EN_COURS and EN_ATTENTE,
// capped to the last BannerCap entries in input order.
func DeriveAlerts(statuses []EquipmentStatus, mode AlertMode) []EquipmentStatus {
	var out []EquipmentStatus
	for _, status := range statuses {
		switch mode {
		case ModeBanner:
			if BannerQualifies(status.Status) {
				out = append(out, status)
			}
		default:
			if status.Status != CodeOperationnel && status.Status != CodeUnknown {
				out = append(out, status)
			}
		}
	}
	if mode == ModeBanner && len(out) > BannerCap {
		out = out[len(out)-BannerCap:]
	}
	return out
}

// Alert is one ephemeral banner notification. Equipment is a snapshot
// taken at creation time; later equipment updates do not mutate a
// displayed alert.
type Alert struct {
	ID        string          `json:"id"`
	Equipment EquipmentStatus `json:"equipment"`
	CreatedAt time.Time       `json:"created_at"`
	Dismissed bool            `json:"dismissed"`
}
