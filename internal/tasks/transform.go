package tasks

import (
	"strings"
	"time"

	"github.com/desertthunder/acx/internal/models"
)

// Transform maps a source profile to the destination schema for the account uid.
//
// It never fails: absent or mistyped source fields degrade to defaults. Arrays are never nil.
func Transform(src *models.SourceProfile, uid, email string, now time.Time) *models.DestinationProfile {
	now = now.UTC()

	views := src.ProfileViews
	if views == 0 {
		views = src.ProfileViewsCount
	}

	return &models.DestinationProfile{
		UID:               uid,
		Email:             email,
		AccountType:       models.AccountTeacherTransfer,
		Matricule:         ResolveMatricule(src),
		Nom:               ResolveFullName(src),
		Telephones:        nonNil(src.Telephones),
		Fonction:          src.Fonction,
		ZoneActuelle:      src.ZoneActuelle,
		DREN:              src.DREN,
		InfosZoneActuelle: ResolveZoneDescription(src),
		ZonesSouhaitees:   nonNil(src.ZonesSouhaitees),

		CreatedAt:  ConvertTimestamp(src.CreatedAt, now),
		UpdatedAt:  now,
		IsOnline:   false,
		IsVerified: true,
		IsAdmin:    src.IsAdmin,

		ShowContactInfo:   ResolveShowContactInfo(src),
		ProfileViewsCount: views,

		FreeQuotaUsed:  src.FreeQuotaUsed,
		FreeQuotaLimit: models.MigratedFreeQuotaLimit,
	}
}

// ResolveFullName joins first and last name when a first name is present, else returns the last name.
func ResolveFullName(src *models.SourceProfile) string {
	if src.Prenom != "" {
		return strings.TrimSpace(src.Prenom + " " + src.Nom)
	}
	return strings.TrimSpace(src.Nom)
}

// ResolveMatricule prefers numeroMatricule over matricule and upper-cases the result.
func ResolveMatricule(src *models.SourceProfile) string {
	if src.NumeroMatricule != "" {
		return strings.ToUpper(src.NumeroMatricule)
	}
	return strings.ToUpper(src.Matricule)
}

// ResolveZoneDescription prefers infoZoneActuelle over infosZoneActuelle.
func ResolveZoneDescription(src *models.SourceProfile) string {
	if src.InfoZoneActuelle != "" {
		return src.InfoZoneActuelle
	}
	return src.InfosZoneActuelle
}

// ResolveShowContactInfo uses showPhone when set, then showContactInfo, and defaults to visible.
func ResolveShowContactInfo(src *models.SourceProfile) bool {
	switch {
	case src.ShowPhone != nil:
		return *src.ShowPhone
	case src.ShowContactInfo != nil:
		return *src.ShowContactInfo
	default:
		return true
	}
}

// ConvertTimestamp converts a source creation timestamp, falling back to now.
//
// Accepted shapes: [time.Time], a {_seconds, _nanoseconds} map from a JSON export,
// epoch milliseconds, and RFC 3339 strings.
func ConvertTimestamp(v any, now time.Time) time.Time {
	switch ts := v.(type) {
	case time.Time:
		if !ts.IsZero() {
			return ts.UTC()
		}
	case *time.Time:
		if ts != nil && !ts.IsZero() {
			return ts.UTC()
		}
	case map[string]any:
		if secs, ok := models.IntField(ts, "_seconds"); ok {
			nanos, _ := models.IntField(ts, "_nanoseconds")
			return time.Unix(secs, nanos).UTC()
		}
		if secs, ok := models.IntField(ts, "seconds"); ok {
			nanos, _ := models.IntField(ts, "nanoseconds")
			return time.Unix(secs, nanos).UTC()
		}
	case int64:
		return time.UnixMilli(ts).UTC()
	case int:
		return time.UnixMilli(int64(ts)).UTC()
	case float64:
		return time.UnixMilli(int64(ts)).UTC()
	case string:
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			return t.UTC()
		}
	}
	return now
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
