package tasks

import (
	"testing"
	"time"

	"github.com/desertthunder/acx/internal/models"
)

func decode(data map[string]any) *models.SourceProfile {
	return models.DecodeSourceProfile(models.Document{ID: "src-1", Data: data})
}

func TestTransform(t *testing.T) {
	now := time.Date(2025, 12, 2, 10, 0, 0, 0, time.UTC)

	t.Run("missing arrays default to empty", func(t *testing.T) {
		profile := Transform(decode(map[string]any{"nom": "Kone", "matricule": "123456A"}), "u1", "a@x.com", now)

		if profile.ZonesSouhaitees == nil || len(profile.ZonesSouhaitees) != 0 {
			t.Errorf("expected empty zonesSouhaitees, got %#v", profile.ZonesSouhaitees)
		}
		if profile.Telephones == nil || len(profile.Telephones) != 0 {
			t.Errorf("expected empty telephones, got %#v", profile.Telephones)
		}
	})

	t.Run("non-array fields default to empty", func(t *testing.T) {
		profile := Transform(decode(map[string]any{"zonesSouhaitees": "Abidjan", "telephones": 42}), "u1", "", now)

		if profile.ZonesSouhaitees == nil || len(profile.ZonesSouhaitees) != 0 {
			t.Errorf("expected empty zonesSouhaitees, got %#v", profile.ZonesSouhaitees)
		}
		if profile.Telephones == nil || len(profile.Telephones) != 0 {
			t.Errorf("expected empty telephones, got %#v", profile.Telephones)
		}
	})

	t.Run("policy fields", func(t *testing.T) {
		profile := Transform(decode(map[string]any{"freeQuotaUsed": int64(2), "isAdmin": true}), "u1", "a@x.com", now)

		if profile.UID != "u1" || profile.Email != "a@x.com" {
			t.Errorf("unexpected identity: %s %s", profile.UID, profile.Email)
		}
		if profile.AccountType != models.AccountTeacherTransfer {
			t.Errorf("expected accountType %s, got %s", models.AccountTeacherTransfer, profile.AccountType)
		}
		if !profile.IsVerified {
			t.Error("expected isVerified true")
		}
		if profile.IsOnline {
			t.Error("expected isOnline false")
		}
		if !profile.IsAdmin {
			t.Error("expected isAdmin carried from source")
		}
		if profile.FreeQuotaUsed != 2 {
			t.Errorf("expected freeQuotaUsed 2, got %d", profile.FreeQuotaUsed)
		}
		if profile.FreeQuotaLimit != 5 {
			t.Errorf("expected freeQuotaLimit 5, got %d", profile.FreeQuotaLimit)
		}
		if !profile.UpdatedAt.Equal(now) {
			t.Errorf("expected updatedAt %v, got %v", now, profile.UpdatedAt)
		}
		if profile.VerificationExpiresAt != nil || profile.SubscriptionDuration != nil || profile.LastQuotaResetDate != nil {
			t.Error("expected subscription fields to be nil")
		}
	})

	t.Run("defaults", func(t *testing.T) {
		profile := Transform(decode(map[string]any{}), "u1", "", now)

		if profile.IsAdmin {
			t.Error("expected isAdmin false by default")
		}
		if profile.FreeQuotaUsed != 0 {
			t.Errorf("expected freeQuotaUsed 0, got %d", profile.FreeQuotaUsed)
		}
		if profile.DREN != nil {
			t.Errorf("expected nil dren, got %v", *profile.DREN)
		}
		if !profile.ShowContactInfo {
			t.Error("expected contact info visible by default")
		}
		if !profile.CreatedAt.Equal(now) {
			t.Errorf("expected createdAt to fall back to now, got %v", profile.CreatedAt)
		}
	})

	t.Run("carries contact fields", func(t *testing.T) {
		profile := Transform(decode(map[string]any{
			"telephones":      []any{"0700000000", "0500000000"},
			"zonesSouhaitees": []any{"Bouaké", "Yamoussoukro"},
			"fonction":        "Instituteur",
			"zoneActuelle":    "Abidjan",
			"dren":            "Abidjan 1",
			"profileViews":    int64(12),
		}), "u1", "", now)

		if len(profile.Telephones) != 2 || profile.Telephones[1] != "0500000000" {
			t.Errorf("unexpected telephones: %v", profile.Telephones)
		}
		if len(profile.ZonesSouhaitees) != 2 || profile.ZonesSouhaitees[0] != "Bouaké" {
			t.Errorf("unexpected zonesSouhaitees: %v", profile.ZonesSouhaitees)
		}
		if profile.Fonction != "Instituteur" || profile.ZoneActuelle != "Abidjan" {
			t.Errorf("unexpected fonction/zone: %s/%s", profile.Fonction, profile.ZoneActuelle)
		}
		if profile.DREN == nil || *profile.DREN != "Abidjan 1" {
			t.Errorf("unexpected dren: %v", profile.DREN)
		}
		if profile.ProfileViewsCount != 12 {
			t.Errorf("expected profileViewsCount 12, got %d", profile.ProfileViewsCount)
		}
	})
}

func TestResolveMatricule(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		want string
	}{
		{"prefers newer field", map[string]any{"numeroMatricule": "654321b", "matricule": "123456A"}, "654321B"},
		{"falls back to older field", map[string]any{"matricule": "123456a"}, "123456A"},
		{"empty newer field falls back", map[string]any{"numeroMatricule": "", "matricule": "123456C"}, "123456C"},
		{"absent", map[string]any{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveMatricule(decode(tt.data)); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestResolveFullName(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		want string
	}{
		{"first and last", map[string]any{"prenom": "Awa", "nom": "Kone"}, "Awa Kone"},
		{"last only", map[string]any{"nom": "  Kone  "}, "Kone"},
		{"first only", map[string]any{"prenom": "Awa"}, "Awa"},
		{"neither", map[string]any{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveFullName(decode(tt.data)); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestResolveZoneDescription(t *testing.T) {
	if got := ResolveZoneDescription(decode(map[string]any{"infoZoneActuelle": "a", "infosZoneActuelle": "b"})); got != "a" {
		t.Errorf("expected infoZoneActuelle to win, got %q", got)
	}
	if got := ResolveZoneDescription(decode(map[string]any{"infosZoneActuelle": "b"})); got != "b" {
		t.Errorf("expected infosZoneActuelle fallback, got %q", got)
	}
}

func TestResolveShowContactInfo(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		want bool
	}{
		{"show phone false wins", map[string]any{"showPhone": false, "showContactInfo": true}, false},
		{"show phone true wins", map[string]any{"showPhone": true, "showContactInfo": false}, true},
		{"contact info hidden", map[string]any{"showContactInfo": false}, false},
		{"contact info shown", map[string]any{"showContactInfo": true}, true},
		{"default visible", map[string]any{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveShowContactInfo(decode(tt.data)); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestConvertTimestamp(t *testing.T) {
	now := time.Date(2025, 12, 2, 10, 0, 0, 0, time.UTC)
	native := time.Date(2023, 5, 1, 8, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input any
		want  time.Time
	}{
		{"native timestamp", native, native},
		{"seconds wrapper", map[string]any{"_seconds": int64(1682929800)}, time.Unix(1682929800, 0).UTC()},
		{"seconds wrapper with nanos", map[string]any{"_seconds": float64(1682929800), "_nanoseconds": float64(500)}, time.Unix(1682929800, 500).UTC()},
		{"epoch millis", int64(1682929800000), time.UnixMilli(1682929800000).UTC()},
		{"RFC3339 string", "2023-05-01T08:30:00Z", native},
		{"nil", nil, now},
		{"zero time", time.Time{}, now},
		{"unparseable string", "yesterday", now},
		{"unknown map", map[string]any{"foo": 1}, now},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConvertTimestamp(tt.input, now); !got.Equal(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
