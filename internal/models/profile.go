package models

import (
	"fmt"
	"strconv"
	"time"
)

// Account classes stored in the destination accountType field.
const (
	AccountTeacherTransfer  = "teacher_transfer"
	AccountTeacherCandidate = "teacher_candidate"
	AccountSchool           = "school"
)

// MigratedFreeQuotaLimit is the free consultation quota granted to migrated teacher_transfer accounts.
const MigratedFreeQuotaLimit = 5

// SourceProfile is a typed, read-only view over a source profile document.
//
// The source collection drifted over time: the identifier lives in numeroMatricule or matricule,
// the zone description in infoZoneActuelle or infosZoneActuelle, and the contact visibility in
// showPhone or showContactInfo. Both spellings are kept so the transformer can pick.
type SourceProfile struct {
	ID                string
	Prenom            string
	Nom               string
	NumeroMatricule   string
	Matricule         string
	Email             string
	Telephones        []string // nil when absent or not an array
	Fonction          string
	ZoneActuelle      string
	DREN              *string
	InfoZoneActuelle  string
	InfosZoneActuelle string
	ZonesSouhaitees   []string // nil when absent or not an array
	ShowPhone         *bool
	ShowContactInfo   *bool
	ProfileViews      int64
	ProfileViewsCount int64
	FreeQuotaUsed     int64
	IsAdmin           bool
	CreatedAt         any // time.Time, {_seconds} map, epoch millis or string
}

// DecodeSourceProfile builds a [SourceProfile] from a raw source document.
// Fields with unexpected types decode to their zero value.
func DecodeSourceProfile(doc Document) *SourceProfile {
	d := doc.Data
	p := &SourceProfile{
		ID:                doc.ID,
		Prenom:            stringField(d, "prenom"),
		Nom:               stringField(d, "nom"),
		NumeroMatricule:   stringField(d, "numeroMatricule"),
		Matricule:         stringField(d, "matricule"),
		Email:             stringField(d, "email"),
		Telephones:        stringSlice(d, "telephones"),
		Fonction:          stringField(d, "fonction"),
		ZoneActuelle:      stringField(d, "zoneActuelle"),
		InfoZoneActuelle:  stringField(d, "infoZoneActuelle"),
		InfosZoneActuelle: stringField(d, "infosZoneActuelle"),
		ZonesSouhaitees:   stringSlice(d, "zonesSouhaitees"),
		ShowPhone:         boolPtr(d, "showPhone"),
		ShowContactInfo:   boolPtr(d, "showContactInfo"),
		ProfileViews:      intField(d, "profileViews"),
		ProfileViewsCount: intField(d, "profileViewsCount"),
		FreeQuotaUsed:     intField(d, "freeQuotaUsed"),
		CreatedAt:         d["createdAt"],
	}

	if dren := stringField(d, "dren"); dren != "" {
		p.DREN = &dren
	}
	if admin, ok := d["isAdmin"].(bool); ok {
		p.IsAdmin = admin
	}

	return p
}

// DestinationProfile is the normalized profile document written to the destination users collection.
// Its document key equals UID, the identity of the paired [AuthPrincipal].
type DestinationProfile struct {
	UID               string   `firestore:"uid" json:"uid"`
	Email             string   `firestore:"email" json:"email"`
	AccountType       string   `firestore:"accountType" json:"accountType"`
	Matricule         string   `firestore:"matricule" json:"matricule"`
	Nom               string   `firestore:"nom" json:"nom"`
	Telephones        []string `firestore:"telephones" json:"telephones"`
	Fonction          string   `firestore:"fonction" json:"fonction"`
	ZoneActuelle      string   `firestore:"zoneActuelle" json:"zoneActuelle"`
	DREN              *string  `firestore:"dren" json:"dren"`
	InfosZoneActuelle string   `firestore:"infosZoneActuelle" json:"infosZoneActuelle"`
	ZonesSouhaitees   []string `firestore:"zonesSouhaitees" json:"zonesSouhaitees"`

	CreatedAt  time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `firestore:"updatedAt" json:"updatedAt"`
	IsOnline   bool      `firestore:"isOnline" json:"isOnline"`
	IsVerified bool      `firestore:"isVerified" json:"isVerified"`
	IsAdmin    bool      `firestore:"isAdmin" json:"isAdmin"`

	ShowContactInfo   bool  `firestore:"showContactInfo" json:"showContactInfo"`
	ProfileViewsCount int64 `firestore:"profileViewsCount" json:"profileViewsCount"`

	FreeQuotaUsed         int64      `firestore:"freeQuotaUsed" json:"freeQuotaUsed"`
	FreeQuotaLimit        int64      `firestore:"freeQuotaLimit" json:"freeQuotaLimit"`
	VerificationExpiresAt *time.Time `firestore:"verificationExpiresAt" json:"verificationExpiresAt"`
	SubscriptionDuration  *int64     `firestore:"subscriptionDuration" json:"subscriptionDuration"`
	LastQuotaResetDate    *time.Time `firestore:"lastQuotaResetDate" json:"lastQuotaResetDate"`
}

func stringField(d map[string]any, key string) string {
	switch v := d[key].(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func stringSlice(d map[string]any, key string) []string {
	switch v := d[key].(type) {
	case []string:
		return append([]string{}, v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			if s, ok := item.(string); ok {
				out = append(out, s)
			} else {
				out = append(out, fmt.Sprint(item))
			}
		}
		return out
	default:
		return nil
	}
}

func boolPtr(d map[string]any, key string) *bool {
	if v, ok := d[key].(bool); ok {
		return &v
	}
	return nil
}

func intField(d map[string]any, key string) int64 {
	switch v := d[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// IntField reads a numeric document field as int64, returning ok=false when absent or not numeric.
func IntField(d map[string]any, key string) (int64, bool) {
	switch d[key].(type) {
	case int64, int, float64:
		return intField(d, key), true
	default:
		return 0, false
	}
}

// StringField reads a document field as a string, formatting numbers.
func StringField(d map[string]any, key string) string {
	return stringField(d, key)
}

// StringSlice reads an array document field, returning nil when absent or not an array.
func StringSlice(d map[string]any, key string) []string {
	return stringSlice(d, key)
}
