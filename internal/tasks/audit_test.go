package tasks

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/acx/internal/models"
	tu "github.com/desertthunder/acx/internal/testing"
)

func seedDestination() *tu.MockDestinationStore {
	created := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	return tu.NewMockDestinationStore().
		AddDocument("d1", map[string]any{
			"uid": "d1", "email": "a@x.com", "nom": "Awa", "accountType": models.AccountTeacherTransfer,
			"fonction": "Instituteur", "zoneActuelle": "Abidjan", "zonesSouhaitees": []any{"Bouaké"},
			"createdAt": created, "freeQuotaLimit": int64(3), "telephones": []any{"0700"},
		}).
		AddDocument("d2", map[string]any{
			"uid": "d2", "email": "b@x.com", "nom": "Bakary", "accountType": models.AccountTeacherTransfer,
			"fonction": "", "zoneActuelle": "Abidjan", "zonesSouhaitees": []any{},
			"createdAt": created, "freeQuotaLimit": int64(5),
		}).
		AddDocument("d3", map[string]any{"uid": "d3", "email": "c@x.com", "accountType": models.AccountSchool}).
		AddDocument("d4", map[string]any{"uid": "d4", "accountType": models.AccountTeacherCandidate}).
		AddDocument("d5", map[string]any{"uid": "d5", "email": "e@x.com"})
}

func TestCountAccountTypes(t *testing.T) {
	counts, err := CountAccountTypes(context.Background(), seedDestination(), 1)
	if err != nil {
		t.Fatalf("CountAccountTypes failed: %v", err)
	}

	if counts.Total != 5 || counts.TeacherTransfer != 2 || counts.TeacherCandidate != 1 || counts.School != 1 || counts.Other != 1 {
		t.Errorf("unexpected counts: %+v", counts)
	}
	if len(counts.Sample) != 1 || counts.Sample[0].ID != "d1" {
		t.Errorf("expected sample [d1], got %+v", counts.Sample)
	}

	dest := tu.NewMockDestinationStore()
	dest.QueryErr = errors.New("boom")
	if _, err := CountAccountTypes(context.Background(), dest, 10); err == nil {
		t.Error("expected error")
	}
}

func TestAnalyzeProfiles(t *testing.T) {
	analysis, err := AnalyzeProfiles(context.Background(), seedDestination())
	if err != nil {
		t.Fatalf("AnalyzeProfiles failed: %v", err)
	}

	if analysis.Total != 2 || analysis.Valid != 1 {
		t.Errorf("expected 1 of 2 valid, got %d of %d", analysis.Valid, analysis.Total)
	}
	if len(analysis.Invalid) != 1 {
		t.Fatalf("expected one invalid profile, got %d", len(analysis.Invalid))
	}

	invalid := analysis.Invalid[0]
	if invalid.Index != 2 || invalid.Email != "b@x.com" {
		t.Errorf("unexpected invalid profile: %+v", invalid)
	}
	if strings.Join(invalid.Missing, ",") != "fonction,zonesSouhaitees" {
		t.Errorf("expected fonction and zonesSouhaitees missing, got %v", invalid.Missing)
	}
}

func TestMissingField(t *testing.T) {
	data := map[string]any{
		"nulls":   []any{nil, nil},
		"zones":   []any{"Bouaké", nil},
		"typed":   []string{"a"},
		"empty":   []string{},
		"name":    "",
		"count":   int64(0),
		"created": time.Time{},
	}

	tests := []struct {
		field string
		want  bool
	}{
		{"nulls", true},
		{"zones", false},
		{"typed", false},
		{"empty", true},
		{"name", true},
		{"count", true},
		{"created", true},
		{"absent", true},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			if got := missingField(data, tt.field); got != tt.want {
				t.Errorf("missingField(%q) = %v, want %v", tt.field, got, tt.want)
			}
		})
	}
}

func TestInspectSource(t *testing.T) {
	src := tu.NewMockSourceStore().
		AddDocument("s1", map[string]any{
			"nom":        strings.Repeat("x", 60),
			"telephones": []any{"1", "2"},
			"createdAt":  map[string]any{"_seconds": 1},
			"isAdmin":    false,
			"views":      int64(3),
			"dren":       nil,
		}).
		AddDocument("s2", map[string]any{}).
		AddDocument("s3", map[string]any{}).
		AddDocument("s4", map[string]any{})

	previews, err := InspectSource(context.Background(), src, 0)
	if err != nil {
		t.Fatalf("InspectSource failed: %v", err)
	}
	if len(previews) != 3 {
		t.Fatalf("expected default of 3 previews, got %d", len(previews))
	}

	fields := map[string]FieldPreview{}
	for _, f := range previews[0].Fields {
		fields[f.Key] = f
	}
	if previews[0].Fields[0].Key != "createdAt" {
		t.Errorf("expected fields sorted by key, got %s first", previews[0].Fields[0].Key)
	}

	tests := []struct {
		key, typ, preview string
	}{
		{"nom", "string", strings.Repeat("x", 50) + "..."},
		{"telephones", "array", "Array[2]"},
		{"createdAt", "object", "Object"},
		{"isAdmin", "boolean", "false"},
		{"views", "number", "3"},
		{"dren", "null", "null"},
	}
	for _, tt := range tests {
		f := fields[tt.key]
		if f.Type != tt.typ || f.Preview != tt.preview {
			t.Errorf("%s: expected (%s, %s), got (%s, %s)", tt.key, tt.typ, tt.preview, f.Type, f.Preview)
		}
	}
}

func TestCollectContacts(t *testing.T) {
	contacts, err := CollectContacts(context.Background(), seedDestination(), "")
	if err != nil {
		t.Fatalf("CollectContacts failed: %v", err)
	}
	if len(contacts) != 5 || contacts[0].Index != 1 || contacts[0].Phone(0) != "0700" {
		t.Errorf("unexpected contacts: %+v", contacts)
	}
	if contacts[0].CreatedAt == nil {
		t.Error("expected createdAt on first contact")
	}

	teachers, err := CollectContacts(context.Background(), seedDestination(), models.AccountTeacherTransfer)
	if err != nil {
		t.Fatalf("CollectContacts failed: %v", err)
	}
	if len(teachers) != 2 {
		t.Errorf("expected 2 teachers, got %d", len(teachers))
	}
}
