package tasks

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/desertthunder/acx/internal/models"
	"github.com/desertthunder/acx/internal/services"
)

// RequiredProfileFields must be present and non-empty on every migrated profile.
var RequiredProfileFields = []string{"uid", "email", "nom", "accountType", "fonction", "zoneActuelle", "zonesSouhaitees", "createdAt"}

// AccountTypeCounts tallies destination profiles by account type.
type AccountTypeCounts struct {
	Total            int
	TeacherTransfer  int
	TeacherCandidate int
	School           int
	Other            int
	Sample           []models.Document // first teacher_transfer profiles, up to the sample size
}

// CountAccountTypes counts every profile in reader by accountType and keeps up to sample
// teacher_transfer profiles for display.
func CountAccountTypes(ctx context.Context, reader services.DocumentReader, sample int) (*AccountTypeCounts, error) {
	docs, err := reader.ListDocuments(ctx, services.Query{})
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	counts := &AccountTypeCounts{Total: len(docs)}
	for _, doc := range docs {
		switch models.StringField(doc.Data, "accountType") {
		case models.AccountTeacherTransfer:
			counts.TeacherTransfer++
			if len(counts.Sample) < sample {
				counts.Sample = append(counts.Sample, doc)
			}
		case models.AccountTeacherCandidate:
			counts.TeacherCandidate++
		case models.AccountSchool:
			counts.School++
		default:
			counts.Other++
		}
	}
	return counts, nil
}

// InvalidProfile is a migrated profile missing one or more required fields.
type InvalidProfile struct {
	Index   int // 1-based position in the listing
	ID      string
	Nom     string
	Email   string
	Missing []string
}

// ProfileAnalysis is the result of [AnalyzeProfiles].
type ProfileAnalysis struct {
	Total    int
	Valid    int
	Invalid  []InvalidProfile
	Profiles []models.Document
}

// AnalyzeProfiles checks every teacher_transfer profile for [RequiredProfileFields].
// Empty strings, zero numbers, false, nil, and empty arrays count as missing.
func AnalyzeProfiles(ctx context.Context, reader services.DocumentReader) (*ProfileAnalysis, error) {
	docs, err := reader.ListDocuments(ctx, services.Query{Field: "accountType", Value: models.AccountTeacherTransfer})
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	analysis := &ProfileAnalysis{Total: len(docs), Profiles: docs}
	for i, doc := range docs {
		var missing []string
		for _, field := range RequiredProfileFields {
			if missingField(doc.Data, field) {
				missing = append(missing, field)
			}
		}

		if len(missing) == 0 {
			analysis.Valid++
			continue
		}

		analysis.Invalid = append(analysis.Invalid, InvalidProfile{
			Index:   i + 1,
			ID:      doc.ID,
			Nom:     models.StringField(doc.Data, "nom"),
			Email:   models.StringField(doc.Data, "email"),
			Missing: missing,
		})
	}
	return analysis, nil
}

// FieldPreview describes one field of a raw document.
type FieldPreview struct {
	Key     string
	Type    string
	Preview string
}

// DocumentPreview lists the fields of one raw document in key order.
type DocumentPreview struct {
	ID     string
	Fields []FieldPreview
}

// InspectSource previews the first n source documents so schema drift can be spotted before a run.
func InspectSource(ctx context.Context, reader services.DocumentReader, n int) ([]DocumentPreview, error) {
	if n <= 0 {
		n = 3
	}

	docs, err := reader.ListDocuments(ctx, services.Query{Limit: n})
	if err != nil {
		return nil, fmt.Errorf("failed to list source documents: %w", err)
	}

	previews := make([]DocumentPreview, 0, len(docs))
	for _, doc := range docs {
		keys := make([]string, 0, len(doc.Data))
		for k := range doc.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		preview := DocumentPreview{ID: doc.ID, Fields: make([]FieldPreview, 0, len(keys))}
		for _, k := range keys {
			typ, text := describeValue(doc.Data[k])
			preview.Fields = append(preview.Fields, FieldPreview{Key: k, Type: typ, Preview: text})
		}
		previews = append(previews, preview)
	}
	return previews, nil
}

const previewWidth = 50

func describeValue(v any) (string, string) {
	switch val := v.(type) {
	case nil:
		return "null", "null"
	case string:
		if len([]rune(val)) > previewWidth {
			return "string", string([]rune(val)[:previewWidth]) + "..."
		}
		return "string", val
	case bool:
		return "boolean", fmt.Sprint(val)
	case int, int64, float64:
		return "number", fmt.Sprint(val)
	case time.Time:
		return "timestamp", val.UTC().Format(time.RFC3339)
	case []any:
		return "array", fmt.Sprintf("Array[%d]", len(val))
	case []string:
		return "array", fmt.Sprintf("Array[%d]", len(val))
	default:
		return "object", "Object"
	}
}

// missingField reports whether a required field is blank. Arrays holding only nulls count as empty.
func missingField(data map[string]any, field string) bool {
	switch data[field].(type) {
	case []any, []string:
		return len(models.StringSlice(data, field)) == 0
	}
	return isBlank(data[field])
}

func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case int:
		return val == 0
	case int64:
		return val == 0
	case float64:
		return val == 0
	case time.Time:
		return val.IsZero()
	default:
		return false
	}
}
