package tasks

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/acx/internal/models"
	"github.com/desertthunder/acx/internal/shared"
	tu "github.com/desertthunder/acx/internal/testing"
)

func sampleResult() *MigrationResult {
	start := time.Date(2025, 12, 2, 10, 11, 12, 345000000, time.UTC)
	outcomes := []models.Outcome{
		{Email: "a@x.com", Matricule: "123456A", OldUID: "s1", NewUID: "d1", Status: models.StatusSuccess},
		{Email: "b@x.com", Matricule: "123456B", OldUID: "s2", Status: models.StatusSkipped, Reason: models.ReasonEmailExistsInAuth},
		{Email: "c@x.com", Matricule: "12", OldUID: "s3", Status: models.StatusError, Reason: models.ReasonInvalidIdentifier},
	}
	result := &MigrationResult{
		RunID:       "run-1",
		Mode:        models.ModeProduction,
		Source:      "old-project",
		Destination: "new-project",
		StartedAt:   start,
		CompletedAt: start.Add(1500 * time.Millisecond),
		Outcomes:    outcomes,
		Summary:     models.Summary{Total: 3},
	}
	for _, o := range outcomes {
		result.Summary.Add(o)
	}
	return result
}

func TestBuildReport(t *testing.T) {
	result := sampleResult()
	report := BuildReport(result)

	if report.Mode != models.ModeProduction || report.Source != "old-project" || report.Destination != "new-project" {
		t.Errorf("unexpected header: %+v", report)
	}
	if report.Summary != (models.Summary{Total: 3, Success: 1, Skipped: 1, Errors: 1}) {
		t.Errorf("unexpected summary: %+v", report.Summary)
	}
	if report.Duration != "1.50s" {
		t.Errorf("expected duration 1.50s, got %s", report.Duration)
	}
	if len(report.Details) != 3 || report.Details[2].OldUID != "s3" {
		t.Errorf("expected ordered details, got %+v", report.Details)
	}

	result.Outcomes[0].Status = models.StatusError
	if report.Details[0].Status != models.StatusSuccess {
		t.Error("expected report details to be a copy")
	}
}

func TestReportFilename(t *testing.T) {
	ts := time.Date(2025, 12, 2, 10, 11, 12, 345000000, time.UTC)
	want := "migration_report_2025-12-02T10-11-12-345Z.json"
	if got := ReportFilename(ts); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestWriteReport(t *testing.T) {
	t.Run("writes and reads back", func(t *testing.T) {
		dir := t.TempDir()
		report := BuildReport(sampleResult())

		path, err := WriteReport(dir, report)
		if err != nil {
			t.Fatalf("WriteReport failed: %v", err)
		}
		tu.AssertFileExists(t, path)

		content := tu.MustReadFile(t, path)
		for _, want := range []string{`"mode": "production"`, `"oldUid": "s1"`, `"newUid": "d1"`, `"reason": "invalid_identifier"`} {
			if !strings.Contains(content, want) {
				t.Errorf("report missing %s", want)
			}
		}

		loaded, err := ReadReport(path)
		if err != nil {
			t.Fatalf("ReadReport failed: %v", err)
		}
		if loaded.Summary != report.Summary || len(loaded.Details) != 3 {
			t.Errorf("unexpected round trip: %+v", loaded)
		}
	})

	t.Run("never overwrites", func(t *testing.T) {
		dir := t.TempDir()
		report := BuildReport(sampleResult())

		if _, err := WriteReport(dir, report); err != nil {
			t.Fatalf("first WriteReport failed: %v", err)
		}
		_, err := WriteReport(dir, report)
		if !errors.Is(err, shared.ErrReportPersistence) {
			t.Errorf("expected ErrReportPersistence, got %v", err)
		}
	})

	t.Run("unwritable directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "not-a-dir")
		if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}

		_, err := WriteReport(filepath.Join(file, "reports"), BuildReport(sampleResult()))
		if !errors.Is(err, shared.ErrReportPersistence) {
			t.Errorf("expected ErrReportPersistence, got %v", err)
		}
	})

	t.Run("empty details serialize as array", func(t *testing.T) {
		result := sampleResult()
		result.Outcomes = []models.Outcome{}
		path, err := WriteReport(t.TempDir(), BuildReport(result))
		if err != nil {
			t.Fatalf("WriteReport failed: %v", err)
		}
		if !strings.Contains(tu.MustReadFile(t, path), `"details": []`) {
			t.Error("expected empty details array")
		}
	})
}

func TestReadReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if _, err := ReadReport(path); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
