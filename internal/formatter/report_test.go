package formatter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/acx/internal/models"
)

func sampleReport() *models.Report {
	return &models.Report{
		RunID:       "run-1",
		Date:        time.Date(2025, 12, 2, 10, 0, 0, 0, time.UTC),
		Mode:        models.ModeProduction,
		Source:      "old-project",
		Destination: "new-project",
		Duration:    "1.50s",
		Summary:     models.Summary{Total: 4, Success: 1, Skipped: 1, Errors: 2},
		Details: []models.Outcome{
			{Email: "a@x.com", Matricule: "123456A", NewUID: "n1", Status: models.StatusSuccess},
			{Email: "b@x.com", Status: models.StatusSkipped, Reason: models.ReasonEmailExistsInAuth},
			{Email: "c@x.com", Matricule: "12", Status: models.StatusError, Reason: models.ReasonInvalidIdentifier},
			{Email: "d@x.com", NewUID: "n4", Status: models.StatusOrphaned, Reason: "profile write failed"},
		},
	}
}

func TestWriteReportSummary(t *testing.T) {
	t.Run("totals", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteReportSummary(&buf, sampleReport(), false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := buf.String()

		for _, want := range []string{"MIGRATION COMPLETE", "run-1", "old-project", "Errors:       2", "1.50s"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected summary to contain %q, got:\n%s", want, out)
			}
		}
		if strings.Contains(out, "Failed records") {
			t.Error("expected no details without the details flag")
		}
	})

	t.Run("details", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteReportSummary(&buf, sampleReport(), true); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := buf.String()

		for _, want := range []string{
			"Failed records (2):",
			"  - c@x.com (12): invalid_identifier",
			"[orphaned principal n4]",
			"Skipped records (1):",
			"  - b@x.com: email_exists_in_auth",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected summary to contain %q, got:\n%s", want, out)
			}
		}
		if strings.Contains(out, "a@x.com") {
			t.Error("expected successes to be omitted")
		}
	})

	t.Run("dry run title", func(t *testing.T) {
		report := sampleReport()
		report.Mode = models.ModeDryRun

		var buf bytes.Buffer
		WriteReportSummary(&buf, report, false)
		if !strings.Contains(buf.String(), "DRY RUN COMPLETE") {
			t.Errorf("expected dry run title, got:\n%s", buf.String())
		}
	})

	t.Run("interrupted", func(t *testing.T) {
		report := sampleReport()
		report.Interrupted = true
		report.Summary = models.Summary{Total: 10, Success: 2, Skipped: 1}

		var buf bytes.Buffer
		WriteReportSummary(&buf, report, false)
		out := buf.String()
		if !strings.Contains(out, "MIGRATION INTERRUPTED") || !strings.Contains(out, "7 records were not processed.") {
			t.Errorf("unexpected interrupted summary:\n%s", out)
		}
	})
}
