package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/desertthunder/acx/internal/models"
)

const rule = "═══════════════════════════════════════"

// WriteReportSummary renders a migration report as the console summary printed after a run.
//
// With details set, every skipped and failed record is listed under the totals.
func WriteReportSummary(w io.Writer, report *models.Report, details bool) error {
	var b strings.Builder

	title := "MIGRATION COMPLETE"
	if report.Mode == models.ModeDryRun {
		title = "DRY RUN COMPLETE"
	}
	if report.Interrupted {
		title = "MIGRATION INTERRUPTED"
	}

	fmt.Fprintf(&b, "%s\n%s\n%s\n", rule, title, rule)
	fmt.Fprintf(&b, "%-13s %s\n", "Run:", report.RunID)
	fmt.Fprintf(&b, "%-13s %s\n", "Mode:", report.Mode)
	fmt.Fprintf(&b, "%-13s %s\n", "Source:", report.Source)
	fmt.Fprintf(&b, "%-13s %s\n", "Destination:", report.Destination)
	fmt.Fprintf(&b, "%-13s %s\n", "Date:", report.Date.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "%-13s %s\n\n", "Duration:", report.Duration)

	s := report.Summary
	fmt.Fprintf(&b, "%-13s %d\n", "Total:", s.Total)
	fmt.Fprintf(&b, "%-13s %d\n", "Success:", s.Success)
	fmt.Fprintf(&b, "%-13s %d\n", "Skipped:", s.Skipped)
	fmt.Fprintf(&b, "%-13s %d\n", "Errors:", s.Errors)

	if processed := s.Success + s.Skipped + s.Errors; report.Interrupted && processed < s.Total {
		fmt.Fprintf(&b, "\n%d records were not processed.\n", s.Total-processed)
	}

	if details {
		writeOutcomes(&b, "Failed records", report.Details, models.Outcome.Failed)
		writeOutcomes(&b, "Skipped records", report.Details, func(o models.Outcome) bool {
			return o.Status == models.StatusSkipped
		})
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeOutcomes(b *strings.Builder, heading string, outcomes []models.Outcome, keep func(models.Outcome) bool) {
	var lines []string
	for _, o := range outcomes {
		if !keep(o) {
			continue
		}
		line := fmt.Sprintf("  - %s", orNA(o.Email))
		if o.Matricule != "" {
			line += fmt.Sprintf(" (%s)", o.Matricule)
		}
		line += ": " + o.Reason
		if o.Status == models.StatusOrphaned {
			line += fmt.Sprintf(" [orphaned principal %s]", o.NewUID)
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s (%d):\n%s\n", heading, len(lines), strings.Join(lines, "\n"))
}
