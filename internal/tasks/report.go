package tasks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/acx/internal/models"
	"github.com/desertthunder/acx/internal/shared"
)

// BuildReport creates the audit report for a finished run.
func BuildReport(result *MigrationResult) *models.Report {
	details := make([]models.Outcome, len(result.Outcomes))
	copy(details, result.Outcomes)

	return &models.Report{
		RunID:       result.RunID,
		Date:        result.CompletedAt.UTC(),
		Mode:        result.Mode,
		Source:      result.Source,
		Destination: result.Destination,
		Duration:    fmt.Sprintf("%.2fs", result.Duration().Seconds()),
		Interrupted: result.Interrupted,
		Summary:     result.Summary,
		Details:     details,
	}
}

// ReportFilename names the report for a run finished at t, e.g. migration_report_2025-12-02T10-11-12-345Z.json.
func ReportFilename(t time.Time) string {
	ts := t.UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	return fmt.Sprintf("migration_report_%s.json", ts)
}

// WriteReport writes report as indented JSON into dir and returns its path.
//
// Reports are write-once: an existing file with the same name is never replaced.
func WriteReport(dir string, report *models.Report) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrReportPersistence, err)
	}

	path := filepath.Join(dir, ReportFilename(report.Date))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrReportPersistence, err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		f.Close()
		return "", fmt.Errorf("%w: %v", shared.ErrReportPersistence, err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrReportPersistence, err)
	}

	return path, nil
}

// ReadReport loads a report written by [WriteReport].
func ReadReport(path string) (*models.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	var report models.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("%w: failed to parse report: %v", shared.ErrInvalidInput, err)
	}
	return &report, nil
}
