package models

import "time"

// Status is the terminal state of one source record in a run.
type Status string

const (
	StatusSuccess      Status = "success"
	StatusWouldMigrate Status = "would_migrate" // dry run: every check passed, nothing written
	StatusSkipped      Status = "skipped"
	StatusError        Status = "error"
	StatusOrphaned     Status = "orphaned" // principal created, profile missing, rollback failed or disabled
)

// Reasons recorded on skipped and error outcomes.
const (
	ReasonInvalidIdentifier = "invalid_identifier"
	ReasonEmailExistsInAuth = "email_exists_in_auth"
	ReasonMatriculeExists   = "matricule_exists_in_firestore"
	ReasonEmailExists       = "email_exists"
)

// Outcome is the per-record result of a run. It carries enough detail to audit or re-run a failed subset.
type Outcome struct {
	Email     string `json:"email"`
	Matricule string `json:"matricule,omitempty"`
	OldUID    string `json:"oldUid,omitempty"`
	NewUID    string `json:"newUid,omitempty"`
	Status    Status `json:"status"`
	Reason    string `json:"reason,omitempty"`
}

// Failed reports whether the outcome counts toward the error total.
func (o Outcome) Failed() bool {
	return o.Status == StatusError || o.Status == StatusOrphaned
}

// Summary aggregates outcome counts for a run. Total counts enumerated records, including ones
// never reached when a run is interrupted.
type Summary struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// Add counts one outcome. would_migrate counts as a success; orphaned counts as an error.
func (s *Summary) Add(o Outcome) {
	switch o.Status {
	case StatusSuccess, StatusWouldMigrate:
		s.Success++
	case StatusSkipped:
		s.Skipped++
	case StatusError, StatusOrphaned:
		s.Errors++
	}
}

// Report is the audit artifact written once at the end of a run.
type Report struct {
	RunID       string    `json:"runId"`
	Date        time.Time `json:"date"`
	Mode        string    `json:"mode"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Duration    string    `json:"duration"`
	Interrupted bool      `json:"interrupted,omitempty"`
	Summary     Summary   `json:"summary"`
	Details     []Outcome `json:"details"`
}

// Run modes recorded in reports and the ledger.
const (
	ModeDryRun     = "dry-run"
	ModeProduction = "production"
)

// ModeFor names the run mode for the dry-run flag.
func ModeFor(dryRun bool) string {
	if dryRun {
		return ModeDryRun
	}
	return ModeProduction
}
