package models

import (
	"fmt"
	"time"
)

// Run statuses stored in the ledger.
const (
	RunRunning     = "running"
	RunCompleted   = "completed"
	RunFailed      = "failed"
	RunInterrupted = "interrupted"
)

// MigrationRun is the ledger entry for one execution of the migration pipeline.
type MigrationRun struct {
	id                 string
	sequence           int
	mode               string
	sourceProject      string
	destinationProject string
	status             string
	summary            Summary
	reportPath         string
	startedAt          *time.Time
	completedAt        *time.Time
	createdAt          time.Time
	updatedAt          time.Time
	deletedAt          *time.Time
}

// NewMigrationRun creates a running [MigrationRun] with timestamps set to now.
func NewMigrationRun(sequence int, mode, sourceProject, destinationProject string) *MigrationRun {
	now := time.Now()
	return &MigrationRun{
		sequence:           sequence,
		mode:               mode,
		sourceProject:      sourceProject,
		destinationProject: destinationProject,
		status:             RunRunning,
		createdAt:          now,
		updatedAt:          now,
	}
}

func (m *MigrationRun) ID() string                 { return m.id }
func (m *MigrationRun) Sequence() int              { return m.sequence }
func (m *MigrationRun) Mode() string               { return m.mode }
func (m *MigrationRun) SourceProject() string      { return m.sourceProject }
func (m *MigrationRun) DestinationProject() string { return m.destinationProject }
func (m *MigrationRun) Status() string             { return m.status }
func (m *MigrationRun) Summary() Summary           { return m.summary }
func (m *MigrationRun) ReportPath() string         { return m.reportPath }
func (m *MigrationRun) StartedAt() *time.Time      { return m.startedAt }
func (m *MigrationRun) CompletedAt() *time.Time    { return m.completedAt }
func (m *MigrationRun) CreatedAt() time.Time       { return m.createdAt }
func (m *MigrationRun) UpdatedAt() time.Time       { return m.updatedAt }
func (m *MigrationRun) DeletedAt() *time.Time      { return m.deletedAt }

func (m *MigrationRun) SetID(id string)             { m.id = id }
func (m *MigrationRun) SetSequence(sequence int)    { m.sequence = sequence }
func (m *MigrationRun) SetStatus(status string)     { m.status = status }
func (m *MigrationRun) SetSummary(summary Summary)  { m.summary = summary }
func (m *MigrationRun) SetReportPath(path string)   { m.reportPath = path }
func (m *MigrationRun) SetStartedAt(t *time.Time)   { m.startedAt = t }
func (m *MigrationRun) SetCompletedAt(t *time.Time) { m.completedAt = t }
func (m *MigrationRun) SetCreatedAt(t time.Time)    { m.createdAt = t }
func (m *MigrationRun) SetUpdatedAt(t time.Time)    { m.updatedAt = t }
func (m *MigrationRun) SetDeletedAt(t *time.Time)   { m.deletedAt = t }

// Validate checks required fields and status values.
func (m *MigrationRun) Validate() error {
	if m.mode != ModeDryRun && m.mode != ModeProduction {
		return fmt.Errorf("invalid mode: %q", m.mode)
	}
	if m.sourceProject == "" {
		return fmt.Errorf("source project is required")
	}
	if m.destinationProject == "" {
		return fmt.Errorf("destination project is required")
	}
	switch m.status {
	case RunRunning, RunCompleted, RunFailed, RunInterrupted:
	default:
		return fmt.Errorf("invalid status: %q", m.status)
	}
	return nil
}

// Finish records the final summary and status of the run.
func (m *MigrationRun) Finish(summary Summary, status string, completedAt time.Time) {
	m.summary = summary
	m.status = status
	m.completedAt = &completedAt
}
