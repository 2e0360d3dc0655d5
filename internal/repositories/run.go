package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/acx/internal/models"
	"github.com/desertthunder/acx/internal/shared"
)

// RunRepository implements models.Repository[*models.MigrationRun] for the run ledger.
//
// Handles run CRUD operations with soft delete support, status-based queries, and per-record outcome storage.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

const runColumns = `
	id, sequence, mode, source_project, destination_project, status,
	total, success, skipped, errors, report_path, started_at,
	completed_at, created_at, updated_at, deleted_at
`

// Create inserts a new run into the database with a generated sequence.
//
// A run without an ID gets a generated one; a run carrying the engine's run ID keeps it.
func (r *RunRepository) Create(run *models.MigrationRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := run.ID()
	if id == "" {
		id = shared.GenerateID()
		run.SetID(id)
	}
	run.SetSequence(sequence)

	query := `
		INSERT INTO runs (
			id, sequence, mode, source_project, destination_project, status,
			total, success, skipped, errors, report_path, started_at,
			completed_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	summary := run.Summary()
	_, err = r.db.Exec(query,
		id,
		sequence,
		run.Mode(),
		run.SourceProject(),
		run.DestinationProject(),
		run.Status(),
		summary.Total,
		summary.Success,
		summary.Skipped,
		summary.Errors,
		nullString(run.ReportPath()),
		run.StartedAt(),
		run.CompletedAt(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.MigrationRun, error) {
	query := "SELECT " + runColumns + " FROM runs WHERE id = ? AND deleted_at IS NULL"
	return r.scan(r.db.QueryRow(query, id), id)
}

// GetBySequence retrieves a run by its sequence number, excluding soft-deleted runs
func (r *RunRepository) GetBySequence(sequence int) (*models.MigrationRun, error) {
	query := "SELECT " + runColumns + " FROM runs WHERE sequence = ? AND deleted_at IS NULL"
	return r.scan(r.db.QueryRow(query, sequence), fmt.Sprintf("#%d", sequence))
}

// Update modifies an existing run in the database
func (r *RunRepository) Update(run *models.MigrationRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE runs
		SET status = ?, total = ?, success = ?, skipped = ?, errors = ?,
			report_path = ?, started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	summary := run.Summary()
	result, err := r.db.Exec(query,
		run.Status(),
		summary.Total,
		summary.Success,
		summary.Skipped,
		summary.Errors,
		nullString(run.ReportPath()),
		run.StartedAt(),
		run.CompletedAt(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	return requireRow(result, run.ID())
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	query := `
		UPDATE runs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	return requireRow(result, id)
}

// List retrieves all runs matching the given criteria, newest first, excluding soft-deleted runs.
//
// Recognized criteria: "status" and "mode" (string equality), "limit" (int).
func (r *RunRepository) List(criteria map[string]any) ([]*models.MigrationRun, error) {
	query := "SELECT " + runColumns + " FROM runs WHERE deleted_at IS NULL"
	args := []any{}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	if mode, ok := criteria["mode"].(string); ok && mode != "" {
		query += " AND mode = ?"
		args = append(args, mode)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []*models.MigrationRun{}
	for rows.Next() {
		run, err := r.scan(rows, "")
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// SaveOutcomes stores the outcomes of a run in order, replacing any stored earlier.
func (r *RunRepository) SaveOutcomes(runID string, outcomes []models.Outcome) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM run_outcomes WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("failed to clear outcomes: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO run_outcomes (run_id, position, email, matricule, old_uid, new_uid, status, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare outcome insert: %w", err)
	}
	defer stmt.Close()

	for i, o := range outcomes {
		if _, err := stmt.Exec(runID, i, o.Email, o.Matricule, o.OldUID, o.NewUID, string(o.Status), o.Reason); err != nil {
			return fmt.Errorf("failed to insert outcome %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit outcomes: %w", err)
	}

	return nil
}

// ListOutcomes returns the outcomes of a run in their original order, optionally filtered by status.
func (r *RunRepository) ListOutcomes(runID string, status models.Status) ([]models.Outcome, error) {
	query := `
		SELECT email, matricule, old_uid, new_uid, status, reason
		FROM run_outcomes
		WHERE run_id = ?
	`
	args := []any{runID}

	if status != "" {
		query += " AND status = ?"
		args = append(args, string(status))
	}

	query += " ORDER BY position ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := []models.Outcome{}
	for rows.Next() {
		var (
			o      models.Outcome
			status string
		)
		if err := rows.Scan(&o.Email, &o.Matricule, &o.OldUID, &o.NewUID, &status, &o.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		o.Status = models.Status(status)
		outcomes = append(outcomes, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return outcomes, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scan reads one runs row into a [models.MigrationRun]
func (r *RunRepository) scan(row scanner, key string) (*models.MigrationRun, error) {
	var (
		id                 string
		sequence           int
		mode               string
		sourceProject      string
		destinationProject string
		status             string
		summary            models.Summary
		reportPath         sql.NullString
		startedAt          sql.NullTime
		completedAt        sql.NullTime
		createdAt          time.Time
		updatedAt          time.Time
		deletedAt          sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &mode, &sourceProject, &destinationProject, &status,
		&summary.Total, &summary.Success, &summary.Skipped, &summary.Errors,
		&reportPath, &startedAt, &completedAt, &createdAt, &updatedAt, &deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrRunNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run := models.NewMigrationRun(sequence, mode, sourceProject, destinationProject)
	run.SetID(id)
	run.SetStatus(status)
	run.SetSummary(summary)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)

	if reportPath.Valid {
		run.SetReportPath(reportPath.String)
	}
	if startedAt.Valid {
		run.SetStartedAt(&startedAt.Time)
	}
	if completedAt.Valid {
		run.SetCompletedAt(&completedAt.Time)
	}
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func requireRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}
	return nil
}

var _ models.Repository[*models.MigrationRun] = (*RunRepository)(nil)
