package tasks

import (
	"fmt"

	"github.com/desertthunder/acx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Enumerate Phase = iota
	MigrateRecords
	Complete
	Backfill
)

func (p Phase) String() string {
	switch p {
	case Enumerate:
		return "enumerate"
	case MigrateRecords:
		return "migrate"
	case Complete:
		return "complete"
	case Backfill:
		return "backfill"
	default:
		return ""
	}
}

func enumeratingUpdate(source string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Enumerate,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Fetching profiles from %s...", source),
	}
}

func enumeratedUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Enumerate,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d profiles", total),
	}
}

// recordUpdate carries the record's [models.Outcome] as Data.
func recordUpdate(step, total int, o models.Outcome) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MigrateRecords,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, describeOutcome(o)),
		Data:    o,
	}
}

// completeUpdate carries the final [models.Summary] as Data.
func completeUpdate(s models.Summary, interrupted bool) ProgressUpdate {
	msg := fmt.Sprintf("Done: %d migrated, %d skipped, %d errors", s.Success, s.Skipped, s.Errors)
	if interrupted {
		msg = fmt.Sprintf("Interrupted: %d migrated, %d skipped, %d errors", s.Success, s.Skipped, s.Errors)
	}
	return ProgressUpdate{
		Phase:   Complete,
		Step:    s.Success + s.Skipped + s.Errors,
		Total:   s.Total,
		Message: msg,
		Data:    s,
	}
}

func backfillUpdate(step, total int, email string, from int64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Backfill,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s: %d → %d", step, total, email, from, models.MigratedFreeQuotaLimit),
	}
}

func describeOutcome(o models.Outcome) string {
	email := o.Email
	if email == "" {
		email = o.OldUID
	}
	switch o.Status {
	case models.StatusSuccess:
		return fmt.Sprintf("✓ %s migrated (UID: %s)", email, o.NewUID)
	case models.StatusWouldMigrate:
		return fmt.Sprintf("✓ %s would be migrated", email)
	case models.StatusSkipped:
		return fmt.Sprintf("⏭ %s skipped: %s", email, o.Reason)
	case models.StatusOrphaned:
		return fmt.Sprintf("✗ %s orphaned principal %s: %s", email, o.NewUID, o.Reason)
	default:
		return fmt.Sprintf("✗ %s: %s", email, o.Reason)
	}
}
