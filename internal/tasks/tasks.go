// package tasks implements the account migration pipeline and the maintenance tasks around it.
//
// The core abstraction is MigrationEngine, which drives a sequential per-record pipeline from a source project to a destination project.
// Operations emit progress updates over channels; every update is delivered unless the run is cancelled.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/acx/internal/models"
	"github.com/desertthunder/acx/internal/services"
	"github.com/desertthunder/acx/internal/shared"
	"golang.org/x/time/rate"
)

// MigrationOptions is the immutable configuration of one run.
type MigrationOptions struct {
	DryRun                   bool    // execute every check, write nothing
	SkipDuplicates           bool    // skip records the duplicate detector matches
	Password                 string  // temporary password for new accounts
	RollbackOnProfileFailure bool    // delete the account when its profile write fails
	RateLimit                float64 // records per second, 0 for unlimited
	Limit                    int     // process only the first Limit source records, 0 for all
	Email                    string  // process only records with this email
	RunID                    string  // identifies the run, generated when empty
}

// OptionsFromConfig builds run options from the [migration] config section.
func OptionsFromConfig(cfg shared.MigrationConfig) MigrationOptions {
	return MigrationOptions{
		SkipDuplicates:           cfg.SkipDuplicates,
		Password:                 cfg.DefaultPassword,
		RollbackOnProfileFailure: cfg.RollbackOnProfileFailure,
		RateLimit:                cfg.RateLimit,
	}
}

// Mode names the run mode.
func (o MigrationOptions) Mode() string {
	return models.ModeFor(o.DryRun)
}

// MigrationResult contains the outcome of every processed record.
type MigrationResult struct {
	RunID       string
	Mode        string
	Source      string
	Destination string
	StartedAt   time.Time
	CompletedAt time.Time
	Outcomes    []models.Outcome // in source enumeration order
	Summary     models.Summary
	Interrupted bool // cancelled before every record was processed
}

// Duration returns the wall time of the run.
func (r *MigrationResult) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// MigrationEngine copies accounts and profiles from a source project to a destination project.
type MigrationEngine struct {
	source services.SourceStore
	dest   services.DestinationStore
	logger *log.Logger
	now    func() time.Time
}

// NewMigrationEngine creates a new MigrationEngine with the provided stores.
func NewMigrationEngine(source services.SourceStore, dest services.DestinationStore, logger *log.Logger) *MigrationEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &MigrationEngine{source: source, dest: dest, logger: logger, now: time.Now}
}

// Source names the store records are read from.
func (e *MigrationEngine) Source() string {
	if e.source == nil {
		return ""
	}
	return e.source.Name()
}

// Destination names the store accounts are written to.
func (e *MigrationEngine) Destination() string {
	if e.dest == nil {
		return ""
	}
	return e.dest.Name()
}

// sendProgress delivers an update, waiting for the consumer so no record line is lost.
// Once ctx is done it only hands the update over if the channel has room.
func (e *MigrationEngine) sendProgress(ctx context.Context, progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	case <-ctx.Done():
		select {
		case progress <- update:
		default:
		}
	}
}

// Run migrates every source record, one at a time, in the source's enumeration order.
//
// Only a failure to enumerate the source is returned as an error ([shared.ErrEnumerationFailed]).
// Per-record failures become outcomes. When ctx is cancelled the run stops between records and
// the partial result is returned with Interrupted set.
func (e *MigrationEngine) Run(ctx context.Context, opts MigrationOptions, progress chan<- ProgressUpdate) (*MigrationResult, error) {
	if e.source == nil || e.dest == nil {
		return nil, fmt.Errorf("%w: source and destination stores are required", shared.ErrServiceUnavailable)
	}

	result := &MigrationResult{
		RunID:       shared.OrDefault(opts.RunID, shared.GenerateID()),
		Mode:        opts.Mode(),
		Source:      e.source.Name(),
		Destination: e.dest.Name(),
		StartedAt:   e.now(),
		Outcomes:    []models.Outcome{},
	}
	logger := shared.WithLogger(e.logger, "run_id", result.RunID)

	e.sendProgress(ctx, progress, enumeratingUpdate(result.Source))
	docs, err := e.source.ListDocuments(ctx, services.Query{Limit: opts.Limit})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrEnumerationFailed, err)
	}
	docs = filterByEmail(docs, opts.Email)

	total := len(docs)
	result.Summary.Total = total
	e.sendProgress(ctx, progress, enumeratedUpdate(total))
	logger.Info("starting migration", "mode", result.Mode, "records", total, "skip_duplicates", opts.SkipDuplicates)

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	detector := NewDuplicateDetector(e.dest, logger)
	provisioner := NewProvisioner(e.dest, opts.Password, opts.RollbackOnProfileFailure, logger)

	for i, doc := range docs {
		if ctx.Err() != nil {
			result.Interrupted = true
			break
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				result.Interrupted = true
				break
			}
		}

		outcome := e.migrateRecord(ctx, doc, opts, detector, provisioner, logger)
		result.Outcomes = append(result.Outcomes, outcome)
		result.Summary.Add(outcome)
		e.sendProgress(ctx, progress, recordUpdate(i+1, total, outcome))
	}

	result.CompletedAt = e.now()
	if result.Interrupted {
		logger.Warn("migration interrupted", "processed", len(result.Outcomes), "records", total)
	}
	e.sendProgress(ctx, progress, completeUpdate(result.Summary, result.Interrupted))
	return result, nil
}

// migrateRecord resolves one source record to its outcome. It never panics or returns an error:
// every failure is recorded on the outcome.
func (e *MigrationEngine) migrateRecord(
	ctx context.Context,
	doc models.Document,
	opts MigrationOptions,
	detector *DuplicateDetector,
	provisioner *Provisioner,
	logger *log.Logger,
) models.Outcome {
	src := models.DecodeSourceProfile(doc)
	logger = shared.WithLogger(logger, "source_id", doc.ID)

	email := src.Email
	displayName := ResolveFullName(src)
	principal, err := e.source.GetPrincipal(ctx, doc.ID)
	switch {
	case err == nil:
		if principal.Email != "" {
			email = principal.Email
		}
		if principal.DisplayName != "" {
			displayName = principal.DisplayName
		}
	case errors.Is(err, shared.ErrPrincipalNotFound):
		logger.Debug("no source principal, using profile data")
	default:
		logger.Warn("source principal lookup failed, using profile data", "error", err)
	}

	matricule := ResolveMatricule(src)
	if !ValidateMatricule(matricule) {
		logger.Debug("invalid matricule", "matricule", matricule)
		return models.Outcome{
			Email:     email,
			Matricule: matricule,
			OldUID:    doc.ID,
			Status:    models.StatusError,
			Reason:    models.ReasonInvalidIdentifier,
		}
	}

	check := detector.Check(ctx, email, matricule)
	if check.Exists && opts.SkipDuplicates {
		return models.Outcome{
			Email:     email,
			Matricule: matricule,
			OldUID:    doc.ID,
			Status:    models.StatusSkipped,
			Reason:    check.Reason,
		}
	}

	if opts.DryRun {
		return models.Outcome{
			Email:     email,
			Matricule: matricule,
			OldUID:    doc.ID,
			Status:    models.StatusWouldMigrate,
		}
	}

	return provisioner.Provision(ctx, ProvisionRequest{
		Source:      src,
		Email:       email,
		DisplayName: displayName,
		Matricule:   matricule,
		Now:         e.now(),
	})
}

func filterByEmail(docs []models.Document, email string) []models.Document {
	if email == "" {
		return docs
	}
	want := shared.NormalizeEmail(email)
	filtered := make([]models.Document, 0, 1)
	for _, doc := range docs {
		if shared.NormalizeEmail(models.StringField(doc.Data, "email")) == want {
			filtered = append(filtered, doc)
		}
	}
	return filtered
}
