package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/acx/internal/formatter"
	"github.com/desertthunder/acx/internal/models"
	"github.com/desertthunder/acx/internal/shared"
	"github.com/desertthunder/acx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// migrationOptions builds the run options once from config and flags.
func (r *Runner) migrationOptions(cmd *cli.Command) (tasks.MigrationOptions, error) {
	if cmd.Int("limit") < 0 {
		return tasks.MigrationOptions{}, fmt.Errorf("%w: --limit must not be negative", shared.ErrInvalidFlag)
	}

	opts := tasks.OptionsFromConfig(r.config.Migration)
	opts.DryRun = cmd.Bool("dry-run")
	opts.Limit = cmd.Int("limit")
	opts.Email = strings.TrimSpace(cmd.String("email"))
	return opts, nil
}

func (r *Runner) migrationEngine(ctx context.Context) (*tasks.MigrationEngine, error) {
	source, err := r.sourceStore(ctx)
	if err != nil {
		return nil, err
	}
	dest, err := r.destinationStore(ctx)
	if err != nil {
		return nil, err
	}
	return tasks.NewMigrationEngine(source, dest, r.logger), nil
}

// MigrateRun migrates every source record, prints the progress trace and summary, and writes the report.
//
// Returns [shared.ErrRecordsFailed] when any record ended in error, so the exit status reflects it.
func (r *Runner) MigrateRun(ctx context.Context, cmd *cli.Command) error {
	opts, err := r.migrationOptions(cmd)
	if err != nil {
		return err
	}

	engine, err := r.migrationEngine(ctx)
	if err != nil {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("ACCOUNT MIGRATION (%s)", opts.Mode()))
	if opts.DryRun {
		r.writePlain("Dry run: nothing will be written to the destination.\n")
	}
	r.writePlain("\n")

	var run *models.MigrationRun
	if !cmd.Bool("no-ledger") {
		if run = r.beginRun(opts, engine); run != nil {
			opts.RunID = run.ID()
		}
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for update := range progressCh {
			r.printProgress(update)
		}
	}()

	result, err := engine.Run(ctx, opts, progressCh)
	close(progressCh)
	<-printed

	if err != nil {
		r.failRun(run)
		return err
	}

	report, path, reportErr := r.finishRun(result, run)

	r.writePlain("\n")
	if err := formatter.WriteReportSummary(r.output, report, cmd.Bool("details")); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	if reportErr != nil {
		r.writePlainln("⚠ Report not saved: %v", reportErr)
	} else {
		r.writePlainln("Report saved: %s", path)
	}

	return runError(result)
}

// runError maps a finished run to the error that sets the exit status.
func runError(result *tasks.MigrationResult) error {
	s := result.Summary
	if result.Interrupted {
		return fmt.Errorf("%w: %d of %d records processed", shared.ErrInterrupted, len(result.Outcomes), s.Total)
	}
	if s.Errors > 0 {
		return fmt.Errorf("%w: %d of %d records", shared.ErrRecordsFailed, s.Errors, s.Total)
	}
	return nil
}

func (r *Runner) printProgress(update tasks.ProgressUpdate) {
	switch update.Phase {
	case tasks.Enumerate:
		r.writePlain("📥 %s\n", update.Message)
	case tasks.MigrateRecords, tasks.Backfill:
		r.writePlain("   %s\n", update.Message)
	case tasks.Complete:
		r.writePlain("\n%s\n", update.Message)
	}
}

// beginRun records a running ledger row before the engine starts, so a crashed run
// still shows up in history. It returns nil when the ledger is unavailable.
func (r *Runner) beginRun(opts tasks.MigrationOptions, engine *tasks.MigrationEngine) *models.MigrationRun {
	repo, err := r.ledger()
	if err != nil {
		r.logger.Warn("failed to record run in ledger", "error", err)
		return nil
	}

	now := r.now()
	run := models.NewMigrationRun(0, opts.Mode(), engine.Source(), engine.Destination())
	run.SetID(shared.OrDefault(opts.RunID, shared.GenerateID()))
	run.SetStartedAt(&now)
	if err := repo.Create(run); err != nil {
		r.logger.Warn("failed to record run in ledger", "run_id", run.ID(), "error", err)
		return nil
	}
	return run
}

// finishRun writes the report and completes the ledger row, if any. Neither failure changes
// any record outcome: both are logged and the report error is returned for display.
func (r *Runner) finishRun(result *tasks.MigrationResult, run *models.MigrationRun) (*models.Report, string, error) {
	report := tasks.BuildReport(result)

	path, reportErr := tasks.WriteReport(r.config.Migration.ReportDir, report)
	if reportErr != nil {
		r.logger.Error("failed to write report", "run_id", result.RunID, "error", reportErr)
	} else {
		r.logger.Info("report written", "run_id", result.RunID, "path", path)
	}

	if run != nil {
		if err := r.completeRun(run, result, path); err != nil {
			r.logger.Warn("failed to record run in ledger", "run_id", result.RunID, "error", err)
		}
	}

	return report, path, reportErr
}

func (r *Runner) completeRun(run *models.MigrationRun, result *tasks.MigrationResult, reportPath string) error {
	repo, err := r.ledger()
	if err != nil {
		return err
	}

	status := models.RunCompleted
	if result.Interrupted {
		status = models.RunInterrupted
	}

	started := result.StartedAt
	run.SetStartedAt(&started)
	run.SetReportPath(reportPath)
	run.Finish(result.Summary, status, result.CompletedAt)

	if err := repo.Update(run); err != nil {
		return err
	}
	return repo.SaveOutcomes(run.ID(), result.Outcomes)
}

// failRun marks a run that never got past enumeration as failed.
func (r *Runner) failRun(run *models.MigrationRun) {
	if run == nil {
		return
	}
	repo, err := r.ledger()
	if err != nil {
		r.logger.Warn("failed to record run in ledger", "error", err)
		return
	}

	run.Finish(models.Summary{}, models.RunFailed, r.now())
	if err := repo.Update(run); err != nil {
		r.logger.Warn("failed to record run in ledger", "run_id", run.ID(), "error", err)
	}
}

// MigrateReport prints the summary of a report file written by an earlier run.
func (r *Runner) MigrateReport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: report path is required", shared.ErrMissingArgument)
	}

	report, err := tasks.ReadReport(path)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(report, true)
	}
	return formatter.WriteReportSummary(r.output, report, true)
}
