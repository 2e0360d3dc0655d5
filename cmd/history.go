package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/acx/internal/models"
	"github.com/desertthunder/acx/internal/repositories"
	"github.com/desertthunder/acx/internal/shared"
	"github.com/urfave/cli/v3"
)

// runView is the JSON shape of a ledger run.
type runView struct {
	ID          string         `json:"id"`
	Sequence    int            `json:"sequence"`
	Mode        string         `json:"mode"`
	Source      string         `json:"source"`
	Destination string         `json:"destination"`
	Status      string         `json:"status"`
	Summary     models.Summary `json:"summary"`
	ReportPath  string         `json:"reportPath,omitempty"`
	StartedAt   *time.Time     `json:"startedAt,omitempty"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}

func newRunView(run *models.MigrationRun) runView {
	return runView{
		ID:          run.ID(),
		Sequence:    run.Sequence(),
		Mode:        run.Mode(),
		Source:      run.SourceProject(),
		Destination: run.DestinationProject(),
		Status:      run.Status(),
		Summary:     run.Summary(),
		ReportPath:  run.ReportPath(),
		StartedAt:   run.StartedAt(),
		CompletedAt: run.CompletedAt(),
	}
}

// HistoryList lists recorded runs, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.ledger()
	if err != nil {
		return err
	}

	runs, err := repo.List(map[string]any{
		"status": cmd.String("status"),
		"mode":   cmd.String("mode"),
		"limit":  cmd.Int("limit"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		views := make([]runView, len(runs))
		for i, run := range runs {
			views[i] = newRunView(run)
		}
		return r.writeJSON(views, true)
	}

	if len(runs) == 0 {
		r.writePlain("No runs recorded.\n")
		return nil
	}

	r.writePlain("%-5s %-11s %-12s %-19s %7s %7s %7s %7s\n", "#", "MODE", "STATUS", "STARTED", "TOTAL", "OK", "SKIP", "ERR")
	for _, run := range runs {
		s := run.Summary()
		r.writePlain("%-5d %-11s %-12s %-19s %7d %7d %7d %7d\n",
			run.Sequence(), run.Mode(), run.Status(), formatTime(run.StartedAt()),
			s.Total, s.Success, s.Skipped, s.Errors)
	}
	return nil
}

// HistoryShow prints one run, looked up by sequence number or ID, and its outcomes.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	key := cmd.StringArg("run")
	if key == "" {
		return fmt.Errorf("%w: run ID or sequence number is required", shared.ErrMissingArgument)
	}

	status := models.Status(cmd.String("status"))
	switch status {
	case "", models.StatusSuccess, models.StatusWouldMigrate, models.StatusSkipped, models.StatusError, models.StatusOrphaned:
	default:
		return fmt.Errorf("%w: unknown outcome status %q", shared.ErrInvalidFlag, status)
	}

	repo, err := r.ledger()
	if err != nil {
		return err
	}

	run, err := findRun(repo, key)
	if err != nil {
		return err
	}

	outcomes, err := repo.ListOutcomes(run.ID(), status)
	if err != nil {
		return err
	}

	s := run.Summary()
	r.writePlainHeader(fmt.Sprintf("RUN #%d (%s)", run.Sequence(), run.Status()))
	r.writePlain("%-13s %s\n", "ID:", run.ID())
	r.writePlain("%-13s %s\n", "Mode:", run.Mode())
	r.writePlain("%-13s %s\n", "Source:", run.SourceProject())
	r.writePlain("%-13s %s\n", "Destination:", run.DestinationProject())
	r.writePlain("%-13s %s\n", "Started:", formatTime(run.StartedAt()))
	r.writePlain("%-13s %s\n", "Completed:", formatTime(run.CompletedAt()))
	r.writePlain("%-13s %s\n", "Report:", shared.OrDefault(run.ReportPath(), "-"))
	r.writePlain("%-13s %d total, %d success, %d skipped, %d errors\n", "Summary:", s.Total, s.Success, s.Skipped, s.Errors)

	if len(outcomes) == 0 {
		return nil
	}

	r.writePlainln("Outcomes:")
	for _, o := range outcomes {
		line := fmt.Sprintf("  [%s] %s", o.Status, shared.OrDefault(o.Email, o.OldUID))
		if o.Matricule != "" {
			line += " (" + o.Matricule + ")"
		}
		if o.NewUID != "" {
			line += " → " + o.NewUID
		}
		if o.Reason != "" {
			line += ": " + o.Reason
		}
		r.writePlain("%s\n", line)
	}
	return nil
}

// HistoryDelete soft-deletes a run, looked up by sequence number or ID. Its outcomes stay stored
// but the run no longer appears in listings.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	key := cmd.StringArg("run")
	if key == "" {
		return fmt.Errorf("%w: run ID or sequence number is required", shared.ErrMissingArgument)
	}

	repo, err := r.ledger()
	if err != nil {
		return err
	}

	run, err := findRun(repo, key)
	if err != nil {
		return err
	}
	if run.Status() == models.RunRunning && !cmd.Bool("force") {
		return fmt.Errorf("%w: run #%d is still running, use --force to delete it", shared.ErrInvalidFlag, run.Sequence())
	}

	if err := repo.Delete(run.ID()); err != nil {
		return err
	}

	r.logger.Info("run deleted", "run_id", run.ID(), "sequence", run.Sequence())
	r.writePlainln("Deleted run #%d (%s)", run.Sequence(), run.ID())
	return nil
}

func findRun(repo *repositories.RunRepository, key string) (*models.MigrationRun, error) {
	if seq, err := strconv.Atoi(key); err == nil {
		return repo.GetBySequence(seq)
	}
	return repo.Get(key)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
