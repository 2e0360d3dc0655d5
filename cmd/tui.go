package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/acx/internal/models"
	"github.com/desertthunder/acx/internal/shared"
	"github.com/desertthunder/acx/internal/tasks"
	"github.com/desertthunder/acx/internal/ui"
	"github.com/urfave/cli/v3"
)

const tuiLogPath = "./tmp/acx-tui.log"

// MigrateUI previews source records and runs the migration in the interactive terminal UI.
func (r *Runner) MigrateUI(ctx context.Context, cmd *cli.Command) error {
	opts, err := r.migrationOptions(cmd)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, logFile, err := shared.NewFileLogger(tuiLogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer logFile.Close()
	r.SetLogger(fileLogger)

	engine, err := r.migrationEngine(ctx)
	if err != nil {
		return err
	}
	source, err := r.sourceStore(ctx)
	if err != nil {
		return err
	}

	useLedger := !cmd.Bool("no-ledger")
	var run *models.MigrationRun
	model := ui.NewModel(ctx, source, engine, opts, ui.RunHooks{
		Start: func(opts tasks.MigrationOptions) tasks.MigrationOptions {
			run = nil
			if useLedger {
				if run = r.beginRun(opts, engine); run != nil {
					opts.RunID = run.ID()
				}
			}
			return opts
		},
		Finish: func(result *tasks.MigrationResult, err error) (string, error) {
			if err != nil {
				r.failRun(run)
				return "", nil
			}
			_, path, reportErr := r.finishRun(result, run)
			return path, reportErr
		},
	})

	p := tea.NewProgram(model, tea.WithContext(ctx))
	_, err = p.Run()

	// A killed program leaves its run in flight; collect it so the partial report is written.
	model.Wait()

	return uiError(ctx, err, model.Result(), model.Err())
}

// uiError maps how the program ended to the error that sets the exit status. A program
// killed by a signal or a cancelled ctx counts as an interrupted run.
func uiError(ctx context.Context, err error, result *tasks.MigrationResult, runErr error) error {
	if err != nil {
		if errors.Is(err, tea.ErrProgramPanic) || (ctx.Err() == nil && !errors.Is(err, tea.ErrInterrupted)) {
			return fmt.Errorf("error running TUI: %w", err)
		}
		if result != nil && result.Interrupted {
			return runError(result)
		}
		return fmt.Errorf("%w: %v", shared.ErrInterrupted, err)
	}

	if runErr != nil {
		return runErr
	}
	if result != nil {
		return runError(result)
	}
	return nil
}
