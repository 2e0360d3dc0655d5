package main

import (
	"context"

	"github.com/desertthunder/acx/internal/models"
	"github.com/desertthunder/acx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// QuotaBackfill raises freeQuotaLimit on migrated profiles still carrying the legacy value.
func (r *Runner) QuotaBackfill(ctx context.Context, cmd *cli.Command) error {
	dest, err := r.destinationStore(ctx)
	if err != nil {
		return err
	}

	dryRun := cmd.Bool("dry-run")
	engine := tasks.NewMigrationEngine(nil, dest, r.logger)

	r.writePlainHeader("FREE QUOTA BACKFILL")
	if dryRun {
		r.writePlain("Dry run: nothing will be written to the destination.\n")
	}
	r.writePlain("\n")

	progressCh := make(chan tasks.ProgressUpdate, 50)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for update := range progressCh {
			r.printProgress(update)
		}
	}()

	result, err := engine.BackfillQuota(ctx, dryRun, progressCh)
	close(progressCh)
	<-printed
	if err != nil {
		return err
	}

	r.writePlain("\n%-26s %d\n", "teacher_transfer profiles:", result.Total)
	if dryRun {
		r.writePlain("%-26s %d\n", "Would update:", len(result.Updated))
	} else {
		r.writePlain("%-26s %d\n", "Updated:", len(result.Updated))
	}
	r.writePlain("%-26s %d\n", "Already current:", result.AlreadyCurrent)
	r.writePlain("%-26s %d\n", "Other limit:", len(result.Other))
	r.writePlain("%-26s %d\n", "Still at legacy limit:", result.Remaining)

	if len(result.Other) > 0 {
		r.writePlainln("Profiles with an unexpected limit (left unchanged):")
		for _, p := range result.Other {
			r.writePlain("  - %s <%s>: %d\n", p.Nom, p.Email, p.Limit)
		}
	}

	if !dryRun && result.Remaining == 0 {
		r.writePlainln("✓ Every migrated profile has freeQuotaLimit = %d", models.MigratedFreeQuotaLimit)
	}
	return nil
}
