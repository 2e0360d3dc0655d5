package main

import (
	"context"

	"github.com/desertthunder/acx/internal/formatter"
	"github.com/desertthunder/acx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ExportContacts writes the contact sheet of destination profiles.
func (r *Runner) ExportContacts(ctx context.Context, cmd *cli.Command) error {
	dest, err := r.destinationStore(ctx)
	if err != nil {
		return err
	}

	accountType := cmd.String("type")
	contacts, err := tasks.CollectContacts(ctx, dest, accountType)
	if err != nil {
		return err
	}

	path, err := formatter.WriteContactsExport(contacts, cmd.String("format"), cmd.String("output"))
	if err != nil {
		return err
	}

	stats := formatter.ComputeStats(contacts)
	r.logger.Info("contacts exported", "path", path, "count", stats.Total, "type", accountType)
	r.writePlain("✓ Exported %d contacts to %s\n", stats.Total, path)
	r.writePlain("  with email: %d, with phone: %d, with both: %d\n", stats.WithEmail, stats.WithPhone, stats.WithBoth)
	return nil
}
