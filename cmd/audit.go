package main

import (
	"context"
	"strings"

	"github.com/desertthunder/acx/internal/models"
	"github.com/desertthunder/acx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// AuditCount counts destination profiles per account type.
func (r *Runner) AuditCount(ctx context.Context, cmd *cli.Command) error {
	dest, err := r.destinationStore(ctx)
	if err != nil {
		return err
	}

	counts, err := tasks.CountAccountTypes(ctx, dest, cmd.Int("sample"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(counts, true)
	}

	r.writePlainHeader("PROFILE COUNT: " + dest.Name())
	r.writePlain("%-22s %d\n", "Total profiles:", counts.Total)
	r.writePlain("%-22s %d\n", "teacher_transfer:", counts.TeacherTransfer)
	r.writePlain("%-22s %d\n", "teacher_candidate:", counts.TeacherCandidate)
	r.writePlain("%-22s %d\n", "school:", counts.School)
	r.writePlain("%-22s %d\n", "other:", counts.Other)

	if len(counts.Sample) > 0 {
		r.writePlainln("Migrated profiles (first %d):", len(counts.Sample))
		for i, doc := range counts.Sample {
			r.writePlain("  %d. %s <%s> %s\n", i+1,
				models.StringField(doc.Data, "nom"),
				models.StringField(doc.Data, "email"),
				models.StringField(doc.Data, "matricule"))
		}
	}
	return nil
}

// AuditAnalyze checks migrated profiles for missing required fields.
func (r *Runner) AuditAnalyze(ctx context.Context, cmd *cli.Command) error {
	dest, err := r.destinationStore(ctx)
	if err != nil {
		return err
	}

	analysis, err := tasks.AnalyzeProfiles(ctx, dest)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(struct {
			Total   int
			Valid   int
			Invalid []tasks.InvalidProfile
		}{analysis.Total, analysis.Valid, analysis.Invalid}, true)
	}

	r.writePlainHeader("MIGRATED PROFILE ANALYSIS")
	r.writePlain("Required fields: %s\n\n", strings.Join(tasks.RequiredProfileFields, ", "))
	r.writePlain("%-18s %d\n", "Total:", analysis.Total)
	r.writePlain("%-18s %d\n", "Complete:", analysis.Valid)
	r.writePlain("%-18s %d\n", "Missing fields:", len(analysis.Invalid))

	if len(analysis.Invalid) > 0 {
		r.writePlainln("Incomplete profiles:")
		for _, p := range analysis.Invalid {
			r.writePlain("  %d. %s <%s> (%s)\n", p.Index, p.Nom, p.Email, p.ID)
			r.writePlain("     missing: %s\n", strings.Join(p.Missing, ", "))
		}
	}
	return nil
}

// AuditInspect previews the fields of the first source records.
func (r *Runner) AuditInspect(ctx context.Context, cmd *cli.Command) error {
	source, err := r.sourceStore(ctx)
	if err != nil {
		return err
	}

	previews, err := tasks.InspectSource(ctx, source, cmd.Int("count"))
	if err != nil {
		return err
	}

	r.writePlainHeader("SOURCE STRUCTURE: " + source.Name())
	for i, preview := range previews {
		r.writePlainln("Record %d: %s", i+1, preview.ID)
		for _, f := range preview.Fields {
			r.writePlain("  %-22s %-10s %s\n", f.Key, f.Type, f.Preview)
		}
	}
	if len(previews) == 0 {
		r.writePlain("No source records found.\n")
	}
	return nil
}
