package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/acx/internal/models"
	"github.com/desertthunder/acx/internal/services"
)

// LegacyFreeQuotaLimit is the free quota granted to teacher_transfer accounts before the raise to
// [models.MigratedFreeQuotaLimit].
const LegacyFreeQuotaLimit = 3

// QuotaProfile identifies a profile touched or flagged by a backfill.
type QuotaProfile struct {
	ID    string
	Nom   string
	Email string
	Limit int64
}

// QuotaBackfillResult is the result of [BackfillQuota].
type QuotaBackfillResult struct {
	Total          int
	Updated        []QuotaProfile // limit raised (or would be, in a dry run)
	AlreadyCurrent int            // limit already at the new value
	Other          []QuotaProfile // any other limit, left untouched
	Remaining      int            // profiles still at the legacy limit after the update
	DryRun         bool
}

// BackfillQuota raises freeQuotaLimit from the legacy value to the current one on every
// teacher_transfer profile. Profiles with any other limit are reported and left alone.
func (e *MigrationEngine) BackfillQuota(ctx context.Context, dryRun bool, progress chan<- ProgressUpdate) (*QuotaBackfillResult, error) {
	query := services.Query{Field: "accountType", Value: models.AccountTeacherTransfer}
	docs, err := e.dest.ListDocuments(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	result := &QuotaBackfillResult{Total: len(docs), DryRun: dryRun}
	now := e.now().UTC()

	var updates []models.DocumentUpdate
	for _, doc := range docs {
		limit, _ := models.IntField(doc.Data, "freeQuotaLimit")
		profile := QuotaProfile{
			ID:    doc.ID,
			Nom:   models.StringField(doc.Data, "nom"),
			Email: models.StringField(doc.Data, "email"),
			Limit: limit,
		}

		switch limit {
		case LegacyFreeQuotaLimit:
			result.Updated = append(result.Updated, profile)
			updates = append(updates, models.DocumentUpdate{
				ID: doc.ID,
				Fields: map[string]any{
					"freeQuotaLimit": models.MigratedFreeQuotaLimit,
					"updatedAt":      now,
				},
			})
			e.sendProgress(ctx, progress, backfillUpdate(len(result.Updated), len(docs), profile.Email, limit))
		case models.MigratedFreeQuotaLimit:
			result.AlreadyCurrent++
		default:
			result.Other = append(result.Other, profile)
		}
	}

	if dryRun {
		result.Remaining = len(result.Updated)
		return result, nil
	}
	if len(updates) == 0 {
		return result, nil
	}

	if err := e.dest.UpdateDocuments(ctx, updates); err != nil {
		return result, fmt.Errorf("failed to update quotas: %w", err)
	}

	verify, err := e.dest.ListDocuments(ctx, query)
	if err != nil {
		return result, fmt.Errorf("failed to verify quotas: %w", err)
	}
	for _, doc := range verify {
		if limit, _ := models.IntField(doc.Data, "freeQuotaLimit"); limit == LegacyFreeQuotaLimit {
			result.Remaining++
		}
	}

	e.logger.Info("quota backfill complete", "updated", len(result.Updated), "remaining", result.Remaining)
	return result, nil
}
