package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/acx/internal/models"
	"github.com/desertthunder/acx/internal/services"
)

// CollectContacts reads the contact fields of every profile in reader, optionally restricted to one account type.
func CollectContacts(ctx context.Context, reader services.DocumentReader, accountType string) ([]models.Contact, error) {
	q := services.Query{}
	if accountType != "" {
		q.Field = "accountType"
		q.Value = accountType
	}

	docs, err := reader.ListDocuments(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	contacts := make([]models.Contact, 0, len(docs))
	for i, doc := range docs {
		contacts = append(contacts, models.ContactFromDocument(i+1, doc))
	}
	return contacts, nil
}
