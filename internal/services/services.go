package services

import (
	"context"

	"github.com/desertthunder/acx/internal/models"
)

// Query selects documents from a store's collection. A zero Query selects every document
// in natural key order.
type Query struct {
	Field string // equality filter field, ignored when empty
	Value any    // equality filter value
	Limit int    // maximum documents returned, 0 for no limit
}

// DocumentReader enumerates documents of one collection.
type DocumentReader interface {
	// ListDocuments returns the documents matching q in the store's natural enumeration order.
	ListDocuments(ctx context.Context, q Query) ([]models.Document, error)

	// Name returns a display name for the store (usually its project ID).
	Name() string
}

// SourceStore is the read-only side of a migration.
type SourceStore interface {
	DocumentReader

	// GetPrincipal looks up the auth account paired with a source profile.
	// Returns [shared.ErrPrincipalNotFound] when the profile has no account.
	GetPrincipal(ctx context.Context, uid string) (*models.AuthPrincipal, error)
}

// DestinationStore is the write side of a migration.
type DestinationStore interface {
	DocumentReader

	// GetPrincipalByEmail returns [shared.ErrPrincipalNotFound] when no account uses email.
	GetPrincipalByEmail(ctx context.Context, email string) (*models.AuthPrincipal, error)

	// CreatePrincipal creates an auth account and returns it with its assigned UID.
	// Returns [shared.ErrEmailExists] when the email is already registered.
	CreatePrincipal(ctx context.Context, p models.PrincipalToCreate) (*models.AuthPrincipal, error)

	// DeletePrincipal removes an auth account.
	DeletePrincipal(ctx context.Context, uid string) error

	// CreateProfile writes a new profile document keyed by uid. It never overwrites:
	// an existing document yields [shared.ErrProfileExists].
	CreateProfile(ctx context.Context, uid string, profile *models.DestinationProfile) error

	// UpdateDocuments applies field updates to existing documents.
	UpdateDocuments(ctx context.Context, updates []models.DocumentUpdate) error
}
