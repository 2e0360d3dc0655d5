// Hosted project [SourceStore] and [DestinationStore] implementation
//
// Profiles live in a document database collection (users by default); accounts live in the
// project's authentication system. Both clients come from one Admin SDK app per project.
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/acx/internal/models"
	"github.com/desertthunder/acx/internal/shared"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirebaseStore implements [SourceStore] and [DestinationStore] for one hosted project.
type FirebaseStore struct {
	projectID  string
	collection string
	auth       *auth.Client
	db         *firestore.Client
	logger     *log.Logger
}

// NewFirebaseStore connects to the project described by cfg.
//
// When cfg.CredentialsFile is empty, application default credentials are used.
func NewFirebaseStore(ctx context.Context, cfg shared.ProjectConfig, logger *log.Logger) (*FirebaseStore, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	var opts []option.ClientOption
	projectID := cfg.ProjectID
	if cfg.CredentialsFile != "" {
		creds, err := LoadCredentials(ctx, cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
		if projectID == "" {
			projectID = creds.ProjectID
		}
		opts = append(opts, option.WithCredentials(creds))
	}

	if projectID == "" {
		return nil, fmt.Errorf("%w: project_id is required", shared.ErrMissingCredentials)
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize app for %s: %v", shared.ErrServiceUnavailable, projectID, err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize auth for %s: %v", shared.ErrServiceUnavailable, projectID, err)
	}

	db, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize database for %s: %v", shared.ErrServiceUnavailable, projectID, err)
	}

	return &FirebaseStore{
		projectID:  projectID,
		collection: shared.OrDefault(cfg.Collection, "users"),
		auth:       authClient,
		db:         db,
		logger:     shared.WithLogger(logger, "project", projectID),
	}, nil
}

// Name returns the project ID.
func (s *FirebaseStore) Name() string {
	return s.projectID
}

// Close releases the database client.
func (s *FirebaseStore) Close() error {
	return s.db.Close()
}

// ListDocuments returns the documents of the configured collection matching q, ordered by key.
func (s *FirebaseStore) ListDocuments(ctx context.Context, q Query) ([]models.Document, error) {
	query := s.db.Collection(s.collection).Query
	if q.Field != "" {
		query = query.Where(q.Field, "==", q.Value)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query %s/%s: %w", s.projectID, s.collection, err)
	}

	docs := make([]models.Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, models.Document{ID: snap.Ref.ID, Data: snap.Data()})
	}

	s.logger.Debug("listed documents", "collection", s.collection, "field", q.Field, "count", len(docs))
	return docs, nil
}

// GetPrincipal looks up an account by UID.
func (s *FirebaseStore) GetPrincipal(ctx context.Context, uid string) (*models.AuthPrincipal, error) {
	rec, err := s.auth.GetUser(ctx, uid)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrPrincipalNotFound, uid)
		}
		return nil, fmt.Errorf("failed to get user %s: %w", uid, err)
	}
	return principalFromRecord(rec), nil
}

// GetPrincipalByEmail looks up an account by email.
func (s *FirebaseStore) GetPrincipalByEmail(ctx context.Context, email string) (*models.AuthPrincipal, error) {
	rec, err := s.auth.GetUserByEmail(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrPrincipalNotFound, email)
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return principalFromRecord(rec), nil
}

// CreatePrincipal creates an account with a password.
func (s *FirebaseStore) CreatePrincipal(ctx context.Context, p models.PrincipalToCreate) (*models.AuthPrincipal, error) {
	params := (&auth.UserToCreate{}).
		Email(p.Email).
		EmailVerified(p.EmailVerified).
		Password(p.Password).
		Disabled(p.Disabled)
	// The SDK rejects an empty display name.
	if p.DisplayName != "" {
		params = params.DisplayName(p.DisplayName)
	}

	rec, err := s.auth.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrEmailExists, p.Email)
		}
		return nil, fmt.Errorf("failed to create user %s: %w", p.Email, err)
	}

	return principalFromRecord(rec), nil
}

// DeletePrincipal deletes an account by UID.
func (s *FirebaseStore) DeletePrincipal(ctx context.Context, uid string) error {
	if err := s.auth.DeleteUser(ctx, uid); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", uid, err)
	}
	return nil
}

// CreateProfile creates the profile document keyed by uid.
func (s *FirebaseStore) CreateProfile(ctx context.Context, uid string, profile *models.DestinationProfile) error {
	_, err := s.db.Collection(s.collection).Doc(uid).Create(ctx, profile)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("%w: %s/%s", shared.ErrProfileExists, s.collection, uid)
		}
		return fmt.Errorf("failed to create profile %s: %w", uid, err)
	}
	return nil
}

// UpdateDocuments applies updates through a bulk writer and reports every failed document.
func (s *FirebaseStore) UpdateDocuments(ctx context.Context, updates []models.DocumentUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	col := s.db.Collection(s.collection)
	bw := s.db.BulkWriter(ctx)

	type pending struct {
		id  string
		job *firestore.BulkWriterJob
	}
	jobs := make([]pending, 0, len(updates))

	for _, u := range updates {
		job, err := bw.Update(col.Doc(u.ID), toUpdates(u.Fields))
		if err != nil {
			bw.End()
			return fmt.Errorf("failed to queue update for %s: %w", u.ID, err)
		}
		jobs = append(jobs, pending{id: u.ID, job: job})
	}

	bw.End()

	var errs []error
	for _, p := range jobs {
		if _, err := p.job.Results(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.id, err))
		}
	}

	return errors.Join(errs...)
}

func principalFromRecord(rec *auth.UserRecord) *models.AuthPrincipal {
	p := &models.AuthPrincipal{
		EmailVerified: rec.EmailVerified,
		Disabled:      rec.Disabled,
	}
	if rec.UserInfo != nil {
		p.UID = rec.UID
		p.Email = rec.Email
		p.DisplayName = rec.DisplayName
	}
	return p
}

// toUpdates converts a field map to field updates in path order.
func toUpdates(fields map[string]any) []firestore.Update {
	paths := make([]string, 0, len(fields))
	for path := range fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	updates := make([]firestore.Update, 0, len(paths))
	for _, path := range paths {
		updates = append(updates, firestore.Update{Path: path, Value: fields[path]})
	}
	return updates
}
