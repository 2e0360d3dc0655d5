package services

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/acx/internal/shared"
	"golang.org/x/oauth2/google"
)

// Scopes requested for service-account credentials: document database plus user management.
var Scopes = []string{
	"https://www.googleapis.com/auth/cloud-platform",
	"https://www.googleapis.com/auth/datastore",
	"https://www.googleapis.com/auth/identitytoolkit",
	"https://www.googleapis.com/auth/userinfo.email",
}

// LoadCredentials reads a service-account JSON key file.
func LoadCredentials(ctx context.Context, path string) (*google.Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read credentials file: %v", shared.ErrMissingCredentials, err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidCredentials, err)
	}

	return creds, nil
}
