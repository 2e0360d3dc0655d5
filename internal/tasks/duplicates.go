package tasks

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/acx/internal/models"
	"github.com/desertthunder/acx/internal/services"
	"github.com/desertthunder/acx/internal/shared"
)

// DuplicateCheck is the result of a duplicate lookup.
type DuplicateCheck struct {
	Exists bool   // an existing destination identity matched
	Reason string // [models.ReasonEmailExistsInAuth] or [models.ReasonMatriculeExists]
	Err    error  // lookup failure, reported with Exists=false
}

// DuplicateDetector looks up a candidate identity in the destination by email, then by matricule.
type DuplicateDetector struct {
	dest   services.DestinationStore
	logger *log.Logger
}

// NewDuplicateDetector creates a detector over dest.
func NewDuplicateDetector(dest services.DestinationStore, logger *log.Logger) *DuplicateDetector {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &DuplicateDetector{dest: dest, logger: logger}
}

// Check reports whether email or matricule already belongs to a destination identity.
//
// The auth lookup runs first and wins when it matches. Lookup failures other than
// not-found fail open: they are logged and the candidate is treated as new.
func (d *DuplicateDetector) Check(ctx context.Context, email, matricule string) DuplicateCheck {
	_, err := d.dest.GetPrincipalByEmail(ctx, email)
	switch {
	case err == nil:
		return DuplicateCheck{Exists: true, Reason: models.ReasonEmailExistsInAuth}
	case !errors.Is(err, shared.ErrPrincipalNotFound):
		d.logger.Warn("duplicate check failed, treating as new", "email", email, "error", err)
		return DuplicateCheck{Err: err}
	}

	docs, err := d.dest.ListDocuments(ctx, services.Query{Field: "matricule", Value: matricule, Limit: 1})
	if err != nil {
		d.logger.Warn("duplicate check failed, treating as new", "matricule", matricule, "error", err)
		return DuplicateCheck{Err: err}
	}
	if len(docs) > 0 {
		return DuplicateCheck{Exists: true, Reason: models.ReasonMatriculeExists}
	}

	return DuplicateCheck{}
}
