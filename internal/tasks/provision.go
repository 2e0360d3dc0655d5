package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/acx/internal/models"
	"github.com/desertthunder/acx/internal/services"
	"github.com/desertthunder/acx/internal/shared"
)

// ProvisionRequest is a validated, non-duplicate record ready to be written.
type ProvisionRequest struct {
	Source      *models.SourceProfile
	Email       string
	DisplayName string
	Matricule   string
	Now         time.Time
}

// Provisioner creates the destination account and its profile document as one unit.
type Provisioner struct {
	dest     services.DestinationStore
	password string
	rollback bool
	logger   *log.Logger
}

// NewProvisioner creates a provisioner that assigns password to every new account.
// With rollback set, an account whose profile write fails is deleted again.
func NewProvisioner(dest services.DestinationStore, password string, rollback bool, logger *log.Logger) *Provisioner {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Provisioner{dest: dest, password: password, rollback: rollback, logger: logger}
}

// Provision creates the account, then the profile keyed by the new UID.
//
// The profile is only written once the account exists. An email conflict at creation is a
// late duplicate and yields skipped(email_exists). A failed profile write is compensated by
// deleting the account; when that is disabled or fails the outcome is orphaned.
func (p *Provisioner) Provision(ctx context.Context, req ProvisionRequest) models.Outcome {
	outcome := models.Outcome{
		Email:     req.Email,
		Matricule: req.Matricule,
		OldUID:    req.Source.ID,
	}

	principal, err := p.dest.CreatePrincipal(ctx, models.PrincipalToCreate{
		Email:         req.Email,
		EmailVerified: true,
		Password:      p.password,
		DisplayName:   req.DisplayName,
		Disabled:      false,
	})
	if err != nil {
		if errors.Is(err, shared.ErrEmailExists) {
			outcome.Status = models.StatusSkipped
			outcome.Reason = models.ReasonEmailExists
			return outcome
		}
		outcome.Status = models.StatusError
		outcome.Reason = err.Error()
		return outcome
	}

	p.logger.Debug("created principal", "email", req.Email, "uid", principal.UID)

	profile := Transform(req.Source, principal.UID, req.Email, req.Now)
	if err := p.dest.CreateProfile(ctx, principal.UID, profile); err != nil {
		writeErr := fmt.Errorf("%w: %v", shared.ErrProfileWrite, err)
		return p.compensate(ctx, outcome, principal.UID, writeErr)
	}

	outcome.NewUID = principal.UID
	outcome.Status = models.StatusSuccess
	return outcome
}

func (p *Provisioner) compensate(ctx context.Context, outcome models.Outcome, uid string, writeErr error) models.Outcome {
	if !p.rollback {
		p.logger.Error("profile write failed, principal left orphaned", "uid", uid, "error", writeErr)
		outcome.NewUID = uid
		outcome.Status = models.StatusOrphaned
		outcome.Reason = writeErr.Error()
		return outcome
	}

	if err := p.dest.DeletePrincipal(ctx, uid); err != nil {
		p.logger.Error("rollback failed, principal left orphaned", "uid", uid, "error", err)
		outcome.NewUID = uid
		outcome.Status = models.StatusOrphaned
		outcome.Reason = fmt.Sprintf("%v; rollback failed: %v", writeErr, err)
		return outcome
	}

	p.logger.Warn("profile write failed, principal rolled back", "uid", uid, "error", writeErr)
	outcome.Status = models.StatusError
	outcome.Reason = fmt.Sprintf("%v (principal rolled back)", writeErr)
	return outcome
}
