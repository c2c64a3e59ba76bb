// Package profiles persists the per-user passphrase verification record.
package profiles

import (
	"context"

	"github.com/sh3xu/logbook/internal/client/models"
	"github.com/sh3xu/logbook/internal/cryptox"
)

// Repository stores one profile per user.
type Repository interface {
	// Get returns the profile of userID or common.ErrorNotFound.
	Get(ctx context.Context, userID string) (*models.Profile, error)

	// SaveVerifier creates or replaces the verification record of userID.
	SaveVerifier(ctx context.Context, userID string, rec *cryptox.VerificationRecord) error
}
