package entries

import (
	"context"

	"github.com/sh3xu/logbook/internal/client/models"
	"github.com/sh3xu/logbook/internal/cryptox"
)

// Repository describes the operations the journal needs on stored entries.
type Repository interface {
	// Create inserts a new entry.
	Create(ctx context.Context, entry *models.Entry) error

	// GetByID returns one entry of userID or common.ErrorNotFound.
	GetByID(ctx context.Context, userID, id string) (*models.Entry, error)

	// ListByUser returns every entry of userID, oldest first.
	ListByUser(ctx context.Context, userID string) ([]models.Entry, error)

	// UpdateContent replaces the content of one entry with an envelope of the
	// given format and marks it encrypted.
	UpdateContent(ctx context.Context, id, envelope string, hint cryptox.FormatHint) error
}
