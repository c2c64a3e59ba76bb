package models

import (
	"time"

	"github.com/sh3xu/logbook/internal/cryptox"
)

// Profile holds the per-user passphrase verification record.
type Profile struct {
	UserID    string
	Verifier  *cryptox.VerificationRecord
	UpdatedAt time.Time
}
