// Package models defines the journal data stored by the logbook client.
package models

import (
	"time"

	"github.com/sh3xu/logbook/internal/cryptox"
)

// Entry is one stored journal record.
//
// When IsEncrypted is true, Content is a base64 envelope and
// EncryptionVersion tells cryptox.Decrypt which layout to expect. Entries
// written while the journal was locked hold the JSON payload as-is with
// IsEncrypted false.
type Entry struct {
	ID                string
	UserID            string
	Content           string
	IsEncrypted       bool
	EncryptionVersion cryptox.FormatHint
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// EntryStatus describes what a reader could do with an entry.
type EntryStatus string

const (
	// StatusDecrypted means the payload was readable.
	StatusDecrypted EntryStatus = "decrypted"
	// StatusEncrypted means the journal is locked and the entry is sealed.
	StatusEncrypted EntryStatus = "encrypted"
	// StatusCorrupted means the entry could not be opened with the current key
	// or its payload is not valid.
	StatusCorrupted EntryStatus = "corrupted"
)

// EntryView is an entry as presented to the user.
type EntryView struct {
	Entry   Entry
	Status  EntryStatus
	Payload *Payload
}
