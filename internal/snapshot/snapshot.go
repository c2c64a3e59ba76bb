// Package snapshot writes a copy of a user's stored entries before a
// re-encryption rewrites them, so a failed migration can be recovered by
// hand. Snapshots contain exactly what the database held: envelopes stay
// sealed under the old passphrase.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sh3xu/logbook/internal/client/models"
)

// Format is the schema version written into every snapshot.
const Format = 1

// Entry is one stored entry as written to a snapshot.
type Entry struct {
	ID                string    `json:"id"`
	Content           string    `json:"content"`
	IsEncrypted       bool      `json:"is_encrypted"`
	EncryptionVersion int       `json:"encryption_version"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Snapshot is the document handed to a Store.
type Snapshot struct {
	Format  int       `json:"format"`
	UserID  string    `json:"user_id"`
	TakenAt time.Time `json:"taken_at"`
	Entries []Entry   `json:"entries"`
}

// Store persists an encoded snapshot under key and returns where it went.
type Store interface {
	Put(ctx context.Context, key string, body []byte) (string, error)
}

// Snapshotter builds snapshots and hands them to a Store.
type Snapshotter struct {
	store Store
	now   func() time.Time
}

func New(store Store) *Snapshotter {
	return &Snapshotter{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Snapshot stores a copy of entries owned by userID and returns its location.
func (s *Snapshotter) Snapshot(ctx context.Context, userID string, entries []models.Entry) (string, error) {
	snap := Snapshot{
		Format:  Format,
		UserID:  userID,
		TakenAt: s.now(),
		Entries: make([]Entry, 0, len(entries)),
	}
	for _, e := range entries {
		snap.Entries = append(snap.Entries, Entry{
			ID:                e.ID,
			Content:           e.Content,
			IsEncrypted:       e.IsEncrypted,
			EncryptionVersion: int(e.EncryptionVersion),
			CreatedAt:         e.CreatedAt,
			UpdatedAt:         e.UpdatedAt,
		})
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	loc, err := s.store.Put(ctx, Key(userID, snap.TakenAt), body)
	if err != nil {
		return "", fmt.Errorf("store snapshot: %w", err)
	}
	return loc, nil
}

// Key names a snapshot object: snapshots/<user>/<yyyymmddThhmmssZ>-<uuid>.json
func Key(userID string, at time.Time) string {
	return fmt.Sprintf("snapshots/%s/%s-%s.json", userID, at.UTC().Format("20060102T150405Z"), uuid.New())
}
