package reencrypt

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/awnumar/memguard"
	"github.com/sh3xu/logbook/internal/client/models"
	"github.com/sh3xu/logbook/internal/cryptox"
	"github.com/sh3xu/logbook/internal/logging"
)

// Event types emitted to the Eventer.
const (
	EventEntrySkipped = "entry_skipped"
	EventSnapshot     = "reencryption_snapshot"
	EventAborted      = "reencryption_aborted"
	EventCompleted    = "reencryption_completed"
)

// EntryStore is the entry storage used by a run.
type EntryStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.Entry, error)
	UpdateContent(ctx context.Context, id, envelope string, hint cryptox.FormatHint) error
}

// ProfileStore receives the new verification record.
type ProfileStore interface {
	SaveVerifier(ctx context.Context, userID string, rec *cryptox.VerificationRecord) error
}

// Cipher opens and seals envelopes.
type Cipher interface {
	Encrypt(plaintext, passphrase []byte) (string, error)
	Decrypt(envelope string, passphrase []byte, hint cryptox.FormatHint) ([]byte, error)
}

// KeyVerifier creates verification records.
type KeyVerifier interface {
	Generate(passphrase []byte) (*cryptox.VerificationRecord, error)
}

// Snapshotter copies entries somewhere safe before they are rewritten.
type Snapshotter interface {
	Snapshot(ctx context.Context, userID string, entries []models.Entry) (string, error)
}

// ProgressFunc receives a percentage in [0, 100]. Values never decrease.
type ProgressFunc func(percent int)

// Result summarises a completed run.
type Result struct {
	Total     int      // entries fetched
	Rewritten int      // entries now under the new passphrase
	Skipped   []string // ids of entries that could not be opened
	Snapshot  string   // snapshot location, if one was taken
}

// Orchestrator runs passphrase migrations.
type Orchestrator struct {
	entries   EntryStore
	profiles  ProfileStore
	cipher    Cipher
	verifier  KeyVerifier
	snapshots Snapshotter
	events    logging.Eventer
	log       logging.Logger
}

type Option func(*Orchestrator)

func WithCipher(c Cipher) Option { return func(o *Orchestrator) { o.cipher = c } }

func WithVerifier(v KeyVerifier) Option { return func(o *Orchestrator) { o.verifier = v } }

func WithSnapshotter(s Snapshotter) Option { return func(o *Orchestrator) { o.snapshots = s } }

func WithEventer(e logging.Eventer) Option {
	return func(o *Orchestrator) { o.events = logging.EventerOrNop(e) }
}

func WithLogger(l logging.Logger) Option { return func(o *Orchestrator) { o.log = l } }

// New returns an Orchestrator with production cryptography, no snapshots,
// a no-op Eventer and a discarding logger unless overridden.
func New(entries EntryStore, profiles ProfileStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		entries:  entries,
		profiles: profiles,
		cipher:   cryptox.NewCipher(cryptox.DefaultParams()),
		verifier: cryptox.NewVerifier(cryptox.DefaultParams()),
		events:   logging.NopEventer{},
		log:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type pending struct {
	id       string
	envelope string
}

// Run migrates every entry of userID from oldKey to newKey.
//
// Progress is reported after each written entry as round(i/n*90), where n
// is the number of entries that opened, and 100 after the new verification
// record is stored. The context is honoured until the first write; after
// that the run only stops on a failed write.
func (o *Orchestrator) Run(ctx context.Context, userID string, oldKey, newKey []byte, onProgress ProgressFunc) (*Result, error) {
	if IsWeakPassphrase(newKey) {
		return nil, ErrWeakPassphrase
	}
	if onProgress == nil {
		onProgress = func(int) {}
	}

	log := o.log.With("user_id", userID)

	all, err := o.entries.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch entries: %w", err)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	res := &Result{Total: len(all)}

	if o.snapshots != nil && len(all) > 0 {
		loc, err := o.snapshots.Snapshot(ctx, userID, all)
		if err != nil {
			return nil, o.abort(ctx, log, userID, &AbortedError{Stage: StageSnapshot, Err: err})
		}
		res.Snapshot = loc
		o.events.Event(EventSnapshot, "user_id", userID, "location", loc, "entries", len(all))
	}

	queue := make([]pending, 0, len(all))
	for _, e := range all {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		env, ok, err := o.reseal(e, oldKey, newKey)
		if err != nil {
			return nil, o.abort(ctx, log, userID, &AbortedError{Stage: StageEncrypt, EntryID: e.ID, Snapshot: res.Snapshot, Err: err})
		}
		if !ok {
			res.Skipped = append(res.Skipped, e.ID)
			o.events.Event(EventEntrySkipped, "user_id", userID, "entry_id", e.ID, "hint", e.EncryptionVersion.String())
			log.Warn(ctx, "entry skipped", "entry_id", e.ID, "hint", e.EncryptionVersion.String(), "error", cryptox.ErrCannotDecrypt)
			continue
		}
		queue = append(queue, pending{id: e.ID, envelope: env})
	}

	for i, p := range queue {
		if err := o.entries.UpdateContent(ctx, p.id, p.envelope, cryptox.HintCurrent); err != nil {
			return nil, o.abort(ctx, log, userID, &AbortedError{
				Stage: StageWrite, EntryID: p.id, Written: i, Pending: len(queue), Snapshot: res.Snapshot, Err: err,
			})
		}
		res.Rewritten++
		onProgress(progress(i+1, len(queue)))
	}

	rec, err := o.verifier.Generate(newKey)
	if err == nil {
		err = o.profiles.SaveVerifier(ctx, userID, rec)
	}
	if err != nil {
		return nil, o.abort(ctx, log, userID, &AbortedError{
			Stage: StageCommit, Written: res.Rewritten, Pending: len(queue), Snapshot: res.Snapshot, Err: err,
		})
	}
	onProgress(100)

	o.events.Event(EventCompleted, "user_id", userID,
		"total", res.Total, "rewritten", res.Rewritten, "skipped", len(res.Skipped))
	log.Info(ctx, "re-encryption completed", "total", res.Total, "rewritten", res.Rewritten, "skipped", len(res.Skipped))

	return res, nil
}

// reseal opens e under oldKey and seals it under newKey. ok is false when
// the entry does not open; err is set only when sealing fails.
func (o *Orchestrator) reseal(e models.Entry, oldKey, newKey []byte) (env string, ok bool, err error) {
	var plaintext []byte
	if e.IsEncrypted {
		plaintext, err = o.cipher.Decrypt(e.Content, oldKey, e.EncryptionVersion)
		if err != nil {
			return "", false, nil
		}
	} else {
		plaintext = []byte(e.Content)
	}
	defer memguard.WipeBytes(plaintext)

	env, err = o.cipher.Encrypt(plaintext, newKey)
	if err != nil {
		return "", false, err
	}
	return env, true, nil
}

func (o *Orchestrator) abort(ctx context.Context, log logging.Logger, userID string, ae *AbortedError) error {
	o.events.Event(EventAborted, "user_id", userID, "stage", ae.Stage,
		"entry_id", ae.EntryID, "written", ae.Written, "pending", ae.Pending)
	log.Error(ctx, "re-encryption aborted", "stage", ae.Stage, "entry_id", ae.EntryID,
		"written", ae.Written, "pending", ae.Pending, "error", ae.Err)
	return ae
}

func progress(done, total int) int {
	return int(math.Round(float64(done) / float64(total) * 90))
}
