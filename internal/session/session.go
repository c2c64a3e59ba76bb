// Package session holds the passphrase of an unlocked journal.
//
// The passphrase lives only inside a memguard Enclave while the session is
// unlocked and is lent to operations through WithKey. The session locks
// itself after a period without activity, but never while the key is lent.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/awnumar/memguard"
	"github.com/sh3xu/logbook/internal/client/models"
	"github.com/sh3xu/logbook/internal/common"
	"github.com/sh3xu/logbook/internal/cryptox"
	"github.com/sh3xu/logbook/internal/logging"
)

var (
	// ErrLocked is returned when a key is needed and the session is locked.
	ErrLocked = errors.New("journal is locked")
	// ErrInvalidKey is returned by Unlock for a wrong passphrase and for a
	// user without a stored verifier alike.
	ErrInvalidKey = errors.New("invalid key")
)

// DefaultIdleTimeout matches the journal's inactivity lock.
const DefaultIdleTimeout = 3 * time.Minute

// Lock reasons passed to the OnLock callback.
const (
	ReasonManual = "manual"
	ReasonIdle   = "idle"
)

// ProfileStore loads and replaces verification records.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	SaveVerifier(ctx context.Context, userID string, rec *cryptox.VerificationRecord) error
}

// KeyVerifier checks passphrases and creates verification records.
type KeyVerifier interface {
	Verify(passphrase []byte, rec *cryptox.VerificationRecord) bool
	Generate(passphrase []byte) (*cryptox.VerificationRecord, error)
}

type Session struct {
	userID   string
	profiles ProfileStore
	verifier KeyVerifier
	idle     time.Duration
	onLock   func(reason string)
	events   logging.Eventer
	log      logging.Logger

	mu      sync.Mutex
	enclave *memguard.Enclave
	timer   *time.Timer
	gen     uint64 // bumped on every timer change; stale timers do nothing
	lent    int    // WithKey calls in flight; the idle lock waits for them
}

type Option func(*Session)

// WithIdleTimeout sets the inactivity lock; zero or less disables it.
func WithIdleTimeout(d time.Duration) Option { return func(s *Session) { s.idle = d } }

func WithVerifier(v KeyVerifier) Option { return func(s *Session) { s.verifier = v } }

// WithOnLock registers a callback run after the session locks.
func WithOnLock(fn func(reason string)) Option { return func(s *Session) { s.onLock = fn } }

func WithEventer(e logging.Eventer) Option {
	return func(s *Session) { s.events = logging.EventerOrNop(e) }
}

func WithLogger(l logging.Logger) Option { return func(s *Session) { s.log = l } }

func New(userID string, profiles ProfileStore, opts ...Option) *Session {
	s := &Session{
		userID:   userID,
		profiles: profiles,
		verifier: cryptox.NewVerifier(cryptox.DefaultParams()),
		idle:     DefaultIdleTimeout,
		onLock:   func(string) {},
		events:   logging.NopEventer{},
		log:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UserID returns the owner of the session.
func (s *Session) UserID() string { return s.userID }

// Unlock checks passphrase against the stored verifier and, on success,
// keeps it for later operations. A legacy verifier is replaced by a
// current one before the session unlocks.
func (s *Session) Unlock(ctx context.Context, passphrase []byte) error {
	var rec *cryptox.VerificationRecord
	p, err := s.profiles.Get(ctx, s.userID)
	switch {
	case err == nil:
		rec = p.Verifier
	case errors.Is(err, common.ErrorNotFound):
	default:
		return fmt.Errorf("load profile: %w", err)
	}

	if !s.verifier.Verify(passphrase, rec) {
		s.log.Warn(ctx, "unlock rejected", "user_id", s.userID)
		return ErrInvalidKey
	}

	if rec.NeedsUpgrade() {
		upgraded, err := s.verifier.Generate(passphrase)
		if err != nil {
			return fmt.Errorf("upgrade verifier: %w", err)
		}
		if err := s.profiles.SaveVerifier(ctx, s.userID, upgraded); err != nil {
			return fmt.Errorf("upgrade verifier: %w", err)
		}
		s.events.Event("verifier_upgraded", "user_id", s.userID)
		s.log.Info(ctx, "legacy verifier upgraded", "user_id", s.userID)
	}

	return s.set(passphrase)
}

// Replace swaps the held passphrase. It is used after a successful
// re-encryption; the session must already be unlocked.
func (s *Session) Replace(passphrase []byte) error {
	if !s.Unlocked() {
		return ErrLocked
	}
	return s.set(passphrase)
}

func (s *Session) set(passphrase []byte) error {
	// NewEnclave wipes its argument
	enc := memguard.NewEnclave(append([]byte(nil), passphrase...))
	if enc == nil {
		return ErrInvalidKey
	}

	s.mu.Lock()
	s.enclave = enc
	s.resetTimerLocked()
	s.mu.Unlock()
	return nil
}

// Lock forgets the passphrase.
func (s *Session) Lock() {
	s.lock(ReasonManual)
}

func (s *Session) lock(reason string) {
	s.mu.Lock()
	wasUnlocked := s.lockLocked()
	s.mu.Unlock()
	s.announceLock(wasUnlocked, reason)
}

func (s *Session) lockLocked() bool {
	wasUnlocked := s.enclave != nil
	s.enclave = nil
	s.stopTimerLocked()
	return wasUnlocked
}

// expire is the idle timer callback for generation gen.
func (s *Session) expire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.lent > 0 {
		s.mu.Unlock()
		return
	}
	wasUnlocked := s.lockLocked()
	s.mu.Unlock()
	s.announceLock(wasUnlocked, ReasonIdle)
}

func (s *Session) announceLock(wasUnlocked bool, reason string) {
	if wasUnlocked {
		s.events.Event("session_locked", "user_id", s.userID, "reason", reason)
		s.onLock(reason)
	}
}

// Unlocked reports whether a passphrase is held.
func (s *Session) Unlocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enclave != nil
}

// Touch records activity and postpones the idle lock.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enclave != nil {
		s.resetTimerLocked()
	}
}

func (s *Session) stopTimerLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// resetTimerLocked restarts the idle countdown. While the key is lent no
// timer runs; the last WithKey to return starts a fresh one.
func (s *Session) resetTimerLocked() {
	s.stopTimerLocked()
	if s.idle <= 0 || s.lent > 0 {
		return
	}
	gen := s.gen
	s.timer = time.AfterFunc(s.idle, func() { s.expire(gen) })
}

// WithKey lends the passphrase to fn. The slice is only valid during the
// call and must not be retained or modified. The idle lock is suspended
// until fn returns.
func (s *Session) WithKey(fn func(key []byte) error) error {
	s.mu.Lock()
	enc := s.enclave
	if enc == nil {
		s.mu.Unlock()
		return ErrLocked
	}
	s.lent++
	s.stopTimerLocked()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.lent--
		if s.enclave != nil {
			s.resetTimerLocked()
		}
		s.mu.Unlock()
	}()

	buf, err := enc.Open()
	if err != nil {
		return fmt.Errorf("open enclave: %w", err)
	}
	defer buf.Destroy()

	return fn(buf.Bytes())
}
