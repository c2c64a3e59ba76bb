// Package journal ties storage, the unlocked session and the cryptography
// together into the operations the CLI offers.
package journal

import (
	"context"
	"errors"
	"fmt"

	"github.com/awnumar/memguard"
	"github.com/google/uuid"
	"github.com/sh3xu/logbook/internal/client/models"
	"github.com/sh3xu/logbook/internal/common"
	"github.com/sh3xu/logbook/internal/cryptox"
	"github.com/sh3xu/logbook/internal/logging"
	"github.com/sh3xu/logbook/internal/reencrypt"
	"github.com/sh3xu/logbook/internal/session"
)

type EntryStore interface {
	Create(ctx context.Context, entry *models.Entry) error
	GetByID(ctx context.Context, userID, id string) (*models.Entry, error)
	ListByUser(ctx context.Context, userID string) ([]models.Entry, error)
}

type ProfileStore interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	SaveVerifier(ctx context.Context, userID string, rec *cryptox.VerificationRecord) error
}

// KeySession is the part of session.Session the service needs.
type KeySession interface {
	UserID() string
	Unlocked() bool
	WithKey(fn func(key []byte) error) error
	Replace(passphrase []byte) error
}

type Cipher interface {
	Encrypt(plaintext, passphrase []byte) (string, error)
	Decrypt(envelope string, passphrase []byte, hint cryptox.FormatHint) ([]byte, error)
}

type KeyVerifier interface {
	Generate(passphrase []byte) (*cryptox.VerificationRecord, error)
}

// Reencrypter migrates entries between passphrases.
type Reencrypter interface {
	Run(ctx context.Context, userID string, oldKey, newKey []byte, onProgress reencrypt.ProgressFunc) (*reencrypt.Result, error)
}

type Service struct {
	entries  EntryStore
	profiles ProfileStore
	session  KeySession
	rekeyer  Reencrypter
	cipher   Cipher
	verifier KeyVerifier
	newID    func() string
	log      logging.Logger
}

type Option func(*Service)

func WithCipher(c Cipher) Option { return func(s *Service) { s.cipher = c } }

func WithVerifier(v KeyVerifier) Option { return func(s *Service) { s.verifier = v } }

func WithLogger(l logging.Logger) Option { return func(s *Service) { s.log = l } }

func WithIDGenerator(fn func() string) Option { return func(s *Service) { s.newID = fn } }

func New(entries EntryStore, profiles ProfileStore, sess KeySession, rekeyer Reencrypter, opts ...Option) *Service {
	s := &Service{
		entries:  entries,
		profiles: profiles,
		session:  sess,
		rekeyer:  rekeyer,
		cipher:   cryptox.NewCipher(cryptox.DefaultParams()),
		verifier: cryptox.NewVerifier(cryptox.DefaultParams()),
		newID:    uuid.NewString,
		log:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsSetUp reports whether a verification record exists for the user.
func (s *Service) IsSetUp(ctx context.Context) (bool, error) {
	_, err := s.profiles.Get(ctx, s.session.UserID())
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, common.ErrorNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("load profile: %w", err)
	}
}

// Setup stores the first verification record. It refuses to overwrite an
// existing one; use ChangePassphrase for that.
func (s *Service) Setup(ctx context.Context, passphrase []byte) error {
	if reencrypt.IsWeakPassphrase(passphrase) {
		return reencrypt.ErrWeakPassphrase
	}

	ok, err := s.IsSetUp(ctx)
	if err != nil {
		return err
	}
	if ok {
		return common.ErrorAlreadySetUp
	}

	rec, err := s.verifier.Generate(passphrase)
	if err != nil {
		return fmt.Errorf("generate verifier: %w", err)
	}
	if err := s.profiles.SaveVerifier(ctx, s.session.UserID(), rec); err != nil {
		return fmt.Errorf("save verifier: %w", err)
	}

	s.log.Info(ctx, "journal set up", "user_id", s.session.UserID())
	return nil
}

// Add stores a new entry. The payload is sealed when the session is
// unlocked and kept as plain JSON otherwise; plain entries are sealed by the
// next passphrase change.
func (s *Service) Add(ctx context.Context, p *models.Payload) (*models.Entry, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	body, err := p.Marshal()
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	defer memguard.WipeBytes(body)

	e := &models.Entry{
		ID:     s.newID(),
		UserID: s.session.UserID(),
	}

	err = s.session.WithKey(func(key []byte) error {
		env, err := s.cipher.Encrypt(body, key)
		if err != nil {
			return err
		}
		e.Content = env
		e.IsEncrypted = true
		e.EncryptionVersion = cryptox.HintCurrent
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, session.ErrLocked):
		e.Content = string(body)
		e.EncryptionVersion = cryptox.HintNone
	default:
		return nil, fmt.Errorf("encrypt entry: %w", err)
	}

	if err := s.entries.Create(ctx, e); err != nil {
		return nil, err
	}
	if !e.IsEncrypted {
		s.log.Warn(ctx, "entry stored unencrypted while locked", "entry_id", e.ID)
	}
	return e, nil
}

// List returns every entry of the user with what could be read of it.
func (s *Service) List(ctx context.Context) ([]models.EntryView, error) {
	all, err := s.entries.ListByUser(ctx, s.session.UserID())
	if err != nil {
		return nil, err
	}

	views := make([]models.EntryView, 0, len(all))
	err = s.withOptionalKey(func(key []byte) error {
		for _, e := range all {
			views = append(views, s.view(e, key))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// Get returns one entry of the user.
func (s *Service) Get(ctx context.Context, id string) (*models.EntryView, error) {
	e, err := s.entries.GetByID(ctx, s.session.UserID(), id)
	if err != nil {
		return nil, err
	}

	var v models.EntryView
	err = s.withOptionalKey(func(key []byte) error {
		v = s.view(*e, key)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// withOptionalKey runs fn with the session key, or with nil when locked.
func (s *Service) withOptionalKey(fn func(key []byte) error) error {
	err := s.session.WithKey(fn)
	if errors.Is(err, session.ErrLocked) {
		return fn(nil)
	}
	return err
}

func (s *Service) view(e models.Entry, key []byte) models.EntryView {
	v := models.EntryView{Entry: e}

	var body []byte
	switch {
	case !e.IsEncrypted:
		body = []byte(e.Content)
	case key == nil:
		v.Status = models.StatusEncrypted
		return v
	default:
		pt, err := s.cipher.Decrypt(e.Content, key, e.EncryptionVersion)
		if err != nil {
			v.Status = models.StatusCorrupted
			return v
		}
		defer memguard.WipeBytes(pt)
		body = pt
	}

	p, err := models.UnmarshalPayload(body)
	if err != nil {
		v.Status = models.StatusCorrupted
		return v
	}
	v.Status = models.StatusDecrypted
	v.Payload = p
	return v
}

// ChangePassphrase re-encrypts every entry under newKey. The session keeps
// the old passphrase unless the whole run, including the verifier update,
// succeeded.
func (s *Service) ChangePassphrase(ctx context.Context, newKey []byte, onProgress reencrypt.ProgressFunc) (*reencrypt.Result, error) {
	var res *reencrypt.Result
	err := s.session.WithKey(func(oldKey []byte) error {
		var err error
		res, err = s.rekeyer.Run(ctx, s.session.UserID(), oldKey, newKey, onProgress)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.session.Replace(newKey); err != nil {
		return res, fmt.Errorf("passphrase changed but session could not be re-keyed: %w", err)
	}
	return res, nil
}
