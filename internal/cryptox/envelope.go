package cryptox

import (
	"encoding/base64"
	"errors"
	"strconv"
)

// VersionCurrent is the leading marker byte of current envelopes.
const VersionCurrent byte = 0x01

// ErrCannotDecrypt is returned for every decryption failure: bad encoding,
// truncated data, unknown marker, wrong passphrase or tampered ciphertext.
// The cause is deliberately not exposed.
var ErrCannotDecrypt = errors.New("invalid passphrase or corrupted data")

// FormatHint tells Decrypt which envelope layout a stored record uses.
// It is persisted next to each entry as its encryption version.
type FormatHint int

const (
	// HintNone lets Decrypt sniff the layout from the leading byte.
	HintNone FormatHint = 0
	// HintCurrent forces the versioned layout.
	HintCurrent FormatHint = 1
	// HintLegacy forces the unversioned layout and the legacy iteration count.
	HintLegacy FormatHint = -1
)

func (h FormatHint) String() string {
	switch h {
	case HintNone:
		return "none"
	case HintCurrent:
		return "current"
	case HintLegacy:
		return "legacy"
	default:
		return "unknown(" + strconv.Itoa(int(h)) + ")"
	}
}

const (
	legacyHeaderLen  = SaltSize + IVSize
	currentHeaderLen = 1 + legacyHeaderLen
)

// Cipher encrypts and decrypts journal payloads into envelopes.
// It holds no key material and is safe for concurrent use.
type Cipher struct {
	params Params
}

// NewCipher returns a Cipher using the given iteration counts.
func NewCipher(p Params) *Cipher {
	return &Cipher{params: p}
}

// Encrypt seals plaintext under a key derived from passphrase with a fresh
// salt and IV, and returns the base64 current-format envelope.
func (c *Cipher) Encrypt(plaintext, passphrase []byte) (string, error) {
	salt, err := randomBytes(SaltSize)
	if err != nil {
		return "", err
	}
	iv, err := randomBytes(IVSize)
	if err != nil {
		return "", err
	}

	key := deriveKey(passphrase, salt, c.params.CurrentIterations)
	defer wipe(key)

	aead, err := newGCM(key)
	if err != nil {
		return "", err
	}

	out := make([]byte, 0, currentHeaderLen+len(plaintext)+TagSize)
	out = append(out, VersionCurrent)
	out = append(out, salt...)
	out = append(out, iv...)
	out = aead.Seal(out, iv, plaintext, nil)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt opens an envelope produced by Encrypt or by the legacy writer.
//
// With HintCurrent or HintLegacy only that layout is tried. With HintNone a
// leading VersionCurrent byte selects the current layout; if that fails, or
// the marker is absent, the legacy layout is tried when the data is long
// enough.
func (c *Cipher) Decrypt(envelope string, passphrase []byte, hint FormatHint) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return nil, ErrCannotDecrypt
	}

	switch hint {
	case HintCurrent:
		return c.open(raw, passphrase, true)
	case HintLegacy:
		return c.open(raw, passphrase, false)
	case HintNone:
	default:
		return nil, ErrCannotDecrypt
	}

	if len(raw) >= currentHeaderLen+TagSize && raw[0] == VersionCurrent {
		if pt, err := c.open(raw, passphrase, true); err == nil {
			return pt, nil
		}
	}
	return c.open(raw, passphrase, false)
}

// open parses raw in the requested layout and authenticates it.
func (c *Cipher) open(raw, passphrase []byte, versioned bool) ([]byte, error) {
	start, iterations := 0, c.params.LegacyIterations
	if versioned {
		if len(raw) == 0 || raw[0] != VersionCurrent {
			return nil, ErrCannotDecrypt
		}
		start, iterations = 1, c.params.CurrentIterations
	}
	if len(raw) < start+legacyHeaderLen+TagSize {
		return nil, ErrCannotDecrypt
	}

	salt := raw[start : start+SaltSize]
	iv := raw[start+SaltSize : start+legacyHeaderLen]
	sealed := raw[start+legacyHeaderLen:]

	key := deriveKey(passphrase, salt, iterations)
	defer wipe(key)

	aead, err := newGCM(key)
	if err != nil {
		return nil, ErrCannotDecrypt
	}
	pt, err := aead.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, ErrCannotDecrypt
	}
	return pt, nil
}

// Encrypt seals plaintext with the production iteration counts.
func Encrypt(plaintext, passphrase []byte) (string, error) {
	return NewCipher(DefaultParams()).Encrypt(plaintext, passphrase)
}

// Decrypt opens an envelope with the production iteration counts.
func Decrypt(envelope string, passphrase []byte, hint FormatHint) ([]byte, error) {
	return NewCipher(DefaultParams()).Decrypt(envelope, passphrase, hint)
}
