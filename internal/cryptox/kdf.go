package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"io"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the length of every salt (verifier and envelope).
	SaltSize = 16
	// IVSize is the AES-GCM nonce length.
	IVSize = 12
	// TagSize is the AES-GCM authentication tag length.
	TagSize = 16
	// KeySize is the derived key length (AES-256).
	KeySize = 32

	// CurrentIterations is the PBKDF2 count for new envelopes.
	CurrentIterations = 600_000
	// LegacyIterations is the PBKDF2 count of envelopes written before the
	// version marker existed.
	LegacyIterations = 100_000
	// VerifierIterations is the PBKDF2 count for current verification records.
	VerifierIterations = 600_000
)

// Params holds the iteration counts used by a Cipher or a Verifier.
// Production code uses DefaultParams; tests may lower the counts.
type Params struct {
	CurrentIterations  int
	LegacyIterations   int
	VerifierIterations int
}

// DefaultParams returns the production iteration counts.
func DefaultParams() Params {
	return Params{
		CurrentIterations:  CurrentIterations,
		LegacyIterations:   LegacyIterations,
		VerifierIterations: VerifierIterations,
	}
}

// deriveKey stretches passphrase with PBKDF2-HMAC-SHA256 into a KeySize key.
// The caller owns the result and must wipe it.
func deriveKey(passphrase, salt []byte, iterations int) []byte {
	return pbkdf2.Key(passphrase, salt, iterations, KeySize, sha256.New)
}

// randomBytes returns n bytes from the system CSPRNG.
func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}

// newGCM builds AES-256-GCM with a 12-byte nonce and 16-byte tag.
func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// wipe zeroes key material.
func wipe(b []byte) {
	memguard.WipeBytes(b)
}
