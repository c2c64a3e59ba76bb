package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
)

// Generation identifies how a VerificationRecord digest was computed.
type Generation string

const (
	// GenerationLegacy is hex(SHA-256(passphrase)), unsalted.
	GenerationLegacy Generation = "legacy"
	// GenerationCurrent is hex(SHA-256(PBKDF2(passphrase, salt))).
	GenerationCurrent Generation = "current"
)

// ErrMalformedRecord is returned when a stored record cannot be decoded.
var ErrMalformedRecord = errors.New("malformed verification record")

// VerificationRecord is the persisted proof of a passphrase.
type VerificationRecord struct {
	Salt       []byte
	Hash       []byte
	Generation Generation
}

// NeedsUpgrade reports whether the record is of the legacy generation and
// should be replaced by a current one after a successful Verify.
func (r *VerificationRecord) NeedsUpgrade() bool {
	return r != nil && r.Generation == GenerationLegacy
}

// EncodedSalt returns the salt in its storage form (base64 std).
func (r *VerificationRecord) EncodedSalt() string {
	return base64.StdEncoding.EncodeToString(r.Salt)
}

// EncodedHash returns the digest in its storage form (lower-case hex).
func (r *VerificationRecord) EncodedHash() string {
	return hex.EncodeToString(r.Hash)
}

// DecodeVerificationRecord parses the storage form of a record.
func DecodeVerificationRecord(salt, hash, generation string) (*VerificationRecord, error) {
	gen := Generation(generation)
	if gen != GenerationLegacy && gen != GenerationCurrent {
		return nil, fmt.Errorf("%w: unknown generation %q", ErrMalformedRecord, generation)
	}

	h, err := hex.DecodeString(hash)
	if err != nil || len(h) != sha256.Size {
		return nil, fmt.Errorf("%w: bad hash", ErrMalformedRecord)
	}

	var s []byte
	if gen == GenerationCurrent {
		s, err = base64.StdEncoding.DecodeString(salt)
		if err != nil || len(s) != SaltSize {
			return nil, fmt.Errorf("%w: bad salt", ErrMalformedRecord)
		}
	}

	return &VerificationRecord{Salt: s, Hash: h, Generation: gen}, nil
}

// dummyRecord is checked when no record exists so the work done matches a
// real current-generation verify.
var dummyRecord = VerificationRecord{
	Salt:       make([]byte, SaltSize),
	Hash:       make([]byte, sha256.Size),
	Generation: GenerationCurrent,
}

// Verifier creates and checks verification records.
type Verifier struct {
	params Params
}

// NewVerifier returns a Verifier using the given iteration counts.
func NewVerifier(p Params) *Verifier {
	return &Verifier{params: p}
}

// Generate derives a current-generation record for passphrase.
func (v *Verifier) Generate(passphrase []byte) (*VerificationRecord, error) {
	salt, err := randomBytes(SaltSize)
	if err != nil {
		return nil, err
	}

	bits := deriveKey(passphrase, salt, v.params.VerifierIterations)
	defer wipe(bits)

	sum := sha256.Sum256(bits)
	return &VerificationRecord{
		Salt:       salt,
		Hash:       sum[:],
		Generation: GenerationCurrent,
	}, nil
}

// Verify reports whether passphrase matches rec. A nil record is treated as
// "no such record" and returns false after doing the same work as a real
// check.
func (v *Verifier) Verify(passphrase []byte, rec *VerificationRecord) bool {
	missing := rec == nil
	if missing || (rec.Generation != GenerationLegacy && rec.Generation != GenerationCurrent) {
		rec = &dummyRecord
		missing = true
	}

	digest := v.digest(passphrase, rec)
	match := subtle.ConstantTimeCompare(digest, rec.Hash) == 1

	return match && !missing
}

func (v *Verifier) digest(passphrase []byte, rec *VerificationRecord) []byte {
	if rec.Generation == GenerationLegacy {
		sum := sha256.Sum256(passphrase)
		return sum[:]
	}

	bits := deriveKey(passphrase, rec.Salt, v.params.VerifierIterations)
	defer wipe(bits)

	sum := sha256.Sum256(bits)
	return sum[:]
}

// GenerateVerifier creates a current-generation record with the production
// iteration counts.
func GenerateVerifier(passphrase []byte) (*VerificationRecord, error) {
	return NewVerifier(DefaultParams()).Generate(passphrase)
}

// Verify checks passphrase against rec with the production iteration counts.
func Verify(passphrase []byte, rec *VerificationRecord) bool {
	return NewVerifier(DefaultParams()).Verify(passphrase, rec)
}

// LegacyRecord builds a legacy-generation record. It exists for importing
// data written before salted verifiers and for tests.
func LegacyRecord(passphrase []byte) *VerificationRecord {
	sum := sha256.Sum256(passphrase)
	return &VerificationRecord{Hash: sum[:], Generation: GenerationLegacy}
}
