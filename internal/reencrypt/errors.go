package reencrypt

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// MinPassphraseLength is the shortest accepted new passphrase, in characters.
const MinPassphraseLength = 8

var (
	// ErrWeakPassphrase is returned before any cryptographic work when the
	// new passphrase is too short.
	ErrWeakPassphrase = fmt.Errorf("passphrase must be at least %d characters", MinPassphraseLength)

	// ErrReencryptionAborted matches every *AbortedError. The old passphrase
	// remains the valid one after an abort.
	ErrReencryptionAborted = errors.New("re-encryption aborted")
)

// IsWeakPassphrase reports whether p has fewer than MinPassphraseLength
// characters. Invalid UTF-8 bytes count one each.
func IsWeakPassphrase(p []byte) bool {
	return utf8.RuneCount(p) < MinPassphraseLength
}

// Stages at which a run can abort.
const (
	StageSnapshot = "snapshot"
	StageEncrypt  = "encrypt"
	StageWrite    = "write"
	StageCommit   = "commit"
)

// AbortedError describes where a run stopped.
type AbortedError struct {
	Stage    string
	EntryID  string // empty outside StageEncrypt and StageWrite
	Written  int    // entries already stored under the new passphrase
	Pending  int    // entries that were due to be written
	Snapshot string // pre-run copy location, if one was taken
	Err      error
}

func (e *AbortedError) Error() string {
	if e.EntryID != "" {
		return fmt.Sprintf("%s at %s of entry %s (%d of %d written): %v",
			ErrReencryptionAborted, e.Stage, e.EntryID, e.Written, e.Pending, e.Err)
	}
	return fmt.Sprintf("%s at %s (%d of %d written): %v",
		ErrReencryptionAborted, e.Stage, e.Written, e.Pending, e.Err)
}

func (e *AbortedError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrReencryptionAborted) true.
func (e *AbortedError) Is(target error) bool { return target == ErrReencryptionAborted }

// Partial reports whether some entries were already rewritten, i.e. the
// stored data is split between the two passphrases.
func (e *AbortedError) Partial() bool { return e.Written > 0 }
