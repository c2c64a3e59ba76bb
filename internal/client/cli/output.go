package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/sh3xu/logbook/internal/client/models"
	"github.com/sh3xu/logbook/internal/common"
	"github.com/sh3xu/logbook/internal/reencrypt"
	"github.com/sh3xu/logbook/internal/session"
)

var errPassphraseMismatch = errors.New("passphrases do not match")

func success(msg string) string { return color.GreenString("✓") + " " + msg }

func failure(msg string) string { return color.RedString("✗") + " " + msg }

func warning(msg string) string { return color.YellowString("!") + " " + msg }

func hint(msg string) string { return color.CyanString("→") + " " + msg }

// describeError turns a command error into the text shown to the user.
func describeError(err error) string {
	var ae *reencrypt.AbortedError
	switch {
	case errors.As(err, &ae):
		return abortMessage(ae)
	case errors.Is(err, session.ErrInvalidKey):
		return failure("Invalid Master Key")
	case errors.Is(err, session.ErrLocked):
		return failure("Journal is locked") + "\n" + hint("Run 'unlock' first")
	case errors.Is(err, reencrypt.ErrWeakPassphrase):
		return failure(capitalize(err.Error()))
	case errors.Is(err, errPassphraseMismatch):
		return failure("Passphrases do not match")
	case errors.Is(err, common.ErrorAlreadySetUp):
		return failure("Journal is already set up") + "\n" + hint("Use 'rekey' to change the passphrase")
	case errors.Is(err, common.ErrorNotSetUp):
		return failure("Journal is not set up") + "\n" + hint("Run 'setup' to choose a passphrase")
	case errors.Is(err, common.ErrorNotFound):
		return failure("Entry not found")
	default:
		return failure(capitalize(err.Error()))
	}
}

func abortMessage(ae *reencrypt.AbortedError) string {
	var b strings.Builder
	b.WriteString(color.New(color.FgRed, color.Bold).Sprint("✗ Re-encryption FAILED: your data is NOT fully migrated"))
	b.WriteString("\n")

	where := ae.Stage
	if ae.EntryID != "" {
		where += " of entry " + ae.EntryID
	}
	b.WriteString(hint(fmt.Sprintf("Stopped at %s: %v", where, ae.Err)) + "\n")

	if ae.Stage == reencrypt.StageCommit {
		b.WriteString(hint("Every entry uses the new passphrase but the journal still unlocks with the old one") + "\n")
	} else if ae.Partial() {
		b.WriteString(hint(fmt.Sprintf("%d of %d entries already use the new passphrase, the rest still use the old one",
			ae.Written, ae.Pending)) + "\n")
	}
	b.WriteString(hint("Unlock with the old passphrase"))
	if ae.Snapshot != "" {
		b.WriteString("\n" + hint("A copy of every entry from before the change is at "+ae.Snapshot))
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func statusLabel(st models.EntryStatus) string {
	switch st {
	case models.StatusEncrypted:
		return color.YellowString("[encrypted]")
	case models.StatusCorrupted:
		return color.RedString("[corrupted]")
	default:
		return ""
	}
}
