package cli

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/awnumar/memguard"
	"github.com/sh3xu/logbook/internal/common"
	"github.com/sh3xu/logbook/internal/session"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// readNewPassphrase asks for a passphrase twice. The caller wipes the result.
func (a *App) readNewPassphrase() ([]byte, error) {
	first, err := getPassword(a.out, "New passphrase")
	if err != nil {
		return nil, err
	}
	second, err := getPassword(a.out, "Repeat passphrase")
	if err != nil {
		memguard.WipeBytes(first)
		return nil, err
	}
	defer memguard.WipeBytes(second)

	if subtle.ConstantTimeCompare(first, second) != 1 {
		memguard.WipeBytes(first)
		return nil, errPassphraseMismatch
	}
	return first, nil
}

// Setup stores the first passphrase of the journal.
func (a *App) Setup(ctx context.Context) error {
	pass, err := a.readNewPassphrase()
	if err != nil {
		return err
	}
	defer memguard.WipeBytes(pass)

	if err := a.journal.Setup(ctx, pass); err != nil {
		return err
	}
	fmt.Fprintln(a.out, success("Journal set up"))
	fmt.Fprintln(a.out, hint("Run 'unlock' to start writing encrypted entries"))
	return nil
}

// Unlock asks for the passphrase and opens the session.
func (a *App) Unlock(ctx context.Context) error {
	if a.isUnlocked() {
		fmt.Fprintln(a.out, hint("Already unlocked"))
		return nil
	}
	ok, err := a.journal.IsSetUp(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrorNotSetUp
	}
	pass, err := getPassword(a.out, "Passphrase")
	if err != nil {
		return err
	}
	defer memguard.WipeBytes(pass)

	if err := a.session.Unlock(ctx, pass); err != nil {
		return err
	}
	fmt.Fprintln(a.out, success("Unlocked"))
	return nil
}

// Lock closes the session.
func (a *App) Lock(ctx context.Context) error {
	a.session.Lock()
	fmt.Fprintln(a.out, success("Locked"))
	return nil
}

func (a *App) Touch() {
	a.session.Touch()
}

// Rekey changes the passphrase and re-encrypts every entry under it.
func (a *App) Rekey(ctx context.Context) error {
	if !a.isUnlocked() {
		return session.ErrLocked
	}
	pass, err := a.readNewPassphrase()
	if err != nil {
		return err
	}
	defer memguard.WipeBytes(pass)

	p := newProgress(a.out, a.grace)
	res, err := a.journal.ChangePassphrase(ctx, pass, p.Update)
	p.Done(err == nil)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, success(fmt.Sprintf("Re-encrypted %d of %d entries", res.Rewritten, res.Total)))
	if n := len(res.Skipped); n > 0 {
		fmt.Fprintln(a.out, warning(fmt.Sprintf("%d entries could not be opened and were left as they were", n)))
		for _, id := range res.Skipped {
			fmt.Fprintln(a.out, "  "+id)
		}
	}
	if res.Snapshot != "" {
		fmt.Fprintln(a.out, hint("Previous copy saved to "+res.Snapshot))
	}
	return nil
}
