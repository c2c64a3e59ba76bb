package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sh3xu/logbook/internal/client/config"
	"github.com/sh3xu/logbook/internal/client/models"
	"github.com/sh3xu/logbook/internal/reencrypt"
)

// Journal is the service surface the CLI drives.
type Journal interface {
	IsSetUp(ctx context.Context) (bool, error)
	Setup(ctx context.Context, passphrase []byte) error
	Add(ctx context.Context, p *models.Payload) (*models.Entry, error)
	List(ctx context.Context) ([]models.EntryView, error)
	Get(ctx context.Context, id string) (*models.EntryView, error)
	ChangePassphrase(ctx context.Context, newKey []byte, onProgress reencrypt.ProgressFunc) (*reencrypt.Result, error)
}

// Locker is the session surface the CLI drives.
type Locker interface {
	Unlock(ctx context.Context, passphrase []byte) error
	Lock()
	Unlocked() bool
	Touch()
}

type App struct {
	journal Journal
	session Locker
	userID  string
	grace   time.Duration
	reader  *bufio.Reader
	out     io.Writer
}

// NewApp builds an App reading commands from in and writing to out.
func NewApp(c *config.Config, j Journal, s Locker, in io.Reader, out io.Writer) *App {
	return &App{
		journal: j,
		session: s,
		userID:  c.UserID,
		grace:   c.ReencryptGraceDelay,
		reader:  bufio.NewReader(in),
		out:     out,
	}
}

func (a *App) isUnlocked() bool {
	return a.session.Unlocked()
}

func (a *App) getStatus() string {
	state := "locked"
	if a.isUnlocked() {
		state = "unlocked"
	}
	return a.userID + " " + state
}

// Run prints the greeting and blocks in the REPL until exit or EOF.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to logbook (type 'help' for commands)")

	if ok, err := a.journal.IsSetUp(ctx); err == nil && !ok {
		fmt.Fprintln(a.out, hint("No passphrase yet: run 'setup' first"))
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}
