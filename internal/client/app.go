// Package client assembles the logbook client: storage, session, journal
// service and the interactive CLI.
package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/awnumar/memguard"
	"github.com/sh3xu/logbook/internal/client/cli"
	"github.com/sh3xu/logbook/internal/client/config"
	"github.com/sh3xu/logbook/internal/client/storage"
	"github.com/sh3xu/logbook/internal/journal"
	"github.com/sh3xu/logbook/internal/logging"
	"github.com/sh3xu/logbook/internal/reencrypt"
	"github.com/sh3xu/logbook/internal/session"
	"github.com/sh3xu/logbook/internal/snapshot"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	storage *storage.Storage
	session *session.Session
	cli     *cli.App

	closeOnce sync.Once
}

// NewApp opens storage and wires the client. Commands are read from in and
// results written to out.
func NewApp(ctx context.Context, c *config.Config, in io.Reader, out io.Writer) (*App, error) {
	logger := logging.NewStderr().With("user_id", c.UserID)
	events := logging.NewEventer(logger)

	st, err := storage.Open(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	snap, err := newSnapshotter(ctx, c)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("snapshot init error: %w", err)
	}

	orchOpts := []reencrypt.Option{reencrypt.WithEventer(events), reencrypt.WithLogger(logger)}
	if snap != nil {
		orchOpts = append(orchOpts, reencrypt.WithSnapshotter(snap))
	}
	orch := reencrypt.New(st.Entries, st.Profiles, orchOpts...)

	sess := session.New(c.UserID, st.Profiles,
		session.WithIdleTimeout(c.IdleLockTimeout),
		session.WithEventer(events),
		session.WithLogger(logger),
		session.WithOnLock(func(reason string) {
			if reason == session.ReasonIdle {
				fmt.Fprintln(out, "\nSession locked after inactivity")
			}
		}),
	)

	svc := journal.New(st.Entries, st.Profiles, sess, orch, journal.WithLogger(logger))

	return &App{
		config:  c,
		logger:  logger,
		storage: st,
		session: sess,
		cli:     cli.NewApp(c, svc, sess, in, out),
	}, nil
}

// newSnapshotter returns nil when no snapshot target is configured.
func newSnapshotter(ctx context.Context, c *config.Config) (*snapshot.Snapshotter, error) {
	switch {
	case c.S3Bucket != "":
		store, err := snapshot.NewS3Store(ctx, snapshot.S3Options{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return snapshot.New(store), nil
	case c.SnapshotDir != "":
		return snapshot.New(snapshot.NewDirStore(c.SnapshotDir)), nil
	default:
		return nil, nil
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
		app.Close()
		memguard.SafeExit(1)
	}()
}

// Run blocks in the REPL until the user exits or a signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting logbook...", "backend", app.config.Backend)
	app.initSignalHandler(cancelFunc)

	app.cli.Run(ctx)
	app.Close()
}

// Close locks the session and releases the database.
func (app *App) Close() {
	app.closeOnce.Do(func() {
		app.session.Lock()
		if err := app.storage.Close(); err != nil {
			app.logger.Error(context.Background(), "close storage", "error", err)
		}
	})
}
