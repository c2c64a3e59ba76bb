package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sh3xu/logbook/internal/client/config"
	"github.com/sh3xu/logbook/internal/client/repositories/entries"
	"github.com/sh3xu/logbook/internal/client/repositories/profiles"
	"github.com/sh3xu/logbook/internal/dbx"
	_ "modernc.org/sqlite"
)

var (
	ErrUnknownBackend = errors.New("unknown storage backend")
	ErrMissingDSN     = errors.New("missing database DSN")
)

// Storage is an open database with its repositories.
type Storage struct {
	DB       *sql.DB
	Manager  Manager
	Entries  entries.Repository
	Profiles profiles.Repository
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// Open connects to the backend named by cfg.Backend, migrates it and
// returns the bound repositories.
func Open(ctx context.Context, cfg *config.Config) (*Storage, error) {
	var (
		m      Manager
		driver string
		dsn    string
	)

	switch cfg.Backend {
	case config.BackendSQLite, "":
		m, driver, dsn = SQLiteManager{}, "sqlite", cfg.DatabaseDSN
	case config.BackendPostgres:
		m, driver, dsn = PostgresManager{}, "pgx", cfg.PostgresDSN
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
	if dsn == "" {
		return nil, fmt.Errorf("%w for %s", ErrMissingDSN, m.Dialect())
	}

	db, err := sqlOpen(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", m.Dialect(), err)
	}
	if m.Dialect() == dbx.SQLite {
		// one writer; also keeps ":memory:" databases on a single connection
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", m.Dialect(), err)
	}
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Storage{
		DB:       db,
		Manager:  m,
		Entries:  m.Entries(db),
		Profiles: m.Profiles(db),
	}, nil
}

// Close releases the database handle.
func (s *Storage) Close() error {
	return s.DB.Close()
}
