// Package storage opens the configured database backend, applies the
// embedded goose migrations and vends the repositories bound to it.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
	"github.com/sh3xu/logbook/internal/client/migrations"
	"github.com/sh3xu/logbook/internal/client/repositories/entries"
	"github.com/sh3xu/logbook/internal/client/repositories/profiles"
	"github.com/sh3xu/logbook/internal/dbx"
)

// Manager vends backend-specific repositories and migrates the schema.
type Manager interface {
	Dialect() dbx.Dialect
	RunMigrations(ctx context.Context, db *sql.DB) error
	Entries(db dbx.DBTX) entries.Repository
	Profiles(db dbx.DBTX) profiles.Repository
}

// SQLiteManager serves the local single-file backend.
type SQLiteManager struct{}

func (SQLiteManager) Dialect() dbx.Dialect { return dbx.SQLite }

func (SQLiteManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return runMigrations(ctx, db, "sqlite3", migrations.SQLiteDir)
}

func (SQLiteManager) Entries(db dbx.DBTX) entries.Repository {
	return entries.NewSQLiteRepository(db)
}

func (SQLiteManager) Profiles(db dbx.DBTX) profiles.Repository {
	return profiles.NewSQLiteRepository(db)
}

// PostgresManager serves the hosted backend through pgx's database/sql driver.
type PostgresManager struct{}

func (PostgresManager) Dialect() dbx.Dialect { return dbx.Postgres }

func (PostgresManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return runMigrations(ctx, db, "pgx", migrations.PostgresDir)
}

func (PostgresManager) Entries(db dbx.DBTX) entries.Repository {
	return entries.NewPostgresRepository(db)
}

func (PostgresManager) Profiles(db dbx.DBTX) profiles.Repository {
	return profiles.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// goose keeps its base FS and dialect in package state.
var gooseMu sync.Mutex

func runMigrations(ctx context.Context, db *sql.DB, dialect, dir string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrations (%s): %w", dialect, err)
	}
	return nil
}
