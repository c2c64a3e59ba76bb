package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/sh3xu/logbook/internal/client/config"
	"github.com/sh3xu/logbook/internal/client/models"
	"github.com/sh3xu/logbook/internal/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestOpen_SQLiteCreatesSchema(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Backend: config.BackendSQLite, DatabaseDSN: filepath.Join(t.TempDir(), "logbook.db")}

	st, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer st.Close()

	assert.Equal(t, dbx.SQLite, st.Manager.Dialect())
	for _, table := range []string{"goose_db_version", "profiles", "entries"} {
		assert.True(t, tableExists(t, st.DB, table), table)
	}

	require.NoError(t, st.Entries.Create(ctx, &models.Entry{ID: "e1", UserID: "u", Content: "{}"}))
	list, err := st.Entries.ListByUser(ctx, "u")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Backend: config.BackendSQLite, DatabaseDSN: filepath.Join(t.TempDir(), "logbook.db")}

	st, err := Open(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = Open(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, st.Manager.RunMigrations(ctx, st.DB))
	require.NoError(t, st.Close())
}

func TestOpen_ConfigErrors(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, &config.Config{Backend: "mongo", DatabaseDSN: "x"})
	require.ErrorIs(t, err, ErrUnknownBackend)

	_, err = Open(ctx, &config.Config{Backend: config.BackendPostgres})
	require.ErrorIs(t, err, ErrMissingDSN)

	_, err = Open(ctx, &config.Config{Backend: config.BackendSQLite})
	require.ErrorIs(t, err, ErrMissingDSN)
}

func TestOpen_PostgresUsesPgxAndMigrates(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing()

	origOpen, origUp := sqlOpen, gooseUpContext
	t.Cleanup(func() { sqlOpen, gooseUpContext = origOpen, origUp })

	var gotDriver, gotDSN, gotDir string
	sqlOpen = func(driver, dsn string) (*sql.DB, error) {
		gotDriver, gotDSN = driver, dsn
		return db, nil
	}
	gooseUpContext = func(ctx context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	st, err := Open(context.Background(), &config.Config{Backend: config.BackendPostgres, PostgresDSN: "postgres://u@h/db"})
	require.NoError(t, err)

	assert.Equal(t, "pgx", gotDriver)
	assert.Equal(t, "postgres://u@h/db", gotDSN)
	assert.Equal(t, "postgres", gotDir)
	assert.Equal(t, dbx.Postgres, st.Manager.Dialect())
	assert.NotNil(t, st.Entries)
	assert.NotNil(t, st.Profiles)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_MigrationFailureClosesDB(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing()
	mock.ExpectClose()

	origOpen, origUp := sqlOpen, gooseUpContext
	t.Cleanup(func() { sqlOpen, gooseUpContext = origOpen, origUp })

	sqlOpen = func(string, string) (*sql.DB, error) { return db, nil }
	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("boom")
	}

	_, err = Open(context.Background(), &config.Config{Backend: config.BackendPostgres, PostgresDSN: "postgres://x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrations (pgx): boom")
	require.NoError(t, mock.ExpectationsWereMet())
}
