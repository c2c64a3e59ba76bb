package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sh3xu/logbook/internal/client/models"
	"github.com/sh3xu/logbook/internal/common"
	"github.com/sh3xu/logbook/internal/cryptox"
	"github.com/sh3xu/logbook/internal/dbx"
)

// SQLRepository implements Repository over a DBTX (either *sql.DB or *sql.Tx).
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
	now     func() time.Time
}

// NewSQLiteRepository returns a repository for the SQLite schema.
func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, dialect: dbx.SQLite, now: utcNow}
}

// NewPostgresRepository returns a repository for the Postgres schema.
func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, dialect: dbx.Postgres, now: utcNow}
}

func utcNow() time.Time { return time.Now().UTC() }

const entryColumns = `id, user_id, content, is_encrypted, encryption_version, created_at, updated_at`

// Create inserts e. Zero timestamps are filled with the current time.
func (r *SQLRepository) Create(ctx context.Context, e *models.Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now()
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = e.CreatedAt
	}

	query := r.dialect.Rebind(`INSERT INTO entries (` + entryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.UserID, e.Content, e.IsEncrypted, int(e.EncryptionVersion), e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

// GetByID returns a single entry owned by userID.
func (r *SQLRepository) GetByID(ctx context.Context, userID, id string) (*models.Entry, error) {
	query := r.dialect.Rebind(`SELECT ` + entryColumns + ` FROM entries WHERE user_id = ? AND id = ?`)

	e, err := scanEntry(r.db.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return e, nil
}

// ListByUser returns all entries of userID ordered by created_at, then id.
func (r *SQLRepository) ListByUser(ctx context.Context, userID string) ([]models.Entry, error) {
	query := r.dialect.Rebind(`SELECT ` + entryColumns + ` FROM entries WHERE user_id = ? ORDER BY created_at, id`)

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateContent stores envelope for id. It expects exactly one row to be
// affected; none means common.ErrorNotFound.
func (r *SQLRepository) UpdateContent(ctx context.Context, id, envelope string, hint cryptox.FormatHint) error {
	query := r.dialect.Rebind(`UPDATE entries
		SET content = ?, is_encrypted = ?, encryption_version = ?, updated_at = ?
		WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query, envelope, true, int(hint), r.now(), id)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrorNotFound
	}
	if ra != 1 {
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*models.Entry, error) {
	var (
		e       models.Entry
		version int
	)
	if err := s.Scan(&e.ID, &e.UserID, &e.Content, &e.IsEncrypted, &version, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.EncryptionVersion = cryptox.FormatHint(version)
	return &e, nil
}
