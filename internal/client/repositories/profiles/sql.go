package profiles

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

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
	now     func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, dialect: dbx.SQLite, now: utcNow}
}

func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, dialect: dbx.Postgres, now: utcNow}
}

func utcNow() time.Time { return time.Now().UTC() }

func (r *SQLRepository) Get(ctx context.Context, userID string) (*models.Profile, error) {
	query := r.dialect.Rebind(`SELECT verifier_salt, verifier_hash, verifier_generation, updated_at
		FROM profiles WHERE user_id = ?`)

	var salt, hash, generation string
	p := &models.Profile{UserID: userID}

	err := r.db.QueryRowContext(ctx, query, userID).Scan(&salt, &hash, &generation, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	rec, err := cryptox.DecodeVerificationRecord(salt, hash, generation)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", userID, err)
	}
	p.Verifier = rec
	return p, nil
}

func (r *SQLRepository) SaveVerifier(ctx context.Context, userID string, rec *cryptox.VerificationRecord) error {
	if rec == nil {
		return errors.New("nil verification record")
	}

	query := r.dialect.Rebind(`INSERT INTO profiles (user_id, verifier_salt, verifier_hash, verifier_generation, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET verifier_salt = excluded.verifier_salt,
			verifier_hash = excluded.verifier_hash,
			verifier_generation = excluded.verifier_generation,
			updated_at = excluded.updated_at`)

	salt := ""
	if len(rec.Salt) > 0 {
		salt = rec.EncodedSalt()
	}

	_, err := r.db.ExecContext(ctx, query, userID, salt, rec.EncodedHash(), string(rec.Generation), r.now())
	if err != nil {
		return fmt.Errorf("failed to save verifier: %w", err)
	}
	return nil
}
