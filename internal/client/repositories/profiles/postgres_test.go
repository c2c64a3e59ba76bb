package profiles

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sh3xu/logbook/internal/common"
	"github.com/sh3xu/logbook/internal/cryptox"
)

func newRepoWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestPostgres_Get(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rec := cryptox.LegacyRecord([]byte("pw"))
	q := `(?s)^SELECT\s+verifier_salt,\s*verifier_hash,\s*verifier_generation,\s*updated_at\s+FROM\s+profiles\s+WHERE\s+user_id\s*=\s*\$1$`

	mock.ExpectQuery(q).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"verifier_salt", "verifier_hash", "verifier_generation", "updated_at"}).
			AddRow("", rec.EncodedHash(), "legacy", time.Now()))

	p, err := repo.Get(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if p.UserID != "alice" || !p.Verifier.NeedsUpgrade() {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestPostgres_Get_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+profiles`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestPostgres_Get_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+profiles`).WithArgs("alice").WillReturnError(errors.New("db down"))

	_, err := repo.Get(context.Background(), "alice")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestPostgres_SaveVerifier(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rec := &cryptox.VerificationRecord{
		Salt:       make([]byte, cryptox.SaltSize),
		Hash:       make([]byte, 32),
		Generation: cryptox.GenerationCurrent,
	}

	q := `(?s)^INSERT\s+INTO\s+profiles\s*\(user_id,\s*verifier_salt,\s*verifier_hash,\s*verifier_generation,\s*updated_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*ON\s+CONFLICT\s*\(user_id\)\s*DO\s+UPDATE`

	mock.ExpectExec(q).
		WithArgs("alice", rec.EncodedSalt(), rec.EncodedHash(), "current", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SaveVerifier(context.Background(), "alice", rec); err != nil {
		t.Fatalf("SaveVerifier error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgres_SaveVerifier_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+profiles`).WillReturnError(errors.New("read-only"))

	err := repo.SaveVerifier(context.Background(), "alice", cryptox.LegacyRecord([]byte("x")))
	if err == nil || !regexp.MustCompile(`failed to save verifier: .*read-only`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
