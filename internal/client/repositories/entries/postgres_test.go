package entries

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sh3xu/logbook/internal/client/models"
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

var entryRowColumns = []string{"id", "user_id", "content", "is_encrypted", "encryption_version", "created_at", "updated_at"}

func TestPostgres_Create(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+entries\s*\(id,\s*user_id,\s*content,\s*is_encrypted,\s*encryption_version,\s*created_at,\s*updated_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7\)$`

	created := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(q).
		WithArgs("e1", "alice", "body", false, 0, created, created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.Entry{ID: "e1", UserID: "alice", Content: "body", CreatedAt: created})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgres_Create_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+entries`).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &models.Entry{ID: "e1", UserID: "alice"})
	if err == nil || !regexp.MustCompile(`failed to insert entry: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestPostgres_GetByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,.*FROM\s+entries\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+id\s*=\s*\$2$`
	ts := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(q).
		WithArgs("alice", "e1").
		WillReturnRows(sqlmock.NewRows(entryRowColumns).AddRow("e1", "alice", "env", true, 1, ts, ts))

	got, err := repo.GetByID(context.Background(), "alice", "e1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.ID != "e1" || !got.IsEncrypted || got.EncryptionVersion != cryptox.HintCurrent {
		t.Fatalf("unexpected entry: %+v", got)
	}
}

func TestPostgres_GetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+id,.*FROM\s+entries`).
		WithArgs("alice", "ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "alice", "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestPostgres_ListByUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,.*FROM\s+entries\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at,\s*id$`
	ts := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(q).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(entryRowColumns).
			AddRow("e1", "alice", "a", true, -1, ts, ts).
			AddRow("e2", "alice", "b", false, 0, ts.Add(time.Minute), ts.Add(time.Minute)))

	list, err := repo.ListByUser(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if len(list) != 2 || list[0].EncryptionVersion != cryptox.HintLegacy || list[1].IsEncrypted {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestPostgres_ListByUser_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+id,`).WillReturnError(errors.New("timeout"))

	_, err := repo.ListByUser(context.Background(), "alice")
	if err == nil || !regexp.MustCompile(`failed to select entries: .*timeout`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestPostgres_UpdateContent(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+entries\s+SET\s+content\s*=\s*\$1,\s*is_encrypted\s*=\s*\$2,\s*encryption_version\s*=\s*\$3,\s*updated_at\s*=\s*\$4\s+WHERE\s+id\s*=\s*\$5$`

	mock.ExpectExec(q).
		WithArgs("env", true, 1, sqlmock.AnyArg(), "e1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateContent(context.Background(), "e1", "env", cryptox.HintCurrent); err != nil {
		t.Fatalf("UpdateContent error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgres_UpdateContent_Errors(t *testing.T) {
	tests := []struct {
		name    string
		result  sql.Result
		execErr error
		check   func(error) bool
	}{
		{
			name:   "no rows",
			result: sqlmock.NewResult(0, 0),
			check:  func(err error) bool { return errors.Is(err, common.ErrorNotFound) },
		},
		{
			name:   "too many rows",
			result: sqlmock.NewResult(0, 2),
			check: func(err error) bool {
				return err != nil && regexp.MustCompile(`wrong rows affected count: 2`).MatchString(err.Error())
			},
		},
		{
			name:    "exec error",
			execErr: errors.New("conn reset"),
			check: func(err error) bool {
				return err != nil && regexp.MustCompile(`failed to update entry: .*conn reset`).MatchString(err.Error())
			},
		},
		{
			name:   "rows affected error",
			result: sqlmock.NewErrorResult(errors.New("unsupported")),
			check: func(err error) bool {
				return err != nil && regexp.MustCompile(`failed to get rows affected`).MatchString(err.Error())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			exp := mock.ExpectExec(`UPDATE\s+entries`)
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(tt.result)
			}

			err := repo.UpdateContent(context.Background(), "e1", "env", cryptox.HintCurrent)
			if !tt.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
