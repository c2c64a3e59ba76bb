package entries

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/sh3xu/logbook/internal/client/migrations"
	"github.com/sh3xu/logbook/internal/client/models"
	"github.com/sh3xu/logbook/internal/common"
	"github.com/sh3xu/logbook/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// every pooled connection would get its own in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.FS)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.UpContext(context.Background(), db, migrations.SQLiteDir))

	return db
}

func newEntry(id, user string, created time.Time) *models.Entry {
	return &models.Entry{
		ID:        id,
		UserID:    user,
		Content:   `{"title":"t"}`,
		CreatedAt: created,
	}
}

func TestSQLite_CreateAndGet(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	e := &models.Entry{
		ID:                "e1",
		UserID:            "alice",
		Content:           "AQID",
		IsEncrypted:       true,
		EncryptionVersion: cryptox.HintLegacy,
		CreatedAt:         created,
	}
	require.NoError(t, r.Create(ctx, e))

	got, err := r.GetByID(ctx, "alice", "e1")
	require.NoError(t, err)
	assert.Equal(t, "e1", got.ID)
	assert.Equal(t, "alice", got.UserID)
	assert.Equal(t, "AQID", got.Content)
	assert.True(t, got.IsEncrypted)
	assert.Equal(t, cryptox.HintLegacy, got.EncryptionVersion)
	assert.True(t, created.Equal(got.CreatedAt), "created_at %s", got.CreatedAt)
	assert.True(t, created.Equal(got.UpdatedAt), "updated_at defaults to created_at")
}

func TestSQLite_GetByID_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, newEntry("e1", "alice", time.Now().UTC())))

	_, err := r.GetByID(ctx, "alice", "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)

	// another user's entry is not visible
	_, err = r.GetByID(ctx, "bob", "e1")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSQLite_ListByUser_Ordered(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, r.Create(ctx, newEntry("c", "alice", base.Add(2*time.Hour))))
	require.NoError(t, r.Create(ctx, newEntry("b", "alice", base)))
	require.NoError(t, r.Create(ctx, newEntry("a", "alice", base)))
	require.NoError(t, r.Create(ctx, newEntry("z", "bob", base)))

	list, err := r.ListByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{list[0].ID, list[1].ID, list[2].ID})

	empty, err := r.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSQLite_UpdateContent(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, newEntry("e1", "alice", time.Now().UTC())))

	fixed := time.Date(2026, 5, 5, 5, 5, 5, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	require.NoError(t, r.UpdateContent(ctx, "e1", "ZW52ZWxvcGU=", cryptox.HintCurrent))

	got, err := r.GetByID(ctx, "alice", "e1")
	require.NoError(t, err)
	assert.Equal(t, "ZW52ZWxvcGU=", got.Content)
	assert.True(t, got.IsEncrypted)
	assert.Equal(t, cryptox.HintCurrent, got.EncryptionVersion)
	assert.True(t, fixed.Equal(got.UpdatedAt))

	err = r.UpdateContent(ctx, "missing", "x", cryptox.HintCurrent)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSQLite_DuplicateID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, newEntry("e1", "alice", time.Now().UTC())))
	err := r.Create(ctx, newEntry("e1", "alice", time.Now().UTC()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert entry")
}
