// Package entries provides persistence for journal entries.
//
// One implementation, SQLRepository, serves both backends: query text is
// written with '?' placeholders and rebound per dbx.Dialect. It works over a
// dbx.DBTX, so callers may pass either *sql.DB or *sql.Tx.
//
//	repo := entries.NewSQLiteRepository(db)
//	_ = repo.Create(ctx, entry)
//	list, _ := repo.ListByUser(ctx, userID)
//	_ = repo.UpdateContent(ctx, id, envelope, cryptox.HintCurrent)
//
// Entries are returned ordered by created_at, then id.
package entries
