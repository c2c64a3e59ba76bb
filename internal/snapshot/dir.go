package snapshot

import (
	"context"
	"path/filepath"

	"github.com/sh3xu/logbook/internal/filex"
)

// DirStore writes snapshots below a local directory.
type DirStore struct {
	root string
}

func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

// Put writes body to root/key atomically with owner-only permissions.
func (d *DirStore) Put(ctx context.Context, key string, body []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(d.root, filepath.FromSlash(key))
	if _, err := filex.EnsureDir(filepath.Dir(path)); err != nil {
		return "", err
	}
	if err := filex.WriteFileAtomic(path, body, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
