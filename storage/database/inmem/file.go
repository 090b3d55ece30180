package inmemdb

import (
	"context"

	"github.com/pkg/errors"

	"github.com/devShreyas21/studentPortal/core/file"
)

type fileStore struct {
	db *DB
}

var _ file.Store = (*fileStore)(nil) // interface compliance check

func NewFileStore(db *DB) *fileStore {
	return &fileStore{db: db}
}

func (store *fileStore) Put(_ context.Context, f file.File) error {
	store.db.mu.Lock()
	defer store.db.mu.Unlock()

	if _, ok := store.db.files[f.ID]; ok {
		return errors.Errorf("file %s already exists", f.ID)
	}
	f.Content = append([]byte(nil), f.Content...)
	store.db.files[f.ID] = f
	return nil
}

func (store *fileStore) Get(_ context.Context, id string) (file.File, error) {
	store.db.mu.RLock()
	defer store.db.mu.RUnlock()

	f, ok := store.db.files[id]
	if !ok {
		return file.File{}, file.ErrNotFound
	}
	return f, nil
}

func (store *fileStore) Exists(_ context.Context, id string) (bool, error) {
	store.db.mu.RLock()
	defer store.db.mu.RUnlock()

	_, ok := store.db.files[id]
	return ok, nil
}
