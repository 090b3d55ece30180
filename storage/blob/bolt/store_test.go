package boltblob

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devShreyas21/studentPortal/core/file"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "blobs", "files.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	f := file.File{
		ID:          uuid.NewString(),
		Name:        "thesis.pdf",
		ContentType: "application/pdf",
		Size:        9,
		UploadedBy:  5,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
		Content:     []byte("%PDF-1.4\n"),
	}

	ok, err := store.Exists(ctx, f.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Get(ctx, f.ID)
	assert.Equal(t, file.ErrNotFound, err)

	require.NoError(t, store.Put(ctx, f))
	assert.Error(t, store.Put(ctx, f), "ids are never overwritten")

	ok, err = store.Exists(ctx, f.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := store.Get(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.Name, got.Name)
	assert.Equal(t, f.ContentType, got.ContentType)
	assert.Equal(t, f.Size, got.Size)
	assert.Equal(t, f.UploadedBy, got.UploadedBy)
	assert.True(t, f.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, f.Content, got.Content)
}

func TestStore_reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "files.db")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)
	id := uuid.NewString()
	require.NoError(t, store.Put(ctx, file.File{ID: id, Name: "a.txt", Content: []byte("a")}))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), got.Content)
}
