// Package boltblob stores uploaded files in a local bbolt database.
package boltblob

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/devShreyas21/studentPortal/core/file"
)

var (
	metaBucket    = []byte("FileMeta")
	contentBucket = []byte("FileContent")
)

type Store struct {
	db *bbolt.DB
}

var _ file.Store = (*Store)(nil) // interface compliance check

// Open opens (or creates) the database at `path` along with its buckets.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "creating blob directory")
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "opening blob database")
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{metaBucket, contentBucket} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating buckets")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Put(_ context.Context, f file.File) error {
	meta, err := json.Marshal(f)
	if err != nil {
		return errors.Wrap(err, "encoding file metadata")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		key := []byte(f.ID)
		metas := tx.Bucket(metaBucket)
		if metas.Get(key) != nil {
			return errors.Errorf("file %s already exists", f.ID)
		}
		if err := metas.Put(key, meta); err != nil {
			return errors.Wrap(err, "storing file metadata")
		}
		return errors.Wrap(tx.Bucket(contentBucket).Put(key, f.Content), "storing file content")
	})
}

func (s *Store) Get(_ context.Context, id string) (file.File, error) {
	var f file.File
	err := s.db.View(func(tx *bbolt.Tx) error {
		key := []byte(id)
		meta := tx.Bucket(metaBucket).Get(key)
		if meta == nil {
			return file.ErrNotFound
		}
		if err := json.Unmarshal(meta, &f); err != nil {
			return errors.Wrap(err, "decoding file metadata")
		}
		// bolt values are only valid during the transaction
		f.Content = append([]byte(nil), tx.Bucket(contentBucket).Get(key)...)
		return nil
	})
	if err != nil {
		return file.File{}, err
	}
	return f, nil
}

func (s *Store) Exists(_ context.Context, id string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket(metaBucket).Get([]byte(id)) != nil
		return nil
	})
	return found, err
}
