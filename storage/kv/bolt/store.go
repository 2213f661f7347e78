// Package boltkv implements core.KVStore on a bbolt file.
package boltkv

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
	"go.uber.org/multierr"

	"github.com/trezcool/campuscopilot/core"
)

var blobsBucket = []byte("blobs")

type Store struct {
	db *bbolt.DB
}

var _ core.KVStore = (*Store)(nil) // interface compliance check

// Open opens (or creates) the store file at path, with its parent directories.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "creating cache directory")
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "opening cache %s", path)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(blobsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating blobs bucket")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	var (
		value string
		ok    bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		// bytes returned by Get are only valid for the life of the transaction
		if v := tx.Bucket(blobsBucket).Get([]byte(key)); v != nil {
			value, ok = string(v), true
		}
		return nil
	})
	if err != nil {
		return "", false, errors.Wrapf(err, "reading %s", key)
	}
	return value, ok, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(blobsBucket).Put([]byte(key), []byte(value))
	})
	return errors.Wrapf(err, "writing %s", key)
}

// Remove deletes each key in its own transaction. Failures are collected; keys removed
// before a failure stay removed.
func (s *Store) Remove(ctx context.Context, keys ...string) error {
	var errs error
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		err := s.db.Update(func(tx *bbolt.Tx) error {
			return tx.Bucket(blobsBucket).Delete([]byte(key))
		})
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "removing %s", key))
		}
	}
	return errs
}
