package filedb

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/pkg/errors"

	"github.com/ecoquest/ecoquest/core"
)

const (
	dirPerm  = 0o700
	filePerm = 0o600
	ext      = ".slot"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// DB stores one file per slot under a private directory.
type DB struct {
	mutex sync.RWMutex
	dir   string
}

var _ core.KVStore = (*DB)(nil)

// Open creates dir (and parents) if needed.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, errors.Wrap(err, "creating data directory")
	}
	return &DB{dir: dir}, nil
}

func (db *DB) path(key string) (string, error) {
	if !validKey.MatchString(key) || key == "." || key == ".." {
		return "", errors.Errorf("invalid slot key %q", key)
	}
	return filepath.Join(db.dir, key+ext), nil
}

func (db *DB) Get(_ context.Context, key string) ([]byte, error) {
	path, err := db.path(key)
	if err != nil {
		return nil, err
	}

	db.mutex.RLock()
	defer db.mutex.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.ErrSlotNotFound
		}
		return nil, errors.Wrapf(err, "reading slot %s", key)
	}
	return data, nil
}

// Set writes to a temporary file first and renames it over the slot.
func (db *DB) Set(_ context.Context, key string, value []byte) error {
	path, err := db.path(key)
	if err != nil {
		return err
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	tmp, err := os.CreateTemp(db.dir, key+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "creating temp file for slot %s", key)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() // no-op after a successful rename

	if _, err = tmp.Write(value); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "writing slot %s", key)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "syncing slot %s", key)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "closing slot %s", key)
	}
	if err = os.Chmod(tmpName, filePerm); err != nil {
		return errors.Wrapf(err, "chmod slot %s", key)
	}
	return errors.Wrapf(os.Rename(tmpName, path), "renaming slot %s", key)
}

func (db *DB) Delete(_ context.Context, key string) error {
	path, err := db.path(key)
	if err != nil {
		return err
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	if err = os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "deleting slot %s", key)
	}
	return nil
}
