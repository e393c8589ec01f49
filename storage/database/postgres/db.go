package postgresdb

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/ecoquest/ecoquest/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv_slot (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// DB stores slots as rows of kv_slot. Keys are prefixed with the namespace.
type DB struct {
	db        *sqlx.DB
	namespace string
}

var _ core.KVStore = (*DB)(nil)

type slot struct {
	Key       string    `db:"key"`
	Value     []byte    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Open connects to url, waits for the server and creates the table if missing.
func Open(ctx context.Context, url, namespace string) (*DB, error) {
	db, err := sqlx.Open("postgres", url)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err = db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating kv_slot table")
	}
	return &DB{db: db, namespace: namespace}, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "DB ping")
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}
	return errors.Wrap(err, "DB ping timeout")
}

func (db *DB) key(k string) string {
	if db.namespace == "" {
		return k
	}
	return db.namespace + ":" + k
}

func (db *DB) Get(ctx context.Context, key string) ([]byte, error) {
	var s slot
	err := db.db.GetContext(ctx, &s, `SELECT key, value, updated_at FROM kv_slot WHERE key = $1`, db.key(key))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrSlotNotFound
		}
		return nil, errors.Wrapf(err, "selecting slot %s", key)
	}
	return s.Value, nil
}

func (db *DB) Set(ctx context.Context, key string, value []byte) error {
	s := slot{Key: db.key(key), Value: value, UpdatedAt: time.Now().UTC()}
	_, err := db.db.NamedExecContext(ctx, `
		INSERT INTO kv_slot (key, value, updated_at) VALUES (:key, :value, :updated_at)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`, s)
	return errors.Wrapf(err, "upserting slot %s", key)
}

func (db *DB) Delete(ctx context.Context, key string) error {
	_, err := db.db.ExecContext(ctx, `DELETE FROM kv_slot WHERE key = $1`, db.key(key))
	return errors.Wrapf(err, "deleting slot %s", key)
}

func (db *DB) Close() error {
	return db.db.Close()
}
