package redisdb

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/ecoquest/ecoquest/core"
)

// DB stores slots as plain string keys "<namespace>:<slot>".
type DB struct {
	client    *redis.Client
	namespace string
}

var _ core.KVStore = (*DB)(nil)

func Open(ctx context.Context, addr string, index int, namespace string) (*DB, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: index})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return New(client, namespace), nil
}

func New(client *redis.Client, namespace string) *DB {
	return &DB{client: client, namespace: namespace}
}

func (db *DB) key(k string) string {
	if db.namespace == "" {
		return k
	}
	return db.namespace + ":" + k
}

func (db *DB) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := db.client.Get(ctx, db.key(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, core.ErrSlotNotFound
		}
		return nil, errors.Wrapf(err, "getting slot %s", key)
	}
	return val, nil
}

func (db *DB) Set(ctx context.Context, key string, value []byte) error {
	return errors.Wrapf(db.client.Set(ctx, db.key(key), value, 0).Err(), "setting slot %s", key)
}

func (db *DB) Delete(ctx context.Context, key string) error {
	return errors.Wrapf(db.client.Del(ctx, db.key(key)).Err(), "deleting slot %s", key)
}

func (db *DB) Close() error {
	return db.client.Close()
}
