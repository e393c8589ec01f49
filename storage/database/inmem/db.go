package inmemdb

import (
	"context"
	"sync"

	"github.com/ecoquest/ecoquest/core"
)

// DB keeps slots in memory. Values are copied on the way in and out.
type DB struct {
	mutex sync.RWMutex
	table map[string][]byte
}

var _ core.KVStore = (*DB)(nil)

func Open() *DB {
	return &DB{table: make(map[string][]byte)}
}

func (db *DB) Get(_ context.Context, key string) ([]byte, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	val, ok := db.table[key]
	if !ok {
		return nil, core.ErrSlotNotFound
	}
	return append([]byte(nil), val...), nil
}

func (db *DB) Set(_ context.Context, key string, value []byte) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	db.table[key] = append([]byte(nil), value...)
	return nil
}

func (db *DB) Delete(_ context.Context, key string) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	delete(db.table, key)
	return nil
}

// Keys returns the stored slot keys, unordered.
func (db *DB) Keys() []string {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	keys := make([]string, 0, len(db.table))
	for k := range db.table {
		keys = append(keys, k)
	}
	return keys
}
