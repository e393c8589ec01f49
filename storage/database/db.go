package database

import (
	"context"
	"io"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/ecoquest/ecoquest/core"
	filedb "github.com/ecoquest/ecoquest/storage/database/file"
	inmemdb "github.com/ecoquest/ecoquest/storage/database/inmem"
	postgresdb "github.com/ecoquest/ecoquest/storage/database/postgres"
	redisdb "github.com/ecoquest/ecoquest/storage/database/redis"
)

// Drivers
const (
	DriverFile     = "file"
	DriverInmem    = "inmem"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Open returns the slot store selected by conf.Storage.Driver and a closer releasing it.
func Open(ctx context.Context, conf *core.Config) (core.KVStore, io.Closer, error) {
	sc := conf.Storage
	switch sc.Driver {
	case DriverInmem:
		return inmemdb.Open(), nopCloser{}, nil
	case DriverFile, "":
		db, err := filedb.Open(filepath.Join(sc.DataDir, sc.Namespace))
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening file store")
		}
		return db, nopCloser{}, nil
	case DriverPostgres:
		db, err := postgresdb.Open(ctx, sc.DatabaseURL, sc.Namespace)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening postgres store")
		}
		return db, db, nil
	case DriverRedis:
		db, err := redisdb.Open(ctx, sc.RedisAddr, sc.RedisDB, sc.Namespace)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening redis store")
		}
		return db, db, nil
	}
	return nil, nil, errors.Errorf("unknown storage driver %q", sc.Driver)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
