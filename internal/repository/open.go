package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/studymate/internal/config"
	"github.com/Rrens/studymate/internal/domain"
	"github.com/Rrens/studymate/internal/repository/memory"
	"github.com/Rrens/studymate/internal/repository/mongo"
	"github.com/Rrens/studymate/internal/repository/mysql"
	"github.com/Rrens/studymate/internal/repository/postgres"
	"github.com/Rrens/studymate/internal/repository/redis"
	"github.com/Rrens/studymate/internal/repository/sqlite"
)

// Storage drivers accepted by storage.driver
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMongo    = "mongo"
	DriverRedis    = "redis"
)

var ErrUnknownDriver = errors.New("unknown storage driver")

// Open builds the key-value backend selected by cfg.Storage.Driver.
// The redis driver reuses rdb, which the caller owns and must close.
func Open(ctx context.Context, cfg *config.Config, rdb *redis.Client) (domain.KeyValueStore, error) {
	driver := cfg.Storage.Driver
	if driver == "" {
		driver = DriverMemory
	}

	log.Info().Str("driver", driver).Msg("Opening study storage")

	switch driver {
	case DriverMemory:
		return memory.NewStore(), nil

	case DriverSQLite:
		return sqlite.NewStore(cfg.Storage.SQLite.Path)

	case DriverPostgres:
		if err := RunMigrations(DriverPostgres, cfg.Database.DSN()); err != nil {
			return nil, err
		}
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		return postgres.NewStore(db), nil

	case DriverMySQL:
		if cfg.Storage.MySQL.DSN == "" {
			return nil, fmt.Errorf("storage.mysql.dsn is required for the mysql driver")
		}
		if err := RunMigrations(DriverMySQL, MySQLMigrationURL(cfg.Storage.MySQL.DSN)); err != nil {
			return nil, err
		}
		return mysql.NewStore(ctx, cfg.Storage.MySQL.DSN)

	case DriverMongo:
		if cfg.Storage.Mongo.URI == "" {
			return nil, fmt.Errorf("storage.mongo.uri is required for the mongo driver")
		}
		return mongo.NewStore(ctx, cfg.Storage.Mongo.URI, cfg.Storage.Mongo.Database, cfg.Storage.Mongo.Collection)

	case DriverRedis:
		if rdb == nil {
			return nil, fmt.Errorf("redis driver selected but no redis client was provided")
		}
		return redis.NewStore(rdb), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// NeedsRedis reports whether cfg requires a Redis connection
func NeedsRedis(cfg *config.Config) bool {
	return cfg.Storage.Driver == DriverRedis || cfg.Security.RateLimit.Enabled
}
