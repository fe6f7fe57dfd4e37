// Package repo implements durable storage for check-in records.
//
// Every backend satisfies Store: records are appended under unique, sortable
// storage keys and never updated or deleted. The directory backend keeps one
// JSON file per record; the SQLite, Redis and S3 backends keep the same
// documents with an index (or listing) suited to their medium.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/tbourn/go-checkin-backend/internal/config"
	"github.com/tbourn/go-checkin-backend/internal/domain"
)

var (
	// ErrNotFound is returned when no record or stored unit matches.
	ErrNotFound = errors.New("not found")

	// ErrInvalidKey is returned for storage keys that were not issued by NewKey.
	ErrInvalidKey = errors.New("invalid storage key")

	// ErrKeyExists reports that a unit already exists under a key. Backends
	// return it from their exclusive put; callers never see it.
	ErrKeyExists = errors.New("storage key exists")

	// ErrKeyCollision is returned by Append when every generated key collided.
	ErrKeyCollision = errors.New("storage key collision")
)

// Store persists immutable check-in records.
//
// Implementations must be safe for concurrent use and must never overwrite an
// existing unit.
type Store interface {
	// Append writes rec under a newly generated key and returns the key.
	Append(ctx context.Context, rec domain.Record) (string, error)
	// FindLatestByCode returns the most recently received record for code,
	// or ErrNotFound.
	FindLatestByCode(ctx context.Context, code string) (*domain.Record, error)
	// ListAll enumerates the keys of all stored units.
	ListAll(ctx context.Context) ([]string, error)
	// Fetch returns a stored unit verbatim, or ErrNotFound.
	Fetch(ctx context.Context, key string) ([]byte, error)
	// Close releases backend resources.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendDir    = "dir"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendS3     = "s3"
)

// Open builds the store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case BackendDir, "":
		return NewDirStore(cfg.Dir)
	case BackendSQLite:
		db, err := OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return NewSQLiteStore(db)
	case BackendRedis:
		return NewRedisStore(ctx, RedisStoreConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	case BackendS3:
		return NewS3Store(ctx, S3StoreConfig{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			Prefix:    cfg.S3.Prefix,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		})
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
