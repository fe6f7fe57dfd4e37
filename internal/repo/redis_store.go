package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/tbourn/go-checkin-backend/internal/domain"
)

// RedisStoreConfig holds connection settings for RedisStore.
type RedisStoreConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // key namespace, e.g. "checkin:"
}

// RedisStore keeps each document under "<prefix>doc:<key>" (written once,
// never overwritten), all keys in the lexicographic set "<prefix>keys", and one
// sorted set per code scored by receipt microseconds for indexed lookups.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisStoreConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStoreWithClient(rdb, cfg.Prefix), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "checkin:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) docKey(key string) string { return s.prefix + "doc:" + key }
func (s *RedisStore) allKeys() string { return s.prefix + "keys" }
func (s *RedisStore) codeIndex(code string) string { return s.prefix + "code:" + code }

// appendScript stores a document and both index entries in one step. It
// indexes first and writes the document last, so a failed index write leaves
// no document behind.
//
// KEYS: doc, all-keys set, code index. ARGV: document, key, receipt score.
var appendScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('ZADD', KEYS[2], 0, ARGV[2])
local res = redis.pcall('ZADD', KEYS[3], ARGV[3], ARGV[2])
if type(res) == 'table' and res.err then
  redis.call('ZREM', KEYS[2], ARGV[2])
  return res
end
redis.call('SET', KEYS[1], ARGV[1])
return 1
`)

// Append implements Store.
func (s *RedisStore) Append(ctx context.Context, rec domain.Record) (string, error) {
	received, err := rec.ReceivedTime()
	if err != nil {
		return "", err
	}
	return appendUnique(ctx, rec, func(ctx context.Context, key string, doc []byte) error {
		created, err := appendScript.Run(ctx, s.client,
			[]string{s.docKey(key), s.allKeys(), s.codeIndex(rec.Code)},
			doc, key, received.UnixMicro(),
		).Int()
		if err != nil {
			return fmt.Errorf("redis append: %w", err)
		}
		if created == 0 {
			return ErrKeyExists
		}
		return nil
	})
}

// FindLatestByCode implements Store. Index entries whose document is missing
// or corrupt are skipped.
func (s *RedisStore) FindLatestByCode(ctx context.Context, code string) (*domain.Record, error) {
	keys, err := s.client.ZRevRange(ctx, s.codeIndex(code), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis index: %w", err)
	}
	for _, key := range keys {
		raw, err := s.Fetch(ctx, key)
		if err != nil {
			continue
		}
		rec, err := domain.DecodeRecord(raw)
		if err != nil || rec.Code != code {
			continue
		}
		return &rec, nil
	}
	return nil, ErrNotFound
}

// ListAll implements Store, ordered by key.
func (s *RedisStore) ListAll(ctx context.Context) ([]string, error) {
	keys, err := s.client.ZRange(ctx, s.allKeys(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list: %w", err)
	}
	return keys, nil
}

// Fetch implements Store.
func (s *RedisStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	if !ValidKey(key) {
		return nil, ErrInvalidKey
	}
	raw, err := s.client.Get(ctx, s.docKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return raw, nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	if err := s.client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}
	return nil
}
