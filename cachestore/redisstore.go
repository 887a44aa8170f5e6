package cachestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// RedisConfig holds the connection settings for the Redis snapshot
// store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// Key is the Redis key the snapshot lives under.
	Key string

	// TTL bounds the snapshot's lifetime server-side. Zero keeps it
	// until overwritten; the Persister's max-age check still applies.
	TTL time.Duration
}

// RedisStore persists snapshots in Redis, for deployments that want
// the cache to survive process restarts across hosts.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisStore connects the store and pings the server to ensure
// connectivity before returning.
func NewRedisStore(ctx context.Context, cfg RedisConfig, logger zerolog.Logger) (*RedisStore, error) {
	if cfg.Key == "" {
		return nil, fmt.Errorf("cachestore: redis key is required")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cachestore: connect to redis: %w", err)
	}

	return &RedisStore{
		client: rdb,
		key:    cfg.Key,
		ttl:    cfg.TTL,
		logger: logger.With().Str("component", "cachestore.redis").Logger(),
	}, nil
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, snap Snapshot) error {
	data, err := msgpack.Marshal(snap)
	if err != nil {
		return fmt.Errorf("cachestore: encode snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("cachestore: store snapshot: %w", err)
	}
	s.logger.Debug().Int("bytes", len(data)).Msg("snapshot saved")
	return nil
}

// Load implements Store. redis.Nil is a normal not-found.
func (s *RedisStore) Load(ctx context.Context) (Snapshot, bool, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("cachestore: read snapshot: %w", err)
	}

	var snap Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("cachestore: decode snapshot: %w", err)
	}
	return snap, true, nil
}

// Close closes the Redis client connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
