package querycache

import (
	"time"

	"github.com/showgrid/showgrid-go/internal/cacheinfra"
)

// Config exposes cache tuning options for consumers of the querycache
// package in query-layer vocabulary. StaleTime and GCTime are mapped
// onto the backend's refresh and eviction settings.
type Config struct {
	// Capacity is the maximum number of cached queries.
	Capacity int

	// NumShards determines how many shards back the cache.
	NumShards int

	// StaleTime is how long a cached value is served without a
	// background refetch. After StaleTime the entry is still served
	// but a refresh is scheduled.
	StaleTime time.Duration

	// GCTime is how long an entry survives before eviction. It must
	// be at least StaleTime.
	GCTime time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the cache reaches capacity.
	EvictionPercentage int

	// MissingRecordStorage remembers keys that returned no results so
	// repeated fetches for non-existent records are suppressed.
	MissingRecordStorage bool

	// Retry governs fetch retries for retryable failures.
	Retry RetryPolicy
}

// DefaultConfig returns a Config populated with the defaults the query
// layer ships with: five minute staleness, thirty minute eviction.
func DefaultConfig() Config {
	return Config{
		Capacity:             10000,
		NumShards:            256,
		StaleTime:            5 * time.Minute,
		GCTime:               30 * time.Minute,
		EvictionPercentage:   10,
		MissingRecordStorage: true,
		Retry:                DefaultRetryPolicy(),
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	if c.GCTime < c.StaleTime {
		return &cacheinfra.ConfigError{Field: "GCTime", Message: "must be at least StaleTime"}
	}
	return c.toInternal().Validate()
}

// NewCacheService constructs the default cache service implementation
// using the provided configuration.
func NewCacheService(cfg Config) (CacheService, error) {
	return cacheinfra.NewSturdycService(cfg.toInternal())
}

// toInternal maps the query-layer vocabulary onto the backend config.
// GCTime becomes the entry TTL; StaleTime drives the early-refresh
// window so entries older than StaleTime are refreshed in the
// background while still being served.
func (c Config) toInternal() cacheinfra.Config {
	internal := cacheinfra.Config{
		Capacity:             c.Capacity,
		NumShards:            c.NumShards,
		TTL:                  c.GCTime,
		EvictionPercentage:   c.EvictionPercentage,
		MissingRecordStorage: c.MissingRecordStorage,
	}
	if c.StaleTime > 0 && c.StaleTime < c.GCTime {
		internal.EarlyRefresh = &cacheinfra.EarlyRefreshConfig{
			MinAsyncRefreshTime: c.StaleTime,
			MaxAsyncRefreshTime: c.StaleTime + c.StaleTime/2,
			SyncRefreshTime:     2 * c.StaleTime,
			RetryBaseDelay:      c.Retry.BaseDelay,
		}
	}
	return internal
}
