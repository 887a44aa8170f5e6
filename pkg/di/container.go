// Package di wires the module's components together: configuration,
// cache service, HTTP client, API facades, cached query layers and
// snapshot persistence. The container is the single explicitly-
// constructed context object the whole client hangs off; nothing in
// the module relies on package-level singletons, so tests and multiple
// independent clients in one process stay isolated.
package di

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/showgrid/showgrid-go/api"
	"github.com/showgrid/showgrid-go/apicache"
	"github.com/showgrid/showgrid-go/cachestore"
	"github.com/showgrid/showgrid-go/client"
	"github.com/showgrid/showgrid-go/config"
	"github.com/showgrid/showgrid-go/querycache"
	"github.com/showgrid/showgrid-go/schema"
)

// Container holds the wired component graph.
type Container struct {
	cfg    *config.Config
	logger zerolog.Logger

	cacheService querycache.CacheService
	httpClient   *client.Client

	events *apicache.Events
	cities *apicache.Cities

	persister *cachestore.Persister
}

// New builds the full graph from configuration. httpClient may be nil
// to use http.DefaultClient. ctx bounds the Redis connection attempt
// when the Redis snapshot store is configured.
func New(ctx context.Context, cfg *config.Config, httpClient *http.Client, logger zerolog.Logger) (*Container, error) {
	cacheCfg := querycache.DefaultConfig()
	if cfg.CacheStaleTime > 0 {
		cacheCfg.StaleTime = cfg.CacheStaleTime
	}
	if cfg.CacheGCTime > 0 {
		cacheCfg.GCTime = cfg.CacheGCTime
	}
	if cfg.CacheCapacity > 0 {
		cacheCfg.Capacity = cfg.CacheCapacity
	}

	cacheService, err := querycache.NewCacheService(cacheCfg)
	if err != nil {
		return nil, err
	}

	httpAdapter, err := client.New(cfg.APIBaseURL, httpClient, logger)
	if err != nil {
		return nil, err
	}

	eventsAPI := api.NewEventsService(httpAdapter, logger)
	citiesAPI := api.NewCitiesService(httpAdapter, logger)

	c := &Container{
		cfg:          cfg,
		logger:       logger,
		cacheService: cacheService,
		httpClient:   httpAdapter,
		events:       apicache.NewEvents(cacheService, eventsAPI, logger),
		cities:       apicache.NewCities(cacheService, citiesAPI, logger),
	}

	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if store != nil {
		c.persister = cachestore.NewPersister(cacheService, store, cfg.CacheBuster, cfg.CacheMaxAge, logger)
		c.persister.Register(
			cachestore.TypedDecoder[apicache.ListResult[schema.Event]](c.events.Keys().Lists()),
			cachestore.TypedDecoder[schema.Event](c.events.Keys().Details()),
			cachestore.TypedDecoder[apicache.ListResult[schema.City]](c.cities.Keys().Lists()),
			cachestore.TypedDecoder[schema.City](c.cities.Keys().Details()),
		)
	}

	return c, nil
}

// newStore picks the snapshot backend from configuration: Redis when
// an address is set, otherwise the file store, otherwise none.
func newStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (cachestore.Store, error) {
	if cfg.RedisAddr != "" {
		return cachestore.NewRedisStore(ctx, cachestore.RedisConfig{
			Addr: cfg.RedisAddr,
			Key:  "showgrid:querycache:" + cfg.CacheBuster,
			TTL:  cfg.CacheMaxAge,
		}, logger)
	}
	if cfg.PersistPath != "" {
		return cachestore.NewFileStore(cfg.PersistPath)
	}
	return nil, nil
}

// Events returns the cached events layer.
func (c *Container) Events() *apicache.Events { return c.events }

// Cities returns the cached cities layer.
func (c *Container) Cities() *apicache.Cities { return c.cities }

// CacheService returns the underlying cache service for advanced use.
func (c *Container) CacheService() querycache.CacheService { return c.cacheService }

// Client returns the HTTP adapter.
func (c *Container) Client() *client.Client { return c.httpClient }

// Hydrate restores the persisted cache snapshot, if persistence is
// configured. A missing or unusable snapshot leaves the cache empty
// and returns nil.
func (c *Container) Hydrate(ctx context.Context) error {
	if c.persister == nil {
		return nil
	}
	return c.persister.Hydrate(ctx)
}

// Dehydrate saves the current cache content, if persistence is
// configured. Call it on shutdown.
func (c *Container) Dehydrate(ctx context.Context) error {
	if c.persister == nil {
		return nil
	}
	return c.persister.Dehydrate(ctx)
}
