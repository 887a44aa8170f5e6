package apicache

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"

	"github.com/showgrid/showgrid-go/api"
	"github.com/showgrid/showgrid-go/querycache"
	"github.com/showgrid/showgrid-go/schema"
)

// ListFn fetches one page of records from the source of truth.
type ListFn[T any] func(ctx context.Context, opts api.ListOptions) ([]T, schema.Page, error)

// DetailFn fetches a single record by id from the source of truth.
type DetailFn[T any] func(ctx context.Context, id string) (T, error)

// EnabledFn gates list queries: when it returns false no fetch is
// performed and List returns querycache.ErrDisabled. Used for queries
// whose required inputs are not present yet, e.g. an empty search box.
type EnabledFn func(opts api.ListOptions) bool

// ListResult wraps the tuple result from list fetches so it can live
// in the cache as one value.
type ListResult[T any] struct {
	Records []T
	Page    schema.Page
}

// Queries provides cache-backed reads for one entity. Every read goes
// through the cache service: fresh entries are served directly, stale
// entries trigger a deduplicated background refetch, and misses fetch
// through the retry policy. Keys issued by a Queries instance are
// tracked in a registry so invalidation can target them without
// scanning the whole cache.
type Queries[T any] struct {
	cache    querycache.CacheService
	keys     querycache.KeyFactory
	listFn   ListFn[T]
	detailFn DetailFn[T]
	enabled  EnabledFn
	retry    querycache.RetryPolicy
	// retryable decides which fetch failures are retried. Deterministic
	// failures (validation, not-found, auth) must return false.
	retryable func(error) bool
	// registry maps issued keys to the cache tags active when the key
	// was first used.
	registry *xsync.MapOf[string, []string]
	logger   zerolog.Logger
}

// QueryOption configures a Queries instance.
type QueryOption[T any] func(*Queries[T])

// WithEnabled installs the enabled gate.
func WithEnabled[T any](enabled EnabledFn) QueryOption[T] {
	return func(q *Queries[T]) { q.enabled = enabled }
}

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy[T any](policy querycache.RetryPolicy) QueryOption[T] {
	return func(q *Queries[T]) { q.retry = policy }
}

// NewQueries creates the cache-backed read side for one entity
// namespace. retryable decides which fetch failures get retried with
// exponential backoff.
func NewQueries[T any](
	entity string,
	cache querycache.CacheService,
	listFn ListFn[T],
	detailFn DetailFn[T],
	retryable func(error) bool,
	logger zerolog.Logger,
	opts ...QueryOption[T],
) *Queries[T] {
	q := &Queries[T]{
		cache:     cache,
		keys:      querycache.Keys(entity),
		listFn:    listFn,
		detailFn:  detailFn,
		retry:     querycache.DefaultRetryPolicy(),
		retryable: retryable,
		registry:  xsync.NewMapOf[string, []string](),
		logger:    logger.With().Str("component", "apicache").Str("entity", entity).Logger(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Keys exposes the entity's key factory so callers can target
// invalidation at the same subtree the queries populate.
func (q *Queries[T]) Keys() querycache.KeyFactory { return q.keys }

// List serves the cached result for the filter set, fetching on miss.
// Structurally equal filters share one cache entry; concurrent misses
// for the same key collapse into a single fetch.
func (q *Queries[T]) List(ctx context.Context, opts api.ListOptions) ([]T, schema.Page, error) {
	if q.enabled != nil && !q.enabled(opts) {
		return nil, schema.Page{}, querycache.ErrDisabled
	}

	key := q.keys.List(opts)
	q.trackKey(ctx, key)

	res, err := querycache.GetOrFetch(ctx, q.cache, key,
		querycache.WithRetry(q.retry, q.retryable, func(ctx context.Context) (ListResult[T], error) {
			records, page, err := q.listFn(ctx, opts)
			return ListResult[T]{Records: records, Page: page}, err
		}))
	if err != nil {
		return nil, schema.Page{}, err
	}
	return res.Records, res.Page, nil
}

// ListPage serves one page of an accumulating list query. Pages are
// cached under their own keys inside the list subtree so invalidating
// the subtree drops every accumulated page at once.
func (q *Queries[T]) ListPage(ctx context.Context, opts api.ListOptions, page, pageSize int) ([]T, schema.Page, error) {
	key := q.keys.ListPage(opts, page, pageSize)
	q.trackKey(ctx, key)

	res, err := querycache.GetOrFetch(ctx, q.cache, key,
		querycache.WithRetry(q.retry, q.retryable, func(ctx context.Context) (ListResult[T], error) {
			records, pg, err := q.listFn(ctx, opts.WithPage(page, pageSize))
			return ListResult[T]{Records: records, Page: pg}, err
		}))
	if err != nil {
		return nil, schema.Page{}, err
	}
	return res.Records, res.Page, nil
}

// Detail serves the cached record for id, fetching on miss.
func (q *Queries[T]) Detail(ctx context.Context, id string) (T, error) {
	key := q.keys.Detail(id)
	q.trackKey(ctx, key)

	return querycache.GetOrFetch(ctx, q.cache, key,
		querycache.WithRetry(q.retry, q.retryable, func(ctx context.Context) (T, error) {
			return q.detailFn(ctx, id)
		}))
}

// InvalidateLists evicts every cached list query for the entity, pages
// included. Derived aggregates (counts, groupings) become consistent
// on the next read.
func (q *Queries[T]) InvalidateLists(ctx context.Context) error {
	return q.invalidatePrefix(ctx, q.keys.Lists())
}

// InvalidateDetail evicts the cached record for id.
func (q *Queries[T]) InvalidateDetail(ctx context.Context, id string) error {
	key := q.keys.Detail(id)
	q.registry.Delete(key.String())
	return q.cache.Delete(ctx, key.String())
}

// InvalidateAll evicts the entity's whole subtree.
func (q *Queries[T]) InvalidateAll(ctx context.Context) error {
	return q.invalidatePrefix(ctx, q.keys.All())
}

// InvalidateTags evicts every tracked key that was issued while one of
// the given cache tags was attached to the context.
func (q *Queries[T]) InvalidateTags(ctx context.Context, tags ...string) error {
	if len(tags) == 0 {
		return nil
	}
	wanted := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		wanted[tag] = struct{}{}
	}

	var stale []string
	q.registry.Range(func(key string, keyTags []string) bool {
		for _, tag := range keyTags {
			if _, ok := wanted[tag]; ok {
				stale = append(stale, key)
				break
			}
		}
		return true
	})

	for _, key := range stale {
		if err := q.cache.Delete(ctx, key); err != nil {
			q.logger.Warn().Err(err).Str("key", key).Msg("tag invalidation failed for key")
		}
		q.registry.Delete(key)
	}
	return nil
}

// TrackedListKeys returns the list-subtree keys issued so far. The
// mutation layer walks these to apply optimistic updates to every
// cached list entry.
func (q *Queries[T]) TrackedListKeys() []querycache.Key {
	prefix := q.keys.Lists()
	var keys []querycache.Key
	q.registry.Range(func(key string, _ []string) bool {
		if querycache.Key(key).IsChildOf(prefix) {
			keys = append(keys, querycache.Key(key))
		}
		return true
	})
	return keys
}

func (q *Queries[T]) invalidatePrefix(ctx context.Context, prefix querycache.Key) error {
	q.registry.Range(func(key string, _ []string) bool {
		if querycache.Key(key).IsChildOf(prefix) {
			q.registry.Delete(key)
		}
		return true
	})
	return q.cache.DeleteByPrefix(ctx, prefix.String())
}

// trackKey registers a cache key, together with any cache tags carried
// by the context, for later invalidation.
func (q *Queries[T]) trackKey(ctx context.Context, key querycache.Key) {
	tags := cacheTagsFromContext(ctx)
	q.registry.Store(key.String(), tags)
}
