// Package querycache provides the ports and key machinery for the
// cached query layer.
//
// # Overview
//
// The package exports the pieces the rest of the module builds on:
//
//   - CacheService: the cache backend contract (read-through fetch,
//     direct reads/writes, key and subtree invalidation)
//   - KeyFactory: hierarchical cache keys (all → lists → list(filters)
//     → details → detail(id)) sharing a prefix per subtree
//   - KeyCodec: deterministic filter encoding with unset-field stripping
//   - RetryPolicy: exponential backoff for retryable fetch failures
//
// # Keys
//
// Keys are ordered tuples of segments joined by "::". Each factory
// level appends one discriminant segment, so invalidating "events::list"
// by prefix drops every cached list query while leaving details alone:
//
//	events := querycache.Keys("events")
//	events.All()                 // events
//	events.Lists()               // events::list
//	events.List(filters)         // events::list::struct:{Search:austin}
//	events.Detail("some-slug")   // events::detail::some-slug
//
// Filter encoding strips zero-valued fields before folding them into
// the key, so a filter struct with only Search set and one that also
// carries explicit zero Limit/Offset produce the same key and share a
// cache entry.
//
// # Fetching
//
// The typed helpers keep call sites free of assertions:
//
//	list, err := querycache.GetOrFetch(ctx, service, key, func(ctx context.Context) (schema.EventList, error) {
//		return api.List(ctx, opts)
//	})
//
// Concurrent fetches for the same key are deduplicated by the backend
// to a single in-flight request.
//
// # See Also
//
// The apicache package layers queries, infinite pagination and
// optimistic mutations on top of these ports. The internal/cacheinfra
// package holds the default sturdyc-backed CacheService.
package querycache
