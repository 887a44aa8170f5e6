// Package apicache layers a stale-while-revalidate query cache over
// the Showgrid API facades: cache-backed reads, accumulating infinite
// queries, and mutations with optimistic updates and rollback.
//
// # Queries
//
// Each entity gets a Queries instance whose reads flow through the
// cache service. Fresh entries are served directly; stale entries are
// served while a background refetch runs; misses fetch with retries.
// Keys follow the querycache factory hierarchy, so list and detail
// queries live in separate subtrees of one entity namespace:
//
//	events := apicache.NewEvents(cacheService, eventsAPI, logger)
//	list, page, err := events.List(ctx, api.ListOptions{Search: "austin"})
//	one, err := events.Detail(ctx, "some-slug")
//
// A query can be gated on its inputs. A search screen typically skips
// fetching until the search string is non-empty:
//
//	cities := apicache.NewCities(cacheService, citiesAPI, logger,
//		apicache.WithEnabled[schema.City](func(opts api.ListOptions) bool {
//			return opts.Search != ""
//		}))
//
// Gated-off queries return querycache.ErrDisabled without touching the
// cache or the network.
//
// # Mutations
//
// Writes run a three-phase state machine (idle → mutating →
// success|error). Before the server call, the current cache state of
// every touched key is snapshotted into an explicit transaction record
// and the speculative value is written synchronously; a caller
// observing the cache right after the call starts already sees the
// mutation applied. A server failure restores the snapshots verbatim.
// Settlement always invalidates the affected key so a value written by
// a racing fetch cannot outlive the mutation:
//
//	if err := events.Delete(ctx, "some-slug"); err != nil {
//		// every cached list shows the record again
//	}
//
// # Infinite queries
//
// InfiniteQuery accumulates pages under incrementing page keys and
// flattens them; AutoPager drives it from sentinel-visibility signals
// with debouncing:
//
//	feed := events.Infinite(api.ListOptions{}, 18)
//	pager := apicache.NewAutoPager(ctx, feed, 0, logger)
//	defer pager.Stop()
//	// call pager.Notify() whenever the list end scrolls into view
package apicache
