package apicache

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showgrid/showgrid-go/api"
	"github.com/showgrid/showgrid-go/querycache"
	"github.com/showgrid/showgrid-go/schema"
)

func newListSurgeryFixture(t *testing.T) (querycache.CacheService, *Queries[schema.Event]) {
	t.Helper()
	cache, err := querycache.NewCacheService(querycache.DefaultConfig())
	require.NoError(t, err)
	return cache, NewQueries[schema.Event]("events", cache, nil, nil, nil, zerolog.Nop())
}

func cachedWindow() ListResult[schema.Event] {
	return ListResult[schema.Event]{
		Records: []schema.Event{
			{Name: "Event 03", Slug: "event-03", City: "Austin", Date: "2026-09-12"},
			{Name: "Event 04", Slug: "event-04", City: "Austin", Date: "2026-09-13"},
			{Name: "Event 05", Slug: "event-05", City: "Austin", Date: "2026-09-14"},
		},
		Page: schema.Page{Total: 5, Limit: 3, Offset: 2, HasMore: true},
	}
}

// A speculative removal adjusts the whole pagination block, not just
// the record slice: Total drops and HasMore is recomputed from the
// adjusted counts so the pair never disagrees.
func TestRemoveFromCachedLists_KeepsPaginationConsistent(t *testing.T) {
	cache, q := newListSurgeryFixture(t)
	ctx := context.Background()

	key := q.keys.List(api.ListOptions{})
	q.trackKey(ctx, key)
	require.NoError(t, cache.Set(ctx, key.String(), cachedWindow()))

	txn := NewTxn(cache)
	require.NoError(t, removeFromCachedLists(ctx, txn, q, eventSlug, "event-04"))

	res, ok := querycache.Lookup[ListResult[schema.Event]](ctx, cache, key)
	require.True(t, ok)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 4, res.Page.Total)
	assert.False(t, res.Page.HasMore, "offset 2 plus 2 remaining records covers a total of 4")

	// Rollback restores the window verbatim, stale-looking flag and all.
	require.NoError(t, txn.Rollback(ctx))
	res, ok = querycache.Lookup[ListResult[schema.Event]](ctx, cache, key)
	require.True(t, ok)
	assert.Equal(t, cachedWindow(), res)
}

func TestRemoveFromCachedLists_SkipsUntouchedEntries(t *testing.T) {
	cache, q := newListSurgeryFixture(t)
	ctx := context.Background()

	key := q.keys.List(api.ListOptions{Search: "austin"})
	q.trackKey(ctx, key)
	require.NoError(t, cache.Set(ctx, key.String(), cachedWindow()))

	txn := NewTxn(cache)
	require.NoError(t, removeFromCachedLists(ctx, txn, q, eventSlug, "event-99"))

	res, ok := querycache.Lookup[ListResult[schema.Event]](ctx, cache, key)
	require.True(t, ok)
	assert.Equal(t, cachedWindow(), res, "entries without the record stay byte-identical")
}

func TestReplaceInCachedLists_SwapsRecordInPlace(t *testing.T) {
	cache, q := newListSurgeryFixture(t)
	ctx := context.Background()

	key := q.keys.List(api.ListOptions{})
	q.trackKey(ctx, key)
	require.NoError(t, cache.Set(ctx, key.String(), cachedWindow()))

	replacement := schema.Event{Name: "Event 04 (Moved)", Slug: "event-04", City: "Dallas", Date: "2026-09-20"}
	txn := NewTxn(cache)
	require.NoError(t, replaceInCachedLists(ctx, txn, q, eventSlug, "event-04", replacement))

	res, ok := querycache.Lookup[ListResult[schema.Event]](ctx, cache, key)
	require.True(t, ok)
	require.Len(t, res.Records, 3)
	assert.Equal(t, replacement, res.Records[1])
	assert.Equal(t, cachedWindow().Page, res.Page, "replacement leaves pagination untouched")
}
