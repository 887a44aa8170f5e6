package apicache

import (
	"context"
	"sync"

	"github.com/showgrid/showgrid-go/api"
	"github.com/showgrid/showgrid-go/schema"
)

// DefaultPageSize is the page size infinite queries use unless told
// otherwise.
const DefaultPageSize = 18

// InfiniteQuery accumulates pages of one list query. Each page is
// cached under its own key (an incrementing page parameter inside the
// list subtree); the query exposes the flattened records plus a
// next-page flag derived from the fetched count against the
// server-reported total.
type InfiniteQuery[T any] struct {
	queries  *Queries[T]
	filters  api.ListOptions
	pageSize int

	mu       sync.Mutex
	pages    [][]T
	lastPage schema.Page
	fetched  bool
	inFlight bool
}

// NewInfiniteQuery creates an accumulating query over the given
// filters. pageSize <= 0 selects DefaultPageSize. Limit and Offset on
// the filters are ignored; paging is driven by the page counter.
func NewInfiniteQuery[T any](queries *Queries[T], filters api.ListOptions, pageSize int) *InfiniteQuery[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	filters.Limit = 0
	filters.Offset = 0
	return &InfiniteQuery[T]{
		queries:  queries,
		filters:  filters,
		pageSize: pageSize,
	}
}

// FetchNext fetches the next page and appends it to the accumulated
// result. It is a no-op returning nil when the query is exhausted or a
// fetch is already in flight.
func (q *InfiniteQuery[T]) FetchNext(ctx context.Context) error {
	q.mu.Lock()
	if q.inFlight || (q.fetched && !q.lastPage.HasMore) {
		q.mu.Unlock()
		return nil
	}
	q.inFlight = true
	page := len(q.pages)
	q.mu.Unlock()

	records, pg, err := q.queries.ListPage(ctx, q.filters, page, q.pageSize)

	q.mu.Lock()
	defer q.mu.Unlock()
	q.inFlight = false
	if err != nil {
		return err
	}
	q.pages = append(q.pages, records)
	q.lastPage = pg
	q.fetched = true
	return nil
}

// Items returns the records of all fetched pages, flattened in fetch
// order.
func (q *InfiniteQuery[T]) Items() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	var items []T
	for _, page := range q.pages {
		items = append(items, page...)
	}
	return items
}

// HasNextPage reports whether another page exists. Before the first
// fetch it is true so the first page gets requested.
func (q *InfiniteQuery[T]) HasNextPage() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.fetched {
		return true
	}
	return q.lastPage.HasMore
}

// InFlight reports whether a page fetch is currently running.
func (q *InfiniteQuery[T]) InFlight() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.inFlight
}

// Total returns the server-reported total for the query, valid after
// the first page has been fetched.
func (q *InfiniteQuery[T]) Total() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lastPage.Total
}

// Reset drops the accumulated pages so the next FetchNext starts from
// page zero. Cached page entries are left in place; they are reused if
// still fresh.
func (q *InfiniteQuery[T]) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pages = nil
	q.lastPage = schema.Page{}
	q.fetched = false
}
