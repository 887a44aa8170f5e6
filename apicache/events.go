package apicache

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/showgrid/showgrid-go/api"
	"github.com/showgrid/showgrid-go/client"
	"github.com/showgrid/showgrid-go/querycache"
	"github.com/showgrid/showgrid-go/schema"
)

// UpdateEventVars carries the originating variables of an event
// update: the identity plus the replacement record.
type UpdateEventVars struct {
	Slug  string
	Event schema.Event
}

// Events bundles the cache-backed read side and the optimistic write
// side for events. Reads go through the embedded Queries; writes run
// the mutation state machines declared here.
type Events struct {
	*Queries[schema.Event]

	svc *api.EventsService

	create *Mutation[schema.Event, schema.Event]
	update *Mutation[UpdateEventVars, schema.Event]
	delete *Mutation[string, struct{}]
}

// NewEvents wires the events facade into the cache.
func NewEvents(cache querycache.CacheService, svc *api.EventsService, logger zerolog.Logger, opts ...QueryOption[schema.Event]) *Events {
	queries := NewQueries("events", cache,
		svc.List,
		svc.Get,
		client.IsRetryable,
		logger,
		opts...,
	)

	e := &Events{Queries: queries, svc: svc}
	keys := queries.Keys()

	e.create = NewMutation(cache, logger, MutationConfig[schema.Event, schema.Event]{
		MutateFn: svc.Create,
		// No affected key: the record has no identity until the server
		// assigns its slug.
		Confirm: func(ctx context.Context, _ schema.Event, created schema.Event) error {
			return cache.Set(ctx, keys.Detail(created.Slug).String(), created)
		},
		Invalidate: func(ctx context.Context, _ schema.Event, _ schema.Event) error {
			return queries.InvalidateLists(ctx)
		},
	})

	e.update = NewMutation(cache, logger, MutationConfig[UpdateEventVars, schema.Event]{
		MutateFn: func(ctx context.Context, vars UpdateEventVars) (schema.Event, error) {
			return svc.Update(ctx, vars.Slug, vars.Event)
		},
		AffectedKey: func(vars UpdateEventVars) querycache.Key {
			return keys.Detail(vars.Slug)
		},
		Optimistic: func(ctx context.Context, txn *Txn, vars UpdateEventVars) error {
			if err := txn.Set(ctx, keys.Detail(vars.Slug), vars.Event); err != nil {
				return err
			}
			return replaceInCachedLists(ctx, txn, queries, eventSlug, vars.Slug, vars.Event)
		},
		Invalidate: func(ctx context.Context, _ UpdateEventVars, _ schema.Event) error {
			return queries.InvalidateLists(ctx)
		},
	})

	e.delete = NewMutation(cache, logger, MutationConfig[string, struct{}]{
		MutateFn: func(ctx context.Context, slug string) (struct{}, error) {
			return struct{}{}, svc.Delete(ctx, slug)
		},
		AffectedKey: func(slug string) querycache.Key {
			return keys.Detail(slug)
		},
		Optimistic: func(ctx context.Context, txn *Txn, slug string) error {
			return removeFromCachedLists(ctx, txn, queries, eventSlug, slug)
		},
		// The settle-phase eviction of the detail key already reflects
		// the deletion; there is no confirmed value to write back.
		Confirm: func(ctx context.Context, _ string, _ struct{}) error {
			return nil
		},
		Invalidate: func(ctx context.Context, _ string, _ struct{}) error {
			return queries.InvalidateLists(ctx)
		},
	})

	return e
}

func eventSlug(e schema.Event) string { return e.Slug }

// Create creates an event and primes the cache with the server-
// confirmed record.
func (e *Events) Create(ctx context.Context, event schema.Event) (schema.Event, error) {
	return e.create.Mutate(ctx, event)
}

// Update replaces the event optimistically: cached detail and list
// entries show the new record immediately and revert if the server
// rejects the write.
func (e *Events) Update(ctx context.Context, slug string, event schema.Event) (schema.Event, error) {
	return e.update.Mutate(ctx, UpdateEventVars{Slug: slug, Event: event})
}

// Delete removes the event optimistically from every cached list; a
// server failure restores the lists verbatim.
func (e *Events) Delete(ctx context.Context, slug string) error {
	_, err := e.delete.Mutate(ctx, slug)
	return err
}

// Infinite returns an accumulating query over the filters.
func (e *Events) Infinite(filters api.ListOptions, pageSize int) *InfiniteQuery[schema.Event] {
	return NewInfiniteQuery(e.Queries, filters, pageSize)
}

// CreateState exposes the create mutation state machine.
func (e *Events) CreateState() *Mutation[schema.Event, schema.Event] { return e.create }

// UpdateState exposes the update mutation state machine.
func (e *Events) UpdateState() *Mutation[UpdateEventVars, schema.Event] { return e.update }

// DeleteState exposes the delete mutation state machine.
func (e *Events) DeleteState() *Mutation[string, struct{}] { return e.delete }
