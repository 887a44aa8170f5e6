package apicache

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/showgrid/showgrid-go/api"
	"github.com/showgrid/showgrid-go/client"
	"github.com/showgrid/showgrid-go/querycache"
	"github.com/showgrid/showgrid-go/schema"
)

// UpdateCityVars carries the originating variables of a city update.
type UpdateCityVars struct {
	Slug string
	City schema.City
}

// Cities bundles the cache-backed read side and the optimistic write
// side for cities, mirroring Events.
type Cities struct {
	*Queries[schema.City]

	svc *api.CitiesService

	create *Mutation[schema.City, schema.City]
	update *Mutation[UpdateCityVars, schema.City]
	delete *Mutation[string, struct{}]
}

// NewCities wires the cities facade into the cache. The usual gate for
// city search screens is WithEnabled on a non-empty Search, so typing
// into an empty search box does not fire requests.
func NewCities(cache querycache.CacheService, svc *api.CitiesService, logger zerolog.Logger, opts ...QueryOption[schema.City]) *Cities {
	queries := NewQueries("cities", cache,
		svc.List,
		svc.Get,
		client.IsRetryable,
		logger,
		opts...,
	)

	c := &Cities{Queries: queries, svc: svc}
	keys := queries.Keys()

	c.create = NewMutation(cache, logger, MutationConfig[schema.City, schema.City]{
		MutateFn: svc.Create,
		Confirm: func(ctx context.Context, _ schema.City, created schema.City) error {
			return cache.Set(ctx, keys.Detail(created.Slug).String(), created)
		},
		Invalidate: func(ctx context.Context, _ schema.City, _ schema.City) error {
			return queries.InvalidateLists(ctx)
		},
	})

	c.update = NewMutation(cache, logger, MutationConfig[UpdateCityVars, schema.City]{
		MutateFn: func(ctx context.Context, vars UpdateCityVars) (schema.City, error) {
			return svc.Update(ctx, vars.Slug, vars.City)
		},
		AffectedKey: func(vars UpdateCityVars) querycache.Key {
			return keys.Detail(vars.Slug)
		},
		Optimistic: func(ctx context.Context, txn *Txn, vars UpdateCityVars) error {
			if err := txn.Set(ctx, keys.Detail(vars.Slug), vars.City); err != nil {
				return err
			}
			return replaceInCachedLists(ctx, txn, queries, citySlug, vars.Slug, vars.City)
		},
		Invalidate: func(ctx context.Context, _ UpdateCityVars, _ schema.City) error {
			return queries.InvalidateLists(ctx)
		},
	})

	c.delete = NewMutation(cache, logger, MutationConfig[string, struct{}]{
		MutateFn: func(ctx context.Context, slug string) (struct{}, error) {
			return struct{}{}, svc.Delete(ctx, slug)
		},
		AffectedKey: func(slug string) querycache.Key {
			return keys.Detail(slug)
		},
		Optimistic: func(ctx context.Context, txn *Txn, slug string) error {
			return removeFromCachedLists(ctx, txn, queries, citySlug, slug)
		},
		Confirm: func(ctx context.Context, _ string, _ struct{}) error {
			return nil
		},
		Invalidate: func(ctx context.Context, _ string, _ struct{}) error {
			return queries.InvalidateLists(ctx)
		},
	})

	return c
}

func citySlug(c schema.City) string { return c.Slug }

// Create creates a city and primes the cache with the confirmed record.
func (c *Cities) Create(ctx context.Context, city schema.City) (schema.City, error) {
	return c.create.Mutate(ctx, city)
}

// Update replaces the city optimistically.
func (c *Cities) Update(ctx context.Context, slug string, city schema.City) (schema.City, error) {
	return c.update.Mutate(ctx, UpdateCityVars{Slug: slug, City: city})
}

// Delete removes the city optimistically from every cached list.
func (c *Cities) Delete(ctx context.Context, slug string) error {
	_, err := c.delete.Mutate(ctx, slug)
	return err
}

// Infinite returns an accumulating query over the filters.
func (c *Cities) Infinite(filters api.ListOptions, pageSize int) *InfiniteQuery[schema.City] {
	return NewInfiniteQuery(c.Queries, filters, pageSize)
}

// DeleteState exposes the delete mutation state machine.
func (c *Cities) DeleteState() *Mutation[string, struct{}] { return c.delete }
