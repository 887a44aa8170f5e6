package querycache

import (
	"context"
	"errors"
)

// ErrInvalidResultType is returned when a cached value cannot be
// converted to the type the caller asked for. It indicates two callers
// share a key with incompatible types, which is a programming error.
var ErrInvalidResultType = errors.New("querycache: cached value has unexpected type")

// ErrDisabled is returned by query helpers whose enabled gate is
// closed: required inputs (e.g. a non-empty search string) are not
// present yet, so no fetch is performed and nothing is cached.
var ErrDisabled = errors.New("querycache: query is disabled")

// KeyCodec encodes filter objects into stable key segments. It is
// responsible for producing equal segments for structurally equal
// inputs after unset fields are stripped.
type KeyCodec interface {
	EncodeFilters(filters any) string
}

// FetchFn is the function signature CacheService expects when fetching
// from the source of truth.
type FetchFn[T any] func(ctx context.Context) (T, error)

// CacheService exposes the operations the query layer needs from a
// cache backend: read-through fetching, direct reads and writes for
// optimistic updates, and key-level plus subtree invalidation. It is
// exported so alternate backends can be plugged in.
type CacheService interface {
	// GetOrFetch serves the cached value for key, or executes fetchFn
	// and stores the result. Concurrent calls for the same key are
	// deduplicated to a single in-flight fetch.
	GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error)

	// Get returns the cached value for key without fetching.
	Get(ctx context.Context, key string) (any, bool)

	// Set writes value for key synchronously, replacing any cached
	// value. Used for optimistic updates and snapshot restore.
	Set(ctx context.Context, key string, value any) error

	// Delete evicts a single entry.
	Delete(ctx context.Context, key string) error

	// DeleteByPrefix evicts every entry in the subtree rooted at prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error

	// Keys lists the currently cached keys under prefix. An empty
	// prefix lists every key.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// GetOrFetch is a type-safe wrapper that provides generic support for
// CacheService.
func GetOrFetch[T any](ctx context.Context, service CacheService, key Key, fetchFn FetchFn[T]) (T, error) {
	var zero T

	result, err := service.GetOrFetch(ctx, key.String(), fetchFn)
	if err != nil {
		return zero, err
	}
	if result == nil {
		// A nil any is the zero value for interface and pointer types;
		// asserting it directly would panic.
		return zero, nil
	}

	typed, ok := result.(T)
	if !ok {
		return zero, ErrInvalidResultType
	}
	return typed, nil
}

// Lookup is a type-safe cache read without fetching. The second return
// is false when the key is absent or holds an incompatible type.
func Lookup[T any](ctx context.Context, service CacheService, key Key) (T, bool) {
	var zero T

	result, ok := service.Get(ctx, key.String())
	if !ok || result == nil {
		return zero, false
	}
	typed, ok := result.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
