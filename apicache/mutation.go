package apicache

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/showgrid/showgrid-go/querycache"
)

// MutationState is the observable state of a mutation. The machine
// progresses idle → mutating → success|error; Reset (or the next
// Mutate call) returns it to idle.
type MutationState int

const (
	StateIdle MutationState = iota
	StateMutating
	StateSuccess
	StateError
)

// String returns the state name for logs.
func (s MutationState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMutating:
		return "mutating"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// writeRecord is one entry of the transaction record: the key that was
// speculatively written and the exact value (or absence) it held
// beforehand. Snapshots are explicit records threaded through the
// mutation phases, not closure-captured variables.
type writeRecord struct {
	key     string
	before  any
	existed bool
}

// Txn records the speculative writes of one mutation so they can be
// rolled back verbatim. All writes the optimistic phase performs must
// go through the Txn.
type Txn struct {
	cache   querycache.CacheService
	records []writeRecord
}

// NewTxn creates an empty transaction over the cache service. The
// mutation machinery creates one per Mutate call; standalone use is
// for custom optimistic flows.
func NewTxn(cache querycache.CacheService) *Txn {
	return &Txn{cache: cache}
}

// Set snapshots the current value for key, then writes the speculative
// value synchronously.
func (t *Txn) Set(ctx context.Context, key querycache.Key, value any) error {
	t.snapshot(ctx, key)
	return t.cache.Set(ctx, key.String(), value)
}

// Delete snapshots the current value for key, then evicts it.
func (t *Txn) Delete(ctx context.Context, key querycache.Key) error {
	t.snapshot(ctx, key)
	return t.cache.Delete(ctx, key.String())
}

func (t *Txn) snapshot(ctx context.Context, key querycache.Key) {
	// Only the first write to a key snapshots it; later writes in the
	// same transaction would otherwise capture speculative state.
	for _, r := range t.records {
		if r.key == key.String() {
			return
		}
	}
	before, existed := t.cache.Get(ctx, key.String())
	t.records = append(t.records, writeRecord{key: key.String(), before: before, existed: existed})
}

// Rollback restores every touched key to its pre-mutation value, in
// reverse write order. Keys that were absent before are evicted again.
func (t *Txn) Rollback(ctx context.Context) error {
	var firstErr error
	for i := len(t.records) - 1; i >= 0; i-- {
		r := t.records[i]
		var err error
		if r.existed {
			err = t.cache.Set(ctx, r.key, r.before)
		} else {
			err = t.cache.Delete(ctx, r.key)
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Mutation runs a server-side write with an optimistic local update.
//
// Phases, in order:
//  1. onMutate: in-flight reads for the affected key are superseded
//     (best effort; the network request is not aborted), the current
//     cache state is snapshotted into the transaction record, and the
//     speculative value is written synchronously.
//  2. the server call.
//  3. settle: the affected key is invalidated so a value written by a
//     racing fetch cannot survive, then on success the confirmed value
//     is written and related subtrees are invalidated; on failure the
//     snapshot is restored verbatim.
type Mutation[V any, T any] struct {
	cache  querycache.CacheService
	logger zerolog.Logger

	// mutateFn performs the server-side write.
	mutateFn func(ctx context.Context, vars V) (T, error)

	// affectedKey names the cache entry the mutation owns. May return
	// an empty key for create-style mutations that have no identity
	// until the server assigns one.
	affectedKey func(vars V) querycache.Key

	// optimistic applies the speculative update through the
	// transaction. Nil means no optimistic write.
	optimistic func(ctx context.Context, txn *Txn, vars V) error

	// confirm writes the server-confirmed value. Nil defaults to
	// setting the affected key.
	confirm func(ctx context.Context, vars V, result T) error

	// invalidate lists the subtrees to evict after a successful
	// mutation, typically the entity's list subtree.
	invalidate func(ctx context.Context, vars V, result T) error

	mu      sync.Mutex
	state   MutationState
	lastErr error
}

// MutationConfig assembles a Mutation. MutateFn is required; every
// other hook is optional.
type MutationConfig[V any, T any] struct {
	MutateFn    func(ctx context.Context, vars V) (T, error)
	AffectedKey func(vars V) querycache.Key
	Optimistic  func(ctx context.Context, txn *Txn, vars V) error
	Confirm     func(ctx context.Context, vars V, result T) error
	Invalidate  func(ctx context.Context, vars V, result T) error
}

// NewMutation creates a mutation bound to the cache service.
func NewMutation[V any, T any](cache querycache.CacheService, logger zerolog.Logger, cfg MutationConfig[V, T]) *Mutation[V, T] {
	return &Mutation[V, T]{
		cache:       cache,
		logger:      logger.With().Str("component", "apicache.mutation").Logger(),
		mutateFn:    cfg.MutateFn,
		affectedKey: cfg.AffectedKey,
		optimistic:  cfg.Optimistic,
		confirm:     cfg.Confirm,
		invalidate:  cfg.Invalidate,
	}
}

// State returns the current state of the mutation machine.
func (m *Mutation[V, T]) State() MutationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Err returns the failure of the last settled mutation, if any.
func (m *Mutation[V, T]) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Reset returns the machine to idle.
func (m *Mutation[V, T]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateIdle
	m.lastErr = nil
}

// Mutate runs the full mutation lifecycle for vars.
func (m *Mutation[V, T]) Mutate(ctx context.Context, vars V) (T, error) {
	var zero T

	m.transition(StateMutating, nil)
	mutationID := uuid.NewString()

	var affected querycache.Key
	if m.affectedKey != nil {
		affected = m.affectedKey(vars)
	}

	txn := NewTxn(m.cache)

	// Supersede in-flight reads for the affected key. The entry is
	// dropped so a fetch that completes later starts over instead of
	// racing the optimistic write. Routing the delete through the
	// transaction snapshots the value first, so rollback can restore it.
	if affected != "" {
		if err := txn.Delete(ctx, affected); err != nil {
			m.logger.Warn().Err(err).Str("mutation_id", mutationID).Msg("supersede failed")
		}
	}
	if m.optimistic != nil {
		if err := m.optimistic(ctx, txn, vars); err != nil {
			// The speculative write failed locally; undo whatever part
			// of it landed and surface the error without calling the
			// server.
			if rbErr := txn.Rollback(ctx); rbErr != nil {
				m.logger.Error().Err(rbErr).Str("mutation_id", mutationID).Msg("rollback failed")
			}
			m.transition(StateError, err)
			return zero, err
		}
	}

	result, err := m.mutateFn(ctx, vars)

	// Settle: drop whatever the affected key holds. A racing fetch may
	// have rewritten it while the server call was in flight; the
	// confirm/rollback below rebuilds the correct state either way.
	if affected != "" {
		if delErr := m.cache.Delete(ctx, affected.String()); delErr != nil {
			m.logger.Warn().Err(delErr).Str("mutation_id", mutationID).Msg("settle invalidation failed")
		}
	}

	if err != nil {
		if rbErr := txn.Rollback(ctx); rbErr != nil {
			m.logger.Error().Err(rbErr).Str("mutation_id", mutationID).Msg("rollback failed")
		}
		m.transition(StateError, err)
		return zero, err
	}

	if m.confirm != nil {
		if cErr := m.confirm(ctx, vars, result); cErr != nil {
			m.logger.Warn().Err(cErr).Str("mutation_id", mutationID).Msg("confirm write failed")
		}
	} else if affected != "" {
		if cErr := m.cache.Set(ctx, affected.String(), result); cErr != nil {
			m.logger.Warn().Err(cErr).Str("mutation_id", mutationID).Msg("confirm write failed")
		}
	}

	if m.invalidate != nil {
		if iErr := m.invalidate(ctx, vars, result); iErr != nil {
			m.logger.Warn().Err(iErr).Str("mutation_id", mutationID).Msg("invalidation failed")
		}
	}

	m.transition(StateSuccess, nil)
	return result, nil
}

func (m *Mutation[V, T]) transition(state MutationState, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.lastErr = err
}
