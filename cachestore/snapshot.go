package cachestore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/showgrid/showgrid-go/querycache"
)

// Snapshot is the serialized form of the query cache: every entry
// msgpack-encoded under its key, stamped with a buster token and the
// save time. A snapshot whose buster does not match the current one,
// or that is older than the configured ceiling, is discarded on load.
type Snapshot struct {
	Buster  string            `msgpack:"buster"`
	SavedAt time.Time         `msgpack:"saved_at"`
	Entries map[string][]byte `msgpack:"entries"`
}

// Store persists snapshots. Load's second return is false when no
// snapshot exists yet.
type Store interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (Snapshot, bool, error)
}

// DecodeFn rebuilds the typed cache value for one entry from its
// msgpack bytes.
type DecodeFn func(data []byte) (any, error)

// Decoder rebuilds typed values for all keys under one prefix. Cache
// values are stored as any, so hydration needs to know the concrete
// type per subtree; each entity registers a decoder for its keys.
type Decoder struct {
	Prefix string
	Decode DecodeFn
}

// TypedDecoder builds a Decoder that decodes every entry under prefix
// into T.
func TypedDecoder[T any](prefix querycache.Key) Decoder {
	return Decoder{
		Prefix: prefix.String(),
		Decode: func(data []byte) (any, error) {
			var value T
			if err := msgpack.Unmarshal(data, &value); err != nil {
				return nil, err
			}
			return value, nil
		},
	}
}

// Persister moves the query cache in and out of a Store. Failures on
// the load path never surface as errors: a missing, corrupt, stale or
// mismatched snapshot simply yields an empty cache.
type Persister struct {
	cache    querycache.CacheService
	store    Store
	buster   string
	maxAge   time.Duration
	decoders []Decoder
	logger   zerolog.Logger
	now      func() time.Time
}

// NewPersister creates a persister. buster identifies the current
// schema version; bumping it invalidates every previously saved
// snapshot. maxAge <= 0 disables the age ceiling.
func NewPersister(cache querycache.CacheService, store Store, buster string, maxAge time.Duration, logger zerolog.Logger) *Persister {
	return &Persister{
		cache:  cache,
		store:  store,
		buster: buster,
		maxAge: maxAge,
		logger: logger.With().Str("component", "cachestore").Logger(),
		now:    time.Now,
	}
}

// Register adds decoders for hydration. Longer prefixes win when
// several match a key, so a list-subtree decoder and a detail-subtree
// decoder can coexist under one entity namespace.
func (p *Persister) Register(decoders ...Decoder) {
	p.decoders = append(p.decoders, decoders...)
	sort.SliceStable(p.decoders, func(i, j int) bool {
		return len(p.decoders[i].Prefix) > len(p.decoders[j].Prefix)
	})
}

// Dehydrate serializes the current cache content into the store.
// Entries that cannot be encoded are skipped rather than failing the
// whole snapshot.
func (p *Persister) Dehydrate(ctx context.Context) error {
	keys, err := p.cache.Keys(ctx, "")
	if err != nil {
		return err
	}

	snap := Snapshot{
		Buster:  p.buster,
		SavedAt: p.now(),
		Entries: make(map[string][]byte, len(keys)),
	}

	for _, key := range keys {
		value, ok := p.cache.Get(ctx, key)
		if !ok || value == nil {
			continue
		}
		encoded, err := msgpack.Marshal(value)
		if err != nil {
			p.logger.Warn().Err(err).Str("key", key).Msg("skipping unencodable entry")
			continue
		}
		snap.Entries[key] = encoded
	}

	return p.store.Save(ctx, snap)
}

// Hydrate restores a previously saved snapshot into the cache. Guard
// rails: buster mismatch, age past the ceiling and undecodable
// snapshots all fall back to an empty cache without error; individual
// entries that fail to decode are skipped.
func (p *Persister) Hydrate(ctx context.Context) error {
	snap, found, err := p.store.Load(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("snapshot unreadable, starting with empty cache")
		return nil
	}
	if !found {
		return nil
	}

	if snap.Buster != p.buster {
		p.logger.Info().
			Str("snapshot_buster", snap.Buster).
			Str("current_buster", p.buster).
			Msg("discarding snapshot with stale buster")
		return nil
	}

	if p.maxAge > 0 && p.now().Sub(snap.SavedAt) > p.maxAge {
		p.logger.Info().Time("saved_at", snap.SavedAt).Msg("discarding snapshot past max age")
		return nil
	}

	restored := 0
	for key, data := range snap.Entries {
		decode := p.decoderFor(key)
		if decode == nil {
			continue
		}
		value, err := decode(data)
		if err != nil {
			p.logger.Warn().Err(err).Str("key", key).Msg("skipping undecodable entry")
			continue
		}
		if err := p.cache.Set(ctx, key, value); err != nil {
			return err
		}
		restored++
	}

	p.logger.Debug().Int("entries", restored).Msg("cache hydrated")
	return nil
}

func (p *Persister) decoderFor(key string) DecodeFn {
	for _, d := range p.decoders {
		if strings.HasPrefix(key, d.Prefix) {
			return d.Decode
		}
	}
	return nil
}
