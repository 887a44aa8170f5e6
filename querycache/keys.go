package querycache

import "strings"

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// Key is a hierarchical cache key. Keys are ordered tuples of segments
// joined by KeySeparator; every level of the factory appends one
// discriminant segment to its parent, so invalidation can target a
// whole subtree by prefix or a single entry by full key.
type Key string

// String returns the key as the plain string the cache service expects.
func (k Key) String() string { return string(k) }

// IsChildOf reports whether k sits inside the subtree rooted at parent.
// A key is considered part of its own subtree.
func (k Key) IsChildOf(parent Key) bool {
	if k == parent {
		return true
	}
	return strings.HasPrefix(string(k), string(parent)+KeySeparator)
}

// KeyFactory produces cache keys for one entity namespace. Keys are
// pure functions of their inputs: two factories for the same entity
// with the same codec always produce byte-equal keys for structurally
// equal arguments.
type KeyFactory struct {
	entity string
	codec  KeyCodec
}

// Keys returns a key factory for the given entity namespace using the
// default filter codec. The namespace is normalized (lowercased,
// punctuation stripped) so reflected type names and hand-written
// entity strings land in the same subtree.
func Keys(entity string) KeyFactory {
	return NewKeyFactory(entity, NewDefaultKeyCodec())
}

// NewKeyFactory returns a key factory with an explicit filter codec.
func NewKeyFactory(entity string, codec KeyCodec) KeyFactory {
	return KeyFactory{entity: normalizeSegment(entity), codec: codec}
}

// All returns the root key of the entity subtree. Invalidating it by
// prefix drops every cached query for the entity.
func (f KeyFactory) All() Key {
	return Key(f.entity)
}

// Lists returns the root of the list-query subtree.
func (f KeyFactory) Lists() Key {
	return f.All() + KeySeparator + "list"
}

// List returns the key for one list query. Filters are normalized by
// the codec (zero-valued optional fields stripped, deterministic
// ordering) before being folded in, so logically identical queries
// share a cache entry.
func (f KeyFactory) List(filters any) Key {
	return f.Lists() + KeySeparator + Key(f.codec.EncodeFilters(filters))
}

// ListPage returns the key for one page of an accumulating list query.
// The page size is a key discriminant alongside the page number: two
// queries over the same filters with different page sizes fetch
// different windows and must not share entries.
func (f KeyFactory) ListPage(filters any, page, pageSize int) Key {
	return f.List(filters) + KeySeparator + "page" + KeySeparator +
		Key(f.codec.EncodeFilters(pageSize)) + KeySeparator + Key(f.codec.EncodeFilters(page))
}

// Details returns the root of the detail-query subtree.
func (f KeyFactory) Details() Key {
	return f.All() + KeySeparator + "detail"
}

// Detail returns the key for a single record identified by id.
func (f KeyFactory) Detail(id string) Key {
	return f.Details() + KeySeparator + Key(id)
}
