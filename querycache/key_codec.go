package querycache

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// maxSegmentLen bounds the length of a single encoded filter segment.
// Longer segments are replaced by their xxhash so arbitrarily large
// filter objects cannot produce unbounded keys. Determinism is
// preserved: equal inputs hash to equal segments.
const maxSegmentLen = 128

// defaultKeyCodec implements KeyCodec using reflection-based
// serialization. Zero-valued optional fields are stripped before
// encoding so that omitted filters do not fragment the cache: two
// filter structs that differ only in unset fields encode identically.
type defaultKeyCodec struct{}

// NewDefaultKeyCodec creates a new instance of the default key codec.
func NewDefaultKeyCodec() KeyCodec {
	return &defaultKeyCodec{}
}

// EncodeFilters produces a stable string segment for an arbitrary
// filter value. Encoding is a pure function of the input: maps are
// sorted, struct fields are walked in declaration order, and nested
// values are encoded recursively.
func (c *defaultKeyCodec) EncodeFilters(filters any) string {
	encoded := c.encodeValue(filters)
	if len(encoded) > maxSegmentLen {
		return fmt.Sprintf("h:%016x", xxhash.Sum64String(encoded))
	}
	return encoded
}

// encodeValue handles individual value serialization based on type.
func (c *defaultKeyCodec) encodeValue(v any) string {
	if v == nil {
		return "nil"
	}

	rv := reflect.ValueOf(v)
	rt := reflect.TypeOf(v)

	switch rt.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return "nil"
		}
		return c.encodeValue(rv.Elem().Interface())

	case reflect.Slice:
		if rv.IsNil() {
			return "slice:nil"
		}
		return c.encodeSequence("slice", rv)

	case reflect.Array:
		return c.encodeSequence("array", rv)

	case reflect.Map:
		if rv.IsNil() {
			return "map:nil"
		}
		return c.encodeMap(rv)

	case reflect.Struct:
		return c.encodeStruct(rv, rt)

	case reflect.Interface:
		if rv.IsNil() {
			return "interface:nil"
		}
		return c.encodeValue(rv.Elem().Interface())
	}

	if isBasicKind(rt.Kind()) {
		return fmt.Sprintf("%v", v)
	}

	return c.jsonFallback(v)
}

// encodeSequence handles slice and array serialization recursively.
func (c *defaultKeyCodec) encodeSequence(label string, rv reflect.Value) string {
	length := rv.Len()
	parts := make([]string, length)

	for i := 0; i < length; i++ {
		parts[i] = c.encodeValue(rv.Index(i).Interface())
	}

	return fmt.Sprintf("%s[%d]:{%s}", label, length, strings.Join(parts, ","))
}

// encodeMap handles map serialization with sorted keys for determinism.
// Entries whose value is the zero value of its type are stripped, the
// same way unset struct fields are.
func (c *defaultKeyCodec) encodeMap(rv reflect.Value) string {
	type pair struct {
		key   string
		value string
	}

	var pairs []pair
	iter := rv.MapRange()
	for iter.Next() {
		value := iter.Value()
		if isZeroValue(value) {
			continue
		}
		pairs = append(pairs, pair{
			key:   c.encodeValue(iter.Key().Interface()),
			value: c.encodeValue(value.Interface()),
		})
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

	encoded := make([]string, len(pairs))
	for i, p := range pairs {
		encoded[i] = fmt.Sprintf("%s=%s", p.key, p.value)
	}

	return fmt.Sprintf("map[%d]:{%s}", len(encoded), strings.Join(encoded, ","))
}

// encodeStruct handles struct serialization with field names. Unset
// fields are skipped entirely: a zero value means the filter was not
// provided, and including it would fragment otherwise-equal keys.
func (c *defaultKeyCodec) encodeStruct(rv reflect.Value, rt reflect.Type) string {
	numFields := rv.NumField()
	parts := make([]string, 0, numFields)

	for i := 0; i < numFields; i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		fieldValue := rv.Field(i)
		if !fieldValue.CanInterface() || isZeroValue(fieldValue) {
			continue
		}

		parts = append(parts, fmt.Sprintf("%s:%s", field.Name, c.encodeValue(fieldValue.Interface())))
	}

	return fmt.Sprintf("struct:{%s}", strings.Join(parts, ","))
}

// isZeroValue reports whether rv holds the zero value of its type.
// Nil pointers, empty strings, zero numbers, nil/empty slices and maps
// all count as unset for filter purposes.
func isZeroValue(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.IsNil() || rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	default:
		return rv.IsZero()
	}
}

// isBasicKind checks if a kind represents a basic Go type.
func isBasicKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return true
	default:
		return false
	}
}

// jsonFallback provides JSON serialization as a last resort.
func (c *defaultKeyCodec) jsonFallback(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		// If JSON marshaling fails, fall back to type information so
		// the key stays stable rather than panicking.
		return fmt.Sprintf("fallback:%s", reflect.TypeOf(v).String())
	}
	return fmt.Sprintf("json:%s", string(data))
}
