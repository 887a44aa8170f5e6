package schema

import (
	"encoding/json"
	"fmt"
)

// Pagination is the server-reported paging block some list envelopes
// carry alongside the total count.
type Pagination struct {
	HasMore bool `json:"hasMore"`
}

// Page is the adapted pagination metadata the facades hand to callers
// after unwrapping a list envelope.
type Page struct {
	Total   int
	Limit   int
	Offset  int
	HasMore bool
}

// hasMore resolves the next-page flag: use the server-reported flag
// when present, otherwise derive it from position against the total.
func (p Page) hasMore(fetched int, reported *Pagination) bool {
	if reported != nil {
		return reported.HasMore
	}
	return p.Offset+fetched < p.Total
}

// NewPage builds the adapted Page for a decoded list envelope.
func NewPage(total, limit, offset, fetched int, reported *Pagination) Page {
	p := Page{Total: total, Limit: limit, Offset: offset}
	p.HasMore = p.hasMore(fetched, reported)
	return p
}

// DecodeWrapped decodes a detail payload that may arrive either
// wrapped in a single-key envelope ({"event": {...}}) or as the bare
// record. The wrapped case is detected by a discriminating key check
// rather than decoding into an untyped map and passing it through.
func DecodeWrapped[T any](data []byte, wrapperKey string) (T, error) {
	var record T

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return record, fmt.Errorf("schema: malformed payload: %w", err)
	}

	if inner, ok := probe[wrapperKey]; ok && len(probe) == 1 {
		if err := json.Unmarshal(inner, &record); err != nil {
			return record, fmt.Errorf("schema: malformed %s envelope: %w", wrapperKey, err)
		}
		return record, nil
	}

	if err := json.Unmarshal(data, &record); err != nil {
		return record, fmt.Errorf("schema: malformed record: %w", err)
	}
	return record, nil
}

// DecodeEvent decodes and validates a single event payload, wrapped
// or unwrapped.
func DecodeEvent(data []byte) (Event, error) {
	event, err := DecodeWrapped[Event](data, "event")
	if err != nil {
		return Event{}, err
	}
	if err := event.Validate(); err != nil {
		return Event{}, fmt.Errorf("schema: invalid event: %w", err)
	}
	return event, nil
}

// DecodeCity decodes and validates a single city payload, wrapped
// or unwrapped.
func DecodeCity(data []byte) (City, error) {
	city, err := DecodeWrapped[City](data, "city")
	if err != nil {
		return City{}, err
	}
	if err := city.Validate(); err != nil {
		return City{}, fmt.Errorf("schema: invalid city: %w", err)
	}
	return city, nil
}

// DecodeEventList decodes and validates a list envelope of events.
func DecodeEventList(data []byte) (EventList, error) {
	var list EventList
	if err := json.Unmarshal(data, &list); err != nil {
		return EventList{}, fmt.Errorf("schema: malformed event list: %w", err)
	}
	if err := list.Validate(); err != nil {
		return EventList{}, fmt.Errorf("schema: invalid event list: %w", err)
	}
	return list, nil
}

// DecodeCityList decodes and validates a list envelope of cities.
func DecodeCityList(data []byte) (CityList, error) {
	var list CityList
	if err := json.Unmarshal(data, &list); err != nil {
		return CityList{}, fmt.Errorf("schema: malformed city list: %w", err)
	}
	if err := list.Validate(); err != nil {
		return CityList{}, fmt.Errorf("schema: invalid city list: %w", err)
	}
	return list, nil
}
