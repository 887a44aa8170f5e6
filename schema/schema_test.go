package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showgrid/showgrid-go/pkg/testsupport"
	"github.com/showgrid/showgrid-go/schema"
)

func validEvent() schema.Event {
	return schema.Event{
		Name:  "Austin Jazz Festival",
		Slug:  "austin-jazz-festival",
		City:  "Austin",
		Date:  "2026-09-12",
		URL:   "https://cdn.showgrid.dev/events/austin-jazz-festival.jpg",
		Price: 4500,
	}
}

func TestEvent_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*schema.Event)
		wantErr bool
	}{
		{name: "valid", mutate: func(*schema.Event) {}},
		{name: "missing name", mutate: func(e *schema.Event) { e.Name = "" }, wantErr: true},
		{name: "missing slug", mutate: func(e *schema.Event) { e.Slug = "" }, wantErr: true},
		{name: "missing city", mutate: func(e *schema.Event) { e.City = "" }, wantErr: true},
		{name: "missing date", mutate: func(e *schema.Event) { e.Date = "" }, wantErr: true},
		{name: "malformed url", mutate: func(e *schema.Event) { e.URL = "not a url" }, wantErr: true},
		{name: "empty url is allowed", mutate: func(e *schema.Event) { e.URL = "" }},
		{name: "negative price", mutate: func(e *schema.Event) { e.Price = -1 }, wantErr: true},
		{name: "free event", mutate: func(e *schema.Event) { e.Price = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEvent()
			tt.mutate(&e)
			err := e.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCity_Validate(t *testing.T) {
	city := schema.City{Name: "Austin", Slug: "austin-tx"}
	assert.NoError(t, city.Validate())

	city.Slug = ""
	assert.Error(t, city.Validate())
}

func TestCity_JSONFieldAdaptation(t *testing.T) {
	payload := []byte(`{"city":"Austin","citySlug":"austin-tx","url":"https://cdn.showgrid.dev/cities/austin.jpg"}`)

	city, err := schema.DecodeCity(payload)
	require.NoError(t, err)
	assert.Equal(t, "Austin", city.Name)
	assert.Equal(t, "austin-tx", city.Slug)
}

func TestDecodeEvent_WrappedAndBare(t *testing.T) {
	bare := []byte(`{"name":"Austin Jazz Festival","slug":"austin-jazz-festival","city":"Austin","date":"2026-09-12","price":4500}`)
	wrapped := []byte(`{"event":{"name":"Austin Jazz Festival","slug":"austin-jazz-festival","city":"Austin","date":"2026-09-12","price":4500}}`)

	fromBare, err := schema.DecodeEvent(bare)
	require.NoError(t, err)

	fromWrapped, err := schema.DecodeEvent(wrapped)
	require.NoError(t, err)

	assert.Equal(t, fromBare, fromWrapped)
	assert.Equal(t, "austin-jazz-festival", fromBare.Slug)
}

func TestDecodeEvent_RejectsInvalidPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: `not json at all`},
		{name: "missing required fields", payload: `{"name":"No Slug"}`},
		{name: "wrapped invalid record", payload: `{"event":{"slug":"only-a-slug"}}`},
		{name: "negative price", payload: `{"name":"X","slug":"x","city":"Austin","date":"2026-01-01","price":-5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.DecodeEvent([]byte(tt.payload))
			assert.Error(t, err)
		})
	}
}

func TestDecodeEventList_Fixture(t *testing.T) {
	data := testsupport.LoadFixture(t, testsupport.FixturePath("event_list.json"))

	list, err := schema.DecodeEventList(data)
	require.NoError(t, err)

	assert.Equal(t, 3, list.Count)
	require.Len(t, list.Events, 3)
	assert.Equal(t, "austin-jazz-festival", list.Events[0].Slug)
	require.NotNil(t, list.Pagination)
	assert.False(t, list.Pagination.HasMore)
}

func TestDecodeEventList_RejectsInvalidRecord(t *testing.T) {
	payload := []byte(`{"count":1,"events":[{"slug":"missing-everything-else"}]}`)
	_, err := schema.DecodeEventList(payload)
	assert.Error(t, err)
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		limit    int
		offset   int
		fetched  int
		reported *schema.Pagination
		wantMore bool
	}{
		{name: "server flag wins true", total: 10, limit: 5, offset: 0, fetched: 5, reported: &schema.Pagination{HasMore: true}, wantMore: true},
		{name: "server flag wins false", total: 100, limit: 5, offset: 0, fetched: 5, reported: &schema.Pagination{HasMore: false}, wantMore: false},
		{name: "derived has more", total: 20, limit: 18, offset: 0, fetched: 18, wantMore: true},
		{name: "derived exhausted", total: 20, limit: 18, offset: 18, fetched: 2, wantMore: false},
		{name: "exact boundary", total: 18, limit: 18, offset: 0, fetched: 18, wantMore: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := schema.NewPage(tt.total, tt.limit, tt.offset, tt.fetched, tt.reported)
			assert.Equal(t, tt.wantMore, page.HasMore)
			assert.Equal(t, tt.total, page.Total)
			assert.Equal(t, tt.offset, page.Offset)
		})
	}
}
