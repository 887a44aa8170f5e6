package api

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/showgrid/showgrid-go/client"
	"github.com/showgrid/showgrid-go/schema"
)

const (
	eventsPath      = "/api/events"
	adminEventsPath = "/api/admin/events"
)

// EventsService is the facade over the events endpoints. It builds
// query parameters from typed options, validates response payloads
// against the schema and adapts backend envelopes into domain shapes.
// Failures surface as *client.Error; nothing is retried here.
type EventsService struct {
	client *client.Client
	logger zerolog.Logger
}

// NewEventsService creates the events facade.
func NewEventsService(c *client.Client, logger zerolog.Logger) *EventsService {
	return &EventsService{
		client: c,
		logger: logger.With().Str("component", "api.events").Logger(),
	}
}

// List fetches events matching the options and unwraps the
// {count, events} envelope into a flat list plus pagination metadata.
func (s *EventsService) List(ctx context.Context, opts ListOptions) ([]schema.Event, schema.Page, error) {
	resp, err := s.client.Get(ctx, eventsPath, &client.RequestOptions{Params: opts.Values()})
	if err != nil {
		return nil, schema.Page{}, err
	}

	list, err := schema.DecodeEventList(resp.Data)
	if err != nil {
		return nil, schema.Page{}, client.ValidationError(err)
	}

	page := schema.NewPage(list.Count, opts.Limit, opts.Offset, len(list.Events), list.Pagination)
	return list.Events, page, nil
}

// Get fetches a single event by slug.
func (s *EventsService) Get(ctx context.Context, slug string) (schema.Event, error) {
	resp, err := s.client.Get(ctx, fmt.Sprintf("%s/%s", eventsPath, slug), nil)
	if err != nil {
		return schema.Event{}, err
	}

	event, err := schema.DecodeEvent(resp.Data)
	if err != nil {
		return schema.Event{}, client.ValidationError(err)
	}
	return event, nil
}

// Create creates a new event through the admin endpoint. The record is
// validated locally before it goes over the wire.
func (s *EventsService) Create(ctx context.Context, event schema.Event) (schema.Event, error) {
	if err := event.Validate(); err != nil {
		return schema.Event{}, client.ValidationError(err)
	}

	resp, err := s.client.Post(ctx, adminEventsPath, &client.RequestOptions{Body: event})
	if err != nil {
		return schema.Event{}, err
	}

	created, err := schema.DecodeEvent(resp.Data)
	if err != nil {
		return schema.Event{}, client.ValidationError(err)
	}

	s.logger.Debug().Str("slug", created.Slug).Msg("event created")
	return created, nil
}

// Update replaces the event identified by slug.
func (s *EventsService) Update(ctx context.Context, slug string, event schema.Event) (schema.Event, error) {
	if err := event.Validate(); err != nil {
		return schema.Event{}, client.ValidationError(err)
	}

	resp, err := s.client.Put(ctx, fmt.Sprintf("%s/%s", adminEventsPath, slug), &client.RequestOptions{Body: event})
	if err != nil {
		return schema.Event{}, err
	}

	updated, err := schema.DecodeEvent(resp.Data)
	if err != nil {
		return schema.Event{}, client.ValidationError(err)
	}

	s.logger.Debug().Str("slug", slug).Msg("event updated")
	return updated, nil
}

// Delete removes the event identified by slug.
func (s *EventsService) Delete(ctx context.Context, slug string) error {
	if _, err := s.client.Delete(ctx, fmt.Sprintf("%s/%s", adminEventsPath, slug), nil); err != nil {
		return err
	}
	s.logger.Debug().Str("slug", slug).Msg("event deleted")
	return nil
}
