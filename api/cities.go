package api

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/showgrid/showgrid-go/client"
	"github.com/showgrid/showgrid-go/schema"
)

const (
	citiesPath      = "/api/cities"
	adminCitiesPath = "/api/admin/cities"
)

// CitiesService is the facade over the cities endpoints. Same contract
// as EventsService: typed options in, validated domain shapes out.
type CitiesService struct {
	client *client.Client
	logger zerolog.Logger
}

// NewCitiesService creates the cities facade.
func NewCitiesService(c *client.Client, logger zerolog.Logger) *CitiesService {
	return &CitiesService{
		client: c,
		logger: logger.With().Str("component", "api.cities").Logger(),
	}
}

// List fetches cities matching the options and unwraps the
// {count, cities} envelope.
func (s *CitiesService) List(ctx context.Context, opts ListOptions) ([]schema.City, schema.Page, error) {
	resp, err := s.client.Get(ctx, citiesPath, &client.RequestOptions{Params: opts.Values()})
	if err != nil {
		return nil, schema.Page{}, err
	}

	list, err := schema.DecodeCityList(resp.Data)
	if err != nil {
		return nil, schema.Page{}, client.ValidationError(err)
	}

	page := schema.NewPage(list.Count, opts.Limit, opts.Offset, len(list.Cities), list.Pagination)
	return list.Cities, page, nil
}

// Get fetches a single city by slug.
func (s *CitiesService) Get(ctx context.Context, slug string) (schema.City, error) {
	resp, err := s.client.Get(ctx, fmt.Sprintf("%s/%s", citiesPath, slug), nil)
	if err != nil {
		return schema.City{}, err
	}

	city, err := schema.DecodeCity(resp.Data)
	if err != nil {
		return schema.City{}, client.ValidationError(err)
	}
	return city, nil
}

// Create creates a new city through the admin endpoint.
func (s *CitiesService) Create(ctx context.Context, city schema.City) (schema.City, error) {
	if err := city.Validate(); err != nil {
		return schema.City{}, client.ValidationError(err)
	}

	resp, err := s.client.Post(ctx, adminCitiesPath, &client.RequestOptions{Body: city})
	if err != nil {
		return schema.City{}, err
	}

	created, err := schema.DecodeCity(resp.Data)
	if err != nil {
		return schema.City{}, client.ValidationError(err)
	}

	s.logger.Debug().Str("slug", created.Slug).Msg("city created")
	return created, nil
}

// Update replaces the city identified by slug.
func (s *CitiesService) Update(ctx context.Context, slug string, city schema.City) (schema.City, error) {
	if err := city.Validate(); err != nil {
		return schema.City{}, client.ValidationError(err)
	}

	resp, err := s.client.Put(ctx, fmt.Sprintf("%s/%s", adminCitiesPath, slug), &client.RequestOptions{Body: city})
	if err != nil {
		return schema.City{}, err
	}

	updated, err := schema.DecodeCity(resp.Data)
	if err != nil {
		return schema.City{}, client.ValidationError(err)
	}

	s.logger.Debug().Str("slug", slug).Msg("city updated")
	return updated, nil
}

// Delete removes the city identified by slug.
func (s *CitiesService) Delete(ctx context.Context, slug string) error {
	if _, err := s.client.Delete(ctx, fmt.Sprintf("%s/%s", adminCitiesPath, slug), nil); err != nil {
		return err
	}
	s.logger.Debug().Str("slug", slug).Msg("city deleted")
	return nil
}
