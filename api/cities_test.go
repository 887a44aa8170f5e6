package api_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showgrid/showgrid-go/api"
	"github.com/showgrid/showgrid-go/client"
	"github.com/showgrid/showgrid-go/pkg/testsupport"
	"github.com/showgrid/showgrid-go/schema"
)

func seedCities() []schema.City {
	return []schema.City{
		{Name: "Austin", Slug: "austin-tx"},
		{Name: "Dallas", Slug: "dallas-tx"},
		{Name: "Houston", Slug: "houston-tx"},
	}
}

func newCitiesService(t *testing.T) (*api.CitiesService, *testsupport.FakeAPI) {
	t.Helper()
	fake := testsupport.NewFakeAPI(t)
	c, err := client.New(fake.URL(), nil, zerolog.Nop())
	require.NoError(t, err)
	return api.NewCitiesService(c, zerolog.Nop()), fake
}

func TestCitiesService_List(t *testing.T) {
	svc, fake := newCitiesService(t)
	fake.SeedCities(seedCities()...)

	cities, page, err := svc.List(context.Background(), api.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, cities, 3)
	assert.Equal(t, 3, page.Total)
}

func TestCitiesService_ListSearch(t *testing.T) {
	svc, fake := newCitiesService(t)
	fake.SeedCities(seedCities()...)

	cities, _, err := svc.List(context.Background(), api.ListOptions{Search: "austin"})
	require.NoError(t, err)
	require.Len(t, cities, 1)
	assert.Equal(t, "austin-tx", cities[0].Slug)
}

func TestCitiesService_Get(t *testing.T) {
	svc, fake := newCitiesService(t)
	fake.SeedCities(seedCities()...)

	city, err := svc.Get(context.Background(), "austin-tx")
	require.NoError(t, err)
	assert.Equal(t, "Austin", city.Name)

	_, err = svc.Get(context.Background(), "tulsa-ok")
	assert.True(t, client.IsNotFound(err))
}

func TestCitiesService_CreateUpdateDelete(t *testing.T) {
	svc, _ := newCitiesService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, schema.City{Name: "San Antonio", Slug: "san-antonio-tx"})
	require.NoError(t, err)
	assert.Equal(t, "san-antonio-tx", created.Slug)

	created.Name = "San Antonio, TX"
	updated, err := svc.Update(ctx, created.Slug, created)
	require.NoError(t, err)
	assert.Equal(t, "San Antonio, TX", updated.Name)

	require.NoError(t, svc.Delete(ctx, created.Slug))
	_, err = svc.Get(ctx, created.Slug)
	assert.True(t, client.IsNotFound(err))
}
