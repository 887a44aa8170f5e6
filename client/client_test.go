package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showgrid/showgrid-go/client"
)

func newClient(t *testing.T, baseURL string) *client.Client {
	t.Helper()
	c, err := client.New(baseURL, nil, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := client.New("", nil, zerolog.Nop())
	assert.Error(t, err)

	_, err = client.New("   ", nil, zerolog.Nop())
	assert.Error(t, err)
}

func TestClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/events", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count":0,"events":[]}`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	resp, err := c.Get(context.Background(), "/api/events", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"count":0,"events":[]}`, string(resp.Data))
}

func TestClient_DropsEmptyQueryParams(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	params := url.Values{}
	params.Set("search", "austin")
	params.Set("order", "")
	params.Set("limit", "18")

	c := newClient(t, srv.URL)
	_, err := c.Get(context.Background(), "/api/events", &client.RequestOptions{Params: params})
	require.NoError(t, err)

	assert.Equal(t, "austin", gotQuery.Get("search"))
	assert.Equal(t, "18", gotQuery.Get("limit"))
	assert.False(t, gotQuery.Has("order"), "empty parameter should be dropped")
}

func TestClient_PostEncodesBody(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	resp, err := c.Post(context.Background(), "/api/admin/events", &client.RequestOptions{
		Body: map[string]string{"name": "Austin Jazz Fest"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, "Austin Jazz Fest", gotBody["name"])
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		status    int
		code      client.ErrorCode
		retryable bool
	}{
		{status: http.StatusBadRequest, code: client.CodeValidation, retryable: false},
		{status: http.StatusUnauthorized, code: client.CodeAuth, retryable: false},
		{status: http.StatusForbidden, code: client.CodeAuth, retryable: false},
		{status: http.StatusNotFound, code: client.CodeNotFound, retryable: false},
		{status: http.StatusUnprocessableEntity, code: client.CodeValidation, retryable: false},
		{status: http.StatusTooManyRequests, code: client.CodeRateLimited, retryable: true},
		{status: http.StatusInternalServerError, code: client.CodeServer, retryable: true},
		{status: http.StatusBadGateway, code: client.CodeServer, retryable: true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := newClient(t, srv.URL)
			_, err := c.Get(context.Background(), "/api/events", nil)
			require.Error(t, err)

			var apiErr *client.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.retryable, client.IsRetryable(err))
		})
	}
}

func TestClient_ErrorDetailsFromBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"slug is already taken"}`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	_, err := c.Post(context.Background(), "/api/admin/events", nil)

	var apiErr *client.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "slug is already taken", apiErr.Details)
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := newClient(t, srv.URL)
	_, err := c.Get(context.Background(), "/api/events", nil)

	var apiErr *client.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, client.CodeNetwork, apiErr.Code)
	assert.True(t, client.IsRetryable(err))
	assert.False(t, client.IsNotFound(err))
}

func TestIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	_, err := c.Get(context.Background(), "/api/events/nope", nil)
	assert.True(t, client.IsNotFound(err))
}
