package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

// Client is a thin adapter over net/http that builds request URLs,
// encodes JSON bodies and normalizes every failure into *Error. It
// performs no retries and no timeout handling beyond whatever the
// supplied http.Client is configured with.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// RequestOptions carries the optional pieces of a request: query
// parameters and a JSON-encodable body.
type RequestOptions struct {
	Params url.Values
	Body   any
}

// Response is the uniform success shape: raw payload bytes plus the
// status and headers the server returned.
type Response struct {
	Data   []byte
	Status int
	Header http.Header
}

// New creates a Client rooted at baseURL. The base URL is required;
// httpClient may be nil, in which case http.DefaultClient is used.
func New(baseURL string, httpClient *http.Client, logger zerolog.Logger) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("client: base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("client: invalid base URL %q: %w", baseURL, err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger.With().Str("component", "client").Logger(),
	}, nil
}

// Get performs a GET request against path.
func (c *Client) Get(ctx context.Context, path string, opts *RequestOptions) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, opts)
}

// Post performs a POST request against path.
func (c *Client) Post(ctx context.Context, path string, opts *RequestOptions) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, opts)
}

// Put performs a PUT request against path.
func (c *Client) Put(ctx context.Context, path string, opts *RequestOptions) (*Response, error) {
	return c.do(ctx, http.MethodPut, path, opts)
}

// Delete performs a DELETE request against path.
func (c *Client) Delete(ctx context.Context, path string, opts *RequestOptions) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, opts)
}

func (c *Client) do(ctx context.Context, method, path string, opts *RequestOptions) (*Response, error) {
	target, err := c.buildURL(path, opts)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if opts != nil && opts.Body != nil {
		encoded, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("client: encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("url", target).Msg("transport failure")
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug().
			Int("status", resp.StatusCode).
			Str("method", method).
			Str("url", target).
			Msg("request rejected")
		return nil, statusError(resp.StatusCode, errorDetails(payload))
	}

	return &Response{
		Data:   payload,
		Status: resp.StatusCode,
		Header: resp.Header,
	}, nil
}

// buildURL joins the base URL with path and folds query parameters in.
// Empty parameter values are dropped so optional filters never show up
// in the query string.
func (c *Client) buildURL(path string, opts *RequestOptions) (string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", fmt.Errorf("client: invalid path %q: %w", path, err)
	}
	if opts != nil && len(opts.Params) > 0 {
		q := u.Query()
		for key, values := range opts.Params {
			for _, v := range values {
				if v == "" {
					continue
				}
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// errorDetails pulls a message out of a JSON error body if one is
// present, otherwise returns the trimmed raw body.
func errorDetails(payload []byte) string {
	if len(payload) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(payload))
}
