package api

import (
	"net/url"
	"strconv"
)

// ListOptions is the typed options object for list queries. The zero
// value of a field means the filter was not provided; unset filters
// are omitted from the query string and stripped from cache keys.
type ListOptions struct {
	Limit  int
	Offset int
	Search string
	SortBy string
	Order  string
}

// Values builds the query-string parameters for the options. Unset
// fields produce no parameter.
func (o ListOptions) Values() url.Values {
	params := url.Values{}
	if o.Limit > 0 {
		params.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		params.Set("offset", strconv.Itoa(o.Offset))
	}
	if o.Search != "" {
		params.Set("search", o.Search)
	}
	if o.SortBy != "" {
		params.Set("sortBy", o.SortBy)
	}
	if o.Order != "" {
		params.Set("order", o.Order)
	}
	return params
}

// WithPage returns a copy of the options positioned at the given
// zero-based page for the given page size.
func (o ListOptions) WithPage(page, pageSize int) ListOptions {
	o.Limit = pageSize
	o.Offset = page * pageSize
	return o
}
