package apimodel

import (
	"net/url"
	"strconv"
)

// Page is the server's paginated list shape. Pages are zero based.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	HasNext       bool  `json:"hasNext"`
	HasPrevious   bool  `json:"hasPrevious"`
}

type PageParams struct {
	Page int
	Size int
}

// Values encodes the params as query values. A zero size is left for the server to default.
func (p PageParams) Values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Size > 0 {
		v.Set("size", strconv.Itoa(p.Size))
	}
	return v
}

// Merge copies the page params into v, returning v for chaining.
func (p PageParams) Merge(v url.Values) url.Values {
	if v == nil {
		v = url.Values{}
	}
	for k, vals := range p.Values() {
		v[k] = vals
	}
	return v
}
