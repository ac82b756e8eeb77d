package lms

import (
	"net/url"
	"strconv"
)

// Page mirrors the LMS API's page envelope. Content keeps the server's
// order; the client never re-sorts or de-duplicates it.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Number        int   `json:"number"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	Last          bool  `json:"last"`
}

// PageQuery selects one zero-based page of a collection. Query is a
// free-text filter applied by the LMS service, never locally.
type PageQuery struct {
	Page  int
	Size  int
	Query string
}

func (q PageQuery) values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("size", strconv.Itoa(q.Size))
	if q.Query != "" {
		v.Set("q", q.Query)
	}
	return v
}
