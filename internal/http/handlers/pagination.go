package handlers

import (
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/foodgram-backend/internal/services"
	"github.com/tbourn/foodgram-backend/internal/utils"
)

// maxPageSize bounds the limit query parameter.
const maxPageSize = 100

// PageResponse is the envelope of every paginated list. Next and Previous
// are absolute URLs or null.
type PageResponse[T any] struct {
	Count    int64   `json:"count" example:"123"`
	Next     *string `json:"next" example:"http://foodgram.example.org/api/recipes/?page=4"`
	Previous *string `json:"previous" example:"http://foodgram.example.org/api/recipes/?page=2"`
	Results  []T     `json:"results"`
}

// pageParams reads ?page and ?limit. Garbage falls back to the defaults.
func pageParams(c *gin.Context, defaultSize int) (int, services.Paging) {
	page := utils.AtoiDefault(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}
	limit := utils.PageSize(c.Query("limit"), defaultSize, maxPageSize)
	return page, services.Paging{Offset: (page - 1) * limit, Limit: limit}
}

// newPage builds the envelope. It reports false for a page past the end;
// the first page always exists, even when empty.
func newPage[T any](c *gin.Context, page int, p services.Paging, res services.Page[T]) (PageResponse[T], bool) {
	if page > 1 && int64(p.Offset) >= res.Count {
		return PageResponse[T]{}, false
	}
	out := PageResponse[T]{Count: res.Count, Results: res.Results}
	if out.Results == nil {
		out.Results = []T{}
	}
	if int64(p.Offset+p.Limit) < res.Count {
		next := pageURL(c, page+1)
		out.Next = &next
	}
	if page > 1 {
		prev := pageURL(c, page-1)
		out.Previous = &prev
	}
	return out, true
}

// pageURL is the current request URL with the page parameter replaced.
// Page 1 drops the parameter.
func pageURL(c *gin.Context, page int) string {
	q := c.Request.URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path, RawQuery: q.Encode()}
	return u.String()
}
