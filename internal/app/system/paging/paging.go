// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows returned by a list endpoint.
const PageSize = 50

// MaxPageSize caps the limit a client may ask for.
const MaxPageSize = 500

// Page is an offset/limit window taken from the query string.
type Page struct {
	Offset int
	Limit  int
}

// Parse reads "offset" and "limit". Missing or invalid values fall back to
// 0 and PageSize; limits above MaxPageSize are clamped.
func Parse(r *http.Request) Page {
	p := Page{Offset: parseInt(query.Get(r, "offset"), 0), Limit: parseInt(query.Get(r, "limit"), PageSize)}
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit < 1 {
		p.Limit = PageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

// ParseInt reads a positive integer query parameter, returning def when it
// is missing or malformed.
func ParseInt(r *http.Request, key string, def int) int {
	return parseInt(query.Get(r, key), def)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// Range holds the display window of a page.
type Range struct {
	Start      int   `json:"start"` // 1-based start index (0 if no results)
	End        int   `json:"end"`
	Total      int64 `json:"total"`
	NextOffset int   `json:"nextOffset,omitempty"`
	HasNext    bool  `json:"hasNext"`
}

// ComputeRange describes the page p that returned shown rows out of total.
func ComputeRange(p Page, shown int, total int64) Range {
	if shown == 0 {
		return Range{Total: total}
	}
	r := Range{
		Start: p.Offset + 1,
		End:   p.Offset + shown,
		Total: total,
	}
	if int64(r.End) < total {
		r.HasNext = true
		r.NextOffset = r.End
	}
	return r
}
