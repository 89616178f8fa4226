package paging

import (
	"net/http/httptest"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   Page
	}{
		{"defaults", "/api/news", Page{Offset: 0, Limit: PageSize}},
		{"explicit", "/api/news?offset=20&limit=10", Page{Offset: 20, Limit: 10}},
		{"negative offset", "/api/news?offset=-5", Page{Offset: 0, Limit: PageSize}},
		{"zero limit", "/api/news?limit=0", Page{Offset: 0, Limit: PageSize}},
		{"garbage", "/api/news?offset=abc&limit=xyz", Page{Offset: 0, Limit: PageSize}},
		{"clamped", "/api/news?limit=100000", Page{Offset: 0, Limit: MaxPageSize}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(httptest.NewRequest("GET", tt.target, nil))
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.target, got, tt.want)
			}
		})
	}
}

func TestParseInt(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/activity/logs?days=7&limit=x", nil)
	if got := ParseInt(r, "days", 30); got != 7 {
		t.Errorf("days = %d, want 7", got)
	}
	if got := ParseInt(r, "limit", 100); got != 100 {
		t.Errorf("limit = %d, want 100", got)
	}
	if got := ParseInt(r, "missing", 3); got != 3 {
		t.Errorf("missing = %d, want 3", got)
	}
}

func TestComputeRange(t *testing.T) {
	tests := []struct {
		name  string
		page  Page
		shown int
		total int64
		want  Range
	}{
		{"empty", Page{Limit: 50}, 0, 0, Range{}},
		{"first of two", Page{Limit: 2}, 2, 4, Range{Start: 1, End: 2, Total: 4, HasNext: true, NextOffset: 2}},
		{"last page", Page{Offset: 2, Limit: 2}, 2, 4, Range{Start: 3, End: 4, Total: 4}},
		{"offset past end", Page{Offset: 10, Limit: 2}, 0, 4, Range{Total: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeRange(tt.page, tt.shown, tt.total); got != tt.want {
				t.Errorf("ComputeRange = %+v, want %+v", got, tt.want)
			}
		})
	}
}
