// Package params reads the query-string filters shared by list endpoints.
package params

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/samaquete/admin/internal/app/system/normalize"
	"github.com/samaquete/admin/internal/domain/models"
)

// Scope reads archdioceseId, dioceseId, parishId and churchId.
func Scope(r *http.Request) models.Scope {
	return models.Scope{
		ArchdioceseID: normalize.DioceseID(query.Get(r, "archdioceseId")),
		DioceseID:     normalize.DioceseID(query.Get(r, "dioceseId")),
		ParishID:      normalize.ScopeID(query.Get(r, "parishId")),
		ChurchID:      normalize.ScopeID(query.Get(r, "churchId")),
	}
}

// Bool reads an optional boolean. Absent or unparsable values give nil.
func Bool(r *http.Request, key string) *bool {
	s := strings.TrimSpace(query.Get(r, key))
	if s == "" {
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &b
}

// String reads a trimmed query parameter.
func String(r *http.Request, key string) string {
	return strings.TrimSpace(query.Get(r, key))
}
