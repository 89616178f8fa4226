// internal/app/system/authz/roles.go
package authz

import (
	"strings"

	"github.com/samaquete/admin/internal/domain/models"
)

// HasAnyRole reports whether the claims carry any of the given roles.
// Comparison is case-insensitive; empty claims never match.
func HasAnyRole(c models.Claims, roles ...string) bool {
	if c.UID == "" {
		return false
	}
	cur := strings.ToLower(strings.TrimSpace(c.Role))
	for _, want := range roles {
		if cur == strings.ToLower(strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}
