// internal/app/policy/contentpolicy/validation.go
package contentpolicy

import (
	"github.com/samaquete/admin/internal/app/system/authz"
	"github.com/samaquete/admin/internal/domain/models"
)

// InitialValidated is the validatedByParish value for a prayer time or
// donation type created by role. Only church-authored items need parish review.
func InitialValidated(role string) bool {
	return role != models.RoleChurchAdmin
}

// CanValidate reports whether c may set validatedByParish on an item with the given scope.
// That is a parish admin of the item's parish, a diocese admin of its diocese, or a super admin.
func CanValidate(c models.Claims, kind authz.Kind, scope models.Scope) bool {
	return authz.CanAccess(c, authz.Validate, authz.Target{Kind: kind, Scope: scope})
}
