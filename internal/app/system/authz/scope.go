// internal/app/system/authz/scope.go
package authz

import "github.com/samaquete/admin/internal/domain/models"

// ListScope returns the scope a list query must be restricted to for caller c.
// ok=false means c may not list the kind at all. The returned scope is applied
// as equality predicates by the store, never as a post-fetch filter.
func ListScope(c models.Claims, kind Kind) (models.Scope, bool) {
	c = c.Normalize()
	if c.UID == "" || !models.IsValidRole(c.Role) {
		return models.Scope{}, false
	}

	switch kind {
	case KindDiocese:
		return models.Scope{}, true
	case KindUser:
		return models.Scope{}, c.Role == models.RoleSuperAdmin
	}

	switch c.Role {
	case models.RoleSuperAdmin, models.RoleArchdioceseAdmin:
		return models.Scope{}, true

	case models.RoleDioceseAdmin:
		if c.DioceseID == "" {
			return models.Scope{}, false
		}
		return models.Scope{DioceseID: c.DioceseID}, true

	case models.RoleParishAdmin:
		if c.ParishID == "" {
			return models.Scope{}, false
		}
		return models.Scope{ParishID: c.ParishID}, true

	case models.RoleChurchAdmin:
		if kind == KindDonation || kind == KindDonationEvent {
			// Donations are kept per parish; a church admin never reads them.
			return models.Scope{}, false
		}
		if kind == KindParish || kind == KindNotification {
			if c.ParishID == "" {
				return models.Scope{}, false
			}
			return models.Scope{ParishID: c.ParishID}, true
		}
		if c.ChurchID == "" {
			return models.Scope{}, false
		}
		return models.Scope{ChurchID: c.ChurchID}, true
	}
	return models.Scope{}, false
}

// MergeScope narrows an enforced scope with a caller-requested filter.
// ok=false means the two disagree on some identifier, so the result is empty.
func MergeScope(enforced, requested models.Scope) (models.Scope, bool) {
	var out models.Scope
	var ok bool
	if out.ArchdioceseID, ok = mergeField(enforced.ArchdioceseID, requested.ArchdioceseID); !ok {
		return models.Scope{}, false
	}
	if out.DioceseID, ok = mergeField(enforced.DioceseID, requested.DioceseID); !ok {
		return models.Scope{}, false
	}
	if out.ParishID, ok = mergeField(enforced.ParishID, requested.ParishID); !ok {
		return models.Scope{}, false
	}
	if out.ChurchID, ok = mergeField(enforced.ChurchID, requested.ChurchID); !ok {
		return models.Scope{}, false
	}
	return out, true
}

func mergeField(enforced, requested string) (string, bool) {
	switch {
	case enforced == "":
		return requested, true
	case requested == "" || requested == enforced:
		return enforced, true
	}
	return "", false
}

// ScopeFor combines ListScope and MergeScope. ok=false means the query must return nothing.
func ScopeFor(c models.Claims, kind Kind, requested models.Scope) (models.Scope, bool) {
	enforced, ok := ListScope(c, kind)
	if !ok {
		return models.Scope{}, false
	}
	return MergeScope(enforced, requested)
}
