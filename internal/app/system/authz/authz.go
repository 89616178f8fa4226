// internal/app/system/authz/authz.go
package authz

import (
	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/app/system/metrics"
	"github.com/samaquete/admin/internal/domain/models"
)

// Action is what the caller wants to do with a target.
type Action string

const (
	Read     Action = "read"
	Create   Action = "create"
	Update   Action = "update"
	Delete   Action = "delete"
	Publish  Action = "publish"
	Validate Action = "validate"
)

// Kind is the entity type of a target.
type Kind string

const (
	KindDiocese       Kind = "diocese"
	KindParish        Kind = "parish"
	KindChurch        Kind = "church"
	KindNews          Kind = "news"
	KindPrayer        Kind = "prayer"
	KindActivity      Kind = "activity"
	KindPrayerTime    Kind = "prayer_time"
	KindDonationType  Kind = "donation_type"
	KindDonationEvent Kind = "donation_event"
	KindDonation      Kind = "donation"
	KindUser          Kind = "user"
	KindActivityLog   Kind = "activity_log"
	KindNotification  Kind = "notification"
)

// ContentKind maps a content kind to its guard kind.
func ContentKind(k models.ContentKind) Kind {
	switch k {
	case models.KindNews:
		return KindNews
	case models.KindPrayer:
		return KindPrayer
	case models.KindActivity:
		return KindActivity
	}
	return ""
}

// Target is the entity being acted on. For structural entities the scope
// includes the entity's own id (a parish target carries ParishID = parish.ID).
type Target struct {
	Kind  Kind
	Scope models.Scope
}

func isContent(k Kind) bool {
	return k == KindNews || k == KindPrayer || k == KindActivity
}

// churchAuthored lists the kinds a church admin may author.
func churchAuthored(k Kind) bool {
	return isContent(k) || k == KindPrayerTime || k == KindDonationType
}

func validAction(a Action) bool {
	switch a {
	case Read, Create, Update, Delete, Publish, Validate:
		return true
	}
	return false
}

// CanAccess decides whether claims c may perform a on t. It is pure and total:
// identical inputs give identical results and any unmatched combination is denied.
func CanAccess(c models.Claims, a Action, t Target) bool {
	c = c.Normalize()
	if c.UID == "" || !validAction(a) || t.Kind == "" {
		return false
	}

	if c.Role == models.RoleSuperAdmin {
		return models.IsValidRole(c.Role)
	}

	switch t.Kind {
	case KindUser:
		return false
	case KindActivityLog:
		// Logs are appended by the system; admins only read them.
		return a == Read && models.IsValidRole(c.Role)
	case KindDiocese:
		// Dioceses are fixed reference data: readable by all, writable by super admins only.
		return a == Read && models.IsValidRole(c.Role)
	}

	switch c.Role {
	case models.RoleArchdioceseAdmin:
		return archdioceseRule(a, t)
	case models.RoleDioceseAdmin:
		return dioceseRule(c, t)
	case models.RoleParishAdmin:
		return parishRule(c, t)
	case models.RoleChurchAdmin:
		return churchRule(c, a, t)
	}
	return false
}

func archdioceseRule(a Action, t Target) bool {
	switch a {
	case Read:
		return true
	case Create, Update, Publish:
		return isContent(t.Kind)
	}
	return false
}

func dioceseRule(c models.Claims, t Target) bool {
	return c.DioceseID != "" && t.Scope.DioceseID == c.DioceseID
}

func parishRule(c models.Claims, t Target) bool {
	if c.ParishID == "" || t.Scope.ParishID != c.ParishID {
		return false
	}
	return !dioceseConflict(c, t)
}

func churchRule(c models.Claims, a Action, t Target) bool {
	if c.ChurchID == "" || dioceseConflict(c, t) {
		return false
	}

	switch a {
	case Read:
		if t.Kind == KindParish || t.Kind == KindNotification {
			return c.ParishID != "" && t.Scope.ParishID == c.ParishID
		}
		return t.Scope.ChurchID == c.ChurchID

	case Create:
		if !churchAuthored(t.Kind) {
			return false
		}
		return c.ParishID != "" &&
			t.Scope.ParishID == c.ParishID &&
			t.Scope.ChurchID == c.ChurchID

	case Update:
		if t.Kind == KindChurch || churchAuthored(t.Kind) {
			return t.Scope.ChurchID == c.ChurchID
		}
		return false

	case Delete:
		return churchAuthored(t.Kind) && t.Scope.ChurchID == c.ChurchID
	}

	// Publish and Validate: church content always goes through pending.
	return false
}

func dioceseConflict(c models.Claims, t Target) bool {
	return c.DioceseID != "" && t.Scope.DioceseID != "" && t.Scope.DioceseID != c.DioceseID
}

// Require returns nil when CanAccess allows the action, otherwise an error
// wrapping apperr.ErrPermissionDenied.
func Require(c models.Claims, a Action, t Target) error {
	if CanAccess(c, a, t) {
		return nil
	}
	metrics.AuthzDenied.WithLabelValues(c.Role, string(a), string(t.Kind)).Inc()
	return apperr.Denied("%s cannot %s %s", roleOrAnon(c.Role), a, t.Kind)
}

func roleOrAnon(role string) string {
	if role == "" {
		return "anonymous"
	}
	return role
}

// CanManageUsers reports whether c may create, update or delete identities.
func CanManageUsers(c models.Claims) bool {
	return c.UID != "" && c.Role == models.RoleSuperAdmin
}

// CanExport reports whether c may download user, fidele and donor exports.
func CanExport(c models.Claims) bool {
	return c.UID != "" && c.Role == models.RoleSuperAdmin
}

// CanReadActivity reports whether c may read the activity logs of userID.
// Every admin reads their own; an empty userID means everyone's, which only
// a super admin may read.
func CanReadActivity(c models.Claims, userID string) bool {
	c = c.Normalize()
	if c.UID == "" || !models.IsValidRole(c.Role) {
		return false
	}
	return c.Role == models.RoleSuperAdmin || userID == c.UID
}
