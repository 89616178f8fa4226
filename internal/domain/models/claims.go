// internal/domain/models/claims.go
package models

import "strings"

// Roles carried in identity custom claims, broadest first.
const (
	RoleSuperAdmin       = "super_admin"
	RoleArchdioceseAdmin = "archdiocese_admin"
	RoleDioceseAdmin     = "diocese_admin"
	RoleParishAdmin      = "parish_admin"
	RoleChurchAdmin      = "church_admin"
)

// AllRoles lists every role in hierarchy order.
var AllRoles = []string{
	RoleSuperAdmin,
	RoleArchdioceseAdmin,
	RoleDioceseAdmin,
	RoleParishAdmin,
	RoleChurchAdmin,
}

// IsValidRole reports whether r is one of the five known roles.
func IsValidRole(r string) bool {
	for _, v := range AllRoles {
		if v == r {
			return true
		}
	}
	return false
}

// Scope identifies the organizational subtree an entity or caller belongs to.
// Empty fields mean "not set".
type Scope struct {
	ArchdioceseID string `bson:"archdiocese_id,omitempty" json:"archdioceseId,omitempty"`
	DioceseID     string `bson:"diocese_id,omitempty" json:"dioceseId,omitempty"`
	ParishID      string `bson:"parish_id,omitempty" json:"parishId,omitempty"`
	ChurchID      string `bson:"church_id,omitempty" json:"churchId,omitempty"`
}

// IsZero reports whether no identifier is set.
func (s Scope) IsZero() bool {
	return s.ArchdioceseID == "" && s.DioceseID == "" && s.ParishID == "" && s.ChurchID == ""
}

// Claims is the authenticated caller's role and scope, attached to each request.
type Claims struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
	Scope
	MustChangePassword bool `json:"mustChangePassword,omitempty"`
}

// Normalize trims identifiers and clears the ones that do not apply to the role:
// diocese and archdiocese admins never carry parish/church, parish admins never
// carry a church, super admins carry nothing.
func (c Claims) Normalize() Claims {
	c.Role = strings.TrimSpace(strings.ToLower(c.Role))
	c.ArchdioceseID = strings.TrimSpace(c.ArchdioceseID)
	c.DioceseID = strings.TrimSpace(c.DioceseID)
	c.ParishID = strings.TrimSpace(c.ParishID)
	c.ChurchID = strings.TrimSpace(c.ChurchID)

	switch c.Role {
	case RoleSuperAdmin:
		c.Scope = Scope{}
	case RoleArchdioceseAdmin, RoleDioceseAdmin:
		c.ParishID = ""
		c.ChurchID = ""
	case RoleParishAdmin:
		c.ChurchID = ""
		c.ArchdioceseID = ""
	case RoleChurchAdmin:
		c.ArchdioceseID = ""
	}
	return c
}

// IsBroad reports whether the role reads across all dioceses.
func (c Claims) IsBroad() bool {
	return c.Role == RoleSuperAdmin || c.Role == RoleArchdioceseAdmin
}
