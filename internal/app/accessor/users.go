package accessor

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/app/system/auditlog"
	"github.com/samaquete/admin/internal/app/system/authz"
	"github.com/samaquete/admin/internal/app/system/identity"
	"github.com/samaquete/admin/internal/app/system/inputval"
	"github.com/samaquete/admin/internal/app/system/normalize"
	"github.com/samaquete/admin/internal/domain/models"
)

// Entity types an admin account can be attached to.
const (
	EntityArchdiocese = "archdiocese"
	EntityDiocese     = "diocese"
	EntityParish      = "parish"
	EntityChurch      = "church"
)

// listUsersMax caps a single identity listing.
const listUsersMax = 1000

var roleEntity = map[string]string{
	models.RoleArchdioceseAdmin: EntityArchdiocese,
	models.RoleDioceseAdmin:     EntityDiocese,
	models.RoleParishAdmin:      EntityParish,
	models.RoleChurchAdmin:      EntityChurch,
}

// Users manages admin identities and their role claims. Everything except
// clearing one's own password flag is reserved to super admins.
type Users struct {
	idp             identity.Provider
	parents         parents
	audit           *auditlog.Logger
	defaultPassword string
}

// NewUserInput describes an admin account to create. EntityType may be left
// blank; it is then taken from the role.
type NewUserInput struct {
	Email      string
	Name       string
	Role       string
	EntityType string
	EntityID   string
}

// CreatedUser is returned once, so the caller can hand the password over.
type CreatedUser struct {
	UID             string `json:"uid"`
	Email           string `json:"email"`
	DefaultPassword string `json:"defaultPassword"`
}

// UserChange holds optional edits to an account. DioceseID and ParishID
// override the parents that would otherwise be read from the stores.
type UserChange struct {
	Email      *string
	Name       *string
	Role       *string
	EntityType *string
	EntityID   *string
	DioceseID  *string
	ParishID   *string
}

func (a *Users) manage(c models.Claims) error {
	if err := signedIn(c); err != nil {
		return err
	}
	if !authz.CanManageUsers(c.Normalize()) {
		return apperr.Denied("%s cannot manage users", c.Role)
	}
	return nil
}

func cleanAccountEmail(s string) (string, error) {
	s = normalize.Email(s)
	if s == "" {
		return "", apperr.Invalid("email", "ce champ est requis")
	}
	if !inputval.IsValidEmail(s) {
		return "", apperr.Invalid("email", "adresse email invalide")
	}
	return s, nil
}

// scopeFor works out the claims scope of an account with role attached to
// entityID. Parishes and churches take their parents from the stores unless
// dioceseID or parishID are given.
func (a *Users) scopeFor(ctx context.Context, role, entityType, entityID, dioceseID, parishID string) (models.Scope, error) {
	if role == models.RoleSuperAdmin {
		return models.Scope{}, nil
	}
	want, ok := roleEntity[role]
	if !ok {
		return models.Scope{}, apperr.Invalid("role", fmt.Sprintf("rôle inconnu %q", role))
	}
	entityType = normalize.Role(entityType)
	if entityType == "" {
		entityType = want
	}
	if entityType != want {
		return models.Scope{}, apperr.Invalid("entityType", fmt.Sprintf("le rôle %s s'applique à une entité de type %s", role, want))
	}
	entityID = normalize.ScopeID(entityID)
	if entityID == "" {
		return models.Scope{}, apperr.Invalid("entityId", "ce champ est requis")
	}
	dioceseID = normalize.DioceseID(dioceseID)
	parishID = normalize.ScopeID(parishID)

	switch entityType {
	case EntityArchdiocese, EntityDiocese:
		id := normalize.DioceseID(entityID)
		s, err := a.parents.resolve(ctx, models.Scope{DioceseID: id}, false)
		if err != nil {
			return models.Scope{}, err
		}
		if entityType == EntityArchdiocese {
			return models.Scope{ArchdioceseID: s.DioceseID}, nil
		}
		return s, nil
	case EntityParish:
		return a.parents.resolve(ctx, models.Scope{DioceseID: dioceseID, ParishID: entityID}, true)
	default:
		s, err := a.parents.resolve(ctx, models.Scope{DioceseID: dioceseID, ParishID: parishID, ChurchID: entityID}, false)
		if err != nil {
			return models.Scope{}, err
		}
		if s.DioceseID == "" {
			return models.Scope{}, apperr.Invalid("dioceseId", "le diocèse est requis pour une église")
		}
		return s, nil
	}
}

// Create makes the identity with the default password and sets its claims,
// flagged so the user must change the password at first sign-in.
func (a *Users) Create(ctx context.Context, c models.Claims, in NewUserInput) (CreatedUser, error) {
	if err := a.manage(c); err != nil {
		return CreatedUser{}, err
	}
	email, err := cleanAccountEmail(in.Email)
	if err != nil {
		return CreatedUser{}, err
	}
	role := normalize.Role(in.Role)
	if !models.IsValidRole(role) {
		return CreatedUser{}, apperr.Invalid("role", fmt.Sprintf("rôle inconnu %q", in.Role))
	}
	name := normalize.Name(in.Name)
	scope, err := a.scopeFor(ctx, role, in.EntityType, in.EntityID, "", "")
	if err != nil {
		return CreatedUser{}, err
	}

	rec, err := a.idp.CreateUser(ctx, identity.NewUser{Email: email, Password: a.defaultPassword, DisplayName: name})
	if err != nil {
		return CreatedUser{}, err
	}
	claims := models.Claims{UID: rec.UID, Role: role, Scope: scope, MustChangePassword: true}
	if err := a.idp.SetCustomClaims(ctx, rec.UID, identity.ClaimsToMap(claims)); err != nil {
		if derr := a.idp.DeleteUser(context.WithoutCancel(ctx), rec.UID); derr != nil {
			return CreatedUser{}, fmt.Errorf("set claims (rollback failed: %v): %w", derr, err)
		}
		return CreatedUser{}, err
	}

	e := auditlog.Entry(c, models.ActionCreate, string(authz.KindUser), rec.UID, email)
	e.Changes = &models.Changes{After: identity.ClaimsToMap(claims)}
	a.audit.Record(ctx, e)
	return CreatedUser{UID: rec.UID, Email: email, DefaultPassword: a.defaultPassword}, nil
}

// entityIDOf returns the identifier an account of role is attached to.
func entityIDOf(c models.Claims) string {
	switch c.Role {
	case models.RoleArchdioceseAdmin:
		return c.ArchdioceseID
	case models.RoleDioceseAdmin:
		return c.DioceseID
	case models.RoleParishAdmin:
		return c.ParishID
	case models.RoleChurchAdmin:
		return c.ChurchID
	}
	return ""
}

func deref(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}

// Update edits an account. Role and scope claims are recomputed whenever one
// of the placement fields is given; other custom claims are kept. The user's
// sessions are revoked so the new claims apply at once.
func (a *Users) Update(ctx context.Context, c models.Claims, uid string, ch UserChange) (identity.UserRecord, error) {
	if err := a.manage(c); err != nil {
		return identity.UserRecord{}, err
	}
	rec, err := a.idp.GetUser(ctx, uid)
	if err != nil {
		return identity.UserRecord{}, err
	}
	before := rec.Claims()
	after := before

	placement := ch.Role != nil || ch.EntityType != nil || ch.EntityID != nil || ch.DioceseID != nil || ch.ParishID != nil
	if placement {
		role := normalize.Role(deref(ch.Role, before.Role))
		if !models.IsValidRole(role) {
			return identity.UserRecord{}, apperr.Invalid("role", fmt.Sprintf("rôle inconnu %q", role))
		}
		entityID := deref(ch.EntityID, "")
		if entityID == "" && role == before.Role {
			entityID = entityIDOf(before)
		}
		scope, err := a.scopeFor(ctx, role, deref(ch.EntityType, ""), entityID, deref(ch.DioceseID, ""), deref(ch.ParishID, ""))
		if err != nil {
			return identity.UserRecord{}, err
		}
		after.Role = role
		after.Scope = scope
	}

	var upd identity.UserUpdate
	if ch.Email != nil {
		email, err := a.checkEmailFree(ctx, uid, *ch.Email)
		if err != nil {
			return identity.UserRecord{}, err
		}
		if email != rec.Email {
			verified := false
			upd.Email = &email
			upd.EmailVerified = &verified
		}
	}
	if ch.Name != nil {
		name := normalize.Name(*ch.Name)
		upd.DisplayName = &name
	}
	if upd.Email != nil || upd.DisplayName != nil {
		if _, err := a.idp.UpdateUser(ctx, uid, upd); err != nil {
			return identity.UserRecord{}, err
		}
	}

	var diff *models.Changes
	if placement {
		merged := mergeClaims(rec.CustomClaims, after)
		if err := a.idp.SetCustomClaims(ctx, uid, merged); err != nil {
			return identity.UserRecord{}, err
		}
		diff = auditlog.Diff(identity.ClaimsToMap(before), identity.ClaimsToMap(after))
	}
	if err := a.idp.RevokeSessions(ctx, uid); err != nil {
		return identity.UserRecord{}, err
	}

	out, err := a.idp.GetUser(ctx, uid)
	if err != nil {
		return identity.UserRecord{}, err
	}
	if upd.Email != nil || upd.DisplayName != nil {
		if diff == nil {
			diff = &models.Changes{}
		}
		if diff.Before == nil {
			diff.Before, diff.After = map[string]any{}, map[string]any{}
		}
		if upd.Email != nil {
			diff.Before["email"], diff.After["email"] = rec.Email, out.Email
			diff.Fields = append(diff.Fields, "email")
		}
		if upd.DisplayName != nil {
			diff.Before["displayName"], diff.After["displayName"] = rec.DisplayName, out.DisplayName
			diff.Fields = append(diff.Fields, "displayName")
		}
	}
	a.audit.Record(ctx, withChanges(auditlog.Entry(c, models.ActionUpdate, string(authz.KindUser), uid, out.Email), diff))
	return out, nil
}

func withChanges(e models.ActivityLog, ch *models.Changes) models.ActivityLog {
	e.Changes = ch
	return e
}

// mergeClaims replaces the role and scope keys of existing with those of c
// and keeps every other key.
func mergeClaims(existing map[string]any, c models.Claims) map[string]any {
	m := maps.Clone(existing)
	if m == nil {
		m = map[string]any{}
	}
	for _, k := range []string{identity.ClaimRole, identity.ClaimArchdioceseID, identity.ClaimDioceseID, identity.ClaimParishID, identity.ClaimChurchID} {
		delete(m, k)
	}
	c.MustChangePassword = false
	maps.Copy(m, identity.ClaimsToMap(c))
	return m
}

// checkEmailFree normalizes email and fails with identity.ErrEmailExists when
// another account already uses it.
func (a *Users) checkEmailFree(ctx context.Context, uid, email string) (string, error) {
	email, err := cleanAccountEmail(email)
	if err != nil {
		return "", err
	}
	other, err := a.idp.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return email, nil
	case err != nil:
		return "", err
	case other.UID != uid:
		return "", fmt.Errorf("%s: %w", email, identity.ErrEmailExists)
	}
	return email, nil
}

// UpdateEmail changes the sign-in email and marks it unverified.
func (a *Users) UpdateEmail(ctx context.Context, c models.Claims, uid, email string) (identity.UserRecord, error) {
	if err := a.manage(c); err != nil {
		return identity.UserRecord{}, err
	}
	rec, err := a.idp.GetUser(ctx, uid)
	if err != nil {
		return identity.UserRecord{}, err
	}
	email, err = a.checkEmailFree(ctx, uid, email)
	if err != nil {
		return identity.UserRecord{}, err
	}
	verified := false
	out, err := a.idp.UpdateUser(ctx, uid, identity.UserUpdate{Email: &email, EmailVerified: &verified})
	if err != nil {
		return identity.UserRecord{}, err
	}
	a.audit.Record(ctx, withChanges(auditlog.Entry(c, models.ActionUpdate, string(authz.KindUser), uid, email), &models.Changes{
		Before: map[string]any{"email": rec.Email},
		After:  map[string]any{"email": email},
		Fields: []string{"email"},
	}))
	return out, nil
}

// ClearMustChangePassword drops the first-sign-in flag. An empty uid means
// the caller's own account; only super admins may clear someone else's.
func (a *Users) ClearMustChangePassword(ctx context.Context, c models.Claims, uid string) error {
	if err := signedIn(c); err != nil {
		return err
	}
	if uid == "" {
		uid = c.UID
	}
	if uid != c.UID && !authz.CanManageUsers(c.Normalize()) {
		return apperr.Denied("%s cannot change another user's claims", c.Role)
	}
	rec, err := a.idp.GetUser(ctx, uid)
	if err != nil {
		return err
	}
	if _, ok := rec.CustomClaims[identity.ClaimMustChangePassword]; !ok {
		return nil
	}
	m := maps.Clone(rec.CustomClaims)
	delete(m, identity.ClaimMustChangePassword)
	if err := a.idp.SetCustomClaims(ctx, uid, m); err != nil {
		return err
	}
	a.audit.Record(ctx, auditlog.Entry(c, models.ActionPasswordChange, string(authz.KindUser), uid, rec.Email))
	return nil
}

// Delete removes an account. Admins cannot delete themselves.
func (a *Users) Delete(ctx context.Context, c models.Claims, uid string) error {
	if err := a.manage(c); err != nil {
		return err
	}
	if uid == "" {
		return apperr.Invalid("uid", "ce champ est requis")
	}
	if uid == c.UID {
		return apperr.Invalid("uid", "vous ne pouvez pas supprimer votre propre compte")
	}
	rec, err := a.idp.GetUser(ctx, uid)
	if err != nil {
		return err
	}
	if err := a.idp.DeleteUser(ctx, uid); err != nil {
		return err
	}
	a.audit.Record(ctx, auditlog.Entry(c, models.ActionDelete, string(authz.KindUser), uid, rec.Email))
	return nil
}

// List returns up to 1000 accounts with their claims.
func (a *Users) List(ctx context.Context, c models.Claims) ([]identity.UserRecord, error) {
	if err := a.manage(c); err != nil {
		return nil, err
	}
	out, err := a.idp.ListUsers(ctx, listUsersMax)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []identity.UserRecord{}
	}
	return out, nil
}

// ResetPasswordLink returns a password-reset link for email.
func (a *Users) ResetPasswordLink(ctx context.Context, c models.Claims, email string) (string, error) {
	if err := a.manage(c); err != nil {
		return "", err
	}
	email, err := cleanAccountEmail(email)
	if err != nil {
		return "", err
	}
	return a.idp.PasswordResetLink(ctx, email)
}
