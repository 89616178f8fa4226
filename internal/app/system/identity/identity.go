// Package identity abstracts the external identity service: token
// verification, account management and custom claims.
//
// Firebase is the production implementation. Local keeps identities in
// MongoDB and signs its own tokens; it backs development and tests.
package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/domain/models"
)

var (
	// ErrUserNotFound is returned when no identity has the uid or email.
	ErrUserNotFound = fmt.Errorf("identity: %w", apperr.ErrNotFound)

	// ErrEmailExists is returned when creating or renaming to a taken email.
	ErrEmailExists = fmt.Errorf("identity email: %w", apperr.ErrAlreadyExists)

	// ErrInvalidToken is returned for malformed, expired or revoked tokens.
	ErrInvalidToken = fmt.Errorf("identity token: %w", apperr.ErrUnauthenticated)

	// ErrInvalidCredentials is returned by password sign-in.
	ErrInvalidCredentials = fmt.Errorf("identity credentials: %w", apperr.ErrUnauthenticated)
)

// UserRecord is the provider-neutral view of one identity.
type UserRecord struct {
	UID           string         `json:"uid"`
	Email         string         `json:"email"`
	DisplayName   string         `json:"displayName,omitempty"`
	EmailVerified bool           `json:"emailVerified"`
	Disabled      bool           `json:"disabled"`
	CreatedAt     time.Time      `json:"createdAt"`
	LastSignInAt  *time.Time     `json:"lastSignInAt,omitempty"`
	CustomClaims  map[string]any `json:"customClaims,omitempty"`
	// TokensValidAfter is the last RevokeSessions time. Sessions and tokens
	// issued at or before it are no longer honored.
	TokensValidAfter time.Time `json:"-"`
}

// Claims returns the record's custom claims as models.Claims.
func (u UserRecord) Claims() models.Claims {
	return ClaimsFromMap(u.UID, u.Email, u.DisplayName, u.CustomClaims)
}

// NewUser describes an identity to create.
type NewUser struct {
	Email       string
	Password    string
	DisplayName string
}

// UserUpdate holds optional changes to an identity. Nil means unchanged.
type UserUpdate struct {
	Email         *string
	DisplayName   *string
	Password      *string
	EmailVerified *bool
	Disabled      *bool
}

// Provider is the identity service.
type Provider interface {
	VerifyIDToken(ctx context.Context, idToken string) (models.Claims, error)
	GetUser(ctx context.Context, uid string) (UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (UserRecord, error)
	CreateUser(ctx context.Context, u NewUser) (UserRecord, error)
	UpdateUser(ctx context.Context, uid string, u UserUpdate) (UserRecord, error)
	DeleteUser(ctx context.Context, uid string) error
	SetCustomClaims(ctx context.Context, uid string, claims map[string]any) error
	RevokeSessions(ctx context.Context, uid string) error
	ListUsers(ctx context.Context, max int) ([]UserRecord, error)
	PasswordResetLink(ctx context.Context, email string) (string, error)
}

// Custom claim keys.
const (
	ClaimRole               = "role"
	ClaimArchdioceseID      = "archdioceseId"
	ClaimDioceseID          = "dioceseId"
	ClaimParishID           = "parishId"
	ClaimChurchID           = "churchId"
	ClaimMustChangePassword = "mustChangePassword"
)

// ClaimsFromMap builds normalized claims from a custom-claims map. Unknown
// keys are ignored and non-string values are treated as absent.
func ClaimsFromMap(uid, email, name string, m map[string]any) models.Claims {
	str := func(k string) string {
		s, _ := m[k].(string)
		return s
	}
	must, _ := m[ClaimMustChangePassword].(bool)
	c := models.Claims{
		UID:   uid,
		Email: email,
		Name:  name,
		Role:  str(ClaimRole),
		Scope: models.Scope{
			ArchdioceseID: str(ClaimArchdioceseID),
			DioceseID:     str(ClaimDioceseID),
			ParishID:      str(ClaimParishID),
			ChurchID:      str(ClaimChurchID),
		},
		MustChangePassword: must,
	}
	return c.Normalize()
}

// ClaimsToMap is the inverse of ClaimsFromMap. Empty identifiers are omitted.
func ClaimsToMap(c models.Claims) map[string]any {
	c = c.Normalize()
	m := map[string]any{ClaimRole: c.Role}
	put := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	put(ClaimArchdioceseID, c.ArchdioceseID)
	put(ClaimDioceseID, c.DioceseID)
	put(ClaimParishID, c.ParishID)
	put(ClaimChurchID, c.ChurchID)
	if c.MustChangePassword {
		m[ClaimMustChangePassword] = true
	}
	return m
}

// BearerToken extracts the token from an "Authorization: Bearer x" header value.
func BearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(header[len(prefix):])
	return tok, tok != ""
}
