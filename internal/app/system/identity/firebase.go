// internal/app/system/identity/firebase.go
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/domain/models"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Firebase implements Provider with the Firebase Admin SDK.
type Firebase struct {
	client *auth.Client
}

// NewFirebase initializes the Admin SDK for projectID. credentialsFile may be
// empty to use application default credentials.
func NewFirebase(ctx context.Context, projectID, credentialsFile string) (*Firebase, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	return &Firebase{client: client}, nil
}

// VerifyIDToken checks the token signature, expiry and revocation.
func (f *Firebase) VerifyIDToken(ctx context.Context, idToken string) (models.Claims, error) {
	tok, err := f.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		if auth.IsIDTokenRevoked(err) || auth.IsIDTokenExpired(err) || auth.IsIDTokenInvalid(err) || auth.IsUserDisabled(err) {
			return models.Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return models.Claims{}, fmt.Errorf("verify id token: %w: %v", apperr.ErrUpstream, err)
	}
	email, _ := tok.Claims["email"].(string)
	name, _ := tok.Claims["name"].(string)
	return ClaimsFromMap(tok.UID, email, name, tok.Claims), nil
}

func (f *Firebase) GetUser(ctx context.Context, uid string) (UserRecord, error) {
	u, err := f.client.GetUser(ctx, uid)
	if err != nil {
		return UserRecord{}, mapFirebaseErr("get user", err)
	}
	return fromFirebase(u), nil
}

func (f *Firebase) GetUserByEmail(ctx context.Context, email string) (UserRecord, error) {
	u, err := f.client.GetUserByEmail(ctx, email)
	if err != nil {
		return UserRecord{}, mapFirebaseErr("get user by email", err)
	}
	return fromFirebase(u), nil
}

func (f *Firebase) CreateUser(ctx context.Context, nu NewUser) (UserRecord, error) {
	params := (&auth.UserToCreate{}).
		Email(nu.Email).
		Password(nu.Password).
		EmailVerified(false)
	if nu.DisplayName != "" {
		params = params.DisplayName(nu.DisplayName)
	}
	u, err := f.client.CreateUser(ctx, params)
	if err != nil {
		return UserRecord{}, mapFirebaseErr("create user", err)
	}
	return fromFirebase(u), nil
}

func (f *Firebase) UpdateUser(ctx context.Context, uid string, uu UserUpdate) (UserRecord, error) {
	params := &auth.UserToUpdate{}
	if uu.Email != nil {
		params = params.Email(*uu.Email)
	}
	if uu.DisplayName != nil {
		params = params.DisplayName(*uu.DisplayName)
	}
	if uu.Password != nil {
		params = params.Password(*uu.Password)
	}
	if uu.EmailVerified != nil {
		params = params.EmailVerified(*uu.EmailVerified)
	}
	if uu.Disabled != nil {
		params = params.Disabled(*uu.Disabled)
	}
	u, err := f.client.UpdateUser(ctx, uid, params)
	if err != nil {
		return UserRecord{}, mapFirebaseErr("update user", err)
	}
	return fromFirebase(u), nil
}

func (f *Firebase) DeleteUser(ctx context.Context, uid string) error {
	return mapFirebaseErr("delete user", f.client.DeleteUser(ctx, uid))
}

func (f *Firebase) SetCustomClaims(ctx context.Context, uid string, claims map[string]any) error {
	return mapFirebaseErr("set custom claims", f.client.SetCustomUserClaims(ctx, uid, claims))
}

func (f *Firebase) RevokeSessions(ctx context.Context, uid string) error {
	return mapFirebaseErr("revoke sessions", f.client.RevokeRefreshTokens(ctx, uid))
}

// ListUsers pages through all users, stopping at max when max > 0.
func (f *Firebase) ListUsers(ctx context.Context, max int) ([]UserRecord, error) {
	var out []UserRecord
	it := f.client.Users(ctx, "")
	for max <= 0 || len(out) < max {
		u, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, mapFirebaseErr("list users", err)
		}
		out = append(out, fromFirebase(u.UserRecord))
	}
	return out, nil
}

func (f *Firebase) PasswordResetLink(ctx context.Context, email string) (string, error) {
	link, err := f.client.PasswordResetLink(ctx, email)
	if err != nil {
		return "", mapFirebaseErr("password reset link", err)
	}
	return link, nil
}

func fromFirebase(u *auth.UserRecord) UserRecord {
	rec := UserRecord{
		UID:           u.UID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		EmailVerified: u.EmailVerified,
		Disabled:      u.Disabled,
		CustomClaims:  u.CustomClaims,
	}
	if u.TokensValidAfterMillis > 0 {
		rec.TokensValidAfter = time.UnixMilli(u.TokensValidAfterMillis).UTC()
	}
	if u.UserMetadata != nil {
		rec.CreatedAt = time.UnixMilli(u.UserMetadata.CreationTimestamp).UTC()
		if ms := u.UserMetadata.LastLogInTimestamp; ms > 0 {
			t := time.UnixMilli(ms).UTC()
			rec.LastSignInAt = &t
		}
	}
	return rec
}

func mapFirebaseErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case auth.IsUserNotFound(err):
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	case auth.IsEmailAlreadyExists(err):
		return fmt.Errorf("%s: %w", op, ErrEmailExists)
	default:
		return fmt.Errorf("%s: %w: %v", op, apperr.ErrUpstream, err)
	}
}
