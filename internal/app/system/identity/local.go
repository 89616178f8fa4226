// internal/app/system/identity/local.go
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/securecookie"
	identitystore "github.com/samaquete/admin/internal/app/store/identities"
	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

const (
	localIssuer   = "samaquete-local"
	resetCodeTTL  = time.Hour
	resetCodeSize = 24
)

// Local implements Provider on the identities collection with bcrypt
// password hashes and HS256-signed ID tokens.
type Local struct {
	store    *identitystore.Store
	secret   []byte
	ttl      time.Duration
	resetURL string
	cost     int
	now      func() time.Time
}

// LocalOption customizes a Local provider.
type LocalOption func(*Local)

// WithBcryptCost overrides bcrypt.DefaultCost (tests use bcrypt.MinCost).
func WithBcryptCost(cost int) LocalOption {
	return func(l *Local) { l.cost = cost }
}

// WithResetURL sets the page password-reset links point to.
func WithResetURL(u string) LocalOption {
	return func(l *Local) { l.resetURL = u }
}

// NewLocal returns a Local provider. secret signs tokens; ttl is their lifetime.
func NewLocal(store *identitystore.Store, secret []byte, ttl time.Duration, opts ...LocalOption) *Local {
	l := &Local{
		store:    store,
		secret:   secret,
		ttl:      ttl,
		resetURL: "/reset-password",
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Email    string         `json:"email,omitempty"`
	Name     string         `json:"name,omitempty"`
	IssuedMs int64          `json:"iat_ms"`
	Custom   map[string]any `json:"claims,omitempty"`
}

// SignIn checks the password and returns a signed ID token.
func (l *Local) SignIn(ctx context.Context, email, password string) (string, models.Claims, error) {
	rec, err := l.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", models.Claims{}, ErrInvalidCredentials
		}
		return "", models.Claims{}, err
	}
	if rec.Disabled || bcrypt.CompareHashAndPassword(rec.PasswordHash, []byte(password)) != nil {
		return "", models.Claims{}, ErrInvalidCredentials
	}

	now := l.now().UTC()
	if err := l.store.Set(ctx, rec.UID, bson.M{"last_sign_in_at": now}); err != nil {
		return "", models.Claims{}, err
	}
	tok, err := l.sign(rec, now)
	if err != nil {
		return "", models.Claims{}, err
	}
	return tok, ClaimsFromMap(rec.UID, rec.Email, rec.DisplayName, rec.CustomClaims), nil
}

func (l *Local) sign(rec identitystore.Record, now time.Time) (string, error) {
	tc := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    localIssuer,
			Subject:   rec.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(l.ttl)),
		},
		Email:    rec.Email,
		Name:     rec.DisplayName,
		IssuedMs: now.UnixMilli(),
		Custom:   rec.CustomClaims,
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(l.secret)
	if err != nil {
		return "", fmt.Errorf("sign id token: %w", err)
	}
	return s, nil
}

// VerifyIDToken validates the signature and expiry, then rejects tokens of
// disabled identities or tokens issued before the last revocation.
func (l *Local) VerifyIDToken(ctx context.Context, idToken string) (models.Claims, error) {
	var tc tokenClaims
	_, err := jwt.ParseWithClaims(idToken, &tc,
		func(*jwt.Token) (any, error) { return l.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(localIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(l.now),
	)
	if err != nil {
		return models.Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	rec, err := l.store.GetByUID(ctx, tc.Subject)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.Claims{}, ErrInvalidToken
		}
		return models.Claims{}, err
	}
	if rec.Disabled {
		return models.Claims{}, fmt.Errorf("%w: user disabled", ErrInvalidToken)
	}
	if tc.IssuedMs <= rec.TokensValidAfter.UnixMilli() {
		return models.Claims{}, fmt.Errorf("%w: revoked", ErrInvalidToken)
	}
	return ClaimsFromMap(tc.Subject, tc.Email, tc.Name, tc.Custom), nil
}

func (l *Local) GetUser(ctx context.Context, uid string) (UserRecord, error) {
	rec, err := l.store.GetByUID(ctx, uid)
	if err != nil {
		return UserRecord{}, localErr(err)
	}
	return fromLocal(rec), nil
}

func (l *Local) GetUserByEmail(ctx context.Context, email string) (UserRecord, error) {
	rec, err := l.store.GetByEmail(ctx, email)
	if err != nil {
		return UserRecord{}, localErr(err)
	}
	return fromLocal(rec), nil
}

func (l *Local) CreateUser(ctx context.Context, nu NewUser) (UserRecord, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), l.cost)
	if err != nil {
		return UserRecord{}, fmt.Errorf("hash password: %w", err)
	}
	rec, err := l.store.Create(ctx, identitystore.Record{
		Email:            nu.Email,
		PasswordHash:     hash,
		DisplayName:      nu.DisplayName,
		TokensValidAfter: time.Unix(0, 0).UTC(),
	})
	if err != nil {
		return UserRecord{}, localErr(err)
	}
	return fromLocal(rec), nil
}

func (l *Local) UpdateUser(ctx context.Context, uid string, uu UserUpdate) (UserRecord, error) {
	set := bson.M{}
	if uu.Email != nil {
		set["email"] = *uu.Email
	}
	if uu.DisplayName != nil {
		set["display_name"] = *uu.DisplayName
	}
	if uu.EmailVerified != nil {
		set["email_verified"] = *uu.EmailVerified
	}
	if uu.Disabled != nil {
		set["disabled"] = *uu.Disabled
	}
	if uu.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*uu.Password), l.cost)
		if err != nil {
			return UserRecord{}, fmt.Errorf("hash password: %w", err)
		}
		set["password_hash"] = hash
	}
	if len(set) > 0 {
		if err := l.store.Set(ctx, uid, set); err != nil {
			return UserRecord{}, localErr(err)
		}
	}
	return l.GetUser(ctx, uid)
}

func (l *Local) DeleteUser(ctx context.Context, uid string) error {
	return localErr(l.store.Delete(ctx, uid))
}

func (l *Local) SetCustomClaims(ctx context.Context, uid string, claims map[string]any) error {
	return localErr(l.store.Set(ctx, uid, bson.M{"custom_claims": claims}))
}

// RevokeSessions invalidates every token issued up to now.
func (l *Local) RevokeSessions(ctx context.Context, uid string) error {
	return localErr(l.store.Set(ctx, uid, bson.M{"tokens_valid_after": l.now().UTC()}))
}

func (l *Local) ListUsers(ctx context.Context, max int) ([]UserRecord, error) {
	recs, err := l.store.List(ctx, int64(max))
	if err != nil {
		return nil, err
	}
	out := make([]UserRecord, 0, len(recs))
	for _, r := range recs {
		out = append(out, fromLocal(r))
	}
	return out, nil
}

// PasswordResetLink stores a one-hour reset code and returns a link carrying it.
func (l *Local) PasswordResetLink(ctx context.Context, email string) (string, error) {
	rec, err := l.store.GetByEmail(ctx, email)
	if err != nil {
		return "", localErr(err)
	}
	code := fmt.Sprintf("%x", securecookie.GenerateRandomKey(resetCodeSize))
	exp := l.now().UTC().Add(resetCodeTTL)
	if err := l.store.Set(ctx, rec.UID, bson.M{"reset_code": code, "reset_expires": exp}); err != nil {
		return "", localErr(err)
	}
	q := url.Values{"mode": {"resetPassword"}, "oobCode": {code}}
	return l.resetURL + "?" + q.Encode(), nil
}

// ConfirmPasswordReset sets a new password for the holder of code and revokes
// existing sessions.
func (l *Local) ConfirmPasswordReset(ctx context.Context, code, newPassword string) error {
	rec, err := l.store.GetByResetCode(ctx, code, l.now().UTC())
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.Invalid("oobCode", "invalid or expired reset code")
		}
		return err
	}
	if _, err := l.UpdateUser(ctx, rec.UID, UserUpdate{Password: &newPassword}); err != nil {
		return err
	}
	if err := l.store.ClearResetCode(ctx, rec.UID); err != nil {
		return err
	}
	return l.RevokeSessions(ctx, rec.UID)
}

func fromLocal(r identitystore.Record) UserRecord {
	return UserRecord{
		UID:              r.UID,
		Email:            r.Email,
		DisplayName:      r.DisplayName,
		EmailVerified:    r.EmailVerified,
		Disabled:         r.Disabled,
		CreatedAt:        r.CreatedAt,
		LastSignInAt:     r.LastSignInAt,
		CustomClaims:     r.CustomClaims,
		TokensValidAfter: r.TokensValidAfter,
	}
}

func localErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperr.ErrAlreadyExists):
		return ErrEmailExists
	case errors.Is(err, apperr.ErrNotFound):
		return ErrUserNotFound
	default:
		return err
	}
}

var (
	_ Provider = (*Local)(nil)
	_ Provider = (*Firebase)(nil)
)
