package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samaquete/admin/internal/app/system/identity"
	"github.com/samaquete/admin/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FakeIdentity is an in-memory identity.Provider. Tokens are "token-<uid>"
// and stop verifying once the user's sessions are revoked.
type FakeIdentity struct {
	mu       sync.Mutex
	users    map[string]*fakeUser
	Revoked  map[string]int
	Password map[string]string
}

type fakeUser struct {
	rec     identity.UserRecord
	revoked bool
}

// NewFakeIdentity returns an empty provider.
func NewFakeIdentity() *FakeIdentity {
	return &FakeIdentity{
		users:    map[string]*fakeUser{},
		Revoked:  map[string]int{},
		Password: map[string]string{},
	}
}

// AddUser registers a user carrying c as custom claims and returns its token.
func (f *FakeIdentity) AddUser(c models.Claims) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.UID == "" {
		c.UID = primitive.NewObjectID().Hex()
	}
	f.users[c.UID] = &fakeUser{rec: identity.UserRecord{
		UID:          c.UID,
		Email:        c.Email,
		DisplayName:  c.Name,
		CreatedAt:    time.Now().UTC(),
		CustomClaims: identity.ClaimsToMap(c),
	}}
	return "token-" + c.UID
}

func (f *FakeIdentity) VerifyIDToken(_ context.Context, tok string) (models.Claims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[strings.TrimPrefix(tok, "token-")]
	if !ok || !strings.HasPrefix(tok, "token-") || u.revoked || u.rec.Disabled {
		return models.Claims{}, identity.ErrInvalidToken
	}
	return u.rec.Claims(), nil
}

func (f *FakeIdentity) GetUser(_ context.Context, uid string) (identity.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[uid]
	if !ok {
		return identity.UserRecord{}, identity.ErrUserNotFound
	}
	return u.rec, nil
}

func (f *FakeIdentity) GetUserByEmail(_ context.Context, email string) (identity.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u := f.byEmail(email); u != nil {
		return u.rec, nil
	}
	return identity.UserRecord{}, identity.ErrUserNotFound
}

func (f *FakeIdentity) byEmail(email string) *fakeUser {
	for _, u := range f.users {
		if strings.EqualFold(u.rec.Email, email) {
			return u
		}
	}
	return nil
}

func (f *FakeIdentity) CreateUser(_ context.Context, nu identity.NewUser) (identity.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.byEmail(nu.Email) != nil {
		return identity.UserRecord{}, identity.ErrEmailExists
	}
	uid := primitive.NewObjectID().Hex()
	rec := identity.UserRecord{UID: uid, Email: nu.Email, DisplayName: nu.DisplayName, CreatedAt: time.Now().UTC()}
	f.users[uid] = &fakeUser{rec: rec}
	f.Password[uid] = nu.Password
	return rec, nil
}

func (f *FakeIdentity) UpdateUser(_ context.Context, uid string, uu identity.UserUpdate) (identity.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[uid]
	if !ok {
		return identity.UserRecord{}, identity.ErrUserNotFound
	}
	if uu.Email != nil {
		if other := f.byEmail(*uu.Email); other != nil && other.rec.UID != uid {
			return identity.UserRecord{}, identity.ErrEmailExists
		}
		u.rec.Email = *uu.Email
	}
	if uu.DisplayName != nil {
		u.rec.DisplayName = *uu.DisplayName
	}
	if uu.EmailVerified != nil {
		u.rec.EmailVerified = *uu.EmailVerified
	}
	if uu.Disabled != nil {
		u.rec.Disabled = *uu.Disabled
	}
	if uu.Password != nil {
		f.Password[uid] = *uu.Password
	}
	return u.rec, nil
}

func (f *FakeIdentity) DeleteUser(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[uid]; !ok {
		return identity.ErrUserNotFound
	}
	delete(f.users, uid)
	return nil
}

func (f *FakeIdentity) SetCustomClaims(_ context.Context, uid string, claims map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[uid]
	if !ok {
		return identity.ErrUserNotFound
	}
	u.rec.CustomClaims = claims
	return nil
}

func (f *FakeIdentity) RevokeSessions(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[uid]
	if !ok {
		return identity.ErrUserNotFound
	}
	u.revoked = true
	u.rec.TokensValidAfter = time.Now().UTC()
	f.Revoked[uid]++
	return nil
}

func (f *FakeIdentity) ListUsers(_ context.Context, max int) ([]identity.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]identity.UserRecord, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u.rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out, nil
}

func (f *FakeIdentity) PasswordResetLink(_ context.Context, email string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.byEmail(email) == nil {
		return "", identity.ErrUserNotFound
	}
	return fmt.Sprintf("https://reset.test/?email=%s", email), nil
}

var _ identity.Provider = (*FakeIdentity)(nil)
