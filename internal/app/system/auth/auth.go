package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/app/system/authz"
	"github.com/samaquete/admin/internal/app/system/identity"
	"github.com/samaquete/admin/internal/app/system/timeouts"
	"github.com/samaquete/admin/internal/domain/models"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	DefaultSessionName = "samaquete-session"

	uidKey      = "uid"
	signedInKey = "signed_in_at"
)

type ctxKey string

const currentClaimsKey ctxKey = "currentClaims"

// SessionManager authenticates requests. A Bearer ID token wins; otherwise
// the session cookie's uid is resolved to fresh claims through the provider.
type SessionManager struct {
	store    *sessions.CookieStore
	name     string
	provider identity.Provider
	log      *zap.Logger
}

// NewSessionManager builds the cookie store. sessionKey must be at least 32
// bytes; a shorter key is accepted with a warning.
func NewSessionManager(provider identity.Provider, sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = DefaultSessionName
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{store: store, name: name, provider: provider, log: logger}, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Current-claims helpers                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// CurrentClaims returns the caller's claims and whether the request is signed in.
func CurrentClaims(r *http.Request) (models.Claims, bool) {
	c, ok := r.Context().Value(currentClaimsKey).(models.Claims)
	return c, ok && c.UID != ""
}

// WithClaims attaches claims to the request context. Tests use it to bypass
// token verification.
func WithClaims(r *http.Request, c models.Claims) *http.Request {
	return r.WithContext(ContextWithClaims(r.Context(), c))
}

// ContextWithClaims is WithClaims for a bare context.
func ContextWithClaims(ctx context.Context, c models.Claims) context.Context {
	return context.WithValue(ctx, currentClaimsKey, c.Normalize())
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// LoadClaims resolves the caller and stores the claims in the context.
// Failures leave the request anonymous; the Require* middleware decides.
func (sm *SessionManager) LoadClaims(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentClaims(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		if c, ok := sm.resolve(r); ok {
			r = WithClaims(r, c)
		}
		next.ServeHTTP(w, r)
	})
}

func (sm *SessionManager) resolve(r *http.Request) (models.Claims, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if tok, ok := identity.BearerToken(r.Header.Get("Authorization")); ok {
		c, err := sm.provider.VerifyIDToken(ctx, tok)
		if err != nil {
			sm.logResolveErr("bearer token rejected", err)
			return models.Claims{}, false
		}
		return c, true
	}

	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		return models.Claims{}, false
	}
	uid, _ := sess.Values[uidKey].(string)
	if uid == "" {
		return models.Claims{}, false
	}
	u, err := sm.provider.GetUser(ctx, uid)
	if err != nil {
		sm.logResolveErr("session user lookup failed", err, zap.String("uid", uid))
		return models.Claims{}, false
	}
	if u.Disabled {
		return models.Claims{}, false
	}
	// A cookie minted before the last revocation is treated as signed out.
	signedAt, _ := sess.Values[signedInKey].(int64)
	if signedAt == 0 || !time.UnixMilli(signedAt).After(u.TokensValidAfter) {
		sm.log.Debug("session predates revocation", zap.String("uid", uid))
		return models.Claims{}, false
	}
	return u.Claims(), true
}

func (sm *SessionManager) logResolveErr(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if errors.Is(err, apperr.ErrUpstream) {
		sm.log.Warn(msg, fields...)
		return
	}
	sm.log.Debug(msg, fields...)
}

// RequireSignedIn rejects anonymous requests with 401.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentClaims(r); !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects anonymous requests with 401 and callers whose role is
// not listed with 403.
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := CurrentClaims(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if !authz.HasAnyRole(c, allowed...) {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session lifecycle                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

// StartSession stores uid in the session cookie.
func (sm *SessionManager) StartSession(w http.ResponseWriter, r *http.Request, uid string) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values[uidKey] = uid
	sess.Values[signedInKey] = time.Now().UTC().UnixMilli()
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// RenewSession restamps the cookie session of uid so it outlives a
// revocation the user just caused on their own account, such as a password
// change. Requests without such a session are left alone.
func (sm *SessionManager) RenewSession(w http.ResponseWriter, r *http.Request, uid string) error {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		return nil
	}
	if cur, _ := sess.Values[uidKey].(string); cur == "" || cur != uid {
		return nil
	}
	sess.Values[signedInKey] = time.Now().UTC().UnixMilli()
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("renew session: %w", err)
	}
	return nil
}

// EndSession expires the session cookie.
func (sm *SessionManager) EndSession(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.name)
	delete(sess.Values, uidKey)
	delete(sess.Values, signedInKey)
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Provider exposes the identity provider the manager verifies against.
func (sm *SessionManager) Provider() identity.Provider { return sm.provider }

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
