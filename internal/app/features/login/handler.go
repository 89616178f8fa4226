// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"maps"
	"net/http"
	"strings"

	uierrors "github.com/samaquete/admin/internal/app/features/errors"
	"github.com/samaquete/admin/internal/app/features/shared/httpjson"
	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/app/system/auditlog"
	"github.com/samaquete/admin/internal/app/system/auth"
	"github.com/samaquete/admin/internal/app/system/authz"
	"github.com/samaquete/admin/internal/app/system/identity"
	"github.com/samaquete/admin/internal/app/system/inputval"
	"github.com/samaquete/admin/internal/app/system/limits"
	"github.com/samaquete/admin/internal/app/system/normalize"
	"github.com/samaquete/admin/internal/app/system/ratelimit"
	"github.com/samaquete/admin/internal/app/system/timeouts"
	"github.com/samaquete/admin/internal/domain/models"
	"go.uber.org/zap"
)

// MinPasswordLength applies to passwords chosen through this API.
const MinPasswordLength = 8

// PasswordSignIn is implemented by identity providers that check passwords
// themselves (the local provider). Firebase deployments sign in on the client.
type PasswordSignIn interface {
	SignIn(ctx context.Context, email, password string) (string, models.Claims, error)
	ConfirmPasswordReset(ctx context.Context, code, newPassword string) error
}

type Handler struct {
	SessionMgr *auth.SessionManager
	Passwords  PasswordSignIn // nil when sign-in happens client-side
	Limiter    *ratelimit.LoginLimiter
	AuditLog   *auditlog.Logger
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, passwords PasswordSignIn, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		SessionMgr: sessionMgr,
		Passwords:  passwords,
		Limiter:    limiter,
		AuditLog:   audit,
		ErrLog:     errLog,
		Log:        logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Request / response bodies                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

type sessionRequest struct {
	IDToken string `json:"idToken" validate:"required" label:"Jeton"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email" label:"Email"`
	Password string `json:"password" validate:"required" label:"Mot de passe"`
}

type passwordRequest struct {
	Password string `json:"password" validate:"required,min=8" label:"Mot de passe"`
}

type resetRequest struct {
	Code     string `json:"code" validate:"required" label:"Code"`
	Password string `json:"password" validate:"required,min=8" label:"Mot de passe"`
}

// meResponse describes the signed-in admin and what the console may offer them.
type meResponse struct {
	models.Claims
	CanManageUsers bool `json:"canManageUsers"`
	CanExport      bool `json:"canExport"`
	IsBroad        bool `json:"isBroad"`
}

type loginResponse struct {
	IDToken string     `json:"idToken,omitempty"`
	User    meResponse `json:"user"`
}

func describe(c models.Claims) meResponse {
	c = c.Normalize()
	return meResponse{
		Claims:         c,
		CanManageUsers: authz.CanManageUsers(c),
		CanExport:      authz.CanExport(c),
		IsBroad:        c.IsBroad(),
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Handlers                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleSession exchanges an ID token for a session cookie.
// POST /api/auth/session
func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	if ok, msg := h.Limiter.Check(r, ""); !ok {
		httpjson.Write(w, http.StatusTooManyRequests, map[string]string{"error": msg})
		return
	}
	var req sessionRequest
	if err := httpjson.Decode(w, r, &req, limits.MaxAuthBody); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	if err := inputval.Check(req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	c, err := h.SessionMgr.Provider().VerifyIDToken(ctx, strings.TrimSpace(req.IDToken))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	h.startSession(w, r, c, "")
}

// HandleLogin checks an email and password against the local provider.
// POST /api/auth/login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if h.Passwords == nil {
		httpjson.Write(w, http.StatusNotFound, map[string]string{"error": "connexion par mot de passe indisponible"})
		return
	}
	var req loginRequest
	if err := httpjson.Decode(w, r, &req, limits.MaxAuthBody); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	req.Email = normalize.Email(req.Email)
	if ok, msg := h.Limiter.Check(r, req.Email); !ok {
		h.Log.Warn("login rate limited", zap.String("email", req.Email), zap.String("ip", ratelimit.ClientIP(r)))
		httpjson.Write(w, http.StatusTooManyRequests, map[string]string{"error": msg})
		return
	}
	if err := inputval.Check(req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	tok, c, err := h.Passwords.SignIn(ctx, req.Email, req.Password)
	if errors.Is(err, identity.ErrInvalidCredentials) {
		httpjson.Write(w, http.StatusUnauthorized, map[string]string{"error": "email ou mot de passe incorrect"})
		return
	}
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	h.Limiter.ResetEmail(req.Email)
	h.startSession(w, r, c, tok)
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, c models.Claims, tok string) {
	if !models.IsValidRole(c.Role) {
		h.ErrLog.Write(w, r, apperr.Denied("account %s has no admin role", c.UID))
		return
	}
	if err := h.SessionMgr.StartSession(w, r, c.UID); err != nil {
		h.ErrLog.LogServerError(w, r, "session save failed", err, "Impossible d'ouvrir la session.")
		return
	}
	h.AuditLog.Record(r.Context(), auditlog.Entry(c, models.ActionLogin, "user", c.UID, c.Email))
	h.Log.Info("admin signed in", zap.String("uid", c.UID), zap.String("role", c.Role))
	httpjson.OK(w, loginResponse{IDToken: tok, User: describe(c)})
}

// HandleLogout clears the session cookie.
// DELETE /api/auth/session
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if c, ok := auth.CurrentClaims(r); ok {
		h.AuditLog.Record(r.Context(), auditlog.Entry(c, models.ActionLogout, "user", c.UID, c.Email))
	}
	if err := h.SessionMgr.EndSession(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServeMe returns the caller's claims.
// GET /api/auth/me
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	httpjson.OK(w, describe(c))
}

// HandleChangePassword sets the caller's own password and clears the
// first-sign-in flag.
// POST /api/auth/password
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	var req passwordRequest
	if err := httpjson.Decode(w, r, &req, limits.MaxAuthBody); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	if err := inputval.Check(req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	idp := h.SessionMgr.Provider()
	if _, err := idp.UpdateUser(ctx, c.UID, identity.UserUpdate{Password: &req.Password}); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	rec, err := idp.GetUser(ctx, c.UID)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	if _, ok := rec.CustomClaims[identity.ClaimMustChangePassword]; ok {
		m := maps.Clone(rec.CustomClaims)
		delete(m, identity.ClaimMustChangePassword)
		if err := idp.SetCustomClaims(ctx, c.UID, m); err != nil {
			h.ErrLog.Write(w, r, err)
			return
		}
	}
	if err := h.SessionMgr.RenewSession(w, r, c.UID); err != nil {
		h.Log.Warn("session renewal failed", zap.String("uid", c.UID), zap.Error(err))
	}
	h.AuditLog.Record(r.Context(), auditlog.Entry(c, models.ActionPasswordChange, "user", c.UID, c.Email))
	w.WriteHeader(http.StatusNoContent)
}

// HandleResetPassword completes a reset link issued by the local provider.
// POST /api/auth/reset-password
func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	if h.Passwords == nil {
		httpjson.Write(w, http.StatusNotFound, map[string]string{"error": "réinitialisation indisponible"})
		return
	}
	if ok, msg := h.Limiter.Check(r, ""); !ok {
		httpjson.Write(w, http.StatusTooManyRequests, map[string]string{"error": msg})
		return
	}
	var req resetRequest
	if err := httpjson.Decode(w, r, &req, limits.MaxAuthBody); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	if err := inputval.Check(req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	if err := h.Passwords.ConfirmPasswordReset(ctx, req.Code, req.Password); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
