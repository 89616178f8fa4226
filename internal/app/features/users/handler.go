// internal/app/features/users/handler.go
package users

import (
	"context"
	"net/http"

	"github.com/samaquete/admin/internal/app/accessor"
	uierrors "github.com/samaquete/admin/internal/app/features/errors"
	"github.com/samaquete/admin/internal/app/features/shared/httpjson"
	"github.com/samaquete/admin/internal/app/system/auth"
	"github.com/samaquete/admin/internal/app/system/identity"
	"github.com/samaquete/admin/internal/app/system/inputval"
	"github.com/samaquete/admin/internal/app/system/limits"
	"github.com/samaquete/admin/internal/app/system/timeouts"
	"github.com/samaquete/admin/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves admin account management. Every operation is limited to
// super admins by the accessor, except clearing one's own
// mustChangePassword flag.
type Handler struct {
	Users  *accessor.Users
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(users *accessor.Users, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Users: users, ErrLog: errLog, Log: logger}
}

type createRequest struct {
	Email      string `json:"email" validate:"required,email" label:"Email"`
	Name       string `json:"name" label:"Nom"`
	Role       string `json:"role" validate:"required,role" label:"Rôle"`
	EntityType string `json:"entityType" label:"Type d'entité"`
	EntityID   string `json:"entityId" label:"Entité"`
}

type updateRequest struct {
	UID        string  `json:"uid" validate:"required" label:"UID"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email" label:"Email"`
	Name       *string `json:"name,omitempty" label:"Nom"`
	Role       *string `json:"role,omitempty" validate:"omitempty,role" label:"Rôle"`
	EntityType *string `json:"entityType,omitempty" label:"Type d'entité"`
	EntityID   *string `json:"entityId,omitempty" label:"Entité"`
	DioceseID  *string `json:"dioceseId,omitempty" label:"Diocèse"`
	ParishID   *string `json:"parishId,omitempty" label:"Paroisse"`
}

type emailRequest struct {
	UID   string `json:"uid" validate:"required" label:"UID"`
	Email string `json:"email" validate:"required,email" label:"Email"`
}

type uidRequest struct {
	UID string `json:"uid" validate:"required" label:"UID"`
}

type claimRequest struct {
	UID string `json:"uid,omitempty"`
}

type resetRequest struct {
	Email string `json:"email" validate:"required,email" label:"Email"`
}

// userView is an account with its claims decoded.
type userView struct {
	identity.UserRecord
	Claims models.Claims `json:"claims"`
}

func viewOf(u identity.UserRecord) userView {
	return userView{UserRecord: u, Claims: u.Claims()}
}

// decode reads a JSON body into dst and validates its tags.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpjson.Decode(w, r, dst, limits.MaxJSONBody); err != nil {
		h.ErrLog.Write(w, r, err)
		return false
	}
	if err := inputval.Check(dst); err != nil {
		h.ErrLog.Write(w, r, err)
		return false
	}
	return true
}

// HandleCreate creates an admin account with the shared default password.
// POST /api/users/create
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	var req createRequest
	if !h.decode(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Users.Create(ctx, c, accessor.NewUserInput{
		Email:      req.Email,
		Name:       req.Name,
		Role:       req.Role,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
	})
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	h.Log.Info("admin account created", zap.String("uid", out.UID), zap.String("role", req.Role), zap.String("by", c.UID))
	httpjson.Created(w, out)
}

// HandleUpdate rewrites an account's claims and signs it out everywhere.
// POST /api/users/update
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	var req updateRequest
	if !h.decode(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Update(ctx, c, req.UID, accessor.UserChange{
		Email:      req.Email,
		Name:       req.Name,
		Role:       req.Role,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		DioceseID:  req.DioceseID,
		ParishID:   req.ParishID,
	})
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.OK(w, viewOf(u))
}

// POST /api/users/update-email
func (h *Handler) HandleUpdateEmail(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	var req emailRequest
	if !h.decode(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.UpdateEmail(ctx, c, req.UID, req.Email)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.OK(w, viewOf(u))
}

// POST /api/users/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	var req uidRequest
	if !h.decode(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Users.Delete(ctx, c, req.UID); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleClearPasswordFlag drops mustChangePassword. An empty uid targets
// the caller.
// POST /api/users/update-password-claim
func (h *Handler) HandleClearPasswordFlag(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	var req claimRequest
	if r.ContentLength != 0 {
		if !h.decode(w, r, &req) {
			return
		}
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Users.ClearMustChangePassword(ctx, c, req.UID); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleResetPassword returns a password reset link for an account.
// POST /api/users/reset-password
func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	var req resetRequest
	if !h.decode(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	link, err := h.Users.ResetPasswordLink(ctx, c, req.Email)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.OK(w, map[string]string{"link": link})
}

// ServeList lists every admin account with its claims.
// GET /api/users/list
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	us, err := h.Users.List(ctx, c)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	out := make([]userView, 0, len(us))
	for _, u := range us {
		out = append(out, viewOf(u))
	}
	httpjson.OK(w, out)
}
