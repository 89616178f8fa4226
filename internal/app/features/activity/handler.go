// internal/app/features/activity/handler.go
package activity

import (
	"context"
	"net/http"
	"time"

	"github.com/samaquete/admin/internal/app/accessor"
	uierrors "github.com/samaquete/admin/internal/app/features/errors"
	"github.com/samaquete/admin/internal/app/features/shared/httpjson"
	"github.com/samaquete/admin/internal/app/features/shared/params"
	"github.com/samaquete/admin/internal/app/system/auth"
	"github.com/samaquete/admin/internal/app/system/paging"
	"github.com/samaquete/admin/internal/app/system/timeouts"
	"github.com/samaquete/admin/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves the activity log and its summary.
type Handler struct {
	Activity *accessor.Activity
	Loc      *time.Location
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

// NewHandler creates a new activity Handler. "Today" in the statistics is
// computed in loc.
func NewHandler(a *accessor.Activity, loc *time.Location, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{Activity: a, Loc: loc, ErrLog: errLog, Log: logger}
}

// userID resolves ?userId=. Without it, admins read their own activity and
// super admins read everyone's.
func userID(r *http.Request, c models.Claims) string {
	if id := params.String(r, "userId"); id != "" {
		return id
	}
	if c.Role == models.RoleSuperAdmin {
		return ""
	}
	return c.UID
}

// ServeLogs lists activity entries, newest first.
// GET /api/activity/logs?userId=&days=&limit=
func (h *Handler) ServeLogs(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	logs, err := h.Activity.Logs(ctx, c, userID(r, c), paging.ParseInt(r, "days", 0), paging.ParseInt(r, "limit", 0))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.OK(w, logs)
}

// ServeStats summarizes the same window by action and entity type.
// GET /api/activity/stats?userId=&days=
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	stats, err := h.Activity.Stats(ctx, c, userID(r, c), paging.ParseInt(r, "days", 0), h.Loc)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.OK(w, stats)
}
