// internal/app/features/notifications/handler.go
package notifications

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samaquete/admin/internal/app/accessor"
	uierrors "github.com/samaquete/admin/internal/app/features/errors"
	"github.com/samaquete/admin/internal/app/features/shared/httpjson"
	"github.com/samaquete/admin/internal/app/features/shared/params"
	"github.com/samaquete/admin/internal/app/system/auth"
	"github.com/samaquete/admin/internal/app/system/paging"
	"github.com/samaquete/admin/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves the parish notification feed.
type Handler struct {
	Notifications *accessor.Notifications
	ErrLog        *uierrors.ErrorLogger
	Log           *zap.Logger
}

func NewHandler(n *accessor.Notifications, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Notifications: n, ErrLog: errLog, Log: logger}
}

// ServeList returns the newest notifications and the unread count.
// GET /api/notifications?dioceseId=&parishId=&type=&unread=&limit=
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	q := accessor.NotificationQuery{
		Scope: params.Scope(r),
		Type:  params.String(r, "type"),
		Limit: int64(paging.ParseInt(r, "limit", 0)),
	}
	if unread := params.Bool(r, "unread"); unread != nil {
		q.UnreadOnly = *unread
	}
	feed, err := h.Notifications.List(ctx, c, q)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.OK(w, feed)
}

// HandleMarkRead flags one notification as read.
// POST /api/notifications/{id}/read
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Notifications.MarkRead(ctx, c, chi.URLParam(r, "id")); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
