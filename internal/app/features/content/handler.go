// internal/app/features/content/handler.go
package content

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samaquete/admin/internal/app/accessor"
	uierrors "github.com/samaquete/admin/internal/app/features/errors"
	"github.com/samaquete/admin/internal/app/features/shared/httpjson"
	"github.com/samaquete/admin/internal/app/features/shared/params"
	contentstore "github.com/samaquete/admin/internal/app/store/content"
	"github.com/samaquete/admin/internal/app/system/auth"
	"github.com/samaquete/admin/internal/app/system/limits"
	"github.com/samaquete/admin/internal/app/system/normalize"
	"github.com/samaquete/admin/internal/app/system/paging"
	"github.com/samaquete/admin/internal/app/system/timeouts"
	"github.com/samaquete/admin/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves one content kind (news, prayers or activities). The
// router mounts one Handler per kind.
type Handler struct {
	Content *accessor.Content
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
}

func NewHandler(content *accessor.Content, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Content: content, ErrLog: errLog, Log: logger.With(zap.String("kind", string(content.Kind())))}
}

type listResponse struct {
	Items []models.ContentItem `json:"items"`
	paging.Range
}

type statusRequest struct {
	Status models.ContentStatus `json:"status"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// ServeList lists items visible to the caller.
// GET /api/{kind}?status=&dioceseId=&parishId=&churchId=&offset=&limit=
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page := paging.Parse(r)
	items, total, err := h.Content.List(ctx, c, accessor.ContentQuery{
		Scope:  params.Scope(r),
		Status: models.ContentStatus(normalize.Status(params.String(r, "status"))),
		Limit:  int64(page.Limit),
		Skip:   int64(page.Offset),
	})
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.OK(w, listResponse{Items: items, Range: paging.ComputeRange(page, len(items), total)})
}

// ServeItem returns one item.
// GET /api/{kind}/{id}
func (h *Handler) ServeItem(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	item, err := h.Content.Get(ctx, c, chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.OK(w, item)
}

// HandleCreate stores a new item, as a draft unless the body asks for
// another status. Asking for published needs publish rights.
// POST /api/{kind}
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	var in models.ContentItem
	if err := httpjson.Decode(w, r, &in, limits.MaxContentBody); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	item, err := h.Content.Create(ctx, c, in)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	h.Log.Debug("content created", zap.String("id", item.ID), zap.String("status", string(item.Status)))
	httpjson.Created(w, item)
}

// HandleUpdate edits the text fields of an item.
// PUT /api/{kind}/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	var u contentstore.Update
	if err := httpjson.Decode(w, r, &u, limits.MaxContentBody); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	item, err := h.Content.Update(ctx, c, chi.URLParam(r, "id"), u)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.OK(w, item)
}

// HandleDelete removes an item.
// DELETE /api/{kind}/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Content.Delete(ctx, c, chi.URLParam(r, "id")); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleStatus moves an item between draft, pending and published.
// POST /api/{kind}/{id}/status
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	var req statusRequest
	if err := httpjson.Decode(w, r, &req, limits.MaxJSONBody); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	item, err := h.Content.SetStatus(ctx, c, chi.URLParam(r, "id"), models.ContentStatus(normalize.Status(string(req.Status))))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.OK(w, item)
}

// HandleValidate publishes a pending item.
// POST /api/{kind}/{id}/validate
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	item, err := h.Content.Validate(ctx, c, chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.OK(w, item)
}

// HandleReject sends a pending item back to draft.
// POST /api/{kind}/{id}/reject
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	var req rejectRequest
	if err := httpjson.Decode(w, r, &req, limits.MaxJSONBody); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	item, err := h.Content.Reject(ctx, c, chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.OK(w, item)
}

// HandleView bumps the view counter.
// POST /api/{kind}/{id}/view
func (h *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Content.RecordView(ctx, c, chi.URLParam(r, "id")); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
