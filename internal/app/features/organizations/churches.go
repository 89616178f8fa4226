// internal/app/features/organizations/churches.go
package organizations

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samaquete/admin/internal/app/features/shared/httpjson"
	"github.com/samaquete/admin/internal/app/features/shared/params"
	churchstore "github.com/samaquete/admin/internal/app/store/churches"
	"github.com/samaquete/admin/internal/app/system/auth"
	"github.com/samaquete/admin/internal/app/system/limits"
	"github.com/samaquete/admin/internal/app/system/paging"
	"github.com/samaquete/admin/internal/app/system/timeouts"
	"github.com/samaquete/admin/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ServeChurches lists churches visible to the caller.
// GET /api/churches?dioceseId=&parishId=
func (h *Handler) ServeChurches(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page := paging.Parse(r)
	items, err := h.Churches.List(ctx, c, params.Scope(r), options.Find().SetSkip(int64(page.Offset)).SetLimit(int64(page.Limit)))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.OK(w, items)
}

// ServeChurch returns one church.
// GET /api/churches/{id}
func (h *Handler) ServeChurch(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ch, err := h.Churches.Get(ctx, c, chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.OK(w, ch)
}

// HandleChurchCreate adds a church to a diocese and, optionally, a parish.
// POST /api/churches
func (h *Handler) HandleChurchCreate(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	var in models.Church
	if err := httpjson.Decode(w, r, &in, limits.MaxJSONBody); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ch, err := h.Churches.Create(ctx, c, in)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.Created(w, ch)
}

// HandleChurchUpdate edits a church.
// PUT /api/churches/{id}
func (h *Handler) HandleChurchUpdate(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	var u churchstore.Update
	if err := httpjson.Decode(w, r, &u, limits.MaxJSONBody); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ch, err := h.Churches.Update(ctx, c, chi.URLParam(r, "id"), u)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.OK(w, ch)
}

// HandleChurchDelete removes a church.
// DELETE /api/churches/{id}
func (h *Handler) HandleChurchDelete(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Churches.Delete(ctx, c, chi.URLParam(r, "id")); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
