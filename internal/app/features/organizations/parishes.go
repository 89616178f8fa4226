// internal/app/features/organizations/parishes.go
package organizations

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samaquete/admin/internal/app/features/shared/httpjson"
	"github.com/samaquete/admin/internal/app/features/shared/params"
	parishstore "github.com/samaquete/admin/internal/app/store/parishes"
	"github.com/samaquete/admin/internal/app/system/auth"
	"github.com/samaquete/admin/internal/app/system/limits"
	"github.com/samaquete/admin/internal/app/system/paging"
	"github.com/samaquete/admin/internal/app/system/timeouts"
	"github.com/samaquete/admin/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type parishList struct {
	Items []models.Parish `json:"items"`
	paging.Range
}

// ServeParishes lists the parishes visible to the caller, narrowed by
// ?dioceseId= and paged by ?offset=&limit=.
// GET /api/parishes
func (h *Handler) ServeParishes(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	requested := params.Scope(r)
	page := paging.Parse(r)
	total, err := h.Parishes.Count(ctx, c, requested)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	items, err := h.Parishes.List(ctx, c, requested, options.Find().SetSkip(int64(page.Offset)).SetLimit(int64(page.Limit)))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.OK(w, parishList{Items: items, Range: paging.ComputeRange(page, len(items), total)})
}

// ServeParish returns one parish.
// GET /api/parishes/{id}
func (h *Handler) ServeParish(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Parishes.Get(ctx, c, chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.OK(w, p)
}

// HandleParishCreate adds a parish to a diocese.
// POST /api/parishes
func (h *Handler) HandleParishCreate(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	var in models.Parish
	if err := httpjson.Decode(w, r, &in, limits.MaxJSONBody); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Parishes.Create(ctx, c, in)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.Created(w, p)
}

// HandleParishUpdate edits a parish.
// PUT /api/parishes/{id}
func (h *Handler) HandleParishUpdate(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	var u parishstore.Update
	if err := httpjson.Decode(w, r, &u, limits.MaxJSONBody); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Parishes.Update(ctx, c, chi.URLParam(r, "id"), u)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.OK(w, p)
}

// HandleParishDelete removes a parish with no churches.
// DELETE /api/parishes/{id}
func (h *Handler) HandleParishDelete(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Parishes.Delete(ctx, c, chi.URLParam(r, "id")); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
