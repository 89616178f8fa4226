// internal/app/features/organizations/dioceses.go
package organizations

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samaquete/admin/internal/app/features/shared/httpjson"
	diocesestore "github.com/samaquete/admin/internal/app/store/dioceses"
	"github.com/samaquete/admin/internal/app/system/auth"
	"github.com/samaquete/admin/internal/app/system/limits"
	"github.com/samaquete/admin/internal/app/system/timeouts"
)

// ServeDioceses lists the fixed dioceses.
// GET /api/dioceses
func (h *Handler) ServeDioceses(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	out, err := h.Dioceses.List(ctx, c)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.OK(w, out)
}

// ServeDiocese returns one diocese.
// GET /api/dioceses/{id}
func (h *Handler) ServeDiocese(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	d, err := h.Dioceses.Get(ctx, c, chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.OK(w, d)
}

// HandleDioceseUpdate edits name, bishop, location or contact (super admin).
// PUT /api/dioceses/{id}
func (h *Handler) HandleDioceseUpdate(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	var u diocesestore.Update
	if err := httpjson.Decode(w, r, &u, limits.MaxJSONBody); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	d, err := h.Dioceses.Update(ctx, c, chi.URLParam(r, "id"), u)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.OK(w, d)
}
