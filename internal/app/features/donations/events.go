// internal/app/features/donations/events.go
package donations

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samaquete/admin/internal/app/features/shared/httpjson"
	"github.com/samaquete/admin/internal/app/features/shared/params"
	donationeventstore "github.com/samaquete/admin/internal/app/store/donationevents"
	"github.com/samaquete/admin/internal/app/system/auth"
	"github.com/samaquete/admin/internal/app/system/limits"
	"github.com/samaquete/admin/internal/app/system/timeouts"
	"github.com/samaquete/admin/internal/domain/models"
)

type eventView struct {
	models.DonationEvent
	Progress float64 `json:"progress"`
}

func viewOf(e models.DonationEvent) eventView {
	return eventView{DonationEvent: e, Progress: e.Progress()}
}

// ServeEvents lists fundraising events.
// GET /api/donation-events?dioceseId=&parishId=&active=true
func (h *Handler) ServeEvents(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	activeOnly := false
	if b := params.Bool(r, "active"); b != nil {
		activeOnly = *b
	}
	events, err := h.Events.List(ctx, c, params.Scope(r), activeOnly)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	out := make([]eventView, 0, len(events))
	for _, e := range events {
		out = append(out, viewOf(e))
	}
	httpjson.OK(w, out)
}

// GET /api/donation-events/{id}
func (h *Handler) ServeEvent(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	e, err := h.Events.Get(ctx, c, chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.OK(w, viewOf(e))
}

// HandleEventCreate opens a fundraising event for a parish. currentAmount
// always starts at zero.
// POST /api/donation-events
func (h *Handler) HandleEventCreate(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	var in models.DonationEvent
	if err := httpjson.Decode(w, r, &in, limits.MaxJSONBody); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	e, err := h.Events.Create(ctx, c, in)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.Created(w, viewOf(e))
}

// PUT /api/donation-events/{id}
func (h *Handler) HandleEventUpdate(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	var u donationeventstore.Update
	if err := httpjson.Decode(w, r, &u, limits.MaxJSONBody); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	e, err := h.Events.Update(ctx, c, chi.URLParam(r, "id"), u)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.OK(w, viewOf(e))
}

// DELETE /api/donation-events/{id}
func (h *Handler) HandleEventDelete(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Events.Delete(ctx, c, chi.URLParam(r, "id")); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
