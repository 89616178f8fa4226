// internal/app/features/donations/records.go
package donations

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samaquete/admin/internal/app/accessor"
	"github.com/samaquete/admin/internal/app/features/shared/httpjson"
	"github.com/samaquete/admin/internal/app/features/shared/params"
	"github.com/samaquete/admin/internal/app/system/auth"
	"github.com/samaquete/admin/internal/app/system/limits"
	"github.com/samaquete/admin/internal/app/system/paging"
	"github.com/samaquete/admin/internal/app/system/timeouts"
	"github.com/samaquete/admin/internal/domain/models"
)

type statusRequest struct {
	Status string `json:"status"`
}

func recordQuery(r *http.Request) accessor.DonationQuery {
	return accessor.DonationQuery{
		Scope:   params.Scope(r),
		EventID: params.String(r, "eventId"),
		Status:  params.String(r, "status"),
	}
}

// ServeRecords lists donations recorded in the console, newest first.
// GET /api/donation-records?dioceseId=&parishId=&eventId=&status=&limit=
func (h *Handler) ServeRecords(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	q := recordQuery(r)
	q.Limit = int64(paging.Parse(r).Limit)
	out, err := h.Records.List(ctx, c, q)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.OK(w, out)
}

// ServeRecordStats counts donations by status over the same filters.
// GET /api/donation-records/stats
func (h *Handler) ServeRecordStats(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	stats, err := h.Records.Stats(ctx, c, recordQuery(r))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.OK(w, stats)
}

// GET /api/donation-records/{id}
func (h *Handler) ServeRecord(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	d, err := h.Records.Get(ctx, c, chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.OK(w, d)
}

// HandleRecordCreate records a gift. A gift to an event adds its amount
// to the event total.
// POST /api/donation-records
func (h *Handler) HandleRecordCreate(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	var in models.Donation
	if err := httpjson.Decode(w, r, &in, limits.MaxJSONBody); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	d, err := h.Records.Create(ctx, c, in)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.Created(w, d)
}

// HandleRecordStatus changes the status of a recorded gift.
// POST /api/donation-records/{id}/status
func (h *Handler) HandleRecordStatus(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	var req statusRequest
	if err := httpjson.Decode(w, r, &req, limits.MaxJSONBody); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	d, err := h.Records.UpdateStatus(ctx, c, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.OK(w, d)
}

// DELETE /api/donation-records/{id}
func (h *Handler) HandleRecordDelete(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Records.Delete(ctx, c, chi.URLParam(r, "id")); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
