// internal/app/features/donations/proxy.go
package donations

import (
	"context"
	"fmt"
	"net/http"

	"github.com/samaquete/admin/internal/app/accessor"
	"github.com/samaquete/admin/internal/app/features/shared/httpjson"
	"github.com/samaquete/admin/internal/app/features/shared/params"
	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/app/system/auth"
	"github.com/samaquete/admin/internal/app/system/identity"
	"github.com/samaquete/admin/internal/app/system/payments"
	"github.com/samaquete/admin/internal/app/system/timeouts"
	"github.com/samaquete/admin/internal/domain/models"
	"go.uber.org/zap"
)

type proxyResponse struct {
	Donations []models.PaymentDonation `json:"donations"`
	Stats     models.PaymentStats      `json:"stats"`
}

// ServePayments proxies the payment API and keeps only donation payments.
// The caller's bearer token is forwarded as is.
// GET /api/donations?parishId=&dioceseId=
func (h *Handler) ServePayments(w http.ResponseWriter, r *http.Request) {
	token, ok := identity.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		h.ErrLog.Write(w, r, fmt.Errorf("payments proxy: missing bearer token: %w", apperr.ErrUnauthenticated))
		return
	}
	c, _ := auth.CurrentClaims(r)
	requested := params.Scope(r)
	scope, empty, err := accessor.PaymentScope(c, models.Scope{DioceseID: requested.DioceseID, ParishID: requested.ParishID})
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	if empty {
		httpjson.OK(w, proxyResponse{Donations: []models.PaymentDonation{}})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	records, err := h.Payments.FetchPayments(ctx, token, scope.ParishID, scope.DioceseID)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	ds := payments.ToDonations(records)
	h.Log.Debug("payments proxied",
		zap.Int("records", len(records)),
		zap.Int("donations", len(ds)),
		zap.String("parish_id", scope.ParishID),
		zap.String("diocese_id", scope.DioceseID),
	)
	httpjson.OK(w, proxyResponse{Donations: ds, Stats: payments.Stats(ds)})
}
