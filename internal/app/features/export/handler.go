// internal/app/features/export/handler.go
package export

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/samaquete/admin/internal/app/accessor"
	uierrors "github.com/samaquete/admin/internal/app/features/errors"
	"github.com/samaquete/admin/internal/app/features/shared/params"
	"github.com/samaquete/admin/internal/app/reports"
	fidelestore "github.com/samaquete/admin/internal/app/store/fideles"
	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/app/system/auditlog"
	"github.com/samaquete/admin/internal/app/system/auth"
	"github.com/samaquete/admin/internal/app/system/authz"
	"github.com/samaquete/admin/internal/app/system/csvutil"
	"github.com/samaquete/admin/internal/app/system/identity"
	"github.com/samaquete/admin/internal/app/system/payments"
	"github.com/samaquete/admin/internal/app/system/timeouts"
	"github.com/samaquete/admin/internal/domain/models"
	"go.uber.org/zap"
)

// PaymentSource fetches payment records on behalf of a bearer token holder.
type PaymentSource interface {
	FetchPayments(ctx context.Context, bearerToken, parishID, dioceseID string) ([]models.PaymentRecord, error)
}

// Handler serves the CSV exports. Dates are written in Loc.
type Handler struct {
	Users    *accessor.Users
	Fideles  *fidelestore.Store
	Payments PaymentSource
	Audit    *auditlog.Logger
	Loc      *time.Location
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger

	now func() time.Time
}

func NewHandler(users *accessor.Users, fideles *fidelestore.Store, pay PaymentSource, audit *auditlog.Logger, loc *time.Location, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		Users:    users,
		Fideles:  fideles,
		Payments: pay,
		Audit:    audit,
		Loc:      loc,
		ErrLog:   errLog,
		Log:      logger,
		now:      time.Now,
	}
}

func (h *Handler) allowed(w http.ResponseWriter, r *http.Request) (models.Claims, bool) {
	c, _ := auth.CurrentClaims(r)
	if !authz.CanExport(c.Normalize()) {
		h.ErrLog.Write(w, r, apperr.Denied("%s cannot export", c.Role))
		return c, false
	}
	return c, true
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request, c models.Claims, name string, records []csvutil.Record) {
	format := csvutil.ParseFormat(params.String(r, "format"))
	if err := csvutil.WriteAttachment(w, name, format, h.now().In(h.Loc), records); err != nil {
		h.ErrLog.LogServerError(w, r, "export encoding failed", err, "l'export a échoué")
		return
	}
	h.Audit.Record(r.Context(), auditlog.Entry(c, models.ActionExport, name, "", fmt.Sprintf("%d lignes", len(records))))
	h.Log.Info("export sent", zap.String("export", name), zap.Int("rows", len(records)), zap.String("format", string(format)))
}

// ServeUsers exports the admin accounts.
// GET /api/export/users?format=csv|excel
func (h *Handler) ServeUsers(w http.ResponseWriter, r *http.Request) {
	c, ok := h.allowed(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Export())
	defer cancel()

	us, err := h.Users.List(ctx, c)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	h.send(w, r, c, "utilisateurs", reports.ExportUsers(us, h.Loc))
}

// ServeFideles exports the mobile app users, optionally for one parish.
// GET /api/export/fideles?parishId=&format=
func (h *Handler) ServeFideles(w http.ResponseWriter, r *http.Request) {
	c, ok := h.allowed(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Export())
	defer cancel()

	fs, err := h.Fideles.List(ctx, params.Scope(r).ParishID)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	h.send(w, r, c, "fideles", reports.ExportFideles(fs, h.Loc))
}

// ServeDonations exports donation payments fetched through the payment API
// with the caller's bearer token.
// GET /api/export/donations?parishId=&dioceseId=&format=
func (h *Handler) ServeDonations(w http.ResponseWriter, r *http.Request) {
	c, ok := h.allowed(w, r)
	if !ok {
		return
	}
	token, ok := identity.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		h.ErrLog.Write(w, r, fmt.Errorf("donations export: missing bearer token: %w", apperr.ErrUnauthenticated))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Export())
	defer cancel()

	s := params.Scope(r)
	records, err := h.Payments.FetchPayments(ctx, token, s.ParishID, s.DioceseID)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	h.send(w, r, c, "dons", reports.ExportDonations(payments.ToDonations(records), h.Loc))
}
