// internal/app/features/donations/handler.go
package donations

import (
	"context"

	"github.com/samaquete/admin/internal/app/accessor"
	uierrors "github.com/samaquete/admin/internal/app/features/errors"
	"github.com/samaquete/admin/internal/domain/models"
	"go.uber.org/zap"
)

// PaymentSource fetches payment records from the external payment API on
// behalf of a bearer token holder.
type PaymentSource interface {
	FetchPayments(ctx context.Context, bearerToken, parishID, dioceseID string) ([]models.PaymentRecord, error)
}

// Handler serves donation events, console donation records and the
// payment API proxy.
type Handler struct {
	Events   *accessor.DonationEvents
	Records  *accessor.Donations
	Payments PaymentSource
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(set *accessor.Set, payments PaymentSource, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Events:   set.DonationEvents,
		Records:  set.Donations,
		Payments: payments,
		ErrLog:   errLog,
		Log:      logger,
	}
}
