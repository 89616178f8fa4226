// internal/app/features/schedules/handler.go
package schedules

import (
	"net/http"

	"github.com/samaquete/admin/internal/app/accessor"
	uierrors "github.com/samaquete/admin/internal/app/features/errors"
	"github.com/samaquete/admin/internal/app/features/shared/params"
	"go.uber.org/zap"
)

// Handler serves prayer times and donation types. Both carry the
// validatedByParish overlay and share the list filters.
type Handler struct {
	PrayerTimes   *accessor.PrayerTimes
	DonationTypes *accessor.DonationTypes
	ErrLog        *uierrors.ErrorLogger
	Log           *zap.Logger
}

func NewHandler(set *accessor.Set, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		PrayerTimes:   set.PrayerTimes,
		DonationTypes: set.DonationTypes,
		ErrLog:        errLog,
		Log:           logger,
	}
}

// query reads ?dioceseId=&parishId=&churchId=&validated=&active=.
func query(r *http.Request) accessor.ScheduleQuery {
	return accessor.ScheduleQuery{
		Scope:     params.Scope(r),
		Validated: params.Bool(r, "validated"),
		Active:    params.Bool(r, "active"),
	}
}
