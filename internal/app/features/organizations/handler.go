// internal/app/features/organizations/handler.go
package organizations

import (
	"github.com/samaquete/admin/internal/app/accessor"
	uierrors "github.com/samaquete/admin/internal/app/features/errors"
	"go.uber.org/zap"
)

// Handler serves dioceses, parishes and churches.
type Handler struct {
	Dioceses *accessor.Dioceses
	Parishes *accessor.Parishes
	Churches *accessor.Churches
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

// NewHandler constructs an organizations Handler over the accessor set.
func NewHandler(set *accessor.Set, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Dioceses: set.Dioceses,
		Parishes: set.Parishes,
		Churches: set.Churches,
		ErrLog:   errLog,
		Log:      logger,
	}
}
