// internal/app/features/entities/handler.go
package entities

import (
	"context"
	"net/http"

	"github.com/samaquete/admin/internal/app/accessor"
	uierrors "github.com/samaquete/admin/internal/app/features/errors"
	"github.com/samaquete/admin/internal/app/features/shared/httpjson"
	"github.com/samaquete/admin/internal/app/system/auth"
	"github.com/samaquete/admin/internal/app/system/inputval"
	"github.com/samaquete/admin/internal/app/system/limits"
	"github.com/samaquete/admin/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler renames dioceses, parishes and churches by type.
type Handler struct {
	Entities *accessor.Entities
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(entities *accessor.Entities, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Entities: entities, ErrLog: errLog, Log: logger}
}

type renameRequest struct {
	EntityType string `json:"entityType" validate:"required" label:"Type d'entité"`
	ID         string `json:"id" validate:"required" label:"Identifiant"`
	NewName    string `json:"newName" validate:"required" label:"Nom"`
	NewID      string `json:"newId,omitempty"`
}

// HandleUpdate renames an entity. A newId different from id is refused.
// POST /api/entities/update
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	c, _ := auth.CurrentClaims(r)
	var req renameRequest
	if err := httpjson.Decode(w, r, &req, limits.MaxJSONBody); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	if err := inputval.Check(req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Entities.Rename(ctx, c, req.EntityType, req.ID, req.NewName, req.NewID)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.OK(w, out)
}
