// internal/app/features/entities/routes.go
package entities

import (
	"github.com/go-chi/chi/v5"
	"github.com/samaquete/admin/internal/app/system/auth"
)

// Routes mounts under "/api/entities".
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Post("/update", h.HandleUpdate)
	return r
}
