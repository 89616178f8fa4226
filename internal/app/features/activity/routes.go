// internal/app/features/activity/routes.go
package activity

import (
	"github.com/go-chi/chi/v5"
	"github.com/samaquete/admin/internal/app/system/auth"
)

// Routes mounts under "/api/activity". Every admin may read their own
// activity; reading someone else's is checked by the accessor.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/logs", h.ServeLogs)
	r.Get("/stats", h.ServeStats)
	return r
}
