// internal/app/features/export/routes.go
package export

import (
	"github.com/go-chi/chi/v5"
	"github.com/samaquete/admin/internal/app/system/auth"
	"github.com/samaquete/admin/internal/domain/models"
)

// Routes mounts under "/api/export". Exports are reserved to super admins.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleSuperAdmin))
	r.Get("/users", h.ServeUsers)
	r.Get("/fideles", h.ServeFideles)
	r.Get("/donations", h.ServeDonations)
	return r
}
