// internal/app/features/organizations/routes.go
package organizations

import (
	"github.com/go-chi/chi/v5"
	"github.com/samaquete/admin/internal/app/system/auth"
)

// DioceseRoutes mounts under "/api/dioceses". Updates are checked by the
// accessor (super admin only).
func DioceseRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeDioceses)
	r.Get("/{id}", h.ServeDiocese)
	r.Put("/{id}", h.HandleDioceseUpdate)
	return r
}

// ParishRoutes mounts under "/api/parishes".
func ParishRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeParishes)
	r.Post("/", h.HandleParishCreate)
	r.Get("/{id}", h.ServeParish)
	r.Put("/{id}", h.HandleParishUpdate)
	r.Delete("/{id}", h.HandleParishDelete)
	return r
}

// ChurchRoutes mounts under "/api/churches".
func ChurchRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeChurches)
	r.Post("/", h.HandleChurchCreate)
	r.Get("/{id}", h.ServeChurch)
	r.Put("/{id}", h.HandleChurchUpdate)
	r.Delete("/{id}", h.HandleChurchDelete)
	return r
}
