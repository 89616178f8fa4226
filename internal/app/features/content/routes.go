// internal/app/features/content/routes.go
package content

import (
	"github.com/go-chi/chi/v5"
	"github.com/samaquete/admin/internal/app/system/auth"
)

// Routes mounts under "/api/news", "/api/prayers" or "/api/activities".
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.ServeItem)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
	r.Post("/{id}/status", h.HandleStatus)
	r.Post("/{id}/validate", h.HandleValidate)
	r.Post("/{id}/reject", h.HandleReject)
	r.Post("/{id}/view", h.HandleView)
	return r
}
