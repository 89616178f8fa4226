// internal/app/features/users/routes.go
package users

import (
	"github.com/go-chi/chi/v5"
	"github.com/samaquete/admin/internal/app/system/auth"
)

// Routes mounts under "/api/users".
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Post("/create", h.HandleCreate)
	r.Post("/update", h.HandleUpdate)
	r.Post("/update-email", h.HandleUpdateEmail)
	r.Post("/delete", h.HandleDelete)
	r.Post("/update-password-claim", h.HandleClearPasswordFlag)
	r.Post("/reset-password", h.HandleResetPassword)
	r.Get("/list", h.ServeList)
	return r
}
