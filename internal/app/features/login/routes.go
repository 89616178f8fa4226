// internal/app/features/login/routes.go
package login

import (
	"github.com/go-chi/chi/v5"
	"github.com/samaquete/admin/internal/app/system/auth"
)

// Routes mounts the sign-in endpoints (typically under "/api/auth").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Post("/session", h.HandleSession)
	r.Delete("/session", h.HandleLogout)
	r.Post("/login", h.HandleLogin)
	r.Post("/reset-password", h.HandleResetPassword)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/me", h.ServeMe)
		pr.Post("/password", h.HandleChangePassword)
	})
	return r
}
