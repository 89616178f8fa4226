// internal/app/features/donations/routes.go
package donations

import (
	"github.com/go-chi/chi/v5"
	"github.com/samaquete/admin/internal/app/system/auth"
)

// EventRoutes mounts under "/api/donation-events".
func EventRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeEvents)
	r.Post("/", h.HandleEventCreate)
	r.Get("/{id}", h.ServeEvent)
	r.Put("/{id}", h.HandleEventUpdate)
	r.Delete("/{id}", h.HandleEventDelete)
	return r
}

// RecordRoutes mounts under "/api/donation-records".
func RecordRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeRecords)
	r.Post("/", h.HandleRecordCreate)
	r.Get("/stats", h.ServeRecordStats)
	r.Get("/{id}", h.ServeRecord)
	r.Post("/{id}/status", h.HandleRecordStatus)
	r.Delete("/{id}", h.HandleRecordDelete)
	return r
}

// PaymentRoutes mounts under "/api/donations".
func PaymentRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServePayments)
	return r
}
