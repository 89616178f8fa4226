// internal/app/features/schedules/routes.go
package schedules

import (
	"github.com/go-chi/chi/v5"
	"github.com/samaquete/admin/internal/app/system/auth"
)

// PrayerTimeRoutes mounts under "/api/prayer-times".
func PrayerTimeRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServePrayerTimes)
	r.Post("/", h.HandlePrayerTimeCreate)
	r.Get("/{id}", h.ServePrayerTime)
	r.Put("/{id}", h.HandlePrayerTimeUpdate)
	r.Delete("/{id}", h.HandlePrayerTimeDelete)
	r.Post("/{id}/validate", h.HandlePrayerTimeValidate)
	return r
}

// DonationTypeRoutes mounts under "/api/donation-types".
func DonationTypeRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeDonationTypes)
	r.Post("/", h.HandleDonationTypeCreate)
	r.Get("/{id}", h.ServeDonationType)
	r.Put("/{id}", h.HandleDonationTypeUpdate)
	r.Delete("/{id}", h.HandleDonationTypeDelete)
	r.Post("/{id}/validate", h.HandleDonationTypeValidate)
	return r
}
