// Package reports builds the CSV exports and the activity statistics shown
// on the console dashboard. The functions are pure; handlers fetch the data
// and write the result.
package reports

import (
	"sort"
	"time"

	"github.com/samaquete/admin/internal/app/system/csvutil"
	"github.com/samaquete/admin/internal/app/system/identity"
	"github.com/samaquete/admin/internal/domain/models"
)

// Attachment names, suffixed with the export date.
const (
	UsersFile     = "utilisateurs"
	FidelesFile   = "fideles"
	DonationsFile = "dons"
)

// DefaultPaymentMethod fills the payment method column when the payment API
// left it blank.
const DefaultPaymentMethod = "PayDunya"

func in(t time.Time, loc *time.Location) time.Time {
	if t.IsZero() || loc == nil {
		return t
	}
	return t.In(loc)
}

func inPtr(t *time.Time, loc *time.Location) any {
	if t == nil {
		return nil
	}
	return in(*t, loc)
}

// ExportUsers renders one row per identity with its claims.
func ExportUsers(users []identity.UserRecord, loc *time.Location) []csvutil.Record {
	out := make([]csvutil.Record, 0, len(users))
	for _, u := range users {
		c := u.Claims()
		out = append(out, csvutil.Record{
			{Key: "UID", Value: u.UID},
			{Key: "Email", Value: u.Email},
			{Key: "Nom", Value: u.DisplayName},
			{Key: "Rôle", Value: c.Role},
			{Key: "Diocèse ID", Value: c.DioceseID},
			{Key: "Paroisse ID", Value: c.ParishID},
			{Key: "Église ID", Value: c.ChurchID},
			{Key: "Archidiocèse ID", Value: c.ArchdioceseID},
			{Key: "Email vérifié", Value: u.EmailVerified},
			{Key: "Compte désactivé", Value: u.Disabled},
			{Key: "Date de création", Value: in(u.CreatedAt, loc)},
			{Key: "Dernière connexion", Value: inPtr(u.LastSignInAt, loc)},
		})
	}
	return out
}

// ExportFideles renders one row per mobile-app user.
func ExportFideles(fideles []models.Fidele, loc *time.Location) []csvutil.Record {
	out := make([]csvutil.Record, 0, len(fideles))
	for _, f := range fideles {
		out = append(out, csvutil.Record{
			{Key: "UID", Value: f.ID},
			{Key: "Prénom", Value: f.FirstName},
			{Key: "Nom", Value: f.LastName},
			{Key: "Email", Value: f.Email},
			{Key: "Téléphone", Value: f.Phone},
			{Key: "Pays", Value: f.Country},
			{Key: "Username", Value: f.Username},
			{Key: "Paroisse ID", Value: f.ParishID},
			{Key: "Nom Paroisse", Value: f.ParishName},
			{Key: "Total Dons (FCFA)", Value: f.TotalDonations},
			{Key: "Nombre de dons", Value: f.DonationCount},
			{Key: "Date d'inscription", Value: inPtr(f.CreatedAt, loc)},
			{Key: "Dernière mise à jour", Value: inPtr(f.UpdatedAt, loc)},
		})
	}
	return out
}

// StatusLabel returns the French label of a normalized donation status.
func StatusLabel(status string) string {
	switch status {
	case "completed":
		return "Complété"
	case "pending":
		return "En attente"
	case "failed":
		return "Échoué"
	}
	return status
}

// ExportDonations renders one row per donation received through the
// payment API.
func ExportDonations(ds []models.PaymentDonation, loc *time.Location) []csvutil.Record {
	out := make([]csvutil.Record, 0, len(ds))
	for _, d := range ds {
		method := d.PaymentMethod
		if method == "" {
			method = DefaultPaymentMethod
		}
		out = append(out, csvutil.Record{
			{Key: "ID Don", Value: d.DonationID},
			{Key: "Montant (FCFA)", Value: d.Amount},
			{Key: "Statut", Value: StatusLabel(d.Status)},
			{Key: "Méthode de paiement", Value: method},
			{Key: "Paroisse ID", Value: d.ParishID},
			{Key: "Utilisateur ID", Value: d.UserID},
			{Key: "Date de création", Value: in(d.CreatedAt, loc)},
		})
	}
	return out
}

// DefaultWindowDays is the activity window used when none is given.
const DefaultWindowDays = 30

// recentCount is how many entries ActivityStats.Recent keeps.
const recentCount = 5

// ActivityStats summarizes activity logs over a window.
type ActivityStats struct {
	Total      int                  `json:"total"`
	Today      int                  `json:"today"`
	ThisWeek   int                  `json:"thisWeek"`
	ByAction   map[string]int       `json:"byAction"`
	ByEntity   map[string]int       `json:"byEntity"`
	Recent     []models.ActivityLog `json:"recent"`
	WindowDays int                  `json:"windowDays"`
}

// ComputeActivityStats counts logs. Today starts at midnight in loc; the
// week is the seven days before now. Logs may arrive in any order.
func ComputeActivityStats(logs []models.ActivityLog, now time.Time, loc *time.Location, windowDays int) ActivityStats {
	if loc == nil {
		loc = time.UTC
	}
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	weekAgo := now.Add(-7 * 24 * time.Hour)

	s := ActivityStats{
		Total:      len(logs),
		ByAction:   map[string]int{},
		ByEntity:   map[string]int{},
		WindowDays: windowDays,
	}
	for _, l := range logs {
		if !l.Timestamp.Before(midnight) {
			s.Today++
		}
		if !l.Timestamp.Before(weekAgo) {
			s.ThisWeek++
		}
		s.ByAction[l.Action]++
		if l.EntityType != "" {
			s.ByEntity[l.EntityType]++
		}
	}

	sorted := make([]models.ActivityLog, len(logs))
	copy(sorted, logs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp.After(sorted[j].Timestamp) })
	if len(sorted) > recentCount {
		sorted = sorted[:recentCount]
	}
	s.Recent = sorted
	return s
}
