// internal/app/system/payments/donations.go
package payments

import (
	"strings"

	"github.com/samaquete/admin/internal/domain/models"
)

// IsDonation reports whether p is a donation rather than another payment type.
func IsDonation(p models.PaymentRecord) bool {
	plan := strings.ToLower(p.PlanID)
	return strings.HasPrefix(p.PlanID, "DONATION_") ||
		strings.EqualFold(p.Type, "donation") ||
		strings.Contains(plan, "donation")
}

// NormalizeStatus maps provider statuses onto completed, pending or failed.
// Unknown values are lowercased.
func NormalizeStatus(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PAID", "COMPLETED", "SUCCESS":
		return models.DonationCompleted
	case "PENDING":
		return models.DonationPending
	case "CANCELED", "CANCELLED", "FAILED", "EXPIRED":
		return models.DonationFailed
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// ToDonations keeps the donation payments and normalizes their status.
func ToDonations(records []models.PaymentRecord) []models.PaymentDonation {
	out := make([]models.PaymentDonation, 0, len(records))
	for _, p := range records {
		if !IsDonation(p) {
			continue
		}
		id := p.DonationID
		if id == "" {
			id = p.ID
		}
		out = append(out, models.PaymentDonation{
			DonationID:    id,
			PaymentID:     p.ID,
			PlanID:        p.PlanID,
			Amount:        p.Amount,
			Status:        NormalizeStatus(p.Status),
			PaymentMethod: p.PaymentMethod,
			ParishID:      p.ParishID,
			DioceseID:     p.DioceseID,
			UserID:        p.UserID,
			CreatedAt:     p.CreatedAt,
		})
	}
	return out
}

// Stats counts donations by status; TotalAmount sums completed ones only.
func Stats(ds []models.PaymentDonation) models.PaymentStats {
	st := models.PaymentStats{Total: len(ds)}
	for _, d := range ds {
		switch d.Status {
		case models.DonationCompleted:
			st.Completed++
			st.TotalAmount += d.Amount
		case models.DonationPending:
			st.Pending++
		case models.DonationFailed:
			st.Failed++
		}
	}
	return st
}
