// internal/domain/models/donation.go
package models

import "time"

// Donation statuses.
const (
	DonationPending   = "pending"
	DonationCompleted = "completed"
	DonationFailed    = "failed"
	DonationCancelled = "cancelled"
)

// IsValidDonationStatus reports whether s is a known donation status.
func IsValidDonationStatus(s string) bool {
	switch s {
	case DonationPending, DonationCompleted, DonationFailed, DonationCancelled:
		return true
	}
	return false
}

// DonationEvent tracks cumulative giving toward a target.
// CurrentAmount is only ever changed by an atomic increment.
type DonationEvent struct {
	ID            string     `bson:"_id" json:"id"`
	Title         string     `bson:"title" json:"title"`
	Description   string     `bson:"description,omitempty" json:"description,omitempty"`
	Type          string     `bson:"type" json:"type"`
	ParishID      string     `bson:"parish_id" json:"parishId"`
	DioceseID     string     `bson:"diocese_id" json:"dioceseId"`
	TargetAmount  int64      `bson:"target_amount" json:"targetAmount"`
	CurrentAmount int64      `bson:"current_amount" json:"currentAmount"`
	StartDate     time.Time  `bson:"start_date" json:"startDate"`
	EndDate       *time.Time `bson:"end_date,omitempty" json:"endDate,omitempty"`
	IsActive      bool       `bson:"is_active" json:"isActive"`
	CreatedBy     string     `bson:"created_by" json:"createdBy"`
	CreatedAt     time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `bson:"updated_at" json:"updatedAt"`
}

// Progress returns CurrentAmount/TargetAmount, or 0 when there is no target.
func (e DonationEvent) Progress() float64 {
	if e.TargetAmount <= 0 {
		return 0
	}
	return float64(e.CurrentAmount) / float64(e.TargetAmount)
}

// Donation is a donation record kept by the console (amounts in FCFA).
type Donation struct {
	ID            string    `bson:"_id" json:"id"`
	EventID       string    `bson:"event_id,omitempty" json:"eventId,omitempty"`
	DonorName     string    `bson:"donor_name" json:"donorName"`
	DonorPhone    string    `bson:"donor_phone,omitempty" json:"donorPhone,omitempty"`
	DonorEmail    string    `bson:"donor_email,omitempty" json:"donorEmail,omitempty"`
	Amount        int64     `bson:"amount" json:"amount"`
	Type          string    `bson:"type" json:"type"`
	PaymentMethod string    `bson:"payment_method" json:"paymentMethod"`
	ParishID      string    `bson:"parish_id" json:"parishId"`
	DioceseID     string    `bson:"diocese_id" json:"dioceseId"`
	Message       string    `bson:"message,omitempty" json:"message,omitempty"`
	Status        string    `bson:"status" json:"status"`
	CreatedBy     string    `bson:"created_by,omitempty" json:"createdBy,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updatedAt"`
}

// DonationStats summarizes a set of donations.
type DonationStats struct {
	Total       int   `json:"total"`
	Completed   int   `json:"completed"`
	Pending     int   `json:"pending"`
	Failed      int   `json:"failed"`
	Cancelled   int   `json:"cancelled"`
	TotalAmount int64 `json:"totalAmount"`
}

// PaymentRecord is one row returned by the external payment API.
// Field names follow that API's JSON.
type PaymentRecord struct {
	ID            string         `json:"id"`
	DonationID    string         `json:"donationId,omitempty"`
	PlanID        string         `json:"planId,omitempty"`
	Type          string         `json:"type,omitempty"`
	Amount        float64        `json:"amount"`
	Currency      string         `json:"currency,omitempty"`
	Status        string         `json:"status"`
	PaymentMethod string         `json:"paymentMethod,omitempty"`
	ParishID      string         `json:"parishId,omitempty"`
	DioceseID     string         `json:"dioceseId,omitempty"`
	UserID        string         `json:"userId,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// PaymentDonation is a PaymentRecord recognized as a donation, with a normalized status.
type PaymentDonation struct {
	DonationID    string    `json:"donationId"`
	PaymentID     string    `json:"paymentId"`
	PlanID        string    `json:"planId,omitempty"`
	Amount        float64   `json:"amount"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"paymentMethod,omitempty"`
	ParishID      string    `json:"parishId,omitempty"`
	DioceseID     string    `json:"dioceseId,omitempty"`
	UserID        string    `json:"userId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// PaymentStats summarizes proxied donations.
type PaymentStats struct {
	Total       int     `json:"total"`
	Completed   int     `json:"completed"`
	Pending     int     `json:"pending"`
	Failed      int     `json:"failed"`
	TotalAmount float64 `json:"totalAmount"`
}
