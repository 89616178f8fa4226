// internal/domain/models/fidele.go
package models

import "time"

// Fidele is a mobile-app user. The console only reads these documents.
type Fidele struct {
	ID             string     `bson:"_id" json:"id"`
	FirstName      string     `bson:"firstName" json:"firstName"`
	LastName       string     `bson:"lastName" json:"lastName"`
	Email          string     `bson:"email" json:"email"`
	Phone          string     `bson:"phone" json:"phone"`
	Country        string     `bson:"country" json:"country"`
	Username       string     `bson:"username" json:"username"`
	ParishID       string     `bson:"parishId" json:"parishId"`
	ParishName     string     `bson:"parishName" json:"parishName"`
	TotalDonations int64      `bson:"totalDonations" json:"totalDonations"`
	DonationCount  int64      `bson:"donationCount" json:"donationCount"`
	CreatedAt      *time.Time `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt      *time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
