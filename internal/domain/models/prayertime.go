// internal/domain/models/prayertime.go
package models

import "time"

// Weekdays accepted in PrayerTime.Days.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// PrayerTime is a recurring mass/prayer schedule shown in the mobile app.
// Items authored by a church admin stay unvalidated until the parish approves them.
type PrayerTime struct {
	ID          string   `bson:"_id" json:"id"`
	Name        string   `bson:"name" json:"name"`
	Time        string   `bson:"time" json:"time"`
	Days        []string `bson:"days" json:"days"`
	Description string   `bson:"description,omitempty" json:"description,omitempty"`

	Scope `bson:",inline"`

	Active            bool       `bson:"active" json:"active"`
	CreatedBy         string     `bson:"created_by" json:"createdBy"`
	CreatedByRole     string     `bson:"created_by_role" json:"createdByRole"`
	ValidatedByParish bool       `bson:"validated_by_parish" json:"validatedByParish"`
	ValidatedBy       string     `bson:"validated_by,omitempty" json:"validatedBy,omitempty"`
	ValidatedAt       *time.Time `bson:"validated_at,omitempty" json:"validatedAt,omitempty"`
	CreatedAt         time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time  `bson:"updated_at" json:"updatedAt"`
}

// DonationType is a giving category (quête, denier du culte, messe...) offered by a parish.
type DonationType struct {
	ID          string  `bson:"_id" json:"id"`
	Name        string  `bson:"name" json:"name"`
	Description string  `bson:"description,omitempty" json:"description,omitempty"`
	Icon        string  `bson:"icon,omitempty" json:"icon,omitempty"`
	Amounts     []int64 `bson:"amounts,omitempty" json:"amounts,omitempty"`

	Scope `bson:",inline"`

	Active            bool       `bson:"active" json:"active"`
	CreatedBy         string     `bson:"created_by" json:"createdBy"`
	CreatedByRole     string     `bson:"created_by_role" json:"createdByRole"`
	ValidatedByParish bool       `bson:"validated_by_parish" json:"validatedByParish"`
	ValidatedBy       string     `bson:"validated_by,omitempty" json:"validatedBy,omitempty"`
	ValidatedAt       *time.Time `bson:"validated_at,omitempty" json:"validatedAt,omitempty"`
	CreatedAt         time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time  `bson:"updated_at" json:"updatedAt"`
}
