// internal/domain/models/notification.go
package models

import "time"

// Notification types, matching the icons the mobile app shows.
const (
	NotifyPrayer   = "prayer"
	NotifyNews     = "news"
	NotifyActivity = "activity"
	NotifyDonation = "donation"
	NotifyGeneral  = "general"
)

// Notification priorities.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// ParishNotification tells a parish's faithful that something they follow
// changed. The console writes them; the mobile app lists them by parish.
type ParishNotification struct {
	ID        string    `bson:"_id" json:"id"`
	ParishID  string    `bson:"parish_id" json:"parishId"`
	DioceseID string    `bson:"diocese_id,omitempty" json:"dioceseId,omitempty"`
	Type      string    `bson:"type" json:"type"`
	Title     string    `bson:"title" json:"title"`
	Message   string    `bson:"message" json:"message"`
	Icon      string    `bson:"icon,omitempty" json:"icon,omitempty"`
	Priority  string    `bson:"priority" json:"priority"`
	Read      bool      `bson:"read" json:"read"`
	RelatedID string    `bson:"related_id,omitempty" json:"relatedId,omitempty"`
	CreatedBy string    `bson:"created_by,omitempty" json:"createdBy,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
