// internal/domain/models/content.go
package models

import "time"

// ContentKind selects which collection a ContentItem lives in.
type ContentKind string

const (
	KindNews     ContentKind = "news"
	KindPrayer   ContentKind = "prayer"
	KindActivity ContentKind = "activity"
)

// ContentKinds lists every content kind.
var ContentKinds = []ContentKind{KindNews, KindPrayer, KindActivity}

// Collection returns the Mongo collection that stores the kind.
func (k ContentKind) Collection() string {
	switch k {
	case KindNews:
		return "news"
	case KindPrayer:
		return "prayers"
	case KindActivity:
		return "activities"
	}
	return ""
}

// ContentStatus is the lifecycle state of a news, prayer or activity item.
type ContentStatus string

const (
	StatusDraft     ContentStatus = "draft"
	StatusPending   ContentStatus = "pending"
	StatusPublished ContentStatus = "published"
)

// Valid reports whether s is one of the three lifecycle states.
func (s ContentStatus) Valid() bool {
	return s == StatusDraft || s == StatusPending || s == StatusPublished
}

// ContentItem is shared by news, prayers and activities.
type ContentItem struct {
	ID       string      `bson:"_id" json:"id"`
	Kind     ContentKind `bson:"kind" json:"kind"`
	Title    string      `bson:"title" json:"title"`
	Body     string      `bson:"body" json:"body"`
	Excerpt  string      `bson:"excerpt,omitempty" json:"excerpt,omitempty"`
	Category string      `bson:"category,omitempty" json:"category,omitempty"`
	Author   string      `bson:"author,omitempty" json:"author,omitempty"`
	ImageURL string      `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	Location string      `bson:"location,omitempty" json:"location,omitempty"`
	Date     *time.Time  `bson:"date,omitempty" json:"date,omitempty"`

	Scope `bson:",inline"`

	Status          ContentStatus `bson:"status" json:"status"`
	Published       bool          `bson:"published" json:"published"`
	PublishedAt     *time.Time    `bson:"published_at,omitempty" json:"publishedAt,omitempty"`
	CreatedBy       string        `bson:"created_by" json:"createdBy"`
	CreatedByRole   string        `bson:"created_by_role" json:"createdByRole"`
	ValidatedBy     string        `bson:"validated_by,omitempty" json:"validatedBy,omitempty"`
	ValidatedAt     *time.Time    `bson:"validated_at,omitempty" json:"validatedAt,omitempty"`
	RejectionReason string        `bson:"rejection_reason,omitempty" json:"rejectionReason,omitempty"`
	Views           int64         `bson:"views" json:"views"`
	CreatedAt       time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time     `bson:"updated_at" json:"updatedAt"`
}
