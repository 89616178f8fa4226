// internal/app/store/donationevents/donationeventstore.go
package donationeventstore

import (
	"context"
	"time"

	"github.com/samaquete/admin/internal/app/store/storekit"
	"github.com/samaquete/admin/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("donation_events")}
}

func (s *Store) Create(ctx context.Context, e models.DonationEvent) (models.DonationEvent, error) {
	now := time.Now().UTC()
	if e.ID == "" {
		e.ID = storekit.NewID()
	}
	if e.StartDate.IsZero() {
		e.StartDate = now
	}
	e.CreatedAt = now
	e.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.DonationEvent{}, storekit.Err("create donation event", err)
	}
	return e, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.DonationEvent, error) {
	var e models.DonationEvent
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return models.DonationEvent{}, storekit.Err("get donation event", err)
	}
	return e, nil
}

// Update holds the editable fields of an event. CurrentAmount is absent on
// purpose: it only moves through IncrementAmount.
type Update struct {
	Title        *string    `json:"title,omitempty"`
	Description  *string    `json:"description,omitempty"`
	Type         *string    `json:"type,omitempty"`
	TargetAmount *int64     `json:"targetAmount,omitempty"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	IsActive     *bool      `json:"isActive,omitempty"`
}

func (s *Store) Update(ctx context.Context, id string, u Update) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Type != nil {
		set["type"] = *u.Type
	}
	if u.TargetAmount != nil {
		set["target_amount"] = *u.TargetAmount
	}
	if u.StartDate != nil {
		set["start_date"] = *u.StartDate
	}
	if u.EndDate != nil {
		set["end_date"] = *u.EndDate
	}
	if u.IsActive != nil {
		set["is_active"] = *u.IsActive
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return storekit.Err("update donation event", err)
	}
	return storekit.MustMatch("update donation event", res.MatchedCount)
}

// IncrementAmount adds amount to the event's running total in one atomic
// server-side operation and returns the event after the change.
func (s *Store) IncrementAmount(ctx context.Context, id string, amount int64) (models.DonationEvent, error) {
	var e models.DonationEvent
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"current_amount": amount},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&e)
	if err != nil {
		return models.DonationEvent{}, storekit.Err("increment donation event", err)
	}
	return e, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storekit.Err("delete donation event", err)
	}
	return storekit.MustMatch("delete donation event", res.DeletedCount)
}

// Find returns events within scope, newest start date first. activeOnly
// restricts to is_active events.
func (s *Store) Find(ctx context.Context, scope models.Scope, activeOnly bool) ([]models.DonationEvent, error) {
	q := storekit.ScopeFilter(models.Scope{DioceseID: scope.DioceseID, ParishID: scope.ParishID}, storekit.SelfNone)
	if activeOnly {
		q["is_active"] = true
	}
	cur, err := s.c.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "start_date", Value: -1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, storekit.Err("find donation events", err)
	}
	defer cur.Close(ctx)

	var out []models.DonationEvent
	if err := cur.All(ctx, &out); err != nil {
		return nil, storekit.Err("find donation events", err)
	}
	return out, nil
}
