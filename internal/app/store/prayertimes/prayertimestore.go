// internal/app/store/prayertimes/prayertimestore.go
package prayertimestore

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
	return &Store{c: db.Collection("prayer_times")}
}

func (s *Store) Create(ctx context.Context, pt models.PrayerTime) (models.PrayerTime, error) {
	now := time.Now().UTC()
	if pt.ID == "" {
		pt.ID = storekit.NewID()
	}
	if pt.Days == nil {
		pt.Days = []string{}
	}
	pt.CreatedAt = now
	pt.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, pt); err != nil {
		return models.PrayerTime{}, storekit.Err("create prayer time", err)
	}
	return pt, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.PrayerTime, error) {
	var pt models.PrayerTime
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&pt); err != nil {
		return models.PrayerTime{}, storekit.Err("get prayer time", err)
	}
	return pt, nil
}

// Update holds the editable fields of a prayer time.
type Update struct {
	Name        *string  `json:"name,omitempty"`
	Time        *string  `json:"time,omitempty"`
	Days        []string `json:"days,omitempty"`
	Description *string  `json:"description,omitempty"`
	Active      *bool    `json:"active,omitempty"`
}

func (s *Store) Update(ctx context.Context, id string, u Update) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Time != nil {
		set["time"] = *u.Time
	}
	if u.Days != nil {
		set["days"] = u.Days
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Active != nil {
		set["active"] = *u.Active
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return storekit.Err("update prayer time", err)
	}
	return storekit.MustMatch("update prayer time", res.MatchedCount)
}

// SetValidated marks a prayer time as validated by its parish. Calling it on
// an already validated item changes nothing and reports changed=false.
func (s *Store) SetValidated(ctx context.Context, id, by string, at time.Time) (changed bool, err error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "validated_by_parish": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{
			"validated_by_parish": true,
			"validated_by":        by,
			"validated_at":        at,
			"updated_at":          at,
		}},
	)
	if err != nil {
		return false, storekit.Err("validate prayer time", err)
	}
	if res.MatchedCount == 1 {
		return true, nil
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storekit.Err("delete prayer time", err)
	}
	return storekit.MustMatch("delete prayer time", res.DeletedCount)
}

// Filter narrows Find. Validated filters on validatedByParish when non-nil.
type Filter struct {
	Scope     models.Scope
	Validated *bool
	Active    *bool
}

// Find returns prayer times matching f ordered by time of day.
func (s *Store) Find(ctx context.Context, f Filter) ([]models.PrayerTime, error) {
	q := storekit.ScopeFilter(f.Scope, storekit.SelfNone)
	if f.Validated != nil {
		q["validated_by_parish"] = *f.Validated
	}
	if f.Active != nil {
		q["active"] = *f.Active
	}
	opts := options.Find().SetSort(bson.D{{Key: "time", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, storekit.Err("find prayer times", err)
	}
	defer cur.Close(ctx)

	var out []models.PrayerTime
	if err := cur.All(ctx, &out); err != nil {
		return nil, storekit.Err("find prayer times", err)
	}
	return out, nil
}
