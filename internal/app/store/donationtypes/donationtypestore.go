// internal/app/store/donationtypes/donationtypestore.go
package donationtypestore

import (
	"context"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
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
	return &Store{c: db.Collection("donation_types")}
}

func (s *Store) Create(ctx context.Context, dt models.DonationType) (models.DonationType, error) {
	now := time.Now().UTC()
	if dt.ID == "" {
		dt.ID = storekit.NewID()
	}
	dt.CreatedAt = now
	dt.UpdatedAt = now
	doc := struct {
		models.DonationType `bson:",inline"`
		NameCI              string `bson:"name_ci"`
	}{dt, text.Fold(dt.Name)}
	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		return models.DonationType{}, storekit.Err("create donation type", err)
	}
	return dt, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.DonationType, error) {
	var dt models.DonationType
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&dt); err != nil {
		return models.DonationType{}, storekit.Err("get donation type", err)
	}
	return dt, nil
}

// Update holds the editable fields of a donation type.
type Update struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	Amounts     []int64 `json:"amounts,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

func (s *Store) Update(ctx context.Context, id string, u Update) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if u.Name != nil {
		set["name"] = *u.Name
		set["name_ci"] = text.Fold(*u.Name)
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Icon != nil {
		set["icon"] = *u.Icon
	}
	if u.Amounts != nil {
		set["amounts"] = u.Amounts
	}
	if u.Active != nil {
		set["active"] = *u.Active
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return storekit.Err("update donation type", err)
	}
	return storekit.MustMatch("update donation type", res.MatchedCount)
}

// SetValidated marks the type as validated by its parish; changed is false
// when it already was.
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
		return false, storekit.Err("validate donation type", err)
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
		return storekit.Err("delete donation type", err)
	}
	return storekit.MustMatch("delete donation type", res.DeletedCount)
}

// Find returns donation types within scope sorted by name. validated filters
// on validatedByParish when non-nil.
func (s *Store) Find(ctx context.Context, scope models.Scope, validated *bool) ([]models.DonationType, error) {
	q := storekit.ScopeFilter(scope, storekit.SelfNone)
	if validated != nil {
		q["validated_by_parish"] = *validated
	}
	cur, err := s.c.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, storekit.Err("find donation types", err)
	}
	defer cur.Close(ctx)

	var out []models.DonationType
	if err := cur.All(ctx, &out); err != nil {
		return nil, storekit.Err("find donation types", err)
	}
	return out, nil
}
