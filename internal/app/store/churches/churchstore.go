// internal/app/store/churches/churchstore.go
package churchstore

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
	return &Store{c: db.Collection("churches")}
}

func (s *Store) Create(ctx context.Context, ch models.Church) (models.Church, error) {
	now := time.Now().UTC()
	if ch.ID == "" {
		ch.ID = storekit.NewID()
	}
	ch.NameCI = text.Fold(ch.Name)
	ch.CreatedAt = now
	ch.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, ch); err != nil {
		return models.Church{}, storekit.Err("create church", err)
	}
	return ch, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.Church, error) {
	var ch models.Church
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&ch); err != nil {
		return models.Church{}, storekit.Err("get church", err)
	}
	return ch, nil
}

// Update holds the editable fields of a church. Nil means unchanged; a
// non-nil empty ParishID detaches the church from its parish.
type Update struct {
	Name        *string `json:"name,omitempty"`
	ParishID    *string `json:"parishId,omitempty"`
	DioceseID   *string `json:"dioceseId,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
	Address     *string `json:"address,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (s *Store) Update(ctx context.Context, id string, u Update) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}
	if u.Name != nil {
		set["name"] = *u.Name
		set["name_ci"] = text.Fold(*u.Name)
	}
	if u.ParishID != nil {
		if *u.ParishID == "" {
			unset["parish_id"] = ""
		} else {
			set["parish_id"] = *u.ParishID
		}
	}
	if u.DioceseID != nil {
		set["diocese_id"] = *u.DioceseID
	}
	if u.IsActive != nil {
		set["is_active"] = *u.IsActive
	}
	if u.Address != nil {
		set["address"] = *u.Address
	}
	if u.Phone != nil {
		set["phone"] = *u.Phone
	}
	if u.Email != nil {
		set["email"] = *u.Email
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}

	doc := bson.M{"$set": set}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}
	res, err := s.c.UpdateByID(ctx, id, doc)
	if err != nil {
		return storekit.Err("update church", err)
	}
	return storekit.MustMatch("update church", res.MatchedCount)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storekit.Err("delete church", err)
	}
	return storekit.MustMatch("delete church", res.DeletedCount)
}

// Find returns churches within scope, sorted by name. ChurchID matches the church's own _id.
func (s *Store) Find(ctx context.Context, scope models.Scope, opts ...*options.FindOptions) ([]models.Church, error) {
	o := append([]*options.FindOptions{options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})}, opts...)
	cur, err := s.c.Find(ctx, storekit.ScopeFilter(scope, storekit.SelfChurch), o...)
	if err != nil {
		return nil, storekit.Err("find churches", err)
	}
	defer cur.Close(ctx)

	var out []models.Church
	if err := cur.All(ctx, &out); err != nil {
		return nil, storekit.Err("find churches", err)
	}
	return out, nil
}

// CountByParish returns how many churches reference the parish.
func (s *Store) CountByParish(ctx context.Context, parishID string) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"parish_id": parishID})
	return n, storekit.Err("count churches", err)
}
