// internal/app/store/parishes/parishstore.go
package parishstore

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
	return &Store{c: db.Collection("parishes")}
}

func (s *Store) Create(ctx context.Context, p models.Parish) (models.Parish, error) {
	now := time.Now().UTC()
	if p.ID == "" {
		p.ID = storekit.NewID()
	}
	p.NameCI = text.Fold(p.Name)
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Parish{}, storekit.Err("create parish", err)
	}
	return p, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.Parish, error) {
	var p models.Parish
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.Parish{}, storekit.Err("get parish", err)
	}
	return p, nil
}

// Update holds the editable fields of a parish. Nil means unchanged.
type Update struct {
	Name        *string `json:"name,omitempty"`
	DioceseID   *string `json:"dioceseId,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
	Address     *string `json:"address,omitempty"`
	City        *string `json:"city,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty"`
	Priest      *string `json:"priest,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Update modifies a parish's mutable fields and refreshes UpdatedAt.
func (s *Store) Update(ctx context.Context, id string, u Update) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if u.Name != nil {
		set["name"] = *u.Name
		set["name_ci"] = text.Fold(*u.Name)
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
	if u.City != nil {
		set["city"] = *u.City
	}
	if u.Phone != nil {
		set["phone"] = *u.Phone
	}
	if u.Email != nil {
		set["email"] = *u.Email
	}
	if u.Priest != nil {
		set["priest"] = *u.Priest
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return storekit.Err("update parish", err)
	}
	return storekit.MustMatch("update parish", res.MatchedCount)
}

// Delete removes a parish by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storekit.Err("delete parish", err)
	}
	return storekit.MustMatch("delete parish", res.DeletedCount)
}

// Find returns parishes within scope, sorted by name. The scope is applied
// as query predicates; ParishID matches the parish's own _id.
func (s *Store) Find(ctx context.Context, scope models.Scope, opts ...*options.FindOptions) ([]models.Parish, error) {
	filter := storekit.ScopeFilter(scope, storekit.SelfParish)
	delete(filter, "church_id")
	o := append([]*options.FindOptions{options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})}, opts...)
	cur, err := s.c.Find(ctx, filter, o...)
	if err != nil {
		return nil, storekit.Err("find parishes", err)
	}
	defer cur.Close(ctx)

	var out []models.Parish
	if err := cur.All(ctx, &out); err != nil {
		return nil, storekit.Err("find parishes", err)
	}
	return out, nil
}

// Count returns the number of parishes within scope.
func (s *Store) Count(ctx context.Context, scope models.Scope) (int64, error) {
	filter := storekit.ScopeFilter(scope, storekit.SelfParish)
	delete(filter, "church_id")
	n, err := s.c.CountDocuments(ctx, filter)
	return n, storekit.Err("count parishes", err)
}
