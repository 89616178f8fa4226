// internal/app/store/dioceses/diocesestore.go
package diocesestore

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
	return &Store{c: db.Collection("dioceses")}
}

// SeedFixed upserts the fixed dioceses. Existing documents keep their
// editable fields (bishop, contact); only identity fields are refreshed.
func (s *Store) SeedFixed(ctx context.Context) error {
	now := time.Now().UTC()
	for _, d := range models.FixedDioceses() {
		_, err := s.c.UpdateByID(ctx, d.ID, bson.M{
			"$set": bson.M{
				"name":            d.Name,
				"name_ci":         text.Fold(d.Name),
				"slug":            d.Slug,
				"is_metropolitan": d.IsMetropolitan,
				"updated_at":      now,
			},
			"$setOnInsert": bson.M{
				"location":   d.Location,
				"created_at": now,
			},
		}, options.Update().SetUpsert(true))
		if err != nil {
			return storekit.Err("seed diocese "+d.ID, err)
		}
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.Diocese, error) {
	var d models.Diocese
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return models.Diocese{}, storekit.Err("get diocese", err)
	}
	return d, nil
}

// Exists reports whether a diocese with the id is stored.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, storekit.Err("diocese exists", err)
	}
	return n > 0, nil
}

// List returns all dioceses, the metropolitan see first, then by name.
func (s *Store) List(ctx context.Context) ([]models.Diocese, error) {
	opts := options.Find().SetSort(bson.D{{Key: "is_metropolitan", Value: -1}, {Key: "name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storekit.Err("list dioceses", err)
	}
	defer cur.Close(ctx)

	var out []models.Diocese
	if err := cur.All(ctx, &out); err != nil {
		return nil, storekit.Err("list dioceses", err)
	}
	return out, nil
}

// Update holds the editable fields of a diocese. Nil means unchanged.
type Update struct {
	Name     *string `json:"name,omitempty"`
	Bishop   *string `json:"bishop,omitempty"`
	Location *string `json:"location,omitempty"`
	Contact  *string `json:"contact,omitempty"`
}

func (s *Store) Update(ctx context.Context, id string, u Update) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if u.Name != nil {
		set["name"] = *u.Name
		set["name_ci"] = text.Fold(*u.Name)
	}
	if u.Bishop != nil {
		set["bishop"] = *u.Bishop
	}
	if u.Location != nil {
		set["location"] = *u.Location
	}
	if u.Contact != nil {
		set["contact"] = *u.Contact
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return storekit.Err("update diocese", err)
	}
	return storekit.MustMatch("update diocese", res.MatchedCount)
}
