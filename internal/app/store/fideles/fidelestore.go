// internal/app/store/fideles/fidelestore.go
package fidelestore

import (
	"context"

	"github.com/samaquete/admin/internal/app/store/storekit"
	"github.com/samaquete/admin/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store reads the mobile app's "users" collection. Its documents use
// camelCase field names and are never written from here.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// List returns fideles, optionally restricted to one parish, newest first.
func (s *Store) List(ctx context.Context, parishID string) ([]models.Fidele, error) {
	q := bson.M{}
	if parishID != "" {
		q["parishId"] = parishID
	}
	cur, err := s.c.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, storekit.Err("list fideles", err)
	}
	defer cur.Close(ctx)

	var out []models.Fidele
	if err := cur.All(ctx, &out); err != nil {
		return nil, storekit.Err("list fideles", err)
	}
	return out, nil
}
