// internal/app/store/activitylog/activitylogstore.go
package activitylogstore

import (
	"context"
	"time"

	"github.com/samaquete/admin/internal/app/store/storekit"
	"github.com/samaquete/admin/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultLimit caps Query when the filter sets no limit.
const DefaultLimit = 100

// Store is append-only: it exposes no update or delete.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("activity_logs")}
}

// Insert records one activity log. ID and Timestamp are filled when empty.
func (s *Store) Insert(ctx context.Context, l models.ActivityLog) (models.ActivityLog, error) {
	if l.ID == "" {
		l.ID = storekit.NewID()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, l); err != nil {
		return models.ActivityLog{}, storekit.Err("insert activity log", err)
	}
	return l, nil
}

// QueryFilter narrows Query and Count. Zero values are ignored.
type QueryFilter struct {
	UserID     string
	Action     string
	EntityType string
	EntityID   string
	StartTime  *time.Time
	EndTime    *time.Time
	Limit      int64
	Offset     int64
}

func (f QueryFilter) query() bson.M {
	q := bson.M{}
	if f.UserID != "" {
		q["user_id"] = f.UserID
	}
	if f.Action != "" {
		q["action"] = f.Action
	}
	if f.EntityType != "" {
		q["entity_type"] = f.EntityType
	}
	if f.EntityID != "" {
		q["entity_id"] = f.EntityID
	}
	if f.StartTime != nil || f.EndTime != nil {
		tq := bson.M{}
		if f.StartTime != nil {
			tq["$gte"] = *f.StartTime
		}
		if f.EndTime != nil {
			tq["$lte"] = *f.EndTime
		}
		q["timestamp"] = tq
	}
	return q
}

// Query returns logs matching f, most recent first.
func (s *Store) Query(ctx context.Context, f QueryFilter) ([]models.ActivityLog, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit).
		SetSkip(f.Offset)

	cur, err := s.c.Find(ctx, f.query(), opts)
	if err != nil {
		return nil, storekit.Err("query activity logs", err)
	}
	defer cur.Close(ctx)

	var out []models.ActivityLog
	if err := cur.All(ctx, &out); err != nil {
		return nil, storekit.Err("query activity logs", err)
	}
	return out, nil
}

// Count returns the number of logs matching f.
func (s *Store) Count(ctx context.Context, f QueryFilter) (int64, error) {
	n, err := s.c.CountDocuments(ctx, f.query())
	return n, storekit.Err("count activity logs", err)
}

// Since returns every log at or after t, oldest first. Used for statistics.
func (s *Store) Since(ctx context.Context, t time.Time) ([]models.ActivityLog, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"timestamp": bson.M{"$gte": t}},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}),
	)
	if err != nil {
		return nil, storekit.Err("activity logs since", err)
	}
	defer cur.Close(ctx)

	var out []models.ActivityLog
	if err := cur.All(ctx, &out); err != nil {
		return nil, storekit.Err("activity logs since", err)
	}
	return out, nil
}
