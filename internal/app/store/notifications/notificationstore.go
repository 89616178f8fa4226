// internal/app/store/notifications/notificationstore.go
package notificationstore

import (
	"context"
	"time"

	"github.com/samaquete/admin/internal/app/store/storekit"
	"github.com/samaquete/admin/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is shared with the mobile app.
const Collection = "parish_notifications"

// DefaultLimit caps Find when the filter sets no limit.
const DefaultLimit = 50

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Insert stores n unread. ID, Priority and CreatedAt are filled when empty.
func (s *Store) Insert(ctx context.Context, n models.ParishNotification) (models.ParishNotification, error) {
	if n.ID == "" {
		n.ID = storekit.NewID()
	}
	if n.Priority == "" {
		n.Priority = models.PriorityNormal
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	n.Read = false
	if _, err := s.c.InsertOne(ctx, n); err != nil {
		return models.ParishNotification{}, storekit.Err("insert notification", err)
	}
	return n, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.ParishNotification, error) {
	var n models.ParishNotification
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	return n, storekit.Err("get notification", err)
}

// Filter narrows Find and CountUnread. Empty scope fields are not constrained.
type Filter struct {
	Scope      models.Scope
	Type       string
	UnreadOnly bool
	Limit      int64
}

func (f Filter) query() bson.M {
	q := bson.M{}
	if f.Scope.DioceseID != "" {
		q["diocese_id"] = f.Scope.DioceseID
	}
	if f.Scope.ParishID != "" {
		q["parish_id"] = f.Scope.ParishID
	}
	if f.Type != "" {
		q["type"] = f.Type
	}
	if f.UnreadOnly {
		q["read"] = false
	}
	return q
}

// Find returns matching notifications, newest first.
func (s *Store) Find(ctx context.Context, f Filter) ([]models.ParishNotification, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, f.query(), opts)
	if err != nil {
		return nil, storekit.Err("find notifications", err)
	}
	defer cur.Close(ctx)

	var out []models.ParishNotification
	if err := cur.All(ctx, &out); err != nil {
		return nil, storekit.Err("find notifications", err)
	}
	return out, nil
}

// CountUnread counts the unread notifications matching f.
func (s *Store) CountUnread(ctx context.Context, f Filter) (int64, error) {
	f.UnreadOnly = true
	n, err := s.c.CountDocuments(ctx, f.query())
	return n, storekit.Err("count notifications", err)
}

// MarkRead flags one notification as read. Marking it twice is not an error.
func (s *Store) MarkRead(ctx context.Context, id string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return storekit.Err("mark notification read", err)
	}
	return storekit.MustMatch("mark notification read", res.MatchedCount)
}
