// internal/app/store/content/contentstore.go
package contentstore

import (
	"context"
	"fmt"
	"time"

	"github.com/samaquete/admin/internal/app/store/storekit"
	"github.com/samaquete/admin/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists one content kind (news, prayers or activities).
type Store struct {
	c    *mongo.Collection
	kind models.ContentKind
}

// New binds a Store to the collection for kind.
func New(db *mongo.Database, kind models.ContentKind) *Store {
	return &Store{c: db.Collection(kind.Collection()), kind: kind}
}

// Kind returns the content kind this store serves.
func (s *Store) Kind() models.ContentKind { return s.kind }

func (s *Store) Create(ctx context.Context, item models.ContentItem) (models.ContentItem, error) {
	now := time.Now().UTC()
	if item.ID == "" {
		item.ID = storekit.NewID()
	}
	item.Kind = s.kind
	if item.Status == "" {
		item.Status = models.StatusDraft
	}
	item.Published = item.Status == models.StatusPublished
	if item.Published && item.PublishedAt == nil {
		item.PublishedAt = &now
	}
	item.CreatedAt = now
	item.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, item); err != nil {
		return models.ContentItem{}, storekit.Err("create "+string(s.kind), err)
	}
	return item, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.ContentItem, error) {
	var item models.ContentItem
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		return models.ContentItem{}, storekit.Err("get "+string(s.kind), err)
	}
	return item, nil
}

// Update holds the editable fields of a content item. Status is changed
// through SetStatus only.
type Update struct {
	Title    *string    `json:"title,omitempty"`
	Body     *string    `json:"body,omitempty"`
	Excerpt  *string    `json:"excerpt,omitempty"`
	Category *string    `json:"category,omitempty"`
	Author   *string    `json:"author,omitempty"`
	ImageURL *string    `json:"imageUrl,omitempty"`
	Location *string    `json:"location,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
}

func (s *Store) Update(ctx context.Context, id string, u Update) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Body != nil {
		set["body"] = *u.Body
	}
	if u.Excerpt != nil {
		set["excerpt"] = *u.Excerpt
	}
	if u.Category != nil {
		set["category"] = *u.Category
	}
	if u.Author != nil {
		set["author"] = *u.Author
	}
	if u.ImageURL != nil {
		set["image_url"] = *u.ImageURL
	}
	if u.Location != nil {
		set["location"] = *u.Location
	}
	if u.Date != nil {
		set["date"] = *u.Date
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return storekit.Err("update "+string(s.kind), err)
	}
	return storekit.MustMatch("update "+string(s.kind), res.MatchedCount)
}

// SetStatus writes the lifecycle fields of item (status, published flags,
// validation stamps, rejection reason) as computed by the content policy.
func (s *Store) SetStatus(ctx context.Context, item models.ContentItem) error {
	set := bson.M{
		"status":           item.Status,
		"published":        item.Published,
		"rejection_reason": item.RejectionReason,
		"updated_at":       item.UpdatedAt,
	}
	if item.PublishedAt != nil {
		set["published_at"] = *item.PublishedAt
	}
	if item.ValidatedAt != nil {
		set["validated_at"] = *item.ValidatedAt
		set["validated_by"] = item.ValidatedBy
	}
	res, err := s.c.UpdateByID(ctx, item.ID, bson.M{"$set": set})
	if err != nil {
		return storekit.Err("set status", err)
	}
	return storekit.MustMatch("set status", res.MatchedCount)
}

// IncrementViews atomically bumps the view counter.
func (s *Store) IncrementViews(ctx context.Context, id string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return storekit.Err("increment views", err)
	}
	return storekit.MustMatch("increment views", res.MatchedCount)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storekit.Err("delete "+string(s.kind), err)
	}
	return storekit.MustMatch("delete "+string(s.kind), res.DeletedCount)
}

// Filter narrows Find and Count. Zero values are ignored.
type Filter struct {
	Scope  models.Scope
	Status models.ContentStatus
	Limit  int64
	Skip   int64
}

func (s *Store) query(f Filter) bson.M {
	q := storekit.ScopeFilter(f.Scope, storekit.SelfNone)
	if f.Status != "" {
		q["status"] = f.Status
	}
	return q
}

// Find returns items matching f, newest first.
func (s *Store) Find(ctx context.Context, f Filter) ([]models.ContentItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	if f.Skip > 0 {
		opts.SetSkip(f.Skip)
	}
	cur, err := s.c.Find(ctx, s.query(f), opts)
	if err != nil {
		return nil, storekit.Err(fmt.Sprintf("find %s", s.kind), err)
	}
	defer cur.Close(ctx)

	var out []models.ContentItem
	if err := cur.All(ctx, &out); err != nil {
		return nil, storekit.Err(fmt.Sprintf("find %s", s.kind), err)
	}
	return out, nil
}

// Count returns the number of items matching f (Limit and Skip are ignored).
func (s *Store) Count(ctx context.Context, f Filter) (int64, error) {
	n, err := s.c.CountDocuments(ctx, s.query(f))
	return n, storekit.Err(fmt.Sprintf("count %s", s.kind), err)
}
