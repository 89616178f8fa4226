// internal/app/store/donations/donationstore.go
package donationstore

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
	return &Store{c: db.Collection("donations")}
}

func (s *Store) Create(ctx context.Context, d models.Donation) (models.Donation, error) {
	now := time.Now().UTC()
	if d.ID == "" {
		d.ID = storekit.NewID()
	}
	if d.Status == "" {
		d.Status = models.DonationPending
	}
	d.CreatedAt = now
	d.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, d); err != nil {
		return models.Donation{}, storekit.Err("create donation", err)
	}
	return d, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.Donation, error) {
	var d models.Donation
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return models.Donation{}, storekit.Err("get donation", err)
	}
	return d, nil
}

// SetStatus changes a donation's status. It reports the previous status so
// callers can tell whether the record just became completed.
func (s *Store) SetStatus(ctx context.Context, id, status string) (previous string, err error) {
	var before models.Donation
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&before)
	if err != nil {
		return "", storekit.Err("set donation status", err)
	}
	return before.Status, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storekit.Err("delete donation", err)
	}
	return storekit.MustMatch("delete donation", res.DeletedCount)
}

// Filter narrows Find. Empty fields are ignored.
type Filter struct {
	DioceseID string
	ParishID  string
	EventID   string
	Status    string
	Limit     int64
}

func (f Filter) query() bson.M {
	q := storekit.ScopeFilter(models.Scope{DioceseID: f.DioceseID, ParishID: f.ParishID}, storekit.SelfNone)
	if f.EventID != "" {
		q["event_id"] = f.EventID
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	return q
}

// Find returns donations matching f, newest first.
func (s *Store) Find(ctx context.Context, f Filter) ([]models.Donation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	cur, err := s.c.Find(ctx, f.query(), opts)
	if err != nil {
		return nil, storekit.Err("find donations", err)
	}
	defer cur.Close(ctx)

	var out []models.Donation
	if err := cur.All(ctx, &out); err != nil {
		return nil, storekit.Err("find donations", err)
	}
	return out, nil
}

// Stats aggregates counts per status and the completed total for f.
func (s *Store) Stats(ctx context.Context, f Filter) (models.DonationStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: f.query()}},
		{{Key: "$group", Value: bson.M{
			"_id":    "$status",
			"count":  bson.M{"$sum": 1},
			"amount": bson.M{"$sum": "$amount"},
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return models.DonationStats{}, storekit.Err("donation stats", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int    `bson:"count"`
		Amount int64  `bson:"amount"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return models.DonationStats{}, storekit.Err("donation stats", err)
	}

	var st models.DonationStats
	for _, r := range rows {
		st.Total += r.Count
		switch r.Status {
		case models.DonationCompleted:
			st.Completed += r.Count
			st.TotalAmount += r.Amount
		case models.DonationPending:
			st.Pending += r.Count
		case models.DonationFailed:
			st.Failed += r.Count
		case models.DonationCancelled:
			st.Cancelled += r.Count
		}
	}
	return st, nil
}
