// internal/app/store/identities/identitystore.go
package identitystore

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/samaquete/admin/internal/app/store/storekit"
	"github.com/samaquete/admin/internal/app/system/apperr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Record is one locally managed identity. The _id is the uid.
type Record struct {
	UID              string         `bson:"_id"`
	Email            string         `bson:"email"`
	EmailCI          string         `bson:"email_ci"`
	PasswordHash     []byte         `bson:"password_hash"`
	DisplayName      string         `bson:"display_name,omitempty"`
	EmailVerified    bool           `bson:"email_verified"`
	Disabled         bool           `bson:"disabled"`
	CustomClaims     map[string]any `bson:"custom_claims,omitempty"`
	TokensValidAfter time.Time      `bson:"tokens_valid_after"`
	ResetCode        string         `bson:"reset_code,omitempty"`
	ResetExpires     *time.Time     `bson:"reset_expires,omitempty"`
	CreatedAt        time.Time      `bson:"created_at"`
	LastSignInAt     *time.Time     `bson:"last_sign_in_at,omitempty"`
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("identities")}
}

// Create inserts rec. A duplicate email (unique email_ci index) returns
// apperr.ErrAlreadyExists.
func (s *Store) Create(ctx context.Context, rec Record) (Record, error) {
	now := time.Now().UTC()
	if rec.UID == "" {
		rec.UID = storekit.NewID()
	}
	rec.EmailCI = text.Fold(rec.Email)
	rec.CreatedAt = now
	if rec.TokensValidAfter.IsZero() {
		rec.TokensValidAfter = now
	}
	if _, err := s.c.InsertOne(ctx, rec); err != nil {
		if wafflemongo.IsDup(err) {
			return Record{}, apperr.ErrAlreadyExists
		}
		return Record{}, storekit.Err("create identity", err)
	}
	return rec, nil
}

func (s *Store) GetByUID(ctx context.Context, uid string) (Record, error) {
	var rec Record
	if err := s.c.FindOne(ctx, bson.M{"_id": uid}).Decode(&rec); err != nil {
		return Record{}, storekit.Err("get identity", err)
	}
	return rec, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (Record, error) {
	var rec Record
	if err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(email)}).Decode(&rec); err != nil {
		return Record{}, storekit.Err("get identity by email", err)
	}
	return rec, nil
}

// GetByResetCode finds the identity holding an unexpired reset code.
func (s *Store) GetByResetCode(ctx context.Context, code string, now time.Time) (Record, error) {
	var rec Record
	q := bson.M{"reset_code": code, "reset_expires": bson.M{"$gt": now}}
	if err := s.c.FindOne(ctx, q).Decode(&rec); err != nil {
		return Record{}, storekit.Err("get identity by reset code", err)
	}
	return rec, nil
}

// Set applies a partial update. Keys are bson field names; changing "email"
// also refreshes email_ci.
func (s *Store) Set(ctx context.Context, uid string, fields bson.M) error {
	if email, ok := fields["email"].(string); ok {
		fields["email_ci"] = text.Fold(email)
	}
	res, err := s.c.UpdateByID(ctx, uid, bson.M{"$set": fields})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return apperr.ErrAlreadyExists
		}
		return storekit.Err("update identity", err)
	}
	return storekit.MustMatch("update identity", res.MatchedCount)
}

// ClearResetCode removes any pending reset code.
func (s *Store) ClearResetCode(ctx context.Context, uid string) error {
	_, err := s.c.UpdateByID(ctx, uid, bson.M{"$unset": bson.M{"reset_code": "", "reset_expires": ""}})
	return storekit.Err("clear reset code", err)
}

func (s *Store) Delete(ctx context.Context, uid string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": uid})
	if err != nil {
		return storekit.Err("delete identity", err)
	}
	return storekit.MustMatch("delete identity", res.DeletedCount)
}

// List returns up to max identities ordered by email. max <= 0 means no limit.
func (s *Store) List(ctx context.Context, max int64) ([]Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "email_ci", Value: 1}})
	if max > 0 {
		opts.SetLimit(max)
	}
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storekit.Err("list identities", err)
	}
	defer cur.Close(ctx)

	var out []Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, storekit.Err("list identities", err)
	}
	return out, nil
}
