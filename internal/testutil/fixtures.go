package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/samaquete/admin/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// SeedDioceses inserts the fixed dioceses.
func (f *Fixtures) SeedDioceses(ctx context.Context) {
	f.t.Helper()

	now := time.Now().UTC()
	for _, d := range models.FixedDioceses() {
		d.NameCI = text.Fold(d.Name)
		d.CreatedAt = now
		d.UpdatedAt = now
		_, err := f.db.Collection("dioceses").ReplaceOne(ctx, bson.M{"_id": d.ID}, d, options.Replace().SetUpsert(true))
		if err != nil {
			f.t.Fatalf("failed to seed diocese %s: %v", d.ID, err)
		}
	}
}

// CreateParish creates an active parish in dioceseID.
func (f *Fixtures) CreateParish(ctx context.Context, dioceseID, name string) models.Parish {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Parish{
		ID:        primitive.NewObjectID().Hex(),
		Name:      name,
		NameCI:    text.Fold(name),
		DioceseID: dioceseID,
		IsActive:  true,
		City:      "Dakar",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("parishes").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test parish: %v", err)
	}
	return p
}

// CreateChurch creates an active church. parishID may be empty.
func (f *Fixtures) CreateChurch(ctx context.Context, dioceseID, parishID, name string) models.Church {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Church{
		ID:        primitive.NewObjectID().Hex(),
		Name:      name,
		NameCI:    text.Fold(name),
		ParishID:  parishID,
		DioceseID: dioceseID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("churches").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test church: %v", err)
	}
	return c
}

// CreateContent inserts a content item of kind with the given scope and status.
func (f *Fixtures) CreateContent(ctx context.Context, kind models.ContentKind, title string, scope models.Scope, status models.ContentStatus, createdBy models.Claims) models.ContentItem {
	f.t.Helper()

	now := time.Now().UTC()
	item := models.ContentItem{
		ID:            primitive.NewObjectID().Hex(),
		Kind:          kind,
		Title:         title,
		Body:          "<p>" + title + "</p>",
		Scope:         scope,
		Status:        status,
		Published:     status == models.StatusPublished,
		CreatedBy:     createdBy.UID,
		CreatedByRole: createdBy.Role,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if item.Published {
		item.PublishedAt = &now
	}
	if _, err := f.db.Collection(kind.Collection()).InsertOne(ctx, item); err != nil {
		f.t.Fatalf("failed to create test %s: %v", kind, err)
	}
	return item
}

// CreateFidele inserts a mobile-app user document.
func (f *Fixtures) CreateFidele(ctx context.Context, first, last, parishID string, total, count int64) models.Fidele {
	f.t.Helper()

	now := time.Now().UTC()
	fd := models.Fidele{
		ID:             primitive.NewObjectID().Hex(),
		FirstName:      first,
		LastName:       last,
		Email:          text.Fold(first) + "@mail.sn",
		Phone:          "+221770000000",
		Country:        "SN",
		Username:       text.Fold(first + last),
		ParishID:       parishID,
		TotalDonations: total,
		DonationCount:  count,
		CreatedAt:      &now,
		UpdatedAt:      &now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, fd); err != nil {
		f.t.Fatalf("failed to create test fidele: %v", err)
	}
	return fd
}
