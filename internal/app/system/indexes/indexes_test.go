package indexes_test

import (
	"testing"

	"github.com/samaquete/admin/internal/app/system/indexes"
	"github.com/samaquete/admin/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func indexNames(t *testing.T, db *mongo.Database, coll string) map[string]bson.M {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cur, err := db.Collection(coll).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes on %s: %v", coll, err)
	}
	defer cur.Close(ctx)

	out := map[string]bson.M{}
	for cur.Next(ctx) {
		var ix bson.M
		if err := cur.Decode(&ix); err != nil {
			continue
		}
		if name, ok := ix["name"].(string); ok {
			out[name] = ix
		}
	}
	return out
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("first EnsureAll: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("second EnsureAll: %v", err)
	}
}

func TestEnsureAll_CreatesIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, nil); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}

	tests := []struct {
		coll   string
		name   string
		unique bool
	}{
		{"identities", "uniq_identities_email_ci", true},
		{"parishes", "idx_parishes_diocese_nameci_id", false},
		{"donations", "idx_donations_parish_created", false},
		{"activity_logs", "idx_activitylogs_user_timestamp", false},
		{"news", "idx_news_diocese_status_created", false},
		{"users", "idx_users_parish_created", false},
		{"parish_notifications", "idx_notifications_parish_read_created", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix, ok := indexNames(t, db, tt.coll)[tt.name]
			if !ok {
				t.Fatalf("index %s missing on %s", tt.name, tt.coll)
			}
			if u, _ := ix["unique"].(bool); u != tt.unique {
				t.Errorf("unique = %v, want %v", u, tt.unique)
			}
		})
	}
}

func TestEnsureAll_RenamesMismatchedIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Same keys, old name and not unique.
	_, err := db.Collection("identities").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email_ci", Value: 1}},
	})
	if err != nil {
		t.Fatalf("seed index: %v", err)
	}

	if err := indexes.EnsureAll(ctx, db, nil); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	names := indexNames(t, db, "identities")
	if _, ok := names["email_ci_1"]; ok {
		t.Error("old index should have been dropped")
	}
	if _, ok := names["uniq_identities_email_ci"]; !ok {
		t.Error("desired unique index missing")
	}
}

func TestEnsureAll_DuplicatesBlockUniqueIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := db.Collection("identities").InsertMany(ctx, []any{
		bson.M{"_id": "u1", "email_ci": "dup@test.sn"},
		bson.M{"_id": "u2", "email_ci": "dup@test.sn"},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db, nil); err == nil {
		t.Fatal("expected an error when duplicates block a unique index")
	}
}
