package activitylogstore_test

import (
	"testing"
	"time"

	activitylogstore "github.com/samaquete/admin/internal/app/store/activitylog"
	"github.com/samaquete/admin/internal/domain/models"
	"github.com/samaquete/admin/internal/testutil"
)

func TestStore_InsertFillsDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := activitylogstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	l, err := store.Insert(ctx, models.ActivityLog{UserID: "u1", Action: models.ActionLogin, Description: "Connexion"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if l.ID == "" || l.Timestamp.IsZero() {
		t.Errorf("Insert did not fill id/timestamp: %+v", l)
	}
}

func TestStore_QueryFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := activitylogstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)
	seed := []models.ActivityLog{
		{UserID: "u1", Action: models.ActionCreate, EntityType: "news", EntityID: "n1", Timestamp: base},
		{UserID: "u1", Action: models.ActionUpdate, EntityType: "news", EntityID: "n1", Timestamp: base.Add(10 * time.Minute)},
		{UserID: "u2", Action: models.ActionDelete, EntityType: "church", EntityID: "c1", Timestamp: base.Add(20 * time.Minute)},
		{UserID: "u2", Action: models.ActionLogin, Timestamp: base.Add(30 * time.Minute)},
	}
	for _, l := range seed {
		if _, err := store.Insert(ctx, l); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	start := base.Add(5 * time.Minute)
	end := base.Add(25 * time.Minute)
	tests := []struct {
		name string
		f    activitylogstore.QueryFilter
		want int
	}{
		{"all", activitylogstore.QueryFilter{}, 4},
		{"user", activitylogstore.QueryFilter{UserID: "u1"}, 2},
		{"action", activitylogstore.QueryFilter{Action: models.ActionDelete}, 1},
		{"entity", activitylogstore.QueryFilter{EntityType: "news", EntityID: "n1"}, 2},
		{"window", activitylogstore.QueryFilter{StartTime: &start, EndTime: &end}, 2},
		{"offset", activitylogstore.QueryFilter{Offset: 3}, 1},
		{"limit", activitylogstore.QueryFilter{Limit: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Query(ctx, tt.f)
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d logs, want %d", len(got), tt.want)
			}
		})
	}

	latest, _ := store.Query(ctx, activitylogstore.QueryFilter{Limit: 1})
	if len(latest) == 1 && latest[0].Action != models.ActionLogin {
		t.Errorf("most recent first: got %q", latest[0].Action)
	}
	n, err := store.Count(ctx, activitylogstore.QueryFilter{UserID: "u2", Limit: 1})
	if err != nil || n != 2 {
		t.Errorf("Count = %d, %v", n, err)
	}

	since, err := store.Since(ctx, base.Add(15*time.Minute))
	if err != nil || len(since) != 2 {
		t.Fatalf("Since = %d, %v", len(since), err)
	}
	if !since[0].Timestamp.Before(since[1].Timestamp) {
		t.Error("Since should be oldest first")
	}
}
