package notificationstore_test

import (
	"errors"
	"testing"
	"time"

	notificationstore "github.com/samaquete/admin/internal/app/store/notifications"
	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/domain/models"
	"github.com/samaquete/admin/internal/testutil"
)

func TestStore_FindAndMarkRead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)
	seed := []models.ParishNotification{
		{ParishID: "p1", DioceseID: "THIES", Type: models.NotifyNews, Title: "a", CreatedAt: base},
		{ParishID: "p1", DioceseID: "THIES", Type: models.NotifyPrayer, Title: "b", CreatedAt: base.Add(time.Minute)},
		{ParishID: "p2", DioceseID: "THIES", Type: models.NotifyNews, Title: "c", CreatedAt: base.Add(2 * time.Minute)},
		{ParishID: "p3", DioceseID: "KAOLACK", Type: models.NotifyDonation, Title: "d", CreatedAt: base.Add(3 * time.Minute)},
	}
	var first models.ParishNotification
	for i, n := range seed {
		got, err := store.Insert(ctx, n)
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		if got.ID == "" || got.Priority != models.PriorityNormal || got.Read {
			t.Errorf("Insert did not fill defaults: %+v", got)
		}
		if i == 0 {
			first = got
		}
	}

	tests := []struct {
		name string
		f    notificationstore.Filter
		want int
	}{
		{"all", notificationstore.Filter{}, 4},
		{"parish", notificationstore.Filter{Scope: models.Scope{ParishID: "p1"}}, 2},
		{"diocese", notificationstore.Filter{Scope: models.Scope{DioceseID: "THIES"}}, 3},
		{"type", notificationstore.Filter{Type: models.NotifyNews}, 2},
		{"limit", notificationstore.Filter{Limit: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Find(ctx, tt.f)
			if err != nil {
				t.Fatalf("Find: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}

	got, err := store.Find(ctx, notificationstore.Filter{Scope: models.Scope{ParishID: "p1"}})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got[0].Title != "b" {
		t.Errorf("newest first: got %q", got[0].Title)
	}

	if err := store.MarkRead(ctx, first.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := store.MarkRead(ctx, "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("MarkRead missing: %v", err)
	}
	n, err := store.CountUnread(ctx, notificationstore.Filter{Scope: models.Scope{ParishID: "p1"}})
	if err != nil || n != 1 {
		t.Errorf("CountUnread = %d, %v", n, err)
	}
	read, err := store.GetByID(ctx, first.ID)
	if err != nil || !read.Read {
		t.Errorf("GetByID = %+v, %v", read, err)
	}
}
