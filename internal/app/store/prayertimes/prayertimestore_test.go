package prayertimestore_test

import (
	"errors"
	"testing"
	"time"

	prayertimestore "github.com/samaquete/admin/internal/app/store/prayertimes"
	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/domain/models"
	"github.com/samaquete/admin/internal/testutil"
)

func boolPtr(b bool) *bool { return &b }

func TestStore_CreateDefaultsDays(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := prayertimestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pt, err := store.Create(ctx, models.PrayerTime{Name: "Messe", Time: "07:00", Active: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := store.GetByID(ctx, pt.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Days == nil || len(got.Days) != 0 {
		t.Errorf("Days = %#v, want empty slice", got.Days)
	}
}

func TestStore_SetValidated(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := prayertimestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pt, err := store.Create(ctx, models.PrayerTime{
		Name:  "Vêpres",
		Time:  "18:30",
		Days:  []string{"sunday"},
		Scope: models.Scope{DioceseID: testutil.DioceseA, ParishID: "p1", ChurchID: "c1"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	at := time.Now().UTC().Truncate(time.Millisecond)
	changed, err := store.SetValidated(ctx, pt.ID, "parish-admin", at)
	if err != nil || !changed {
		t.Fatalf("first SetValidated = %v, %v", changed, err)
	}
	changed, err = store.SetValidated(ctx, pt.ID, "someone-else", at.Add(time.Hour))
	if err != nil || changed {
		t.Errorf("second SetValidated = %v, %v; want no change", changed, err)
	}
	got, _ := store.GetByID(ctx, pt.ID)
	if !got.ValidatedByParish || got.ValidatedBy != "parish-admin" {
		t.Errorf("validation stamp overwritten: %+v", got)
	}

	if _, err := store.SetValidated(ctx, "missing", "x", at); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("SetValidated(missing) = %v, want ErrNotFound", err)
	}
}

func TestStore_FindOrderAndFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := prayertimestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	parish := models.Scope{DioceseID: testutil.DioceseA, ParishID: "p1"}
	church := models.Scope{DioceseID: testutil.DioceseA, ParishID: "p1", ChurchID: "c1"}
	for _, pt := range []models.PrayerTime{
		{Name: "Soir", Time: "18:00", Scope: parish, Active: true, ValidatedByParish: true},
		{Name: "Matin", Time: "06:30", Scope: church, Active: true},
		{Name: "Midi", Time: "12:00", Scope: church, Active: false},
	} {
		if _, err := store.Create(ctx, pt); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	tests := []struct {
		name string
		f    prayertimestore.Filter
		want []string
	}{
		{"parish sorted by time", prayertimestore.Filter{Scope: parish}, []string{"Matin", "Midi", "Soir"}},
		{"church", prayertimestore.Filter{Scope: church}, []string{"Matin", "Midi"}},
		{"unvalidated", prayertimestore.Filter{Scope: parish, Validated: boolPtr(false)}, []string{"Matin", "Midi"}},
		{"active", prayertimestore.Filter{Scope: parish, Active: boolPtr(true)}, []string{"Matin", "Soir"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Find(ctx, tt.f)
			if err != nil {
				t.Fatalf("Find: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].Name != tt.want[i] {
					t.Errorf("[%d] = %q, want %q", i, got[i].Name, tt.want[i])
				}
			}
		})
	}
}

func TestStore_UpdateDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := prayertimestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pt, _ := store.Create(ctx, models.PrayerTime{Name: "Messe", Time: "07:00"})
	tm := "08:00"
	if err := store.Update(ctx, pt.ID, prayertimestore.Update{Time: &tm, Days: []string{"monday", "friday"}}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := store.GetByID(ctx, pt.ID)
	if got.Time != "08:00" || len(got.Days) != 2 {
		t.Errorf("after Update: %+v", got)
	}
	if err := store.Delete(ctx, pt.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Update(ctx, pt.ID, prayertimestore.Update{Time: &tm}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Update after delete = %v, want ErrNotFound", err)
	}
}
