package schedules_test

import (
	"net/http"
	"testing"

	"github.com/samaquete/admin/internal/app/accessor"
	uierrors "github.com/samaquete/admin/internal/app/features/errors"
	"github.com/samaquete/admin/internal/app/features/schedules"
	activitylogstore "github.com/samaquete/admin/internal/app/store/activitylog"
	"github.com/samaquete/admin/internal/app/system/auditlog"
	"github.com/samaquete/admin/internal/domain/models"
	"github.com/samaquete/admin/internal/testutil"
	"go.uber.org/zap"
)

type env struct {
	h      *schedules.Handler
	parish models.Claims
	church models.Claims
}

func newEnv(t *testing.T) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	t.Cleanup(cancel)

	logger := zap.NewNop()
	fx := testutil.NewFixtures(t, db)
	fx.SeedDioceses(ctx)
	p := fx.CreateParish(ctx, testutil.DioceseB, "Sainte Anne")
	ch := fx.CreateChurch(ctx, testutil.DioceseB, p.ID, "Saint Joseph")
	set := accessor.NewSet(accessor.Deps{
		DB:       db,
		Identity: testutil.NewFakeIdentity(),
		Audit:    auditlog.New(activitylogstore.New(db), logger, auditlog.ModeDB),
	})
	return env{
		h:      schedules.NewHandler(set, uierrors.NewErrorLogger(logger), logger),
		parish: testutil.ParishAdmin(testutil.DioceseB, p.ID),
		church: testutil.ChurchAdmin(testutil.DioceseB, p.ID, ch.ID),
	}
}

func call(t *testing.T, handler http.HandlerFunc, method, target, id string, c models.Claims, body any) *testutil.ResponseRecorder {
	t.Helper()
	req := testutil.NewAuthenticatedRequest(t, method, target, c, body)
	if id != "" {
		req = testutil.WithChiURLParam(req, "id", id)
	}
	rec := testutil.NewRecorder()
	handler(rec, req)
	return rec
}

func TestPrayerTimes_ValidateFlow(t *testing.T) {
	e := newEnv(t)

	rec := call(t, e.h.HandlePrayerTimeCreate, "POST", "/api/prayer-times", "", e.church, map[string]any{
		"name": "Messe du soir", "time": "18:30", "days": []string{"Saturday"}, "active": true,
	})
	rec.AssertStatus(t, http.StatusCreated)
	var pt models.PrayerTime
	rec.DecodeJSON(t, &pt)
	if pt.ValidatedByParish {
		t.Fatal("church-authored prayer time created validated")
	}

	var list []models.PrayerTime
	rec = call(t, e.h.ServePrayerTimes, "GET", "/api/prayer-times?validated=false", "", e.parish, nil)
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeJSON(t, &list)
	if len(list) != 1 || list[0].ID != pt.ID {
		t.Fatalf("unvalidated = %+v", list)
	}

	rec = call(t, e.h.HandlePrayerTimeValidate, "POST", "/api/prayer-times/"+pt.ID+"/validate", pt.ID, e.church, nil)
	rec.AssertStatus(t, http.StatusForbidden)

	rec = call(t, e.h.HandlePrayerTimeValidate, "POST", "/api/prayer-times/"+pt.ID+"/validate", pt.ID, e.parish, nil)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"validatedByParish":true`)

	rec = call(t, e.h.ServePrayerTimes, "GET", "/api/prayer-times?validated=false", "", e.parish, nil)
	rec.DecodeJSON(t, &list)
	if len(list) != 0 {
		t.Errorf("still unvalidated: %+v", list)
	}
}

func TestPrayerTimes_Input(t *testing.T) {
	e := newEnv(t)
	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"ok", map[string]any{"name": "Laudes", "time": "7:00", "days": []string{"monday"}}, http.StatusCreated},
		{"bad time", map[string]any{"name": "Laudes", "time": "25:00"}, http.StatusBadRequest},
		{"bad day", map[string]any{"name": "Laudes", "time": "07:00", "days": []string{"lundi"}}, http.StatusBadRequest},
		{"no name", map[string]any{"time": "07:00"}, http.StatusBadRequest},
		{"wrong type", map[string]any{"name": "Laudes", "days": "monday"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(t, e.h.HandlePrayerTimeCreate, "POST", "/api/prayer-times", "", e.parish, tt.body)
			rec.AssertStatus(t, tt.want)
		})
	}
}

func TestDonationTypes_CRUD(t *testing.T) {
	e := newEnv(t)

	rec := call(t, e.h.HandleDonationTypeCreate, "POST", "/api/donation-types", "", e.parish, map[string]any{
		"name": "Denier du culte", "amounts": []int64{1000, 5000}, "active": true,
	})
	rec.AssertStatus(t, http.StatusCreated)
	var dt models.DonationType
	rec.DecodeJSON(t, &dt)
	if !dt.ValidatedByParish {
		t.Error("parish-authored donation type should be validated")
	}

	rec = call(t, e.h.HandleDonationTypeCreate, "POST", "/api/donation-types", "", e.parish, map[string]any{
		"name": "Quête", "amounts": []int64{-5},
	})
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = call(t, e.h.HandleDonationTypeUpdate, "PUT", "/api/donation-types/"+dt.ID, dt.ID, e.parish, map[string]any{"active": false})
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"active":false`)

	var active []models.DonationType
	rec = call(t, e.h.ServeDonationTypes, "GET", "/api/donation-types?active=true", "", e.parish, nil)
	rec.DecodeJSON(t, &active)
	if len(active) != 0 {
		t.Errorf("inactive type listed: %+v", active)
	}

	rec = call(t, e.h.HandleDonationTypeDelete, "DELETE", "/api/donation-types/"+dt.ID, dt.ID, e.parish, nil)
	rec.AssertStatus(t, http.StatusNoContent)
	rec = call(t, e.h.ServeDonationType, "GET", "/api/donation-types/"+dt.ID, dt.ID, e.parish, nil)
	rec.AssertStatus(t, http.StatusNotFound)
}
