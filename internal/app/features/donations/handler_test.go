package donations_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/samaquete/admin/internal/app/accessor"
	"github.com/samaquete/admin/internal/app/features/donations"
	uierrors "github.com/samaquete/admin/internal/app/features/errors"
	activitylogstore "github.com/samaquete/admin/internal/app/store/activitylog"
	"github.com/samaquete/admin/internal/app/system/auditlog"
	"github.com/samaquete/admin/internal/app/system/payments"
	"github.com/samaquete/admin/internal/domain/models"
	"github.com/samaquete/admin/internal/testutil"
	"go.uber.org/zap"
)

type fakePayments struct {
	records         []models.PaymentRecord
	err             error
	calls           int
	token           string
	parish, diocese string
}

func (f *fakePayments) FetchPayments(_ context.Context, token, parishID, dioceseID string) ([]models.PaymentRecord, error) {
	f.calls++
	f.token, f.parish, f.diocese = token, parishID, dioceseID
	return f.records, f.err
}

type env struct {
	h      *donations.Handler
	pay    *fakePayments
	parish models.Parish
	padmin models.Claims
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
	set := accessor.NewSet(accessor.Deps{
		DB:       db,
		Identity: testutil.NewFakeIdentity(),
		Audit:    auditlog.New(activitylogstore.New(db), logger, auditlog.ModeDB),
	})
	pay := &fakePayments{}
	return env{
		h:      donations.NewHandler(set, pay, uierrors.NewErrorLogger(logger), logger),
		pay:    pay,
		parish: p,
		padmin: testutil.ParishAdmin(testutil.DioceseB, p.ID),
	}
}

func call(t *testing.T, handler http.HandlerFunc, req *http.Request, id string) *testutil.ResponseRecorder {
	t.Helper()
	if id != "" {
		req = testutil.WithChiURLParam(req, "id", id)
	}
	rec := testutil.NewRecorder()
	handler(rec, req)
	return rec
}

func TestEventsAndRecords(t *testing.T) {
	e := newEnv(t)

	rec := call(t, e.h.HandleEventCreate, testutil.NewAuthenticatedRequest(t, "POST", "/api/donation-events", e.padmin, map[string]any{
		"title": "Rénovation du clocher", "targetAmount": 100000, "isActive": true,
	}), "")
	rec.AssertStatus(t, http.StatusCreated)
	var ev models.DonationEvent
	rec.DecodeJSON(t, &ev)
	if ev.ParishID != e.parish.ID || ev.DioceseID != testutil.DioceseB {
		t.Fatalf("event scope = %s/%s", ev.DioceseID, ev.ParishID)
	}

	for _, amount := range []int64{25000, 5000} {
		rec = call(t, e.h.HandleRecordCreate, testutil.NewAuthenticatedRequest(t, "POST", "/api/donation-records", e.padmin, map[string]any{
			"donorName": "Marie Ndiaye", "amount": amount, "eventId": ev.ID, "status": "completed",
		}), "")
		rec.AssertStatus(t, http.StatusCreated)
	}

	rec = call(t, e.h.ServeEvent, testutil.NewAuthenticatedRequest(t, "GET", "/api/donation-events/"+ev.ID, e.padmin, nil), ev.ID)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"currentAmount":30000`)
	rec.AssertContains(t, `"progress":0.3`)

	rec = call(t, e.h.ServeRecordStats, testutil.NewAuthenticatedRequest(t, "GET", "/api/donation-records/stats?eventId="+ev.ID, e.padmin, nil), "")
	rec.AssertStatus(t, http.StatusOK)
	var stats models.DonationStats
	rec.DecodeJSON(t, &stats)
	if stats.Total != 2 || stats.Completed != 2 || stats.TotalAmount != 30000 {
		t.Errorf("stats = %+v", stats)
	}

	rec = call(t, e.h.HandleRecordCreate, testutil.NewAuthenticatedRequest(t, "POST", "/api/donation-records", e.padmin, map[string]any{
		"donorName": "X", "amount": 0,
	}), "")
	rec.AssertStatus(t, http.StatusBadRequest)

	church := testutil.ChurchAdmin(testutil.DioceseB, e.parish.ID, "c1")
	rec = call(t, e.h.ServeRecords, testutil.NewAuthenticatedRequest(t, "GET", "/api/donation-records", church, nil), "")
	rec.AssertStatus(t, http.StatusForbidden)
	rec = call(t, e.h.ServeEvents, testutil.NewAuthenticatedRequest(t, "GET", "/api/donation-events", church, nil), "")
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestServePayments(t *testing.T) {
	e := newEnv(t)
	e.pay.records = []models.PaymentRecord{
		{ID: "pay1", PlanID: "DONATION_QUETE", Amount: 5000, Status: "PAID", ParishID: e.parish.ID},
		{ID: "pay2", PlanID: "DONATION_DENIER", Amount: 2000, Status: "pending", ParishID: e.parish.ID},
		{ID: "pay3", PlanID: "PREMIUM_MONTHLY", Amount: 9000, Status: "paid"},
	}

	req := testutil.NewAuthenticatedRequest(t, "GET", "/api/donations?parishId=other&dioceseId=THIES", testutil.DioceseAdmin(testutil.DioceseB), nil)
	rec := call(t, e.h.ServePayments, req, "")
	rec.AssertStatus(t, http.StatusUnauthorized)
	if e.pay.calls != 0 {
		t.Fatal("upstream called without a bearer token")
	}

	req = testutil.NewAuthenticatedRequest(t, "GET", "/api/donations", e.padmin, nil)
	req.Header.Set("Authorization", "Bearer id-token-1")
	rec = call(t, e.h.ServePayments, req, "")
	rec.AssertStatus(t, http.StatusOK)
	if e.pay.token != "id-token-1" || e.pay.parish != e.parish.ID || e.pay.diocese != "" {
		t.Errorf("forwarded token=%q parish=%q diocese=%q", e.pay.token, e.pay.parish, e.pay.diocese)
	}
	var resp struct {
		Donations []models.PaymentDonation `json:"donations"`
		Stats     models.PaymentStats      `json:"stats"`
	}
	rec.DecodeJSON(t, &resp)
	if len(resp.Donations) != 2 || resp.Stats.Completed != 1 || resp.Stats.Pending != 1 || resp.Stats.TotalAmount != 5000 {
		t.Errorf("resp = %+v", resp)
	}

	req = testutil.NewAuthenticatedRequest(t, "GET", "/api/donations?dioceseId=DAKAR", testutil.DioceseAdmin(testutil.DioceseB), nil)
	req.Header.Set("Authorization", "Bearer id-token-2")
	calls := e.pay.calls
	rec = call(t, e.h.ServePayments, req, "")
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"donations":[]`)
	if e.pay.calls != calls {
		t.Error("conflicting filter reached the payment API")
	}

	e.pay.err = &payments.UpstreamStatusError{Status: http.StatusUnauthorized, Body: "token expired"}
	req = testutil.NewAuthenticatedRequest(t, "GET", "/api/donations", testutil.SuperAdmin(), nil)
	req.Header.Set("Authorization", "Bearer stale")
	rec = call(t, e.h.ServePayments, req, "")
	rec.AssertStatus(t, http.StatusUnauthorized)
}
