package health_test

import (
	"net/http"
	"testing"

	"github.com/samaquete/admin/internal/app/features/health"
	diocesestore "github.com/samaquete/admin/internal/app/store/dioceses"
	"github.com/samaquete/admin/internal/domain/models"
	"github.com/samaquete/admin/internal/testutil"
	"go.uber.org/zap"
)

type readiness struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Dioceses int64  `json:"dioceses"`
	Version  string `json:"version"`
}

func TestServeReady(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := health.NewHandler(db, "test", zap.NewNop())

	rec := testutil.NewRecorder()
	h.ServeReady(rec, testutil.NewJSONRequest(t, "GET", "/health", nil))
	rec.AssertStatus(t, http.StatusOK)
	var before readiness
	rec.DecodeJSON(t, &before)
	if before.Status != "degraded" || before.Database != "connected" || before.Version != "test" {
		t.Errorf("unseeded response = %+v", before)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := diocesestore.New(db).SeedFixed(ctx); err != nil {
		t.Fatalf("SeedFixed: %v", err)
	}

	rec = testutil.NewRecorder()
	h.ServeReady(rec, testutil.NewJSONRequest(t, "GET", "/health", nil))
	rec.AssertStatus(t, http.StatusOK)
	var after readiness
	rec.DecodeJSON(t, &after)
	if after.Status != "ok" || after.Dioceses != int64(len(models.FixedDioceses())) {
		t.Errorf("seeded response = %+v", after)
	}
}

func TestServeLive(t *testing.T) {
	h := health.NewHandler(nil, "test", zap.NewNop())
	rec := testutil.NewRecorder()
	h.ServeLive(rec, testutil.NewJSONRequest(t, "GET", "/health/live", nil))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"status":"ok"`)
}
