package entities_test

import (
	"net/http"
	"testing"

	"github.com/samaquete/admin/internal/app/accessor"
	"github.com/samaquete/admin/internal/app/features/entities"
	uierrors "github.com/samaquete/admin/internal/app/features/errors"
	activitylogstore "github.com/samaquete/admin/internal/app/store/activitylog"
	"github.com/samaquete/admin/internal/app/system/auditlog"
	"github.com/samaquete/admin/internal/testutil"
	"go.uber.org/zap"
)

func TestHandleUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := zap.NewNop()
	fx := testutil.NewFixtures(t, db)
	fx.SeedDioceses(ctx)
	p := fx.CreateParish(ctx, testutil.DioceseB, "Sainte Anne")
	set := accessor.NewSet(accessor.Deps{
		DB:       db,
		Identity: testutil.NewFakeIdentity(),
		Audit:    auditlog.New(activitylogstore.New(db), logger, auditlog.ModeDB),
	})
	h := entities.NewHandler(set.Entities, uierrors.NewErrorLogger(logger), logger)
	admin := testutil.DioceseAdmin(testutil.DioceseB)

	tests := []struct {
		name string
		body map[string]string
		want int
		has  string
	}{
		{"rename parish", map[string]string{"entityType": "parish", "id": p.ID, "newName": "Sainte Anne de Thiès"}, http.StatusOK, `"name":"Sainte Anne de Thiès"`},
		{"id change refused", map[string]string{"entityType": "parish", "id": p.ID, "newName": "x", "newId": "autre"}, http.StatusBadRequest, `"field":"newId"`},
		{"unknown type", map[string]string{"entityType": "chapel", "id": p.ID, "newName": "x"}, http.StatusBadRequest, `"field":"entityType"`},
		{"missing name", map[string]string{"entityType": "parish", "id": p.ID}, http.StatusBadRequest, `"field":"newName"`},
		{"diocese needs super", map[string]string{"entityType": "diocese", "id": "thies", "newName": "Thiès"}, http.StatusForbidden, ""},
		{"unknown parish", map[string]string{"entityType": "parish", "id": "nope", "newName": "x"}, http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.HandleUpdate(rec, testutil.NewAuthenticatedRequest(t, "POST", "/api/entities/update", admin, tt.body))
			rec.AssertStatus(t, tt.want)
			if tt.has != "" {
				rec.AssertContains(t, tt.has)
			}
		})
	}
}
