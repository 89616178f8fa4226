package users_test

import (
	"net/http"
	"testing"

	"github.com/samaquete/admin/internal/app/accessor"
	uierrors "github.com/samaquete/admin/internal/app/features/errors"
	"github.com/samaquete/admin/internal/app/features/users"
	activitylogstore "github.com/samaquete/admin/internal/app/store/activitylog"
	"github.com/samaquete/admin/internal/app/system/auditlog"
	"github.com/samaquete/admin/internal/domain/models"
	"github.com/samaquete/admin/internal/testutil"
	"go.uber.org/zap"
)

type env struct {
	h      *users.Handler
	idp    *testutil.FakeIdentity
	parish models.Parish
	super  models.Claims
}

func newEnv(t *testing.T) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	t.Cleanup(cancel)

	logger := zap.NewNop()
	fx := testutil.NewFixtures(t, db)
	fx.SeedDioceses(ctx)
	idp := testutil.NewFakeIdentity()
	super := testutil.SuperAdmin()
	idp.AddUser(super)
	set := accessor.NewSet(accessor.Deps{
		DB:       db,
		Identity: idp,
		Audit:    auditlog.New(activitylogstore.New(db), logger, auditlog.ModeDB),
	})
	return env{
		h:      users.NewHandler(set.Users, uierrors.NewErrorLogger(logger), logger),
		idp:    idp,
		parish: fx.CreateParish(ctx, testutil.DioceseB, "Sainte Anne"),
		super:  super,
	}
}

func post(t *testing.T, handler http.HandlerFunc, target string, c models.Claims, body any) *testutil.ResponseRecorder {
	t.Helper()
	rec := testutil.NewRecorder()
	handler(rec, testutil.NewAuthenticatedRequest(t, "POST", target, c, body))
	return rec
}

func TestHandleCreate(t *testing.T) {
	e := newEnv(t)

	rec := post(t, e.h.HandleCreate, "/api/users/create", e.super, map[string]string{
		"email": "cure@paroisse.sn", "name": "Abbé Faye", "role": "parish_admin", "entityType": "parish", "entityId": e.parish.ID,
	})
	rec.AssertStatus(t, http.StatusCreated)
	var out accessor.CreatedUser
	rec.DecodeJSON(t, &out)
	if out.UID == "" || out.DefaultPassword != accessor.DefaultPassword {
		t.Errorf("created = %+v", out)
	}

	tests := []struct {
		name   string
		claims models.Claims
		body   map[string]string
		want   int
		field  string
	}{
		{"duplicate email", e.super, map[string]string{"email": "cure@paroisse.sn", "role": "parish_admin", "entityId": e.parish.ID}, http.StatusBadRequest, ""},
		{"missing email", e.super, map[string]string{"role": "super_admin"}, http.StatusBadRequest, "email"},
		{"unknown role", e.super, map[string]string{"email": "a@b.sn", "role": "bishop"}, http.StatusBadRequest, "role"},
		{"not super", testutil.DioceseAdmin(testutil.DioceseB), map[string]string{"email": "a@b.sn", "role": "parish_admin", "entityId": e.parish.ID}, http.StatusForbidden, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, e.h.HandleCreate, "/api/users/create", tt.claims, tt.body)
			rec.AssertStatus(t, tt.want)
			if tt.field != "" {
				rec.AssertContains(t, `"field":"`+tt.field+`"`)
			}
		})
	}
}

func TestHandleUpdate(t *testing.T) {
	e := newEnv(t)
	uid := "diocese-admin-1"
	e.idp.AddUser(models.Claims{UID: uid, Email: "diocese@test.sn", Role: models.RoleDioceseAdmin, Scope: models.Scope{DioceseID: testutil.DioceseA}})

	rec := post(t, e.h.HandleUpdate, "/api/users/update", e.super, map[string]string{
		"uid": uid, "role": "parish_admin", "entityType": "parish", "entityId": e.parish.ID,
	})
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"role":"parish_admin"`)
	rec.AssertContains(t, `"parishId":"`+e.parish.ID+`"`)
	if e.idp.Revoked[uid] != 1 {
		t.Errorf("sessions revoked %d times", e.idp.Revoked[uid])
	}

	rec = post(t, e.h.HandleUpdate, "/api/users/update", e.super, map[string]string{"uid": "ghost", "role": "super_admin"})
	rec.AssertStatus(t, http.StatusNotFound)

	rec = post(t, e.h.HandleUpdate, "/api/users/update", e.super, map[string]string{"role": "super_admin"})
	rec.AssertStatus(t, http.StatusBadRequest)
}

func mustList(t *testing.T, e env) []struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
} {
	t.Helper()
	rec := testutil.NewRecorder()
	e.h.ServeList(rec, testutil.NewAuthenticatedRequest(t, "GET", "/api/users/list", e.super, nil))
	rec.AssertStatus(t, http.StatusOK)
	var out []struct {
		UID   string `json:"uid"`
		Email string `json:"email"`
	}
	rec.DecodeJSON(t, &out)
	return out
}

func TestAccountFlows(t *testing.T) {
	e := newEnv(t)
	self := testutil.ParishAdmin(testutil.DioceseB, e.parish.ID)
	self.MustChangePassword = true
	e.idp.AddUser(self)

	rec := post(t, e.h.HandleClearPasswordFlag, "/api/users/update-password-claim", self, nil)
	rec.AssertStatus(t, http.StatusNoContent)

	rec = post(t, e.h.HandleClearPasswordFlag, "/api/users/update-password-claim", self, map[string]string{"uid": e.super.UID})
	rec.AssertStatus(t, http.StatusForbidden)

	rec = post(t, e.h.HandleUpdateEmail, "/api/users/update-email", e.super, map[string]string{"uid": self.UID, "email": "Nouveau@Paroisse.SN"})
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"email":"nouveau@paroisse.sn"`)

	rec = post(t, e.h.HandleResetPassword, "/api/users/reset-password", e.super, map[string]string{"email": "nouveau@paroisse.sn"})
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "nouveau@paroisse.sn")

	rec = post(t, e.h.HandleDelete, "/api/users/delete", e.super, map[string]string{"uid": e.super.UID})
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = post(t, e.h.HandleDelete, "/api/users/delete", e.super, map[string]string{"uid": self.UID})
	rec.AssertStatus(t, http.StatusNoContent)
	if n := len(mustList(t, e)); n != 1 {
		t.Errorf("accounts left = %d, want 1", n)
	}

	rec = testutil.NewRecorder()
	e.h.ServeList(rec, testutil.NewAuthenticatedRequest(t, "GET", "/api/users/list", self, nil))
	rec.AssertStatus(t, http.StatusForbidden)
}
