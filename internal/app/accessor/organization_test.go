package accessor_test

import (
	"testing"

	churchstore "github.com/samaquete/admin/internal/app/store/churches"
	diocesestore "github.com/samaquete/admin/internal/app/store/dioceses"
	parishstore "github.com/samaquete/admin/internal/app/store/parishes"
	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/domain/models"
	"github.com/samaquete/admin/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func strp(s string) *string { return &s }

func TestDioceses_UpdateIsSuperAdminOnly(t *testing.T) {
	e := newEnv(t)

	_, err := e.set.Dioceses.Update(e.ctx, testutil.DioceseAdmin(testutil.DioceseB), testutil.DioceseB, diocesestore.Update{Bishop: strp("Mgr Ndiaye")})
	assertIs(t, err, apperr.ErrPermissionDenied)

	super := testutil.SuperAdmin()
	d, err := e.set.Dioceses.Update(e.ctx, super, testutil.DioceseB, diocesestore.Update{Bishop: strp("Mgr Ndiaye")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if d.Bishop != "Mgr Ndiaye" {
		t.Errorf("Bishop = %q", d.Bishop)
	}
	if n := e.logged(t, models.ActionUpdate, testutil.DioceseB); n != 1 {
		t.Errorf("update logs = %d, want 1", n)
	}

	all, err := e.set.Dioceses.List(e.ctx, testutil.ChurchAdmin(testutil.DioceseB, "p", "c"))
	if err != nil || len(all) != len(models.FixedDioceses()) {
		t.Errorf("List = %d, %v", len(all), err)
	}
}

func TestParishes_CreateOutsideOwnDioceseIsDenied(t *testing.T) {
	e := newEnv(t)
	thies := testutil.DioceseAdmin(testutil.DioceseB)

	_, err := e.set.Parishes.Create(e.ctx, thies, models.Parish{Name: "Saint Paul", DioceseID: testutil.DioceseA})
	assertIs(t, err, apperr.ErrPermissionDenied)

	if n := e.count(t, "parishes", bson.M{}); n != 0 {
		t.Errorf("denied create wrote %d parishes", n)
	}
	e.audit.Wait()
	if n, _ := e.logs.Count(e.ctx, activityFilter(thies.UID)); n != 0 {
		t.Errorf("denied create logged %d entries", n)
	}
}

func TestParishes_CRUD(t *testing.T) {
	e := newEnv(t)
	admin := testutil.DioceseAdmin(testutil.DioceseB)

	tests := []struct {
		name  string
		in    models.Parish
		field string
	}{
		{"missing name", models.Parish{DioceseID: testutil.DioceseB}, "name"},
		{"unknown diocese", models.Parish{Name: "X", DioceseID: "ZIGUINCHOR_NORD"}, ""},
		{"bad email", models.Parish{Name: "X", DioceseID: testutil.DioceseB, Email: "nope"}, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.set.Parishes.Create(e.ctx, testutil.SuperAdmin(), tt.in)
			if tt.field == "" {
				if !apperr.IsValidation(err) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			assertInvalid(t, err, tt.field)
		})
	}

	p, err := e.set.Parishes.Create(e.ctx, admin, models.Parish{Name: "  Sainte   Anne <b>de</b> Thiès ", DioceseID: "thies", Email: "Anne@Paroisse.SN"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Name != "Sainte Anne de Thiès" || p.DioceseID != testutil.DioceseB || p.Email != "anne@paroisse.sn" {
		t.Errorf("stored %+v", p)
	}

	parishAdmin := testutil.ParishAdmin(testutil.DioceseB, p.ID)
	got, err := e.set.Parishes.Update(e.ctx, parishAdmin, p.ID, parishstore.Update{Priest: strp("Abbé Faye")})
	if err != nil || got.Priest != "Abbé Faye" {
		t.Fatalf("Update by own parish admin: %+v, %v", got, err)
	}
	_, err = e.set.Parishes.Update(e.ctx, admin, p.ID, parishstore.Update{DioceseID: strp(testutil.DioceseA)})
	assertIs(t, err, apperr.ErrPermissionDenied)

	_, err = e.set.Parishes.Get(e.ctx, testutil.DioceseAdmin(testutil.DioceseA), p.ID)
	assertIs(t, err, apperr.ErrPermissionDenied)

	e.fx.CreateChurch(e.ctx, testutil.DioceseB, p.ID, "Chapelle")
	assertInvalid(t, e.set.Parishes.Delete(e.ctx, admin, p.ID), "id")

	empty := e.fx.CreateParish(e.ctx, testutil.DioceseB, "Vide")
	if err := e.set.Parishes.Delete(e.ctx, admin, empty.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, err = e.set.Parishes.Get(e.ctx, admin, empty.ID)
	assertIs(t, err, apperr.ErrNotFound)
	if n := e.logged(t, models.ActionDelete, empty.ID); n != 1 {
		t.Errorf("delete logs = %d", n)
	}
}

func TestChurches_Placement(t *testing.T) {
	e := newEnv(t)
	super := testutil.SuperAdmin()
	pA := e.fx.CreateParish(e.ctx, testutil.DioceseA, "Saint Joseph")

	_, err := e.set.Churches.Create(e.ctx, super, models.Church{Name: "Sans diocèse"})
	assertInvalid(t, err, "dioceseId")

	_, err = e.set.Churches.Create(e.ctx, super, models.Church{Name: "Mauvaise paroisse", DioceseID: testutil.DioceseB, ParishID: pA.ID})
	assertInvalid(t, err, "dioceseId")

	ch, err := e.set.Churches.Create(e.ctx, super, models.Church{Name: "Église diocésaine", DioceseID: testutil.DioceseB})
	if err != nil || ch.ParishID != "" {
		t.Fatalf("diocese-level church: %+v, %v", ch, err)
	}

	ch, err = e.set.Churches.Create(e.ctx, super, models.Church{Name: "Église de Medina", DioceseID: testutil.DioceseA, ParishID: pA.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	own := testutil.ChurchAdmin(testutil.DioceseA, pA.ID, ch.ID)
	got, err := e.set.Churches.Update(e.ctx, own, ch.ID, churchstore.Update{Phone: strp("+221 33 000 00 00")})
	if err != nil || got.Phone != "+221 33 000 00 00" {
		t.Fatalf("church admin updating own church: %+v, %v", got, err)
	}
	_, err = e.set.Churches.Update(e.ctx, own, ch.ID, churchstore.Update{DioceseID: strp(testutil.DioceseB), ParishID: strp("")})
	assertIs(t, err, apperr.ErrPermissionDenied)

	assertIs(t, e.set.Churches.Delete(e.ctx, own, ch.ID), apperr.ErrPermissionDenied)

	list, err := e.set.Churches.List(e.ctx, own, models.Scope{})
	if err != nil || len(list) != 1 || list[0].ID != ch.ID {
		t.Errorf("church admin list = %v, %v", list, err)
	}
}

func TestEntities_Rename(t *testing.T) {
	e := newEnv(t)
	super := testutil.SuperAdmin()
	p := e.fx.CreateParish(e.ctx, testutil.DioceseA, "Saint Joseph")
	ch := e.fx.CreateChurch(e.ctx, testutil.DioceseA, p.ID, "Chapelle")

	tests := []struct {
		entityType string
		id         string
		want       string
	}{
		{"parish", p.ID, "Saint Joseph de Medina"},
		{"church", ch.ID, "Chapelle Saint Pierre"},
		{"diocese", "thies", "Diocèse de Thiès-Mbour"},
	}
	for _, tt := range tests {
		t.Run(tt.entityType, func(t *testing.T) {
			got, err := e.set.Entities.Rename(e.ctx, super, tt.entityType, tt.id, tt.want, "")
			if err != nil {
				t.Fatalf("Rename: %v", err)
			}
			if got.Name != tt.want {
				t.Errorf("Name = %q, want %q", got.Name, tt.want)
			}
		})
	}

	_, err := e.set.Entities.Rename(e.ctx, super, "parish", p.ID, "Autre", "nouvel-id")
	assertInvalid(t, err, "newId")

	_, err = e.set.Entities.Rename(e.ctx, super, "workspace", p.ID, "Autre", "")
	assertInvalid(t, err, "entityType")

	_, err = e.set.Entities.Rename(e.ctx, testutil.DioceseAdmin(testutil.DioceseB), "parish", p.ID, "Autre", "")
	assertIs(t, err, apperr.ErrPermissionDenied)
}
