package storekit

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestScopeFilter(t *testing.T) {
	full := models.Scope{ArchdioceseID: "DAKAR", DioceseID: "DAKAR", ParishID: "p1", ChurchID: "c1"}

	tests := []struct {
		name  string
		scope models.Scope
		self  SelfField
		want  bson.M
	}{
		{"empty", models.Scope{}, SelfNone, bson.M{}},
		{"content item", full, SelfNone, bson.M{"archdiocese_id": "DAKAR", "diocese_id": "DAKAR", "parish_id": "p1", "church_id": "c1"}},
		{"diocese self", models.Scope{DioceseID: "THIES"}, SelfDiocese, bson.M{"_id": "THIES"}},
		{"parish self", models.Scope{DioceseID: "THIES", ParishID: "p1"}, SelfParish, bson.M{"diocese_id": "THIES", "_id": "p1"}},
		{"church self", full, SelfChurch, bson.M{"diocese_id": "DAKAR", "parish_id": "p1", "_id": "c1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScopeFilter(tt.scope, tt.self); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ScopeFilter = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErr(t *testing.T) {
	if Err("op", nil) != nil {
		t.Error("nil error should stay nil")
	}
	if err := Err("get parish", mongo.ErrNoDocuments); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("ErrNoDocuments should map to ErrNotFound, got %v", err)
	}
	if err := Err("get parish", fmt.Errorf("socket closed")); !errors.Is(err, apperr.ErrUpstream) {
		t.Errorf("driver errors should map to ErrUpstream, got %v", err)
	}
	nf := MustMatch("delete", 0)
	if !errors.Is(Err("wrap", nf), apperr.ErrNotFound) {
		t.Error("ErrNotFound should pass through")
	}
}

func TestMustMatch(t *testing.T) {
	if MustMatch("update", 1) != nil {
		t.Error("matched=1 should succeed")
	}
	if !errors.Is(MustMatch("update", 0), apperr.ErrNotFound) {
		t.Error("matched=0 should be ErrNotFound")
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	if len(a) != 24 || a == b {
		t.Errorf("NewID returned %q and %q", a, b)
	}
}
