// Package storekit holds helpers shared by the collection stores: scope
// filters, id generation and driver error mapping.
package storekit

import (
	"errors"
	"fmt"

	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SelfField says which scope identifier is the document's own _id.
type SelfField int

const (
	SelfNone SelfField = iota
	SelfDiocese
	SelfParish
	SelfChurch
)

// ScopeFilter turns a scope into equality predicates. Empty fields are not
// constrained. The identifier named by self is matched against _id.
func ScopeFilter(s models.Scope, self SelfField) bson.M {
	f := bson.M{}
	put := func(field SelfField, key, val string) {
		if val == "" {
			return
		}
		if field == self {
			f["_id"] = val
			return
		}
		f[key] = val
	}
	if s.ArchdioceseID != "" && self == SelfNone {
		f["archdiocese_id"] = s.ArchdioceseID
	}
	put(SelfDiocese, "diocese_id", s.DioceseID)
	put(SelfParish, "parish_id", s.ParishID)
	put(SelfChurch, "church_id", s.ChurchID)
	return f
}

// NewID returns a new string document id.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// Err maps driver errors to application errors. ErrNoDocuments becomes
// apperr.ErrNotFound; anything else is wrapped as apperr.ErrUpstream.
func Err(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	if errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w: %v", op, apperr.ErrUpstream, err)
}

// MustMatch returns ErrNotFound when an update or delete matched nothing.
func MustMatch(op string, matched int64) error {
	if matched == 0 {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return nil
}
