// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samaquete/admin/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Every set is idempotent; errors are
aggregated so all problems show up in one startup failure.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	var problems []string
	for _, set := range desired() {
		if err := ensureIndexSet(ctx, db.Collection(set.coll), set.models, log); err != nil {
			problems = append(problems, set.coll+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type indexSet struct {
	coll   string
	models []mongo.IndexModel
}

func idx(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name)}
}

func uniq(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name).SetUnique(true)}
}

func desired() []indexSet {
	sets := []indexSet{
		{"identities", []mongo.IndexModel{
			uniq("uniq_identities_email_ci", bson.D{{Key: "email_ci", Value: 1}}),
		}},
		{"dioceses", []mongo.IndexModel{
			idx("idx_dioceses_metro_nameci", bson.D{{Key: "is_metropolitan", Value: -1}, {Key: "name_ci", Value: 1}}),
		}},
		{"parishes", []mongo.IndexModel{
			idx("idx_parishes_diocese_nameci_id", bson.D{{Key: "diocese_id", Value: 1}, {Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}),
		}},
		{"churches", []mongo.IndexModel{
			idx("idx_churches_parish_nameci_id", bson.D{{Key: "parish_id", Value: 1}, {Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}),
			idx("idx_churches_diocese_nameci_id", bson.D{{Key: "diocese_id", Value: 1}, {Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}),
		}},
		{"prayer_times", []mongo.IndexModel{
			idx("idx_prayertimes_parish_time", bson.D{{Key: "parish_id", Value: 1}, {Key: "time", Value: 1}}),
			idx("idx_prayertimes_church_time", bson.D{{Key: "church_id", Value: 1}, {Key: "time", Value: 1}}),
		}},
		{"donation_types", []mongo.IndexModel{
			idx("idx_donationtypes_parish_nameci", bson.D{{Key: "parish_id", Value: 1}, {Key: "name_ci", Value: 1}}),
		}},
		{"donation_events", []mongo.IndexModel{
			idx("idx_donationevents_parish_start", bson.D{{Key: "parish_id", Value: 1}, {Key: "start_date", Value: -1}}),
			idx("idx_donationevents_diocese_start", bson.D{{Key: "diocese_id", Value: 1}, {Key: "start_date", Value: -1}}),
		}},
		{"donations", []mongo.IndexModel{
			idx("idx_donations_parish_created", bson.D{{Key: "parish_id", Value: 1}, {Key: "created_at", Value: -1}}),
			idx("idx_donations_event_created", bson.D{{Key: "event_id", Value: 1}, {Key: "created_at", Value: -1}}),
			idx("idx_donations_status", bson.D{{Key: "status", Value: 1}}),
		}},
		{"activity_logs", []mongo.IndexModel{
			idx("idx_activitylogs_timestamp", bson.D{{Key: "timestamp", Value: -1}}),
			idx("idx_activitylogs_user_timestamp", bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}),
			idx("idx_activitylogs_entity", bson.D{{Key: "entity_type", Value: 1}, {Key: "entity_id", Value: 1}}),
		}},
		{"parish_notifications", []mongo.IndexModel{
			idx("idx_notifications_parish_read_created", bson.D{{Key: "parish_id", Value: 1}, {Key: "read", Value: 1}, {Key: "created_at", Value: -1}}),
			idx("idx_notifications_diocese_created", bson.D{{Key: "diocese_id", Value: 1}, {Key: "created_at", Value: -1}}),
		}},
		// "users" belongs to the mobile app; only the parish lookup is ours.
		{"users", []mongo.IndexModel{
			idx("idx_users_parish_created", bson.D{{Key: "parishId", Value: 1}, {Key: "createdAt", Value: -1}}),
		}},
	}
	for _, k := range models.ContentKinds {
		c := k.Collection()
		sets = append(sets, indexSet{c, []mongo.IndexModel{
			idx("idx_"+c+"_diocese_status_created", bson.D{{Key: "diocese_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}}),
			idx("idx_"+c+"_parish_created", bson.D{{Key: "parish_id", Value: 1}, {Key: "created_at", Value: -1}}),
			idx("idx_"+c+"_church_created", bson.D{{Key: "church_id", Value: 1}, {Key: "created_at", Value: -1}}),
		}})
	}
	return sets
}

/* -------------------------------------------------------------------------- */
/* Reconcile a set of desired indexes for one collection                      */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolVal(b *bool) bool { return b != nil && *b }

// Best-effort duplicate-key detector (works across vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

func listExisting(ctx context.Context, coll *mongo.Collection, log *zap.Logger) map[string]existingIndex {
	out := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return out
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var ix existingIndex
		if err := cur.Decode(&ix); err != nil {
			log.Warn("failed to decode existing index", zap.String("collection", coll.Name()), zap.Error(err))
			continue
		}
		out[keySig(ix.Key)] = ix
	}
	return out
}

// ensureIndexSet creates missing indexes. An index with the same keys but a
// different name or uniqueness is dropped and recreated.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, want []mongo.IndexModel, log *zap.Logger) error {
	var errs []string
	existing := listExisting(ctx, coll, log)

	for _, m := range want {
		name := *m.Options.Name
		unique := boolVal(m.Options.Unique)
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		fields := []zap.Field{
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", unique),
		}

		if ex, ok := existing[sig]; ok {
			if ex.Name == name && boolVal(ex.Unique) == unique {
				log.Debug("reusing existing index", fields...)
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				log.Warn("drop existing index failed", append(fields, zap.String("existing", ex.Name), zap.Error(err))...)
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if unique && isDuplicateKeyErr(err) {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), name))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			}
			log.Warn("index ensure failed", append(fields, zap.Error(err))...)
			continue
		}
		log.Info("index ensured", append(fields, zap.String("took", time.Since(start).String()))...)
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
