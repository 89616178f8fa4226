// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	activitylogstore "github.com/samaquete/admin/internal/app/store/activitylog"
	diocesestore "github.com/samaquete/admin/internal/app/store/dioceses"
	identitystore "github.com/samaquete/admin/internal/app/store/identities"
	notificationstore "github.com/samaquete/admin/internal/app/store/notifications"
	"github.com/samaquete/admin/internal/app/system/auditlog"
	"github.com/samaquete/admin/internal/app/system/identity"
	"github.com/samaquete/admin/internal/app/system/indexes"
	"github.com/samaquete/admin/internal/app/system/notify"
	"github.com/samaquete/admin/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the Mongo connection shared with the mobile app and builds
// the backends that hang off it: the identity provider, the activity logger
// and the parish notifier.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool", appCfg.MongoMaxPoolSize),
		zap.Uint64("min_pool", appCfg.MongoMinPoolSize),
	)

	db := client.Database(appCfg.MongoDatabase)
	idp, err := newIdentityProvider(ctx, appCfg, db)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, err
	}
	logger.Info("identity provider ready", zap.String("provider", appCfg.IdentityProvider))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		Identity:      idp,
		Audit:         auditlog.New(activitylogstore.New(db), logger, appCfg.AuditLogActivity),
		Notify:        notify.New(notificationstore.New(db), logger),
	}, nil
}

func newIdentityProvider(ctx context.Context, appCfg AppConfig, db *mongo.Database) (identity.Provider, error) {
	switch appCfg.IdentityProvider {
	case ProviderLocal:
		return identity.NewLocal(identitystore.New(db), []byte(appCfg.LocalTokenSecret), appCfg.LocalTokenTTL,
			identity.WithResetURL(appCfg.PasswordResetURL)), nil
	case ProviderFirebase:
		fb, err := identity.NewFirebase(ctx, appCfg.FirebaseProjectID, appCfg.FirebaseCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("firebase: %w", err)
		}
		return fb, nil
	}
	return nil, fmt.Errorf("unknown identity_provider %q", appCfg.IdentityProvider)
}

// EnsureSchema creates the indexes every store relies on and seeds the fixed
// dioceses. Both steps are idempotent.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase, logger); err != nil {
		logger.Error("index setup failed", zap.Error(err))
		return fmt.Errorf("ensure indexes: %w", err)
	}
	if err := diocesestore.New(deps.MongoDatabase).SeedFixed(ctx); err != nil {
		return fmt.Errorf("seed dioceses: %w", err)
	}
	return nil
}
