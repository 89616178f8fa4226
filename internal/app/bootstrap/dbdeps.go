// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/samaquete/admin/internal/app/system/auditlog"
	"github.com/samaquete/admin/internal/app/system/identity"
	"github.com/samaquete/admin/internal/app/system/notify"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app. They are built
// once in ConnectDB and shared by every later hook, including Shutdown.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Identity is the configured identity provider (Firebase or local).
	Identity identity.Provider

	// Audit records activity logs in the background; Shutdown drains it.
	Audit *auditlog.Logger

	// Notify writes parish notifications in the background; Shutdown drains it.
	Notify *notify.Notifier
}
