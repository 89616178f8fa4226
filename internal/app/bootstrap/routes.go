// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/samaquete/admin/internal/app/accessor"
	activityfeature "github.com/samaquete/admin/internal/app/features/activity"
	contentfeature "github.com/samaquete/admin/internal/app/features/content"
	donationsfeature "github.com/samaquete/admin/internal/app/features/donations"
	entitiesfeature "github.com/samaquete/admin/internal/app/features/entities"
	errorsfeature "github.com/samaquete/admin/internal/app/features/errors"
	exportfeature "github.com/samaquete/admin/internal/app/features/export"
	healthfeature "github.com/samaquete/admin/internal/app/features/health"
	loginfeature "github.com/samaquete/admin/internal/app/features/login"
	notificationsfeature "github.com/samaquete/admin/internal/app/features/notifications"
	organizationsfeature "github.com/samaquete/admin/internal/app/features/organizations"
	schedulesfeature "github.com/samaquete/admin/internal/app/features/schedules"
	usersfeature "github.com/samaquete/admin/internal/app/features/users"
	"github.com/samaquete/admin/internal/app/policy/contentpolicy"
	fidelestore "github.com/samaquete/admin/internal/app/store/fideles"
	"github.com/samaquete/admin/internal/app/system/auditlog"
	"github.com/samaquete/admin/internal/app/system/auth"
	"github.com/samaquete/admin/internal/app/system/identity"
	"github.com/samaquete/admin/internal/app/system/metrics"
	"github.com/samaquete/admin/internal/app/system/payments"
	"github.com/samaquete/admin/internal/app/system/ratelimit"
	"github.com/samaquete/admin/internal/app/system/requestid"
	"go.uber.org/zap"
)

const (
	exportRatePerMinute = 20
	exportRateBurst     = 5
)

// Version is reported by /health. Release builds set it with -ldflags.
var Version = "dev"

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: the Mongo client, identity provider and activity logger
//   - logger: the fully configured zap.Logger for this app
//
// Every /api route answers JSON. Claims are resolved once per request (bearer
// token first, then the session cookie) and every feature router requires a
// signed-in admin except the sign-in endpoints themselves.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(deps.Identity, appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	mode, err := contentpolicy.ParseMode(appCfg.PublishPolicy)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(appCfg.Timezone)
	if err != nil {
		return nil, err
	}

	set := accessor.NewSet(accessor.Deps{
		DB:              deps.MongoDatabase,
		Identity:        deps.Identity,
		Audit:           deps.Audit,
		Notify:          deps.Notify,
		Mode:            mode,
		DefaultPassword: appCfg.DefaultPassword,
	})
	payClient := payments.New(appCfg.PaymentAPIURL, appCfg.PaymentAPITimeout)
	limiter := ratelimit.NewLoginLimiter(appCfg.LoginRatePerMinute, appCfg.LoginRateBurst)

	// Password sign-in only exists when identities live in our database.
	var passwords loginfeature.PasswordSignIn
	if local, ok := deps.Identity.(*identity.Local); ok {
		passwords = local
	}

	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(metrics.Instrument)
	r.Use(auditlog.Middleware)
	r.Use(sessionMgr.LoadClaims)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoDatabase, Version, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", metrics.Handler())

	// Authentication
	loginHandler := loginfeature.NewHandler(sessionMgr, passwords, limiter, deps.Audit, errLog, logger)
	r.Mount("/api/auth", loginfeature.Routes(loginHandler, sessionMgr))

	// Hierarchy
	orgHandler := organizationsfeature.NewHandler(set, errLog, logger)
	r.Mount("/api/dioceses", organizationsfeature.DioceseRoutes(orgHandler, sessionMgr))
	r.Mount("/api/parishes", organizationsfeature.ParishRoutes(orgHandler, sessionMgr))
	r.Mount("/api/churches", organizationsfeature.ChurchRoutes(orgHandler, sessionMgr))

	// Content: one router per kind, same lifecycle.
	r.Mount("/api/news", contentfeature.Routes(contentfeature.NewHandler(set.News, errLog, logger), sessionMgr))
	r.Mount("/api/prayers", contentfeature.Routes(contentfeature.NewHandler(set.Prayers, errLog, logger), sessionMgr))
	r.Mount("/api/activities", contentfeature.Routes(contentfeature.NewHandler(set.Activities, errLog, logger), sessionMgr))

	// Prayer times and donation types
	schedHandler := schedulesfeature.NewHandler(set, errLog, logger)
	r.Mount("/api/prayer-times", schedulesfeature.PrayerTimeRoutes(schedHandler, sessionMgr))
	r.Mount("/api/donation-types", schedulesfeature.DonationTypeRoutes(schedHandler, sessionMgr))

	// Donations: campaigns, recorded gifts, and the payment API proxy
	donHandler := donationsfeature.NewHandler(set, payClient, errLog, logger)
	r.Mount("/api/donation-events", donationsfeature.EventRoutes(donHandler, sessionMgr))
	r.Mount("/api/donation-records", donationsfeature.RecordRoutes(donHandler, sessionMgr))
	r.Mount("/api/donations", donationsfeature.PaymentRoutes(donHandler, sessionMgr))

	// Admin accounts and entity renames
	usersHandler := usersfeature.NewHandler(set.Users, errLog, logger)
	r.Mount("/api/users", usersfeature.Routes(usersHandler, sessionMgr))

	entitiesHandler := entitiesfeature.NewHandler(set.Entities, errLog, logger)
	r.Mount("/api/entities", entitiesfeature.Routes(entitiesHandler, sessionMgr))

	// Exports and the activity journal
	exportHandler := exportfeature.NewHandler(set.Users, fidelestore.New(deps.MongoDatabase), payClient, deps.Audit, loc, errLog, logger)
	// Exports scan whole collections; keep any one client from looping them.
	exportLimiter := ratelimit.New(exportRatePerMinute, exportRateBurst)
	r.With(exportLimiter.Middleware).Mount("/api/export", exportfeature.Routes(exportHandler, sessionMgr))

	activityHandler := activityfeature.NewHandler(set.Activity, loc, errLog, logger)
	r.Mount("/api/activity", activityfeature.Routes(activityHandler, sessionMgr))

	notifHandler := notificationsfeature.NewHandler(set.Notifications, errLog, logger)
	r.Mount("/api/notifications", notificationsfeature.Routes(notifHandler, sessionMgr))

	return r, nil
}
