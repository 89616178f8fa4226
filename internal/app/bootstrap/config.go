// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/samaquete/admin/internal/app/accessor"
	"github.com/samaquete/admin/internal/app/policy/contentpolicy"
	"github.com/samaquete/admin/internal/app/system/auditlog"
	"go.uber.org/zap"
)

// Identity provider names accepted by identity_provider.
const (
	ProviderFirebase = "firebase"
	ProviderLocal    = "local"
)

// appConfigKeys defines the configuration keys for the console.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: SAMAQUETE_MONGO_URI, SAMAQUETE_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "samaquete", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "samaquete-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "12h", Desc: "Session cookie lifetime (e.g., 12h, 30m)"},

	// Identity provider
	{Name: "identity_provider", Default: ProviderFirebase, Desc: "Identity provider: 'firebase' or 'local'"},
	{Name: "firebase_project_id", Default: "", Desc: "Firebase project ID"},
	{Name: "firebase_credentials_file", Default: "", Desc: "Service account JSON (blank uses application default credentials)"},
	{Name: "local_token_secret", Default: "dev-only-local-token-secret-0123456789", Desc: "Signing key for locally issued ID tokens"},
	{Name: "local_token_ttl", Default: "1h", Desc: "Lifetime of locally issued ID tokens"},
	{Name: "password_reset_url", Default: "/reset-password", Desc: "Page password-reset links point to (local provider)"},
	{Name: "default_password", Default: "", Desc: "Initial password for accounts created without one (blank: built-in default)"},

	// Payment API
	{Name: "payment_api_url", Default: "http://localhost:3000", Desc: "Base URL of the payment API"},
	{Name: "payment_api_timeout", Default: "15s", Desc: "Timeout for payment API calls"},

	// Content and activity
	{Name: "publish_policy", Default: string(contentpolicy.Permissive), Desc: "Content publication policy: 'permissive' or 'strict'"},
	{Name: "audit_log_activity", Default: auditlog.ModeAll, Desc: "Activity logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "timezone", Default: "Africa/Dakar", Desc: "Time zone for activity statistics"},

	// Login throttling
	{Name: "login_rate_per_minute", Default: 10, Desc: "Login attempts allowed per minute per IP and email"},
	{Name: "login_rate_burst", Default: 5, Desc: "Login attempt burst size"},

	// SuperAdmin bootstrap
	{Name: "superadmin_email", Default: "", Desc: "Email of the super_admin identity (promotes/creates on startup)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, SAMAQUETE_* for the app) and
// command-line flags, merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "SAMAQUETE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 12*time.Hour),

		IdentityProvider:        appValues.String("identity_provider"),
		FirebaseProjectID:       appValues.String("firebase_project_id"),
		FirebaseCredentialsFile: appValues.String("firebase_credentials_file"),
		LocalTokenSecret:        appValues.String("local_token_secret"),
		LocalTokenTTL:           appValues.Duration("local_token_ttl", time.Hour),
		PasswordResetURL:        appValues.String("password_reset_url"),
		DefaultPassword:         appValues.String("default_password"),

		PaymentAPIURL:     appValues.String("payment_api_url"),
		PaymentAPITimeout: appValues.Duration("payment_api_timeout", 15*time.Second),

		PublishPolicy:    appValues.String("publish_policy"),
		AuditLogActivity: appValues.String("audit_log_activity"),
		Timezone:         appValues.String("timezone"),

		LoginRatePerMinute: appValues.Int("login_rate_per_minute"),
		LoginRateBurst:     appValues.Int("login_rate_burst"),

		SuperAdminEmail: appValues.String("superadmin_email"),
	}
	if appCfg.DefaultPassword == "" {
		appCfg.DefaultPassword = accessor.DefaultPassword
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Everything checked here would otherwise fail later, at the first request
// that needs it.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	switch appCfg.IdentityProvider {
	case ProviderFirebase:
		if appCfg.FirebaseProjectID == "" {
			return fmt.Errorf("identity_provider %q requires firebase_project_id", ProviderFirebase)
		}
	case ProviderLocal:
		if len(appCfg.LocalTokenSecret) < 32 {
			return fmt.Errorf("local_token_secret must be at least 32 bytes")
		}
	default:
		return fmt.Errorf("unknown identity_provider %q (want %q or %q)", appCfg.IdentityProvider, ProviderFirebase, ProviderLocal)
	}

	if _, err := contentpolicy.ParseMode(appCfg.PublishPolicy); err != nil {
		return fmt.Errorf("publish_policy: %w", err)
	}
	if !auditlog.ValidMode(appCfg.AuditLogActivity) {
		return fmt.Errorf("unknown audit_log_activity %q", appCfg.AuditLogActivity)
	}
	if _, err := time.LoadLocation(appCfg.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", appCfg.Timezone, err)
	}
	if appCfg.LoginRatePerMinute < 1 || appCfg.LoginRateBurst < 1 {
		return fmt.Errorf("login_rate_per_minute and login_rate_burst must be positive")
	}
	return nil
}
