// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like ports, TLS,
// logging level and request body limits. AppConfig carries what is specific
// to the console: the Mongo deployment shared with the mobile app, the
// identity provider, the payment API and the content publication rules.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session cookie configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name (default: samaquete-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Identity provider: "firebase" or "local"
	IdentityProvider        string
	FirebaseProjectID       string
	FirebaseCredentialsFile string // blank uses application default credentials
	LocalTokenSecret        string // HS256 key for locally issued ID tokens
	LocalTokenTTL           time.Duration
	PasswordResetURL        string // page local reset links point to

	// Password given to accounts created without one.
	DefaultPassword string

	// Upstream payment API (read-only proxy)
	PaymentAPIURL     string
	PaymentAPITimeout time.Duration

	// Content publication: "permissive" or "strict"
	PublishPolicy string

	// Activity logging: "all" (db+log), "db", "log", or "off"
	AuditLogActivity string

	// Time zone used for "today" and "this week" in activity statistics.
	Timezone string

	// Login throttling
	LoginRatePerMinute int
	LoginRateBurst     int

	// Email promoted (or created) as super_admin at startup.
	SuperAdminEmail string
}
