// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging level, CORS, body limits). AppConfig is everything specific to
// this application: database connection, credential settings, and the
// policy knobs.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: taskhub-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Bearer token configuration
	TokenSecret string        // HMAC key for signing bearer tokens
	TokenTTL    time.Duration // Bearer token lifetime

	// Policy knobs
	LeadTaskScope     string        // "global" or "team": how far a lead's task authority reaches
	ReconcileOnStart  bool          // Run the membership repair pass during startup
	ReconcileInterval time.Duration // Period of the background repair worker (0 disables it)

	// Audit trail destinations per category: "all", "db", "log", or "off"
	AuditAuth  string
	AuditTask  string
	AuditAdmin string

	// Static asset directory served under /static
	StaticDir string
}
