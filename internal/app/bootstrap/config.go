// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for TaskHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: TASKHUB_MONGO_URI, TASKHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "task_hub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "taskhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	{Name: "token_secret", Default: "", Desc: "HMAC key for bearer tokens (blank generates an ephemeral key)"},
	{Name: "token_ttl", Default: "24h", Desc: "Bearer token lifetime (e.g., 24h, 30m)"},

	{Name: "lead_task_scope", Default: "global", Desc: "Team lead task authority: 'global' or 'team'"},
	{Name: "reconcile_on_start", Default: false, Desc: "Repair team membership back-references at startup"},
	{Name: "reconcile_interval", Default: "0s", Desc: "Period of the background membership repair worker (0 disables)"},

	{Name: "audit_auth", Default: "log", Desc: "Audit destination for auth events: all, db, log, off"},
	{Name: "audit_task", Default: "log", Desc: "Audit destination for task events: all, db, log, off"},
	{Name: "audit_admin", Default: "all", Desc: "Audit destination for team/user admin events: all, db, log, off"},

	{Name: "static_dir", Default: "public", Desc: "Directory of static assets served under /static"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, TASKHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "TASKHUB", appConfigKeys)
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

		TokenSecret: appValues.String("token_secret"),
		TokenTTL:    appValues.Duration("token_ttl", 24*time.Hour),

		LeadTaskScope:     appValues.String("lead_task_scope"),
		ReconcileOnStart:  appValues.Bool("reconcile_on_start"),
		ReconcileInterval: appValues.Duration("reconcile_interval", 0),

		AuditAuth:  appValues.String("audit_auth"),
		AuditTask:  appValues.String("audit_task"),
		AuditAdmin: appValues.String("audit_admin"),

		StaticDir: appValues.String("static_dir"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// TaskHub validates the MongoDB URI format to catch configuration errors
// early, before attempting to connect, and rejects unknown policy knob
// values.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if s := appCfg.LeadTaskScope; s != "global" && s != "team" {
		return fmt.Errorf("lead_task_scope must be 'global' or 'team', got %q", s)
	}

	for _, kv := range []struct{ name, val string }{
		{"audit_auth", appCfg.AuditAuth},
		{"audit_task", appCfg.AuditTask},
		{"audit_admin", appCfg.AuditAdmin},
	} {
		switch kv.val {
		case "all", "db", "log", "off":
		default:
			return fmt.Errorf("%s must be 'all', 'db', 'log', or 'off', got %q", kv.name, kv.val)
		}
	}

	return nil
}
