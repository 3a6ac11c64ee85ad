// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	auditfeature "github.com/dalemusser/taskhub/internal/app/features/auditlog"
	authnfeature "github.com/dalemusser/taskhub/internal/app/features/authn"
	healthfeature "github.com/dalemusser/taskhub/internal/app/features/health"
	tasksfeature "github.com/dalemusser/taskhub/internal/app/features/tasks"
	teamsfeature "github.com/dalemusser/taskhub/internal/app/features/teams"
	usersfeature "github.com/dalemusser/taskhub/internal/app/features/users"
	"github.com/dalemusser/taskhub/internal/app/policy/taskpolicy"
	"github.com/dalemusser/taskhub/internal/app/store/audit"
	userstore "github.com/dalemusser/taskhub/internal/app/store/users"
	"github.com/dalemusser/taskhub/internal/app/system/auditlog"
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/app/system/limits"
	"github.com/dalemusser/taskhub/internal/app/system/ratelimit"
	"github.com/dalemusser/taskhub/internal/app/system/requestid"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed. TaskHub creates the session
// manager, wires the user fetcher so credentials resolve to fresh user
// records, and mounts the JSON feature routers: auth, tasks, teams,
// users, and health.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(
		appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure,
		appCfg.TokenSecret, appCfg.TokenTTL, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Fetch fresh user data on each request so role and team changes
	// take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.TaskHubMongoDatabase))

	leadScope := taskpolicy.ParseLeadScope(appCfg.LeadTaskScope)

	auditLogger := auditlog.New(audit.New(deps.TaskHubMongoDatabase), logger, auditlog.Config{
		Auth:  appCfg.AuditAuth,
		Task:  appCfg.AuditTask,
		Admin: appCfg.AuditAdmin,
	})

	r := chi.NewRouter()

	r.Use(requestid.Middleware)
	r.Use(limits.MaxBody)

	// Global auth middleware: loads SessionUser into context when a valid
	// credential is present. This makes the current user available to all
	// handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.TaskHubMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", appCfg.StaticDir))

	// Authentication, with login throttling
	authnHandler := authnfeature.NewHandler(deps.TaskHubMongoDatabase, sessionMgr, logger)
	authnHandler.Audit = auditLogger
	authnHandler.Limits = ratelimit.NewLoginLimiter()
	r.Mount("/auth", authnfeature.Routes(authnHandler, sessionMgr))

	// Tasks
	tasksHandler := tasksfeature.NewHandler(deps.TaskHubMongoDatabase, leadScope, logger)
	tasksHandler.Audit = auditLogger
	r.Mount("/tasks", tasksfeature.Routes(tasksHandler, sessionMgr))

	// Teams
	teamsHandler := teamsfeature.NewHandler(deps.TaskHubMongoDatabase, logger)
	teamsHandler.Audit = auditLogger
	r.Mount("/teams", teamsfeature.Routes(teamsHandler, sessionMgr))

	// User administration
	usersHandler := usersfeature.NewHandler(deps.TaskHubMongoDatabase, logger)
	usersHandler.Audit = auditLogger
	r.Mount("/users", usersfeature.Routes(usersHandler, sessionMgr))

	// Audit trail, admin only
	auditHandler := auditfeature.NewHandler(deps.TaskHubMongoDatabase, logger)
	r.Mount("/audit", auditfeature.Routes(auditHandler, sessionMgr))

	return r, nil
}
