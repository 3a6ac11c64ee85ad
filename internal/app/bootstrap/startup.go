// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/taskhub/internal/app/store/membership"
	"github.com/dalemusser/taskhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// reconcileWorker is the background membership repair worker, kept here
// so Shutdown can stop it.
var reconcileWorker *workers.MembershipReconcile

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// When reconcile_on_start is set, the membership repair pass runs here so
// the server comes up with Team.members and User.team_id in agreement.
// A non-zero reconcile_interval additionally starts a background worker
// that repeats the pass periodically.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	coord := membership.New(deps.TaskHubMongoDatabase, logger)

	if appCfg.ReconcileOnStart {
		fixed, err := coord.Reconcile(ctx)
		if err != nil {
			return err
		}
		logger.Info("startup membership reconcile complete", zap.Int64("users_fixed", fixed))
	}

	if appCfg.ReconcileInterval > 0 {
		reconcileWorker = workers.NewMembershipReconcile(coord, logger, appCfg.ReconcileInterval)
		reconcileWorker.Start()
	}

	return nil
}
