// internal/app/features/authn/handler.go
package authn

import (
	userstore "github.com/dalemusser/taskhub/internal/app/store/users"
	"github.com/dalemusser/taskhub/internal/app/system/auditlog"
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/dalemusser/taskhub/internal/domain/models"
)

// Handler is the feature-level entry point for authentication.
// Audit and Limits are optional; nil disables audit logging and login
// throttling, which is how tests run.
type Handler struct {
	Users  *userstore.Store
	SM     *auth.SessionManager
	Audit  *auditlog.Logger
	Limits *ratelimit.LoginLimiter
	Log    *zap.Logger
}

// NewHandler constructs an authentication handler bound to a DB, the
// session manager, and a logger.
func NewHandler(db *mongo.Database, sm *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Users: userstore.New(db),
		SM:    sm,
		Log:   logger,
	}
}

// principal is the wire shape for the authenticated user returned by
// register, login, and profile. Token is present only on login.
type principal struct {
	ID     primitive.ObjectID  `json:"_id"`
	Name   string              `json:"name"`
	Email  string              `json:"email"`
	Role   models.Role         `json:"role"`
	TeamID *primitive.ObjectID `json:"teamId,omitempty"`
	Token  string              `json:"token,omitempty"`
}

func principalOf(u models.User) principal {
	return principal{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		TeamID: u.TeamID,
	}
}
