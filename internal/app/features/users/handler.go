// internal/app/features/users/handler.go
package users

import (
	"context"
	"time"

	"github.com/dalemusser/taskhub/internal/app/store/membership"
	teamstore "github.com/dalemusser/taskhub/internal/app/store/teams"
	userstore "github.com/dalemusser/taskhub/internal/app/store/users"
	"github.com/dalemusser/taskhub/internal/app/system/auditlog"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level entry point for user administration.
type Handler struct {
	Users      *userstore.Store
	Teams      *teamstore.Store
	Membership *membership.Coordinator
	Audit      *auditlog.Logger
	Log        *zap.Logger
}

// NewHandler constructs a users handler bound to a DB and logger.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		Teams:      teamstore.New(db),
		Membership: membership.New(db, logger),
		Log:        logger,
	}
}

// teamRef is the embedded team summary on a user view.
type teamRef struct {
	ID   primitive.ObjectID `json:"_id"`
	Name string             `json:"name"`
}

// userView is a user with the team reference populated. Credential
// fields never appear here.
type userView struct {
	ID        primitive.ObjectID `json:"_id"`
	Name      string             `json:"name"`
	Email     string             `json:"email"`
	Role      models.Role        `json:"role"`
	Team      *teamRef           `json:"teamId,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// buildViews populates team names for a batch of users with a single
// teams query.
func (h *Handler) buildViews(ctx context.Context, list []models.User) ([]userView, error) {
	teams, err := h.Teams.List(ctx)
	if err != nil {
		return nil, err
	}
	nameByID := make(map[primitive.ObjectID]string, len(teams))
	for _, t := range teams {
		nameByID[t.ID] = t.Name
	}

	views := make([]userView, 0, len(list))
	for _, u := range list {
		v := userView{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
			UpdatedAt: u.UpdatedAt,
		}
		if u.TeamID != nil {
			if name, ok := nameByID[*u.TeamID]; ok {
				v.Team = &teamRef{ID: *u.TeamID, Name: name}
			}
		}
		views = append(views, v)
	}
	return views, nil
}
