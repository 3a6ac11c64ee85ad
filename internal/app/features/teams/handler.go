// internal/app/features/teams/handler.go
package teams

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

// Handler is the feature-level entry point for teams. Writes that touch
// membership go through the coordinator so Team.members and User.team_id
// stay in step.
type Handler struct {
	Teams      *teamstore.Store
	Users      *userstore.Store
	Membership *membership.Coordinator
	Audit      *auditlog.Logger
	Log        *zap.Logger
}

// NewHandler constructs a teams handler bound to a DB and logger.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Teams:      teamstore.New(db),
		Users:      userstore.New(db),
		Membership: membership.New(db, logger),
		Log:        logger,
	}
}

// memberRef is an embedded member summary on a team view.
type memberRef struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
	Role  models.Role        `json:"role"`
}

// creatorRef is the embedded creator summary on a team view.
type creatorRef struct {
	ID   primitive.ObjectID `json:"_id"`
	Name string             `json:"name"`
}

// teamView is a team with its member and creator references populated.
type teamView struct {
	ID        primitive.ObjectID `json:"_id"`
	Name      string             `json:"name"`
	Members   []memberRef        `json:"members"`
	CreatedBy *creatorRef        `json:"createdBy,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// buildViews populates member summaries (name, email, role) and creator
// names for a batch of teams with a single user lookup.
func (h *Handler) buildViews(ctx context.Context, list []models.Team) ([]teamView, error) {
	idSet := make(map[primitive.ObjectID]struct{})
	for _, t := range list {
		for _, m := range t.Members {
			idSet[m] = struct{}{}
		}
		idSet[t.CreatedBy] = struct{}{}
	}
	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	users, err := h.Users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	views := make([]teamView, 0, len(list))
	for _, t := range list {
		v := teamView{
			ID:        t.ID,
			Name:      t.Name,
			Members:   []memberRef{},
			CreatedAt: t.CreatedAt,
			UpdatedAt: t.UpdatedAt,
		}
		for _, m := range t.Members {
			if u, ok := byID[m]; ok {
				v.Members = append(v.Members, memberRef{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role})
			}
		}
		if u, ok := byID[t.CreatedBy]; ok {
			v.CreatedBy = &creatorRef{ID: u.ID, Name: u.Name}
		}
		views = append(views, v)
	}
	return views, nil
}

func (h *Handler) buildView(ctx context.Context, t models.Team) (teamView, error) {
	views, err := h.buildViews(ctx, []models.Team{t})
	if err != nil {
		return teamView{}, err
	}
	return views[0], nil
}
