// internal/app/features/tasks/handler.go
package tasks

import (
	"context"
	"time"

	"github.com/dalemusser/taskhub/internal/app/policy/taskpolicy"
	taskstore "github.com/dalemusser/taskhub/internal/app/store/tasks"
	userstore "github.com/dalemusser/taskhub/internal/app/store/users"
	"github.com/dalemusser/taskhub/internal/app/system/auditlog"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level entry point for tasks. Audit is optional;
// nil disables audit logging.
type Handler struct {
	Tasks *taskstore.Store
	Users *userstore.Store
	Scope taskpolicy.LeadScope
	Audit *auditlog.Logger
	Log   *zap.Logger
}

// NewHandler constructs a tasks handler bound to a DB and logger. scope
// controls how far Team Lead update/delete authority reaches.
func NewHandler(db *mongo.Database, scope taskpolicy.LeadScope, logger *zap.Logger) *Handler {
	return &Handler{
		Tasks: taskstore.New(db),
		Users: userstore.New(db),
		Scope: scope,
		Log:   logger,
	}
}

// userRef is an embedded user summary on a task view.
type userRef struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Email string             `json:"email,omitempty"`
}

// taskView is a task with its assignee and creator references populated.
type taskView struct {
	ID          primitive.ObjectID  `json:"_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	AssignedTo  *userRef            `json:"assignedTo,omitempty"`
	Priority    models.TaskPriority `json:"priority"`
	Status      models.TaskStatus   `json:"status"`
	DueDate     time.Time           `json:"dueDate"`
	CreatedBy   *userRef            `json:"createdBy,omitempty"`
	TeamID      *primitive.ObjectID `json:"teamId,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// buildViews populates assignee (name, email) and creator (name) summaries
// for a batch of tasks with a single user lookup.
func (h *Handler) buildViews(ctx context.Context, list []models.Task) ([]taskView, error) {
	idSet := make(map[primitive.ObjectID]struct{})
	for _, t := range list {
		if t.AssignedTo != nil {
			idSet[*t.AssignedTo] = struct{}{}
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

	views := make([]taskView, 0, len(list))
	for _, t := range list {
		v := taskView{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Priority:    t.Priority,
			Status:      t.Status,
			DueDate:     t.DueDate,
			TeamID:      t.TeamID,
			CreatedAt:   t.CreatedAt,
			UpdatedAt:   t.UpdatedAt,
		}
		if t.AssignedTo != nil {
			if u, ok := byID[*t.AssignedTo]; ok {
				v.AssignedTo = &userRef{ID: u.ID, Name: u.Name, Email: u.Email}
			}
		}
		if u, ok := byID[t.CreatedBy]; ok {
			v.CreatedBy = &userRef{ID: u.ID, Name: u.Name}
		}
		views = append(views, v)
	}
	return views, nil
}
