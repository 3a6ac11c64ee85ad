// internal/app/features/tasks/create.go
package tasks

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/taskhub/internal/app/system/apijson"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type createRequest struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description" validate:"required"`
	AssignedTo  string    `json:"assignedTo" validate:"required"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	DueDate     time.Time `json:"dueDate" validate:"required"`
	TeamID      string    `json:"teamId" validate:"required"`
}

// HandleCreate creates a task. An assignee and a team are required;
// missing priority defaults to Medium and missing status to To Do in
// the store.
//
// Route: POST /tasks
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := apijson.Decode(r, &req); err != nil {
		apijson.WriteError(w, err, h.Log)
		return
	}

	_, uid, ok := authz.UserCtx(r)
	if !ok {
		apijson.WriteError(w, apijson.Unauthenticated("not authorized, no valid credential"), h.Log)
		return
	}

	assignee, err := primitive.ObjectIDFromHex(req.AssignedTo)
	if err != nil {
		apijson.WriteError(w, apijson.Validation("assignedTo is not a valid id"), h.Log)
		return
	}
	teamID, err := primitive.ObjectIDFromHex(req.TeamID)
	if err != nil {
		apijson.WriteError(w, apijson.Validation("teamId is not a valid id"), h.Log)
		return
	}

	t := models.Task{
		Title:       htmlsanitize.Strict(req.Title),
		Description: htmlsanitize.Strict(req.Description),
		AssignedTo:  &assignee,
		TeamID:      &teamID,
		DueDate:     req.DueDate,
		CreatedBy:   uid,
	}
	if req.Priority != "" {
		p := models.TaskPriority(req.Priority)
		if !p.Valid() {
			apijson.WriteError(w, apijson.Validation("priority must be Low, Medium, or High"), h.Log)
			return
		}
		t.Priority = p
	}
	if req.Status != "" {
		s := models.TaskStatus(req.Status)
		if !s.Valid() {
			apijson.WriteError(w, apijson.Validation("status must be To Do, In Progress, Review, or Completed"), h.Log)
			return
		}
		t.Status = s
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Tasks.Create(ctx, t)
	if err != nil {
		apijson.WriteError(w, err, h.Log)
		return
	}

	h.Audit.TaskCreated(ctx, r, uid, created.ID, created.Title)
	h.Log.Info("task created",
		zap.String("task_id", created.ID.Hex()),
		zap.String("created_by", uid.Hex()))
	apijson.Write(w, http.StatusCreated, created)
}
