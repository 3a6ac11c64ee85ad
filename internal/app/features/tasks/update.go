// internal/app/features/tasks/update.go
package tasks

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/taskhub/internal/app/policy/taskpolicy"
	"github.com/dalemusser/taskhub/internal/app/system/apijson"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type updateRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	AssignedTo  *string    `json:"assignedTo"`
	Priority    *string    `json:"priority"`
	Status      *string    `json:"status"`
	DueDate     *time.Time `json:"dueDate"`
	TeamID      *string    `json:"teamId"`
}

// HandleUpdate applies a partial update. Admins and leads (within scope)
// may change any field they send; members may only change the status of a
// task assigned to them, and any other field they send is ignored.
// Fields absent from the payload keep their stored value.
//
// Route: PUT /tasks/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apijson.WriteError(w, apijson.NotFound("task not found"), h.Log)
		return
	}

	var req updateRequest
	if err := apijson.Decode(r, &req); err != nil {
		apijson.WriteError(w, err, h.Log)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	task, err := h.Tasks.GetByID(ctx, oid)
	if err != nil {
		apijson.WriteError(w, apijson.NotFound("task not found"), h.Log)
		return
	}

	// A lead confined to team scope must not learn that a task outside
	// their team exists.
	role, uid, _ := authz.UserCtx(r)
	if role != models.RoleTeamMember && !taskpolicy.CanMutate(r, task, h.Scope) {
		apijson.WriteError(w, apijson.NotFound("task not found"), h.Log)
		return
	}

	patch, err := h.toPatch(req)
	if err != nil {
		apijson.WriteError(w, err, h.Log)
		return
	}

	set, err := taskpolicy.ApplyPatch(r, task, patch, h.Scope)
	if err != nil {
		switch {
		case errors.Is(err, taskpolicy.ErrNotAssignee):
			apijson.WriteError(w, apijson.Forbidden("not authorized to update this task"), h.Log)
		case errors.Is(err, taskpolicy.ErrInvalidStatus), errors.Is(err, taskpolicy.ErrInvalidPriority):
			apijson.WriteError(w, apijson.Validation(err.Error()), h.Log)
		default:
			apijson.WriteError(w, err, h.Log)
		}
		return
	}

	updated, err := h.Tasks.Apply(ctx, oid, set)
	if err != nil {
		apijson.WriteError(w, err, h.Log)
		return
	}

	h.Audit.TaskUpdated(ctx, r, uid, oid)
	h.Log.Info("task updated", zap.String("task_id", oid.Hex()))
	apijson.Write(w, http.StatusOK, updated)
}

// toPatch converts the wire request to a policy patch, parsing ids and
// narrowing enum strings. Title and description are sanitized here so the
// policy layer stays free of presentation concerns.
func (h *Handler) toPatch(req updateRequest) (taskpolicy.Patch, error) {
	var p taskpolicy.Patch
	if req.Title != nil {
		clean := htmlsanitize.Strict(*req.Title)
		p.Title = &clean
	}
	if req.Description != nil {
		clean := htmlsanitize.Strict(*req.Description)
		p.Description = &clean
	}
	if req.AssignedTo != nil {
		oid, err := primitive.ObjectIDFromHex(*req.AssignedTo)
		if err != nil {
			return p, apijson.Validation("assignedTo is not a valid id")
		}
		p.AssignedTo = &oid
	}
	if req.Priority != nil {
		pr := models.TaskPriority(*req.Priority)
		p.Priority = &pr
	}
	if req.Status != nil {
		st := models.TaskStatus(*req.Status)
		p.Status = &st
	}
	if req.DueDate != nil {
		p.DueDate = req.DueDate
	}
	if req.TeamID != nil {
		oid, err := primitive.ObjectIDFromHex(*req.TeamID)
		if err != nil {
			return p, apijson.Validation("teamId is not a valid id")
		}
		p.TeamID = &oid
	}
	return p, nil
}
