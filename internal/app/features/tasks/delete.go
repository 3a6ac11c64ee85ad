// internal/app/features/tasks/delete.go
package tasks

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/policy/taskpolicy"
	"github.com/dalemusser/taskhub/internal/app/system/apijson"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleDelete removes a task.
//
// Route: DELETE /tasks/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apijson.WriteError(w, apijson.NotFound("task not found"), h.Log)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	task, err := h.Tasks.GetByID(ctx, oid)
	if err != nil {
		apijson.WriteError(w, apijson.NotFound("task not found"), h.Log)
		return
	}
	if !taskpolicy.CanMutate(r, task, h.Scope) {
		// Same body as the not-found case so scoped leads cannot probe
		// for tasks outside their team.
		apijson.WriteError(w, apijson.NotFound("task not found"), h.Log)
		return
	}

	if _, err := h.Tasks.Delete(ctx, oid); err != nil {
		apijson.WriteError(w, err, h.Log)
		return
	}

	if _, uid, ok := authz.UserCtx(r); ok {
		h.Audit.TaskDeleted(ctx, r, uid, oid)
	}
	h.Log.Info("task deleted", zap.String("task_id", oid.Hex()))
	apijson.Write(w, http.StatusOK, map[string]string{"message": "Task removed"})
}
