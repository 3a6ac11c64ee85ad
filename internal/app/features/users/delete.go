// internal/app/features/users/delete.go
package users

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/system/apijson"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleDelete removes a user and pulls them out of every team member
// list so no dangling references remain.
//
// Route: DELETE /users/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apijson.WriteError(w, apijson.NotFound("user not found"), h.Log)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := h.Users.Delete(ctx, oid)
	if err != nil {
		apijson.WriteError(w, err, h.Log)
		return
	}
	if n == 0 {
		apijson.WriteError(w, apijson.NotFound("user not found"), h.Log)
		return
	}

	if err := h.Membership.RemoveUserEverywhere(ctx, oid); err != nil {
		// The user is gone; a failed pull leaves drift for reconcile.
		h.Log.Error("member list cleanup failed after user delete",
			zap.String("user_id", oid.Hex()), zap.Error(err))
	}

	if _, actor, ok := authz.UserCtx(r); ok {
		h.Audit.UserDeleted(ctx, r, actor, oid)
	}
	h.Log.Info("user deleted", zap.String("user_id", oid.Hex()))
	apijson.Write(w, http.StatusOK, map[string]string{"message": "User removed"})
}
