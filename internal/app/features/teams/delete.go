// internal/app/features/teams/delete.go
package teams

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/policy/teampolicy"
	"github.com/dalemusser/taskhub/internal/app/system/apijson"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleDelete removes a team after clearing every member's team
// reference.
//
// Route: DELETE /teams/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if !teampolicy.CanManage(r) {
		apijson.WriteError(w, apijson.Forbidden("not authorized to manage teams"), h.Log)
		return
	}

	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apijson.WriteError(w, apijson.NotFound("team not found"), h.Log)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Membership.DeleteTeam(ctx, oid); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apijson.WriteError(w, apijson.NotFound("team not found"), h.Log)
			return
		}
		apijson.WriteError(w, err, h.Log)
		return
	}

	if _, uid, ok := authz.UserCtx(r); ok {
		h.Audit.TeamDeleted(ctx, r, uid, oid)
	}
	h.Log.Info("team deleted", zap.String("team_id", oid.Hex()))
	apijson.Write(w, http.StatusOK, map[string]string{"message": "Team removed"})
}
