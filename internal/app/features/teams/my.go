// internal/app/features/teams/my.go
package teams

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/system/apijson"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeMyTeam returns the signed-in user's team. 404 when the user has no
// team or the referenced team is gone.
//
// Route: GET /teams/my
func (h *Handler) ServeMyTeam(w http.ResponseWriter, r *http.Request) {
	teamID := authz.UserTeamID(r)
	if teamID == primitive.NilObjectID {
		apijson.WriteError(w, apijson.NotFound("you are not assigned to any team"), h.Log)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	team, err := h.Teams.GetByID(ctx, teamID)
	if err != nil {
		apijson.WriteError(w, apijson.NotFound("team not found"), h.Log)
		return
	}
	view, err := h.buildView(ctx, team)
	if err != nil {
		apijson.WriteError(w, err, h.Log)
		return
	}
	apijson.Write(w, http.StatusOK, view)
}
