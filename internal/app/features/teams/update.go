// internal/app/features/teams/update.go
package teams

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/policy/teampolicy"
	teamstore "github.com/dalemusser/taskhub/internal/app/store/teams"
	"github.com/dalemusser/taskhub/internal/app/system/apijson"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type updateRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// HandleUpdate renames a team and replaces its member list wholesale. An
// omitted or empty members list removes everyone from the team; members
// dropped from the list have their team reference cleared, new ones get
// it set.
//
// Route: PUT /teams/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if !teampolicy.CanManage(r) {
		apijson.WriteError(w, apijson.Forbidden("not authorized to manage teams"), h.Log)
		return
	}

	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apijson.WriteError(w, apijson.NotFound("team not found"), h.Log)
		return
	}

	var req updateRequest
	if err := apijson.Decode(r, &req); err != nil {
		apijson.WriteError(w, err, h.Log)
		return
	}
	memberIDs, err := parseMemberIDs(req.Members)
	if err != nil {
		apijson.WriteError(w, err, h.Log)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	team, err := h.Membership.UpdateTeam(ctx, oid, htmlsanitize.Strict(req.Name), memberIDs)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			apijson.WriteError(w, apijson.NotFound("team not found"), h.Log)
		case errors.Is(err, teamstore.ErrDuplicateTeamName):
			apijson.WriteError(w, apijson.Conflict("team already exists"), h.Log)
		default:
			apijson.WriteError(w, err, h.Log)
		}
		return
	}

	view, err := h.buildView(ctx, team)
	if err != nil {
		apijson.WriteError(w, err, h.Log)
		return
	}

	if _, uid, ok := authz.UserCtx(r); ok {
		h.Audit.TeamUpdated(ctx, r, uid, oid)
	}
	h.Log.Info("team updated",
		zap.String("team_id", oid.Hex()),
		zap.Int("members", len(memberIDs)))
	apijson.Write(w, http.StatusOK, view)
}
