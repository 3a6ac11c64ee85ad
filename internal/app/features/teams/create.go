// internal/app/features/teams/create.go
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
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type createRequest struct {
	Name    string   `json:"name" validate:"required"`
	Members []string `json:"members"`
}

// HandleCreate creates a team and points every listed member at it. A
// duplicate name fails before any member is touched. Admins only.
//
// Route: POST /teams
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if !teampolicy.CanManage(r) {
		apijson.WriteError(w, apijson.Forbidden("not authorized to manage teams"), h.Log)
		return
	}

	var req createRequest
	if err := apijson.Decode(r, &req); err != nil {
		apijson.WriteError(w, err, h.Log)
		return
	}

	memberIDs, err := parseMemberIDs(req.Members)
	if err != nil {
		apijson.WriteError(w, err, h.Log)
		return
	}

	_, uid, ok := authz.UserCtx(r)
	if !ok {
		apijson.WriteError(w, apijson.Unauthenticated("not authorized, no valid credential"), h.Log)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	team, err := h.Membership.CreateTeam(ctx, htmlsanitize.Strict(req.Name), memberIDs, uid)
	if err != nil {
		if errors.Is(err, teamstore.ErrDuplicateTeamName) {
			apijson.WriteError(w, apijson.Conflict("team already exists"), h.Log)
			return
		}
		apijson.WriteError(w, err, h.Log)
		return
	}

	view, err := h.buildView(ctx, team)
	if err != nil {
		apijson.WriteError(w, err, h.Log)
		return
	}

	h.Audit.TeamCreated(ctx, r, uid, team.ID, team.Name)
	h.Log.Info("team created",
		zap.String("team_id", team.ID.Hex()),
		zap.Int("members", len(memberIDs)))
	apijson.Write(w, http.StatusCreated, view)
}

// parseMemberIDs converts hex id strings into ObjectIDs, rejecting the
// whole request on the first malformed id.
func parseMemberIDs(raw []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, s := range raw {
		oid, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return nil, apijson.Validation("members contains an invalid id")
		}
		ids = append(ids, oid)
	}
	return ids, nil
}
