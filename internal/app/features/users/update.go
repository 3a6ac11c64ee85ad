// internal/app/features/users/update.go
package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	userstore "github.com/dalemusser/taskhub/internal/app/store/users"
	"github.com/dalemusser/taskhub/internal/app/system/apijson"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type updateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	// Raw so that "absent", "null", and a team id can be told apart:
	// absent keeps the current team, null detaches the user, an id
	// moves them.
	TeamID json.RawMessage `json:"teamId"`
}

// HandleUpdate edits a user's profile and, when teamId is present, moves
// them between teams through the membership coordinator so member lists
// stay consistent.
//
// Route: PUT /users/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apijson.WriteError(w, apijson.NotFound("user not found"), h.Log)
		return
	}

	var req updateRequest
	if err := apijson.Decode(r, &req); err != nil {
		apijson.WriteError(w, err, h.Log)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Users.GetByID(ctx, oid); err != nil {
		apijson.WriteError(w, apijson.NotFound("user not found"), h.Log)
		return
	}

	err = h.Users.UpdateProfile(ctx, oid, htmlsanitize.Strict(req.Name), req.Email, models.Role(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, userstore.ErrDuplicateEmail):
			apijson.WriteError(w, apijson.Conflict("user with this email already exists"), h.Log)
		case errors.Is(err, userstore.ErrInvalidRole):
			apijson.WriteError(w, apijson.Validation(err.Error()), h.Log)
		default:
			apijson.WriteError(w, err, h.Log)
		}
		return
	}

	if len(req.TeamID) > 0 {
		teamID, verr := parseTeamID(req.TeamID)
		if verr != nil {
			apijson.WriteError(w, verr, h.Log)
			return
		}
		if err := h.Membership.AssignUser(ctx, oid, teamID); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				apijson.WriteError(w, apijson.NotFound("team not found"), h.Log)
				return
			}
			apijson.WriteError(w, err, h.Log)
			return
		}
	}

	u, err := h.Users.GetByID(ctx, oid)
	if err != nil {
		apijson.WriteError(w, err, h.Log)
		return
	}

	if _, actor, ok := authz.UserCtx(r); ok {
		h.Audit.UserUpdated(ctx, r, actor, oid, changedFields(req))
	}
	h.Log.Info("user updated", zap.String("user_id", oid.Hex()))
	apijson.Write(w, http.StatusOK, map[string]any{
		"_id":    u.ID,
		"name":   u.Name,
		"email":  u.Email,
		"role":   u.Role,
		"teamId": u.TeamID,
	})
}

// changedFields names the fields present in the request for the audit
// trail.
func changedFields(req updateRequest) string {
	fields := ""
	add := func(name string) {
		if fields != "" {
			fields += ","
		}
		fields += name
	}
	if req.Name != "" {
		add("name")
	}
	if req.Email != "" {
		add("email")
	}
	if req.Role != "" {
		add("role")
	}
	if len(req.TeamID) > 0 {
		add("teamId")
	}
	return fields
}

// parseTeamID interprets the raw teamId value: JSON null detaches the
// user (nil, nil), a hex string names the destination team.
func parseTeamID(raw json.RawMessage) (*primitive.ObjectID, error) {
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, apijson.Validation("teamId must be an id or null")
	}
	if s == nil || *s == "" {
		return nil, nil
	}
	oid, err := primitive.ObjectIDFromHex(*s)
	if err != nil {
		return nil, apijson.Validation("teamId is not a valid id")
	}
	return &oid, nil
}
