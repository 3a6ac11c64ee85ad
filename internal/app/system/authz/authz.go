// Package authz exposes small helpers over the SessionUser in the request
// context. Role checks compare against the closed models.Role set, never
// raw strings.
package authz

import (
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// ("", NilObjectID, false) so that ok=true always means a valid,
// authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (role models.Role, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in the credential - fail closed.
		return "", primitive.NilObjectID, false
	}
	return user.Role, userID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, ok := UserCtx(r)
	return ok && role == models.RoleAdmin
}

// IsTeamLead reports whether the current request's user is a team lead.
func IsTeamLead(r *http.Request) bool {
	role, _, ok := UserCtx(r)
	return ok && role == models.RoleTeamLead
}

// IsTeamMember reports whether the current request's user is a team member.
func IsTeamMember(r *http.Request) bool {
	role, _, ok := UserCtx(r)
	return ok && role == models.RoleTeamMember
}

// HasAnyRole reports whether the current request's user has any of the
// given roles. Returns false if no user is present.
func HasAnyRole(r *http.Request, roles ...models.Role) bool {
	role, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		if role == want {
			return true
		}
	}
	return false
}

// UserTeamID returns the current user's team ID as an ObjectID.
// Returns NilObjectID if the user is not signed in or has no team.
func UserTeamID(r *http.Request) primitive.ObjectID {
	user, ok := auth.CurrentUser(r)
	if !ok || user.TeamID == "" {
		return primitive.NilObjectID
	}
	oid, err := primitive.ObjectIDFromHex(user.TeamID)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}
