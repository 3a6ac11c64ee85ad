// Package taskpolicy decides who may see and change tasks.
//
// Authorization rules:
//   - Admins see and mutate every task
//   - Team Leads create tasks; their mutation reach depends on the
//     configured lead scope (global, or limited to their own team)
//   - Team Members see only tasks assigned to them and may change only
//     the status of those tasks
package taskpolicy

import (
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LeadScope controls how far a Team Lead's update/delete authority
// reaches. ScopeGlobal matches the historical behavior; ScopeTeam
// confines leads to tasks on their own team.
type LeadScope string

const (
	ScopeGlobal LeadScope = "global"
	ScopeTeam   LeadScope = "team"
)

// ParseLeadScope returns the scope for a config value, defaulting to
// global for anything unrecognized.
func ParseLeadScope(s string) LeadScope {
	if s == string(ScopeTeam) {
		return ScopeTeam
	}
	return ScopeGlobal
}

var (
	// ErrNotAssignee is returned when a member tries to update a task
	// assigned to someone else.
	ErrNotAssignee = errors.New("members can only update tasks assigned to them")

	// ErrInvalidStatus and ErrInvalidPriority reject values outside the
	// closed sets.
	ErrInvalidStatus   = errors.New("status must be To Do, In Progress, Review, or Completed")
	ErrInvalidPriority = errors.New("priority must be Low, Medium, or High")
)

// CanCreate reports whether the current user may create tasks.
func CanCreate(r *http.Request) bool {
	return authz.HasAnyRole(r, models.RoleAdmin, models.RoleTeamLead)
}

// CanMutate reports whether the current user may update or delete the
// given task under the configured lead scope. Members are handled by
// ApplyPatch, not here.
func CanMutate(r *http.Request, task models.Task, scope LeadScope) bool {
	role, _, ok := authz.UserCtx(r)
	if !ok {
		return false
	}
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleTeamLead:
		if scope == ScopeGlobal {
			return true
		}
		teamID := authz.UserTeamID(r)
		return teamID != primitive.NilObjectID && task.TeamID != nil && *task.TeamID == teamID
	default:
		return false
	}
}

// VisibilityFilter returns the Mongo predicate limiting task list reads
// for the current user. ok is false when the user can see nothing at
// all: a lead without a team, or no authenticated user.
func VisibilityFilter(r *http.Request) (bson.M, bool) {
	role, uid, ok := authz.UserCtx(r)
	if !ok {
		return nil, false
	}
	switch role {
	case models.RoleAdmin:
		return bson.M{}, true
	case models.RoleTeamLead:
		teamID := authz.UserTeamID(r)
		if teamID == primitive.NilObjectID {
			return nil, false
		}
		return bson.M{"team_id": teamID}, true
	case models.RoleTeamMember:
		return bson.M{"assigned_to": uid}, true
	default:
		return nil, false
	}
}

// Patch carries the fields present in an update request. Nil pointers
// mean the field was absent and keeps its stored value.
type Patch struct {
	Title       *string
	Description *string
	AssignedTo  *primitive.ObjectID
	Priority    *models.TaskPriority
	Status      *models.TaskStatus
	DueDate     *time.Time
	TeamID      *primitive.ObjectID
}

// ApplyPatch converts a patch into the set document the store may apply,
// enforcing the per-role field rules:
//   - Admins and leads (within scope) update any present field
//   - Members must be the task's assignee and only the status field is
//     honored; other fields in their payload are dropped silently
//
// The returned map never contains a field the caller did not send.
func ApplyPatch(r *http.Request, task models.Task, p Patch, scope LeadScope) (bson.M, error) {
	role, uid, ok := authz.UserCtx(r)
	if !ok {
		return nil, ErrNotAssignee
	}

	if role == models.RoleTeamMember {
		if task.AssignedTo == nil || *task.AssignedTo != uid {
			return nil, ErrNotAssignee
		}
		set := bson.M{}
		if p.Status != nil {
			if !p.Status.Valid() {
				return nil, ErrInvalidStatus
			}
			set["status"] = *p.Status
		}
		return set, nil
	}

	if !CanMutate(r, task, scope) {
		return nil, ErrNotAssignee
	}

	set := bson.M{}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.AssignedTo != nil {
		set["assigned_to"] = *p.AssignedTo
	}
	if p.Priority != nil {
		if !p.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		set["priority"] = *p.Priority
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		set["status"] = *p.Status
	}
	if p.DueDate != nil {
		set["due_date"] = *p.DueDate
	}
	if p.TeamID != nil {
		set["team_id"] = *p.TeamID
	}
	return set, nil
}
