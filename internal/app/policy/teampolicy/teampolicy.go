// Package teampolicy provides authorization policies for team access.
//
// Authorization rules:
//   - Admins manage teams (create, update, delete) and list all of them
//   - Team Leads can list all teams but not change them
//   - Team Members see only their own team via the "my team" view
package teampolicy

import (
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/domain/models"
)

// CanManage reports whether the current user may create, update, or
// delete teams.
func CanManage(r *http.Request) bool {
	return authz.IsAdmin(r)
}

// CanList reports whether the current user may list all teams.
func CanList(r *http.Request) bool {
	return authz.HasAnyRole(r, models.RoleAdmin, models.RoleTeamLead)
}
