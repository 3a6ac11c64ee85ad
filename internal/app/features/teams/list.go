// internal/app/features/teams/list.go
package teams

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/policy/teampolicy"
	"github.com/dalemusser/taskhub/internal/app/system/apijson"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
)

// ServeList returns all teams with populated member and creator
// summaries. Admins and team leads only.
//
// Route: GET /teams
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	if !teampolicy.CanList(r) {
		apijson.WriteError(w, apijson.Forbidden("not authorized to list teams"), h.Log)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Teams.List(ctx)
	if err != nil {
		apijson.WriteError(w, err, h.Log)
		return
	}
	views, err := h.buildViews(ctx, list)
	if err != nil {
		apijson.WriteError(w, err, h.Log)
		return
	}
	apijson.Write(w, http.StatusOK, views)
}
