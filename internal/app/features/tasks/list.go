// internal/app/features/tasks/list.go
package tasks

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/policy/taskpolicy"
	"github.com/dalemusser/taskhub/internal/app/system/apijson"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
)

// ServeList returns the tasks the current user can see: admins see all,
// leads see their team's, members see what is assigned to them. A lead
// without a team sees an empty list.
//
// Route: GET /tasks
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	filter, ok := taskpolicy.VisibilityFilter(r)
	if !ok {
		apijson.Write(w, http.StatusOK, []taskView{})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Tasks.List(ctx, filter)
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
