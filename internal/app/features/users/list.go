// internal/app/features/users/list.go
package users

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/system/apijson"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
)

// ServeList returns every user with the team reference populated.
// Password hashes and other credential fields never leave the store
// layer.
//
// Route: GET /users
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Users.List(ctx)
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
