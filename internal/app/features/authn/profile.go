// internal/app/features/authn/profile.go
package authn

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/system/apijson"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
)

// ServeProfile returns the signed-in user's record, minus credential
// fields. 404 if the account was deleted after the credential was issued.
//
// Route: GET /auth/profile
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		apijson.WriteError(w, apijson.Unauthenticated("not authorized, no valid credential"), h.Log)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		apijson.WriteError(w, apijson.NotFound("user not found"), h.Log)
		return
	}
	apijson.Write(w, http.StatusOK, principalOf(u))
}
