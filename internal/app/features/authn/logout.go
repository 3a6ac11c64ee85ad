// internal/app/features/authn/logout.go
package authn

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/system/apijson"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleLogout clears the cookie session and bumps the user's token
// version so every bearer token issued before now stops working.
//
// Route: POST /auth/logout
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		apijson.WriteError(w, apijson.Unauthenticated("not authorized, no valid credential"), h.Log)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.BumpTokenVersion(ctx, uid); err != nil {
		apijson.WriteError(w, err, h.Log)
		return
	}
	if err := h.SM.SignOut(w, r); err != nil {
		h.Log.Warn("session clear failed on logout", zap.Error(err))
	}
	h.Audit.Logout(ctx, r, uid.Hex())

	apijson.Write(w, http.StatusOK, map[string]string{"message": "logged out"})
}
