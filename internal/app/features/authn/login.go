// internal/app/features/authn/login.go
package authn

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/system/apijson"
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin verifies the credentials, establishes the cookie session,
// and returns the principal summary together with a bearer token for
// non-browser clients.
//
// Route: POST /auth/login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := apijson.Decode(r, &req); err != nil {
		apijson.WriteError(w, err, h.Log)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if h.Limits != nil {
		if allowed, reason := h.Limits.Check(r, req.Email); !allowed {
			h.Audit.LoginRateLimited(ctx, r, req.Email)
			apijson.WriteError(w, apijson.RateLimited(reason), h.Log)
			return
		}
	}

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		// Same message for unknown email and wrong password.
		h.Audit.LoginFailed(ctx, r, req.Email, "user not found")
		apijson.WriteError(w, apijson.Unauthenticated("invalid email or password"), h.Log)
		return
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		h.Audit.LoginFailed(ctx, r, req.Email, "wrong password")
		apijson.WriteError(w, apijson.Unauthenticated("invalid email or password"), h.Log)
		return
	}
	if h.Limits != nil {
		h.Limits.ResetEmail(req.Email)
	}

	if err := h.SM.SignIn(w, r, u.ID.Hex()); err != nil {
		apijson.WriteError(w, err, h.Log)
		return
	}
	token, err := h.SM.IssueToken(u.ID.Hex(), u.TokenVersion)
	if err != nil {
		apijson.WriteError(w, err, h.Log)
		return
	}

	h.Audit.LoginSuccess(ctx, r, u.ID, u.Email)
	h.Log.Info("user logged in", zap.String("user_id", u.ID.Hex()))
	p := principalOf(u)
	p.Token = token
	apijson.Write(w, http.StatusOK, p)
}
