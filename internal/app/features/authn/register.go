// internal/app/features/authn/register.go
package authn

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/dalemusser/taskhub/internal/app/store/users"
	"github.com/dalemusser/taskhub/internal/app/system/apijson"
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.uber.org/zap"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// HandleRegister creates a new account and signs it in. The first account
// ever registered becomes the Admin; everyone after that starts as a
// Team Member.
//
// Route: POST /auth/register
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := apijson.Decode(r, &req); err != nil {
		apijson.WriteError(w, err, h.Log)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		apijson.WriteError(w, err, h.Log)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	seq, err := h.Users.RegistrationSeq(ctx)
	if err != nil {
		apijson.WriteError(w, err, h.Log)
		return
	}
	role := models.RoleTeamMember
	if seq == 1 {
		role = models.RoleAdmin
	}

	u, err := h.Users.Create(ctx, models.User{
		Name:         htmlsanitize.Strict(req.Name),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			apijson.WriteError(w, apijson.Conflict("user with this email already exists"), h.Log)
			return
		}
		apijson.WriteError(w, err, h.Log)
		return
	}

	if err := h.SM.SignIn(w, r, u.ID.Hex()); err != nil {
		h.Log.Error("sign-in after register failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
	}

	h.Audit.Registered(ctx, r, u.ID, u.Email, string(u.Role))
	h.Log.Info("user registered",
		zap.String("user_id", u.ID.Hex()),
		zap.String("role", string(u.Role)))
	apijson.Write(w, http.StatusCreated, principalOf(u))
}
