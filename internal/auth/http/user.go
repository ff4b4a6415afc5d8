package http

import (
	"net/http"

	"github.com/aussiebroadwan/jwtauth/internal/auth/service"
	"github.com/aussiebroadwan/jwtauth/pkg/authsdk"
	"github.com/aussiebroadwan/jwtauth/pkg/httpx"
)

type ProfileHandler struct {
	UserService *service.UserService
	Errors      *ErrorResponder
}

// ServeHTTP godoc
//
//	@Summary		Current user
//	@Description	Returns the profile of the user owning the access token.
//	@Tags			User
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.ProfileResponse	"user without password hash"
//	@Failure		401	{object}	authsdk.ErrorResponse	"missing access token"
//	@Failure		403	{object}	authsdk.ErrorResponse	"invalid access token"
//	@Failure		404	{object}	authsdk.ErrorResponse	"user no longer exists"
//	@Router			/api/v1/user/me [get].
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "Access denied. Please login and try again!")
		return
	}

	user, err := h.UserService.GetProfile(ctx, userID)
	if err != nil {
		h.Errors.Write(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.ProfileResponse{
		Success: true,
		User: authsdk.ProfileUser{
			ID:        user.ID,
			FirstName: user.FirstName,
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
		},
	})
}
