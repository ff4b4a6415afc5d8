package http

import (
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/jwtauth/internal/auth/domain"
	"github.com/aussiebroadwan/jwtauth/internal/auth/service"
	"github.com/aussiebroadwan/jwtauth/pkg/authsdk"
	"github.com/aussiebroadwan/jwtauth/pkg/httpx"
	"github.com/aussiebroadwan/jwtauth/pkg/slogx"
)

// AuthHandler serves the session endpoints under /api/v1/auth.
type AuthHandler struct {
	AuthService  *service.AuthService
	Errors       *ErrorResponder
	SecureCookie bool
}

var errBadBody = service.Invalid("Invalid request body!")

func publicUser(u domain.User) authsdk.UserResponse {
	return authsdk.UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		Email:     u.Email,
	}
}

// HandleSignup godoc
//
//	@Summary		Create an account
//	@Description	Creates a user, starts a session and sets the refresh token cookie.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.SignupRequest	true	"New account"
//	@Success		201		{object}	authsdk.AuthResponse	"user and access token"
//	@Header			201		{string}	Set-Cookie				"jwt=<refresh token>; HttpOnly; SameSite=Strict"
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid input or email already exists"
//	@Failure		500		{object}	authsdk.ErrorResponse	"internal error"
//	@Router			/api/v1/auth/signup [post].
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req authsdk.SignupRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.Errors.Write(w, r, errBadBody)
		return
	}

	session, err := h.AuthService.Signup(r.Context(), service.SignupInput{
		FirstName: req.FirstName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		h.Errors.Write(w, r, err)
		return
	}

	setRefreshCookie(w, session.RefreshToken, h.SecureCookie)
	httpx.WriteJSON(w, http.StatusCreated, authsdk.AuthResponse{
		Success:     true,
		Message:     "User registered successfully!",
		User:        publicUser(session.User),
		AccessToken: session.AccessToken,
	})
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Checks the password, starts a new session and sets the refresh token cookie.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.AuthResponse	"user and access token"
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid input"
//	@Failure		401		{object}	authsdk.ErrorResponse	"wrong password"
//	@Failure		404		{object}	authsdk.ErrorResponse	"unknown email"
//	@Router			/api/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.Errors.Write(w, r, errBadBody)
		return
	}

	session, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.Errors.Write(w, r, err)
		return
	}

	setRefreshCookie(w, session.RefreshToken, h.SecureCookie)
	httpx.WriteJSON(w, http.StatusOK, authsdk.AuthResponse{
		Success:     true,
		Message:     "Login successful!",
		User:        publicUser(session.User),
		AccessToken: session.AccessToken,
	})
}

// HandleRefresh godoc
//
//	@Summary		Refresh the access token
//	@Description	Exchanges the refresh token cookie for a new access token. The cookie is left as is.
//	@Tags			Auth
//	@Produce		json
//	@Param			jwt	header		string					false	"Refresh token cookie (sent as Cookie: jwt=...)"
//	@Success		200	{object}	authsdk.RefreshResponse	"new access token"
//	@Failure		401	{object}	authsdk.ErrorResponse	"no refresh token cookie"
//	@Failure		403	{object}	authsdk.ErrorResponse	"refresh token invalid, expired or revoked"
//	@Router			/api/v1/auth/refresh [get].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	access, err := h.AuthService.Refresh(r.Context(), readRefreshCookie(r))
	if err != nil {
		h.Errors.Write(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.RefreshResponse{
		Success:     true,
		Message:     "Access token refreshed successfully!",
		AccessToken: access,
	})
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Forgets the refresh token and clears its cookie. Always succeeds.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.MessageResponse	"a session was ended"
//	@Success		204	"no session to end"
//	@Router			/api/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	token := readRefreshCookie(r)
	if token == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	removed, err := h.AuthService.Logout(r.Context(), token)
	if err != nil {
		slogx.FromContext(r.Context()).Error("logout failed", slog.Any("err", err))
	}
	clearRefreshCookie(w, h.SecureCookie)

	if !removed {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{
		Success: true,
		Message: "Logged out successfully",
	})
}
