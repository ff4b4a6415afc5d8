package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/jwtauth/internal/auth/domain"
)

// RefreshCookieName is the cookie carrying the refresh token.
const RefreshCookieName = "jwt"

func refreshCookie(value string, maxAge int, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     RefreshCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func setRefreshCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, refreshCookie(token, int(domain.RefreshTokenLifetime/time.Second), secure))
}

// clearRefreshCookie repeats the attributes the cookie was set with so the
// browser matches and drops it.
func clearRefreshCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, refreshCookie("", -1, secure))
}

func readRefreshCookie(r *http.Request) string {
	c, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
