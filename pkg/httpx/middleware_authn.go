package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/jwtauth/pkg/jwtx"
	"github.com/aussiebroadwan/jwtauth/pkg/slogx"
)

const (
	msgAccessDenied = "Access denied. Please login and try again!"
	msgAuthFailed   = "Authorization failed!"
)

// AuthnMiddleware gates a handler behind a bearer access token. A missing
// token is a 401, a token that fails verification is a 403. On success the
// claims are injected into the request context.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := bearerToken(r)
			if !ok {
				writeBearerError(w, http.StatusUnauthorized, "missing bearer token", msgAccessDenied)
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				log.Warn("jwt verify failed", "err", err)
				writeBearerError(w, http.StatusForbidden, "token verification failed", msgAuthFailed)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(ctx, claims)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RFC 6750 style challenge plus the JSON envelope clients expect.
func writeBearerError(w http.ResponseWriter, code int, desc, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, code, msg)
}
