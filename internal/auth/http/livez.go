package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/jwtauth/pkg/authsdk"
	"github.com/aussiebroadwan/jwtauth/pkg/httpx"
)

// LivezHandler godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe endpoint returning basic service health status, uptime, and version information
//	@Description	This endpoint always returns 200 OK if the service is running
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := authsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		}
		httpx.WriteJSON(w, http.StatusOK, response)
	}
}

// RootHandler godoc
//
//	@Summary		Banner
//	@Description	Plain text banner confirming the process is up.
//	@Tags			Health
//	@Produce		plain
//	@Success		200	{string}	string	"Application is running!"
//	@Router			/ [get].
func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Application is running!"))
}
