package authsdk

import "time"

// ============================================================================
// Auth Types
// ============================================================================

// SignupRequest is the body of POST /api/v1/auth/signup.
type SignupRequest struct {
	FirstName string `json:"firstName" example:"Ada"`
	Email     string `json:"email" example:"ada@x.com"`
	Password  string `json:"password" example:"pw123"`
}

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email" example:"ada@x.com"`
	Password string `json:"password" example:"pw123"`
}

// UserResponse is the public projection of a user. It never carries the
// password hash.
type UserResponse struct {
	ID        string `json:"id" example:"01HZX3J0F8Q2Y4T6V8W0A2C4E6"`
	FirstName string `json:"firstName" example:"Ada"`
	Email     string `json:"email" example:"ada@x.com"`
}

// AuthResponse is returned by signup and login. The refresh token travels
// separately in the "jwt" cookie.
type AuthResponse struct {
	Success     bool         `json:"success"`
	Message     string       `json:"message"`
	User        UserResponse `json:"user"`
	AccessToken string       `json:"accessToken"`
}

// RefreshResponse is returned by GET /api/v1/auth/refresh.
type RefreshResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	AccessToken string `json:"accessToken"`
}

// MessageResponse is a bare success envelope.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ProfileUser is the user as seen by its owner.
type ProfileUser struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProfileResponse is returned by GET /api/v1/user/me.
type ProfileResponse struct {
	Success bool        `json:"success"`
	User    ProfileUser `json:"user"`
}

// ErrorResponse is the uniform failure envelope. Stack is only populated when
// the server runs in development mode.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`

	// Signer indicates the token codec is configured
	Signer string `json:"signer"`
}
