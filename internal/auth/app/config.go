package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/jwtauth/pkg/cryptox"
	"github.com/aussiebroadwan/jwtauth/pkg/jwtx"
	"github.com/joho/godotenv"
)

type Config struct {
	AccessTokenSecret  string        // Required: HMAC secret for access tokens
	AccessTokenExpiry  time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTokenSecret string        // Required: HMAC secret for refresh tokens, must differ from the access secret
	RefreshTokenExpiry time.Duration // Optional: refresh token lifetime (default: 7d)

	Issuer         string // Optional: issuer claim for tokens (default: jwtauth)
	DatabaseURL    string // Optional: postgres:// URL or SQLite DSN (default: file:auth.db)
	PepperFile     string // Optional: path to file containing pepper for password hashing (default: ./pepper)
	PasswordHasher string // Optional: argon2id or bcrypt (default: argon2id)
	CORSOrigins    []string
	CookieSecure   bool // Optional: set Secure on the refresh cookie (default: false)

	Env                  string        // Environment (dev, staging, production) (default: production)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)

	// invalid collects values that were set but could not be parsed.
	invalid []error
}

// LoadConfig reads the environment. Values from a .env file in the working
// directory are used when the real environment doesn't set them.
func LoadConfig() Config {
	_ = godotenv.Load()

	var invalid []error
	duration := func(key string, defaultValue time.Duration) time.Duration {
		d, err := getEnvDurationOrDefault(key, defaultValue)
		if err != nil {
			invalid = append(invalid, err)
		}
		return d
	}
	integer := func(key string, defaultValue int) int {
		n, err := getEnvIntOrDefault(key, defaultValue)
		if err != nil {
			invalid = append(invalid, err)
		}
		return n
	}
	boolean := func(key string, defaultValue bool) bool {
		b, err := getEnvBoolOrDefault(key, defaultValue)
		if err != nil {
			invalid = append(invalid, err)
		}
		return b
	}

	cfg := Config{
		AccessTokenSecret:    os.Getenv("ACCESS_TOKEN_SECRET"),
		AccessTokenExpiry:    duration("ACCESS_TOKEN_EXPIRY", jwtx.DefaultAccessTokenTTL),
		RefreshTokenSecret:   os.Getenv("REFRESH_TOKEN_SECRET"),
		RefreshTokenExpiry:   duration("REFRESH_TOKEN_EXPIRY", jwtx.DefaultRefreshTokenTTL),
		Issuer:               getEnvOrDefault("AUTH_ISSUER", "jwtauth"),
		DatabaseURL:          getEnvOrDefault("DATABASE_URL", "file:auth.db"),
		PepperFile:           getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		PasswordHasher:       getEnvOrDefault("AUTH_PASSWORD_HASHER", cryptox.AlgorithmArgon2id),
		CORSOrigins:          splitList(getEnvOrDefault("CORS_ORIGIN", "http://localhost:5173")),
		CookieSecure:         boolean("COOKIE_SECURE", false),
		Env:                  getEnvOrDefault("ENV", "production"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 integer("PORT", 8080),
		ShutdownGracePeriod:  duration("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: duration("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
	cfg.invalid = invalid
	return cfg
}

// Validate reports every problem with cfg at once.
func (cfg Config) Validate() error {
	errs := append([]error(nil), cfg.invalid...)

	if cfg.AccessTokenSecret == "" {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET is required"))
	}
	if cfg.RefreshTokenSecret == "" {
		errs = append(errs, errors.New("REFRESH_TOKEN_SECRET is required"))
	}
	if cfg.AccessTokenSecret != "" && cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ"))
	}
	if cfg.AccessTokenExpiry <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRY must be positive"))
	}
	if cfg.RefreshTokenExpiry <= 0 {
		errs = append(errs, errors.New("REFRESH_TOKEN_EXPIRY must be positive"))
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d is out of range", cfg.Port))
	}
	switch strings.ToLower(cfg.PasswordHasher) {
	case cryptox.AlgorithmArgon2id, cryptox.AlgorithmBcrypt:
	default:
		errs = append(errs, fmt.Errorf("AUTH_PASSWORD_HASHER %q is not supported", cfg.PasswordHasher))
	}

	return errors.Join(errs...)
}

// IsDevelopment reports whether error responses may include internals.
func (cfg Config) IsDevelopment() bool {
	switch strings.ToLower(strings.TrimSpace(cfg.Env)) {
	case "dev", "development":
		return true
	}
	return false
}

// UsesPostgres reports whether DatabaseURL points at Postgres.
func (cfg Config) UsesPostgres() bool {
	return strings.HasPrefix(cfg.DatabaseURL, "postgres://") ||
		strings.HasPrefix(cfg.DatabaseURL, "postgresql://")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return defaultValue, fmt.Errorf("%s: invalid integer %q", key, value)
	}
	return n, nil
}

func getEnvBoolOrDefault(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return defaultValue, fmt.Errorf("%s: invalid boolean %q", key, value)
	}
	return b, nil
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	d, err := parseDuration(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// parseDuration accepts Go durations ("90s", "15m"), whole days ("7d") and
// bare integers, which are read as minutes.
func parseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)

	if duration, err := time.ParseDuration(value); err == nil {
		return duration, nil
	}

	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid day count %q", value)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute, nil
	}

	return 0, fmt.Errorf("invalid duration %q", value)
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
