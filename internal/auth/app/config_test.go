package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "15m", want: 15 * time.Minute},
		{in: "90s", want: 90 * time.Second},
		{in: "7d", want: 7 * 24 * time.Hour},
		{in: " 1d ", want: 24 * time.Hour},
		{in: "30", want: 30 * time.Minute},
		{in: "xd", wantErr: true},
		{in: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDuration(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env here
	t.Setenv("ACCESS_TOKEN_SECRET", "a")
	t.Setenv("REFRESH_TOKEN_SECRET", "b")
	for _, key := range []string{
		"ACCESS_TOKEN_EXPIRY", "REFRESH_TOKEN_EXPIRY", "DATABASE_URL", "AUTH_ISSUER",
		"CORS_ORIGIN", "COOKIE_SECURE", "ENV", "PORT", "AUTH_PASSWORD_HASHER",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 15*time.Minute, cfg.AccessTokenExpiry)
	require.Equal(t, 7*24*time.Hour, cfg.RefreshTokenExpiry)
	require.Equal(t, "jwtauth", cfg.Issuer)
	require.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	require.False(t, cfg.CookieSecure)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "production", cfg.Env)
	require.False(t, cfg.IsDevelopment())
	require.False(t, cfg.UsesPostgres())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ACCESS_TOKEN_SECRET", "a")
	t.Setenv("REFRESH_TOKEN_SECRET", "b")
	t.Setenv("ACCESS_TOKEN_EXPIRY", "5m")
	t.Setenv("REFRESH_TOKEN_EXPIRY", "3d")
	t.Setenv("DATABASE_URL", "postgresql://auth@db/auth")
	t.Setenv("CORS_ORIGIN", "https://a.example, https://b.example")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("ENV", "production")

	cfg := LoadConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 5*time.Minute, cfg.AccessTokenExpiry)
	require.Equal(t, 3*24*time.Hour, cfg.RefreshTokenExpiry)
	require.True(t, cfg.UsesPostgres())
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	require.True(t, cfg.CookieSecure)
	require.False(t, cfg.IsDevelopment())
}

func TestLoadConfigRejectsMalformedValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ACCESS_TOKEN_SECRET", "a")
	t.Setenv("REFRESH_TOKEN_SECRET", "b")
	t.Setenv("ACCESS_TOKEN_EXPIRY", "15 min")
	t.Setenv("REFRESH_TOKEN_EXPIRY", "a week")
	t.Setenv("PORT", "http")
	t.Setenv("COOKIE_SECURE", "yes please")

	cfg := LoadConfig()
	err := cfg.Validate()
	require.Error(t, err)
	for _, key := range []string{"ACCESS_TOKEN_EXPIRY", "REFRESH_TOKEN_EXPIRY", "PORT", "COOKIE_SECURE"} {
		require.ErrorContains(t, err, key)
	}

	_, err = New(cfg)
	require.ErrorContains(t, err, "ACCESS_TOKEN_EXPIRY")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := Config{
		AccessTokenSecret:  "a",
		AccessTokenExpiry:  time.Minute,
		RefreshTokenSecret: "b",
		RefreshTokenExpiry: time.Hour,
		PasswordHasher:     "argon2id",
		Port:               8080,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing access secret", func(c *Config) { c.AccessTokenSecret = "" }, "ACCESS_TOKEN_SECRET is required"},
		{"missing refresh secret", func(c *Config) { c.RefreshTokenSecret = "" }, "REFRESH_TOKEN_SECRET is required"},
		{"shared secret", func(c *Config) { c.RefreshTokenSecret = "a" }, "must differ"},
		{"zero access ttl", func(c *Config) { c.AccessTokenExpiry = 0 }, "ACCESS_TOKEN_EXPIRY"},
		{"negative refresh ttl", func(c *Config) { c.RefreshTokenExpiry = -time.Hour }, "REFRESH_TOKEN_EXPIRY"},
		{"bad port", func(c *Config) { c.Port = 70000 }, "PORT"},
		{"unknown hasher", func(c *Config) { c.PasswordHasher = "md5" }, "AUTH_PASSWORD_HASHER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(Config{})
	require.ErrorContains(t, err, "invalid configuration")
}
