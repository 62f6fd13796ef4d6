package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_SECONDS", "")
	t.Setenv("AUTH_REFRESH_TOKEN_TTL_SECONDS", "")
	t.Setenv("SESSION_STORE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL())
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTTL())
	assert.Equal(t, SessionBackendRedis, cfg.Session.Backend)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_SECONDS", "60")
	t.Setenv("AUTH_REFRESH_TOKEN_TTL_SECONDS", "3600")
	t.Setenv("SESSION_STORE", "Memory")
	t.Setenv("APP_PORT", "9000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, time.Minute, cfg.Auth.AccessTTL())
	assert.Equal(t, time.Hour, cfg.Auth.RefreshTTL())
	assert.Equal(t, SessionBackendMemory, cfg.Session.Backend)
	assert.Equal(t, "0.0.0.0:9000", cfg.App.Addr())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Auth: AuthConfig{
				JWTSecret:              "secret",
				AccessTokenTTLSeconds:  60,
				RefreshTokenTTLSeconds: 120,
			},
			Session: SessionConfig{Backend: SessionBackendMemory},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "blank secret", mutate: func(c *Config) { c.Auth.JWTSecret = "  " }, wantErr: "AUTH_JWT_SECRET"},
		{name: "zero access ttl", mutate: func(c *Config) { c.Auth.AccessTokenTTLSeconds = 0 }, wantErr: "AUTH_ACCESS_TOKEN_TTL_SECONDS"},
		{name: "negative refresh ttl", mutate: func(c *Config) { c.Auth.RefreshTokenTTLSeconds = -1 }, wantErr: "AUTH_REFRESH_TOKEN_TTL_SECONDS"},
		{name: "postgres store without dsn", mutate: func(c *Config) { c.Session.Backend = SessionBackendPostgres }, wantErr: "POSTGRES_DSN"},
		{name: "half bootstrap", mutate: func(c *Config) { c.Auth.BootstrapEmail = "admin@x.com" }, wantErr: "AUTH_BOOTSTRAP_PASSWORD"},
		{name: "unknown store", mutate: func(c *Config) { c.Session.Backend = "etcd" }, wantErr: "unknown SESSION_STORE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
