package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 3001, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "conexa", cfg.Auth.JWT.Issuer)
	require.Equal(t, 12*time.Hour, cfg.Auth.JWT.TTL)
	require.Equal(t, "http://localhost:5173", cfg.Registration.BaseURL)
	require.Equal(t, 24, cfg.Registration.TokenLength)
	require.False(t, cfg.Email.SMTP.Enabled)
	require.True(t, cfg.Maintenance.Enabled)
	require.Equal(t, "@hourly", cfg.Maintenance.SweepSpec)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Contains(t, cfg.CORS.AllowedOrigins, "http://localhost:5173")
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	contents := `
server:
  port: 8080
auth:
  admin_token: sekrit
  jwt:
    secret: config-test
    access_token_ttl: 30m
registration:
  base_url: https://club.example.com/
cors:
  allowed_origins:
    - https://club.example.com
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(contents), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "sekrit", cfg.Auth.AdminToken)
	require.Equal(t, "config-test", cfg.Auth.JWT.Secret)
	require.Equal(t, 30*time.Minute, cfg.Auth.JWT.TTL)
	require.Equal(t, "https://club.example.com/", cfg.Registration.BaseURL)
	require.Equal(t, []string{"https://club.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("CONEXA_SERVER_PORT", "9001")
	t.Setenv("CONEXA_AUTH_ADMIN_TOKEN", "from-env")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 9001, cfg.Server.Port)
	require.Equal(t, "from-env", cfg.Auth.AdminToken)
}
