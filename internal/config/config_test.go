package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "v", cfg.SOS.TriggerKey)
	assert.Equal(t, 2*time.Second, cfg.SOS.Window)
	assert.Equal(t, "log", cfg.Booking.Store)
	assert.Equal(t, []string{"*"}, cfg.Security.AllowedOrigins)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadFromFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  request_timeout: 10s
sos:
  trigger_key: s
  window: 1500ms
booking:
  timezone: UTC
rate_limit:
  requests_per_second: 5
`)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("AYUSUTRA_SERVER_PORT", "9191")
	t.Setenv("AYUSUTRA_RATE_LIMIT_BURST", "7")
	t.Setenv("AYUSUTRA_SECURITY_ALLOWED_ORIGINS", "https://a.test,https://b.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "s", cfg.SOS.TriggerKey)
	assert.Equal(t, 1500*time.Millisecond, cfg.SOS.Window)
	assert.InDelta(t, 5.0, cfg.RateLimit.RequestsPerSecond, 1e-9)
	assert.Equal(t, 7, cfg.RateLimit.Burst)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.Security.AllowedOrigins)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", writeConfig(t, "server: [unterminated"))
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func(t *testing.T) *Config {
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"multi-char trigger", func(c *Config) { c.SOS.TriggerKey = "vv" }},
		{"zero window", func(c *Config) { c.SOS.Window = 0 }},
		{"unknown store", func(c *Config) { c.Booking.Store = "postgres" }},
		{"broker store without redis", func(c *Config) { c.Booking.Store = "broker" }},
		{"bad timezone", func(c *Config) { c.Booking.Timezone = "Mars/Olympus" }},
		{"mail without recipients", func(c *Config) {
			c.Mail.Enabled = true
			c.Mail.Host = "smtp.test"
			c.Mail.From = "a@b.test"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base(t)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, base(t).Validate())
}
