package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fetcha/internal/logger"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const minimalConfig = `
extractor_url = "http://localhost:9000"
telegram_bot_token = "123:abc"
auth_secret_key = "0123456789abcdef0123456789abcdef"
`

func TestGetConfigDefaults(t *testing.T) {
	c, err := GetConfig(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "localhost:8888", c.ServerAddress)
	assert.Equal(t, "mongodb://localhost:27017", c.DatabaseURI)
	assert.Equal(t, "redis://localhost:6379", c.RedisURI)
	assert.Equal(t, "https://api.telegram.org", c.TelegramAPIURL)
	assert.Equal(t, 3, c.FreeTierLimit)
	assert.Equal(t, 5.0, c.ChangeThresholdPercent)
	assert.Equal(t, 24*time.Hour, c.CheckInterval)
	assert.Equal(t, time.Minute, c.CheckInitialDelay)
	assert.Equal(t, 5*time.Second, c.CheckPace)
	assert.Equal(t, 60*time.Second, c.ExtractTimeout)
	assert.Equal(t, 10*time.Minute, c.SessionTTL)
	assert.Equal(t, logger.LevelInfo, c.LogLevel)
	assert.NotNil(t, c.AuthSecretKey)
}

func TestGetConfigOverrides(t *testing.T) {
	c, err := GetConfig(writeConfig(t, minimalConfig+`
free_tier_limit = 10
change_threshold_percent = 2.5
check_interval = "6h"
check_pace = "300ms"
log_level = "debug"
`))
	require.NoError(t, err)

	assert.Equal(t, 10, c.FreeTierLimit)
	assert.Equal(t, 2.5, c.ChangeThresholdPercent)
	assert.Equal(t, 6*time.Hour, c.CheckInterval)
	assert.Equal(t, 300*time.Millisecond, c.CheckPace)
	assert.Equal(t, logger.LevelDebug, c.LogLevel)
}

func TestGetConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing extractor_url", `
telegram_bot_token = "123:abc"
auth_secret_key = "0123456789abcdef0123456789abcdef"
`},
		{"missing telegram_bot_token", `
extractor_url = "http://localhost:9000"
auth_secret_key = "0123456789abcdef0123456789abcdef"
`},
		{"missing auth_secret_key", `
extractor_url = "http://localhost:9000"
telegram_bot_token = "123:abc"
`},
		{"check_interval too short", minimalConfig + `check_interval = "10s"`},
		{"bad duration", minimalConfig + `check_pace = "soon"`},
		{"bad log level", minimalConfig + `log_level = "chatty"`},
		{"negative tier limit", minimalConfig + `free_tier_limit = -1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GetConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestGetConfigMissingFile(t *testing.T) {
	_, err := GetConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
