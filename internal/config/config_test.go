package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "LOG_LEVEL", "HTTP_CLIENT_TIMEOUT",
		"INSTAGRAM_APP_ID", "INSTAGRAM_APP_SECRET", "INSTAGRAM_REDIRECT_URI",
		"GRAPH_BASE_URL", "INSTAGRAM_API_BASE_URL",
		"MONGODB_URI", "MONGODB_DATABASE", "DB_PATH",
		"STATE_SECRET", "TOKEN_ENCRYPTION_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, DefaultGraphBaseURL, cfg.Instagram.GraphBaseURL)
	assert.Equal(t, "https://api.instagram.com/oauth/access_token", cfg.Instagram.TokenURL())
	assert.Equal(t, "https://api.instagram.com/oauth/authorize", cfg.Instagram.AuthURL())
	assert.Equal(t, 15*time.Second, cfg.Instagram.Timeout)
	assert.Equal(t, DefaultDBPath, cfg.Store.DBPath)
	assert.Equal(t, DefaultMongoDatabase, cfg.Store.MongoDatabase)
	assert.False(t, cfg.Store.UseMongo())
	assert.Empty(t, cfg.Security.StateSecret)
	assert.ElementsMatch(t,
		[]string{"INSTAGRAM_APP_ID", "INSTAGRAM_APP_SECRET", "INSTAGRAM_REDIRECT_URI"},
		cfg.MissingInstagram())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HTTP_CLIENT_TIMEOUT", "3s")
	t.Setenv("INSTAGRAM_APP_ID", "app")
	t.Setenv("INSTAGRAM_APP_SECRET", "secret")
	t.Setenv("INSTAGRAM_REDIRECT_URI", "https://localhost:3000/cb")
	t.Setenv("GRAPH_BASE_URL", "http://127.0.0.1:9999/")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("STATE_SECRET", "0123456789abcdef")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.Instagram.Timeout)
	assert.Equal(t, "http://127.0.0.1:9999", cfg.Instagram.GraphBaseURL, "trailing slash trimmed")
	assert.True(t, cfg.Store.UseMongo())
	assert.Equal(t, "0123456789abcdef", cfg.Security.StateSecret)
	assert.Empty(t, cfg.MissingInstagram())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"non-numeric port", "PORT", "http"},
		{"port out of range", "PORT", "70000"},
		{"bad timeout", "HTTP_CLIENT_TIMEOUT", "soon"},
		{"zero timeout", "HTTP_CLIENT_TIMEOUT", "0s"},
		{"bad log level", "LOG_LEVEL", "loud"},
		{"short state secret", "STATE_SECRET", "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
