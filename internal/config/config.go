// Package config loads the server configuration from the environment.
//
// main calls godotenv.Load first, so a .env file in the working directory
// behaves exactly like exported variables. Every value has a default except
// the Instagram app credentials; without them the server still starts but
// the login flow fails upstream.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPort              = 5000
	DefaultDBPath            = "data/commentdesk.db"
	DefaultMongoDatabase     = "commentdesk"
	DefaultGraphBaseURL      = "https://graph.instagram.com"
	DefaultInstagramAPIURL   = "https://api.instagram.com"
	DefaultHTTPClientTimeout = 15 * time.Second

	minStateSecretLen = 16
)

type Config struct {
	Port      int
	LogLevel  slog.Level
	Instagram InstagramConfig
	Store     StoreConfig
	Security  SecurityConfig
}

type InstagramConfig struct {
	AppID       string
	AppSecret   string
	RedirectURI string

	// GraphBaseURL and APIBaseURL are only overridden in tests and staging.
	GraphBaseURL string
	APIBaseURL   string
	Timeout      time.Duration
}

// AuthURL is the consent screen endpoint under APIBaseURL.
func (c InstagramConfig) AuthURL() string { return c.APIBaseURL + "/oauth/authorize" }

// TokenURL is the code exchange endpoint under APIBaseURL.
func (c InstagramConfig) TokenURL() string { return c.APIBaseURL + "/oauth/access_token" }

// StoreConfig selects the user store: MongoDB when MongoURI is set,
// SQLite at DBPath otherwise.
type StoreConfig struct {
	MongoURI      string
	MongoDatabase string
	DBPath        string
}

func (c StoreConfig) UseMongo() bool { return c.MongoURI != "" }

type SecurityConfig struct {
	StateSecret        string // empty disables signed OAuth state
	TokenEncryptionKey string // empty stores access tokens in plaintext
}

// Load reads the environment. Malformed values are errors; missing ones
// fall back to defaults.
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", strconv.Itoa(DefaultPort)))
	if err != nil {
		return nil, fmt.Errorf("config: invalid PORT: %w", err)
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("config: PORT %d out of range", port)
	}

	timeout, err := time.ParseDuration(getEnv("HTTP_CLIENT_TIMEOUT", DefaultHTTPClientTimeout.String()))
	if err != nil {
		return nil, fmt.Errorf("config: invalid HTTP_CLIENT_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("config: HTTP_CLIENT_TIMEOUT must be positive, got %s", timeout)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("config: invalid LOG_LEVEL: %w", err)
	}

	cfg := &Config{
		Port:     port,
		LogLevel: level,
		Instagram: InstagramConfig{
			AppID:        os.Getenv("INSTAGRAM_APP_ID"),
			AppSecret:    os.Getenv("INSTAGRAM_APP_SECRET"),
			RedirectURI:  os.Getenv("INSTAGRAM_REDIRECT_URI"),
			GraphBaseURL: strings.TrimRight(getEnv("GRAPH_BASE_URL", DefaultGraphBaseURL), "/"),
			APIBaseURL:   strings.TrimRight(getEnv("INSTAGRAM_API_BASE_URL", DefaultInstagramAPIURL), "/"),
			Timeout:      timeout,
		},
		Store: StoreConfig{
			MongoURI:      os.Getenv("MONGODB_URI"),
			MongoDatabase: getEnv("MONGODB_DATABASE", DefaultMongoDatabase),
			DBPath:        getEnv("DB_PATH", DefaultDBPath),
		},
		Security: SecurityConfig{
			StateSecret:        os.Getenv("STATE_SECRET"),
			TokenEncryptionKey: os.Getenv("TOKEN_ENCRYPTION_KEY"),
		},
	}

	if s := cfg.Security.StateSecret; s != "" && len(s) < minStateSecretLen {
		return nil, fmt.Errorf("config: STATE_SECRET must be at least %d characters", minStateSecretLen)
	}

	return cfg, nil
}

// MissingInstagram lists the unset Instagram credentials, for a startup
// warning.
func (c *Config) MissingInstagram() []string {
	var missing []string
	if c.Instagram.AppID == "" {
		missing = append(missing, "INSTAGRAM_APP_ID")
	}
	if c.Instagram.AppSecret == "" {
		missing = append(missing, "INSTAGRAM_APP_SECRET")
	}
	if c.Instagram.RedirectURI == "" {
		missing = append(missing, "INSTAGRAM_REDIRECT_URI")
	}
	return missing
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
