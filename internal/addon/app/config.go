package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	BaseURL string // Required: public origin the host embeds (default: http://localhost:8080)

	DatabaseFile string // Optional: path to SQLite database file (default: ./addon.db)
	SealKeyFile  string // Optional: path to the 32-byte token sealing key (default: ./seal.key, generated if absent)

	OAuthClientID     string   // Required: OAuth2 client ID
	OAuthClientSecret string   // Required: OAuth2 client secret
	OAuthScopes       []string // Optional: scopes to request (default: add-on + userinfo scopes)
	OAuthAuthURL      string   // Optional: override the provider authorization endpoint (dev/test)
	OAuthTokenURL     string   // Optional: override the provider token endpoint (dev/test)
	OAuthRevokeURL    string   // Optional: override the provider revocation endpoint

	ClassroomEndpoint string // Optional: override the Classroom API endpoint (dev/test)

	RoleSource     string // Optional: where role claims come from: "host" or "token" (default: host)
	LaunchKeyFile  string // Required for token mode: PEM public key verifying launch tokens
	LaunchIssuer   string // Optional: expected launch token issuer
	LaunchAudience string // Optional: expected launch token audience

	SessionTTL   time.Duration // Optional: session lifetime, slides with activity (default: 24h)
	StateTTL     time.Duration // Optional: pending authorization state lifetime (default: 10m)
	ExpiryMargin time.Duration // Optional: freshness margin on access tokens (default: 1m)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 15m)
}

// defaultScopes cover the add-on launch surface plus the userinfo calls
// that resolve the launching user's identity.
var defaultScopes = []string{
	"https://www.googleapis.com/auth/classroom.addons.teacher",
	"https://www.googleapis.com/auth/classroom.addons.student",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/userinfo.email",
}

func LoadConfig() Config {
	cfg := Config{
		BaseURL: getEnvOrDefault("ADDON_BASE_URL", "http://localhost:8080"),

		DatabaseFile: getEnvOrDefault("ADDON_DATABASE_FILE", "addon.db"),
		SealKeyFile:  getEnvOrDefault("ADDON_SEAL_KEY_FILE", "seal.key"),

		OAuthClientID:     os.Getenv("ADDON_OAUTH_CLIENT_ID"),
		OAuthClientSecret: os.Getenv("ADDON_OAUTH_CLIENT_SECRET"),
		OAuthAuthURL:      os.Getenv("ADDON_OAUTH_AUTH_URL"),
		OAuthTokenURL:     os.Getenv("ADDON_OAUTH_TOKEN_URL"),
		OAuthRevokeURL: getEnvOrDefault(
			"ADDON_OAUTH_REVOKE_URL",
			"https://oauth2.googleapis.com/revoke",
		),

		ClassroomEndpoint: os.Getenv("ADDON_CLASSROOM_ENDPOINT"),

		RoleSource:     getEnvOrDefault("ADDON_ROLE_SOURCE", "host"),
		LaunchKeyFile:  os.Getenv("ADDON_LAUNCH_KEY_FILE"),
		LaunchIssuer:   os.Getenv("ADDON_LAUNCH_ISSUER"),
		LaunchAudience: os.Getenv("ADDON_LAUNCH_AUDIENCE"),

		SessionTTL:   getEnvDurationOrDefault("ADDON_SESSION_TTL", 24*time.Hour),
		StateTTL:     getEnvDurationOrDefault("ADDON_STATE_TTL", 10*time.Minute),
		ExpiryMargin: getEnvDurationOrDefault("ADDON_EXPIRY_MARGIN", time.Minute),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 15*time.Minute),
	}

	if scopes := os.Getenv("ADDON_OAUTH_SCOPES"); scopes != "" {
		cfg.OAuthScopes = strings.Fields(scopes)
	} else {
		cfg.OAuthScopes = defaultScopes
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
