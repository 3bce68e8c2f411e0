package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Default Google OAuth scopes requested during authorization.
// Mail, calendar and contacts access for the assistant tools.
var DefaultGoogleScopes = []string{
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/gmail.modify",
	"https://www.googleapis.com/auth/gmail.send",
	"https://www.googleapis.com/auth/calendar",
	"https://www.googleapis.com/auth/contacts",
}

// Settings holds the resolved runtime configuration for the server.
type Settings struct {
	// LogLevel is one of debug, info, warn, error
	LogLevel string

	// DBPath is the SQLite database file path (":memory:" for tests)
	DBPath string

	// HTTPAddr is the address of the sidecar HTTP listener
	// (OAuth callback, health, metrics)
	HTTPAddr string

	// Google OAuth client configuration
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	GoogleScopes       []string

	// AuthRequestTTL bounds how long a begun authorization may wait
	// for its callback before it is reported as expired
	AuthRequestTTL time.Duration

	// Web tool settings
	WebUserAgent string
	WebTimeout   time.Duration
}

// Load resolves settings from the environment. Flags may override
// individual fields afterwards; cobra wiring lives in cmd.
func Load() Settings {
	return Settings{
		LogLevel:           getenv("LOG_LEVEL", "info"),
		DBPath:             getenv("ATTACHE_DB", "attache.db"),
		HTTPAddr:           getenv("ATTACHE_HTTP_ADDR", "127.0.0.1:8484"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURI:  os.Getenv("GOOGLE_REDIRECT_URI"),
		GoogleScopes:       parseScopes(os.Getenv("GOOGLE_SCOPES")),
		AuthRequestTTL:     getenvDuration("AUTH_REQUEST_TTL", 10*time.Minute),
		WebUserAgent:       getenv("WEB_USER_AGENT", "attache/0.1"),
		WebTimeout:         getenvDuration("WEB_TIMEOUT", 12*time.Second),
	}
}

// ValidateGoogle reports whether the Google OAuth client is usable.
// Returns a descriptive error naming the first missing field.
func (s Settings) ValidateGoogle() error {
	if s.GoogleClientID == "" || s.GoogleClientSecret == "" {
		return fmt.Errorf("google OAuth client not configured: set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET")
	}
	if s.GoogleRedirectURI == "" {
		return fmt.Errorf("google OAuth redirect URI not configured: set GOOGLE_REDIRECT_URI")
	}
	return nil
}

func parseScopes(raw string) []string {
	if raw == "" {
		return DefaultGoogleScopes
	}
	var scopes []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	if len(scopes) == 0 {
		return DefaultGoogleScopes
	}
	return scopes
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// plain integers are treated as seconds
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
