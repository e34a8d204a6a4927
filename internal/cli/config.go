package cli

import (
	"os"
	"time"

	"github.com/mcoot/battleship-client/internal/factory"
	"github.com/mcoot/battleship-client/internal/session/file"
	"github.com/mcoot/battleship-client/internal/transport"
)

// Config holds CLI configuration
type Config struct {
	ServerURL    string
	Token        string
	TokenFile    string
	SessionStore string
	RedisURL     string
	Timeout      time.Duration
	Strategy     string
	Output       string
	Verbose      bool
}

// DefaultConfig returns a Config with defaults overridden by environment
func DefaultConfig() *Config {
	return &Config{
		ServerURL:    getEnvOrDefault("BATTLESHIP_SERVER", "http://localhost:3000/api"),
		Token:        os.Getenv("BATTLESHIP_TOKEN"),
		TokenFile:    getEnvOrDefault("BATTLESHIP_TOKEN_FILE", file.DefaultPath()),
		SessionStore: getEnvOrDefault("BATTLESHIP_SESSION_STORE", factory.SessionStoreFile),
		RedisURL:     getEnvOrDefault("BATTLESHIP_REDIS_URL", "redis://localhost:6379"),
		Timeout:      getEnvDuration("BATTLESHIP_TIMEOUT", transport.DefaultTimeout),
		Strategy:     getEnvOrDefault("BATTLESHIP_STRATEGY", "random"),
		Output:       "text",
		Verbose:      false,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvDuration parses a duration such as "5s", falling back to the
// default when unset or invalid
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
