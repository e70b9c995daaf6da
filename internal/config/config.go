// Package config loads application settings from environment variables.
// Every setting has a usable default so a bare `albumpress serve` works.
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Export  ExportConfig
	Render  RenderConfig
	Auth    AuthConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type StorageConfig struct {
	// Backend selects the store implementation: "memory" or "sqlite".
	Backend string
	// SQLitePath is the database file used when Backend is "sqlite".
	SQLitePath string
}

type ExportConfig struct {
	// Dir is where finished PDF artifacts are written.
	Dir string
	// MaxAge is how long task records and artifacts are kept.
	MaxAge time.Duration
	// CleanupInterval is how often the janitor sweeps expired tasks.
	CleanupInterval time.Duration
}

type RenderConfig struct {
	// SettleDelay is the extra wait after network idle before printing,
	// giving photos time to finish decoding.
	SettleDelay time.Duration
	// Timeout bounds one whole render call.
	Timeout time.Duration
}

type AuthConfig struct {
	Username string
	Password string
	// SessionSecret signs session tokens. A random secret is generated at
	// startup when empty, which invalidates sessions across restarts.
	SessionSecret string
	SessionTTL    time.Duration
}

// envStr reads an environment variable, falling back to a default when unset
// or empty.
func envStr(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envDuration reads an environment variable and parses it as a positive
// time.Duration ("500ms", "1h"). Returns the default value if the env var is
// unset, empty, or invalid.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envStr("HOST", "0.0.0.0"),
			Port: envInt("PORT", 8080),
		},
		Storage: StorageConfig{
			Backend:    envStr("STORAGE_BACKEND", "memory"),
			SQLitePath: envStr("SQLITE_PATH", "albumpress.db"),
		},
		Export: ExportConfig{
			Dir:             envStr("EXPORT_DIR", "exports"),
			MaxAge:          envDuration("EXPORT_MAX_AGE", 24*time.Hour),
			CleanupInterval: envDuration("EXPORT_CLEANUP_INTERVAL", time.Hour),
		},
		Render: RenderConfig{
			SettleDelay: envDuration("RENDER_SETTLE_DELAY", 500*time.Millisecond),
			Timeout:     envDuration("RENDER_TIMEOUT", 60*time.Second),
		},
		Auth: AuthConfig{
			Username:      envStr("AUTH_USERNAME", "admin"),
			Password:      os.Getenv("AUTH_PASSWORD"),
			SessionSecret: os.Getenv("SESSION_SECRET"),
			SessionTTL:    envDuration("SESSION_TTL", 12*time.Hour),
		},
	}
}
