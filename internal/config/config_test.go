package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("PORT")
	os.Unsetenv("STORAGE_BACKEND")
	os.Unsetenv("EXPORT_MAX_AGE")
	os.Unsetenv("RENDER_TIMEOUT")

	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("expected default backend 'memory', got '%s'", cfg.Storage.Backend)
	}
	if cfg.Export.MaxAge != 24*time.Hour {
		t.Errorf("expected default max age 24h, got %s", cfg.Export.MaxAge)
	}
	if cfg.Render.SettleDelay != 500*time.Millisecond {
		t.Errorf("expected default settle delay 500ms, got %s", cfg.Render.SettleDelay)
	}
	if cfg.Render.Timeout != 60*time.Second {
		t.Errorf("expected default render timeout 60s, got %s", cfg.Render.Timeout)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", "/data/albums.db")
	t.Setenv("EXPORT_DIR", "/data/exports")
	t.Setenv("RENDER_SETTLE_DELAY", "250ms")
	t.Setenv("EXPORT_MAX_AGE", "1h")

	cfg := Load()

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("expected backend 'sqlite', got '%s'", cfg.Storage.Backend)
	}
	if cfg.Storage.SQLitePath != "/data/albums.db" {
		t.Errorf("expected sqlite path '/data/albums.db', got '%s'", cfg.Storage.SQLitePath)
	}
	if cfg.Export.Dir != "/data/exports" {
		t.Errorf("expected export dir '/data/exports', got '%s'", cfg.Export.Dir)
	}
	if cfg.Render.SettleDelay != 250*time.Millisecond {
		t.Errorf("expected settle delay 250ms, got %s", cfg.Render.SettleDelay)
	}
	if cfg.Export.MaxAge != time.Hour {
		t.Errorf("expected max age 1h, got %s", cfg.Export.MaxAge)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("invalid port must fall back to default, got %d", cfg.Server.Port)
	}
}

func TestLoad_NegativeDuration(t *testing.T) {
	t.Setenv("RENDER_TIMEOUT", "-5s")

	cfg := Load()

	if cfg.Render.Timeout != 60*time.Second {
		t.Errorf("negative duration must fall back to default, got %s", cfg.Render.Timeout)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("EXPORT_CLEANUP_INTERVAL", "soon")

	cfg := Load()

	if cfg.Export.CleanupInterval != time.Hour {
		t.Errorf("invalid duration must fall back to default, got %s", cfg.Export.CleanupInterval)
	}
}

func TestLoad_AuthConfig(t *testing.T) {
	t.Setenv("AUTH_USERNAME", "editor")
	t.Setenv("AUTH_PASSWORD", "s3cret")
	t.Setenv("SESSION_TTL", "2h")

	cfg := Load()

	if cfg.Auth.Username != "editor" {
		t.Errorf("expected username 'editor', got '%s'", cfg.Auth.Username)
	}
	if cfg.Auth.Password != "s3cret" {
		t.Errorf("expected password 's3cret', got '%s'", cfg.Auth.Password)
	}
	if cfg.Auth.SessionTTL != 2*time.Hour {
		t.Errorf("expected session ttl 2h, got %s", cfg.Auth.SessionTTL)
	}
}
