package infra

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"giftshop/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	for _, k := range []string{"PORT", "GIFTSHOP_ADDR", "GIFTSHOP_LOG_LEVEL", "GIFTSHOP_JOURNAL_PATH", "GIFTSHOP_CONTENT_PATH"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig_IsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestLoadConfig_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  addr: ":9000"
session:
  idle_ttl_minutes: 30
logging:
  level: debug
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("expected addr :9000, got %s", cfg.Server.Addr)
	}
	if cfg.Session.IdleTTLMinutes != 30 {
		t.Errorf("expected ttl 30, got %d", cfg.Session.IdleTTLMinutes)
	}
	// Unset keys keep their defaults
	if cfg.Session.CookieName != "giftshop_session" {
		t.Errorf("expected default cookie name, got %q", cfg.Session.CookieName)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %s", cfg.Logging.Level)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	clearEnv(t)
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, domain.ErrConfigNotFound) {
		t.Errorf("expected ErrConfigNotFound, got %v", err)
	}

	cfg, err := LoadConfigOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfigOrDefault failed: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr, got %s", cfg.Server.Addr)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")
	t.Setenv("GIFTSHOP_LOG_LEVEL", "WARN")
	t.Setenv("GIFTSHOP_JOURNAL_PATH", "/tmp/j.db")
	t.Setenv("GIFTSHOP_CONTENT_PATH", "content.yaml")

	cfg, err := LoadConfig(writeConfig(t, "app:\n  name: test\n"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("expected :7000 from PORT, got %s", cfg.Server.Addr)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected warn, got %s", cfg.Logging.Level)
	}
	if !cfg.Journal.Enabled || cfg.Journal.Path != "/tmp/j.db" {
		t.Errorf("journal env not applied: %+v", cfg.Journal)
	}
	if cfg.Content.Path != "content.yaml" {
		t.Errorf("content env not applied: %q", cfg.Content.Path)
	}

	// GIFTSHOP_ADDR wins over PORT
	t.Setenv("GIFTSHOP_ADDR", "127.0.0.1:5000")
	cfg, _ = LoadConfig(writeConfig(t, "app:\n  name: test\n"))
	if cfg.Server.Addr != "127.0.0.1:5000" {
		t.Errorf("expected GIFTSHOP_ADDR to win, got %s", cfg.Server.Addr)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"empty cookie", func(c *Config) { c.Session.CookieName = "" }, "session.cookie_name"},
		{"negative ttl", func(c *Config) { c.Session.IdleTTLMinutes = -1 }, "session.idle_ttl_minutes"},
		{"journal without path", func(c *Config) { c.Journal.Enabled = true }, "journal.path"},
		{"hero without width", func(c *Config) { c.Assets.HeroSource = "hero.png"; c.Assets.HeroWidth = 0 }, "assets.hero_width"},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			var cerr *domain.ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cerr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, cerr.Field)
			}
		})
	}
}

func TestLoadConfig_InvalidWrapsConfigError(t *testing.T) {
	clearEnv(t)
	_, err := LoadConfig(writeConfig(t, "logging:\n  level: loud\n"))
	var cerr *domain.ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected wrapped ConfigError, got %v", err)
	}
}
