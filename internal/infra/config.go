package infra

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"giftshop/internal/domain"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is where the binary looks for its config file.
	DefaultConfigPath = "configs/config.yaml"
)

// Config holds every application setting.
// After LoadConfig reads the file, environment variables override it.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Server struct {
		Addr               string `yaml:"addr"`
		PprofAddr          string `yaml:"pprof_addr"`
		ReadTimeoutSec     int    `yaml:"read_timeout_sec"`
		WriteTimeoutSec    int    `yaml:"write_timeout_sec"`
		RequestTimeoutSec  int    `yaml:"request_timeout_sec"`
		ShutdownTimeoutSec int    `yaml:"shutdown_timeout_sec"`
	} `yaml:"server"`

	Session struct {
		CookieName     string `yaml:"cookie_name"`
		IdleTTLMinutes int    `yaml:"idle_ttl_minutes"`
		InboxSize      int    `yaml:"inbox_size"`
	} `yaml:"session"`

	Journal struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"journal"`

	Content struct {
		Path string `yaml:"path"` // empty: embedded default
	} `yaml:"content"`

	Assets struct {
		Dir        string `yaml:"dir"`
		HeroSource string `yaml:"hero_source"`
		HeroWidth  int    `yaml:"hero_width"`
	} `yaml:"assets"`

	Logging struct {
		Level string `yaml:"level"`
		Dir   string `yaml:"dir"`
	} `yaml:"logging"`
}

// DefaultConfig returns the built-in settings used when no file exists.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.App.Name = "Gift Card Storefront"
	cfg.App.Version = "0.1.0"

	cfg.Server.Addr = ":8080"
	cfg.Server.PprofAddr = "localhost:6060"
	cfg.Server.ReadTimeoutSec = 10
	cfg.Server.WriteTimeoutSec = 15
	cfg.Server.RequestTimeoutSec = 10
	cfg.Server.ShutdownTimeoutSec = 5

	cfg.Session.CookieName = "giftshop_session"
	cfg.Session.IdleTTLMinutes = 120
	cfg.Session.InboxSize = 256

	cfg.Assets.Dir = "assets"
	cfg.Assets.HeroWidth = 1200

	cfg.Logging.Level = "info"
	cfg.Logging.Dir = "logs"
	return cfg
}

// LoadConfig reads and parses the config file on top of DefaultConfig.
// A missing file yields an error wrapping domain.ErrConfigNotFound.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, path)
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	// Environment overrides win over the file
	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadConfigOrDefault is LoadConfig falling back to defaults (plus env
// overrides) when the file does not exist.
func LoadConfigOrDefault(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, domain.ErrConfigNotFound) {
		return nil, err
	}

	cfg = DefaultConfig()
	overrideWithEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return domain.NewConfigError("server.addr", errors.New("must not be empty"))
	}
	if c.Server.ReadTimeoutSec < 0 || c.Server.WriteTimeoutSec < 0 || c.Server.RequestTimeoutSec < 0 {
		return domain.NewConfigError("server.timeouts", errors.New("must not be negative"))
	}
	if c.Session.CookieName == "" {
		return domain.NewConfigError("session.cookie_name", errors.New("must not be empty"))
	}
	if c.Session.IdleTTLMinutes < 0 {
		return domain.NewConfigError("session.idle_ttl_minutes", errors.New("must not be negative"))
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		return domain.NewConfigError("journal.path", errors.New("required when the journal is enabled"))
	}
	if c.Assets.HeroSource != "" && c.Assets.HeroWidth <= 0 {
		return domain.NewConfigError("assets.hero_width", errors.New("must be positive"))
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return domain.NewConfigError("logging.level", fmt.Errorf("unknown level %q", c.Logging.Level))
	}

	return nil
}

// overrideWithEnv overwrites settings when the matching variable is set.
func overrideWithEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	if addr := os.Getenv("GIFTSHOP_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if level := os.Getenv("GIFTSHOP_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}
	if path := os.Getenv("GIFTSHOP_JOURNAL_PATH"); path != "" {
		cfg.Journal.Path = path
		cfg.Journal.Enabled = true
	}
	if path := os.Getenv("GIFTSHOP_CONTENT_PATH"); path != "" {
		cfg.Content.Path = path
	}
}
