package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultPath = "configs/config.toml"
	PathEnv     = "ONBOARDING_CONFIG"
)

type Config struct {
	Server struct {
		Host                 string
		ReadTimeout          time.Duration `toml:"-"`
		WriteTimeout         time.Duration `toml:"-"`
		ReadHeaderTimeout    time.Duration `toml:"-"`
		StrReadTimeout       string        `toml:"read_timeout"`
		StrWriteTimeout      string        `toml:"write_timeout"`
		StrReadHeaderTimeout string        `toml:"read_header_timeout"`
	}
	Upstream struct {
		BaseURL    string        `toml:"base_url"`
		Timeout    time.Duration `toml:"-"`
		StrTimeout string        `toml:"timeout"`
	}
	Redis struct {
		RedisAddr     string `toml:"redis_addr"`
		RedisPassword string `toml:"redis_password"`
		RedisDB       int    `toml:"redis_db"`
	}
	Session struct {
		CookieName   string        `toml:"cookie_name"`
		KeyPrefix    string        `toml:"key_prefix"`
		SecureCookie bool          `toml:"secure_cookie"`
		TTL          time.Duration `toml:"-"`
		StrTTL       string        `toml:"ttl"`
	}
	Log struct {
		File  string
		Level string
	}
	CLI struct {
		SessionDir string `toml:"session_dir"`
	}
}

// ResolvePath picks the config file: explicit flag, then $ONBOARDING_CONFIG, then the default.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(PathEnv); env != "" {
		return env
	}

	return DefaultPath
}

func GetConfig(path string, logger *slog.Logger) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("Error read config file", slog.String("path", path), slog.String("error", err.Error()))
		return nil, err
	}

	cfg, err := Parse(string(data))
	if err != nil {
		logger.Error("Error decode config file", slog.String("path", path), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Config is loaded", slog.String("path", path))
	return cfg, nil
}

// Parse decodes TOML and fills defaults for everything but upstream.base_url.
func Parse(data string) (*Config, error) {
	var cfg Config

	if _, err := toml.Decode(data, &cfg); err != nil {
		return nil, err
	}

	var err error
	if cfg.Server.ReadTimeout, err = parseDuration("server.read_timeout", cfg.Server.StrReadTimeout, 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = parseDuration("server.write_timeout", cfg.Server.StrWriteTimeout, 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.Server.ReadHeaderTimeout, err = parseDuration("server.read_header_timeout", cfg.Server.StrReadHeaderTimeout, 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.Upstream.Timeout, err = parseDuration("upstream.timeout", cfg.Upstream.StrTimeout, 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.Session.TTL, err = parseDuration("session.ttl", cfg.Session.StrTTL, 8*time.Hour); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Upstream.BaseURL) == "" {
		return nil, errors.New("upstream.base_url is required")
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = ":8080"
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "onboarding_session"
	}
	if cfg.Session.KeyPrefix == "" {
		cfg.Session.KeyPrefix = "onboarding:session:"
	}
	if cfg.Log.File == "" {
		cfg.Log.File = "server.log"
	}

	return &cfg, nil
}

// LogLevel returns the configured slog level, info when unset.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if c.Log.Level == "" {
		return slog.LevelInfo, nil
	}

	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log.level: %w", err)
	}

	return level, nil
}

func parseDuration(name, value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}

	return d, nil
}
