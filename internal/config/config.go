package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config defines SDK and CLI configuration.
type Config struct {
	Registry RegistryConfig `yaml:"registry"`
	Links    LinksConfig    `yaml:"links"`
	DB       DBConfig       `yaml:"db"`
	Log      LogConfig      `yaml:"log"`
}

type RegistryConfig struct {
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
}

type LinksConfig struct {
	Schemes         []string `yaml:"schemes"`
	Domains         []string `yaml:"domains"`
	AutoHandle      bool     `yaml:"auto_handle"`
	DeferredEnabled bool     `yaml:"deferred_enabled"`
	DeferredMode    string   `yaml:"deferred_mode"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Registry: RegistryConfig{
			BaseURL:     "https://applinks.com",
			HTTPTimeout: 20 * time.Second,
		},
		Links: LinksConfig{
			AutoHandle:      true,
			DeferredEnabled: true,
			DeferredMode:    "visit",
		},
		DB: DBConfig{
			Path: "applinks.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from defaults, an optional .env file, an optional
// YAML file and environment variables, in that order.
func Load() (Config, error) {
	cfg := Default()

	envFile := os.Getenv("APPLINKS_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	if path := os.Getenv("APPLINKS_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("APPLINKS_BASE_URL"); v != "" {
		cfg.Registry.BaseURL = v
	}
	if v := os.Getenv("APPLINKS_API_KEY"); v != "" {
		cfg.Registry.APIKey = v
	}
	if v := os.Getenv("APPLINKS_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid APPLINKS_HTTP_TIMEOUT: %w", err)
		}
		cfg.Registry.HTTPTimeout = d
	}
	if v := os.Getenv("APPLINKS_SCHEMES"); v != "" {
		cfg.Links.Schemes = splitList(v)
	}
	if v := os.Getenv("APPLINKS_DOMAINS"); v != "" {
		cfg.Links.Domains = splitList(v)
	}
	if v := os.Getenv("APPLINKS_AUTO_HANDLE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid APPLINKS_AUTO_HANDLE: %w", err)
		}
		cfg.Links.AutoHandle = b
	}
	if v := os.Getenv("APPLINKS_DEFERRED_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid APPLINKS_DEFERRED_ENABLED: %w", err)
		}
		cfg.Links.DeferredEnabled = b
	}
	if v := os.Getenv("APPLINKS_DEFERRED_MODE"); v != "" {
		cfg.Links.DeferredMode = v
	}
	if v := os.Getenv("APPLINKS_DB_PATH"); v != "" {
		cfg.DB.Path = v
	}
	if v := os.Getenv("APPLINKS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// ParseLevel maps a configured level name to a slog level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
