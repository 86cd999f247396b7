// Package config loads CLI configuration. Precedence, highest first:
// flags > ODDSGRID_* env vars > config file > defaults. A .env file in the
// working directory is read into the environment first.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	EnvPrefix   = "ODDSGRID_"
	DefaultFile = "oddsgrid.yaml"
)

type Config struct {
	BaseURL    string        `koanf:"base_url"`
	APIKey     string        `koanf:"api_key"`
	PageSize   int           `koanf:"page_size"`
	MaxRetries int           `koanf:"max_retries"`
	RetryDelay time.Duration `koanf:"retry_delay"`
	KeyPrefix  string        `koanf:"key_prefix"`
	Coalesce   bool          `koanf:"coalesce"`
	Cache      CacheConfig   `koanf:"cache"`
	Log        LogConfig     `koanf:"log"`
}

type CacheConfig struct {
	Provider       string        `koanf:"provider"`
	Codec          string        `koanf:"codec"`
	TTL            time.Duration `koanf:"ttl"`
	Namespace      string        `koanf:"namespace"`
	RedisURL       string        `koanf:"redis_url"`
	MaxDecodeBytes int           `koanf:"max_decode_bytes"`
	Disabled       bool          `koanf:"disabled"`
}

type LogConfig struct {
	Level   string `koanf:"level"`
	Backend string `koanf:"backend"` // zap | logrus | slog
}

func defaults() map[string]any {
	return map[string]any{
		"page_size":              1000,
		"max_retries":            3,
		"retry_delay":            "1s",
		"key_prefix":             "cbb_",
		"coalesce":               false,
		"cache.provider":         "ristretto",
		"cache.codec":            "json",
		"cache.ttl":              "5m",
		"cache.namespace":        "odds",
		"cache.max_decode_bytes": 0,
		"cache.disabled":         false,
		"log.level":              "warn",
		"log.backend":            "zap",
	}
}

// flagKeys maps flag names to config keys where they differ.
var flagKeys = map[string]string{
	"base-url":  "base_url",
	"api-key":   "api_key",
	"provider":  "cache.provider",
	"codec":     "cache.codec",
	"ttl":       "cache.ttl",
	"redis-url": "cache.redis_url",
	"no-cache":  "cache.disabled",
	"log-level": "log.level",
	"logger":    "log.backend",
}

// BindFlags registers the persistent flags Load understands.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default: ./"+DefaultFile+")")
	fs.String("base-url", "", "REST API base URL")
	fs.String("api-key", "", "REST API key")
	fs.String("provider", "", "cache provider (ristretto|bigcache|redis)")
	fs.String("codec", "", "cache codec (json|cbor|msgpack|protobuf)")
	fs.Duration("ttl", 0, "cache TTL")
	fs.String("redis-url", "", "redis URL for the redis provider")
	fs.Bool("no-cache", false, "disable the result cache")
	fs.String("log-level", "", "log level (debug|info|warn|error)")
	fs.String("logger", "", "log backend (zap|logrus|slog)")
}

// Load builds the config. cfgFile may be empty; ./oddsgrid.yaml is used if present.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if cfgFile == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			cfgFile = DefaultFile
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// ODDSGRID_CACHE__REDIS_URL -> cache.redis_url
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values a session cannot start without.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url is required (flag --base-url or ODDSGRID_BASE_URL)")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("max_retries must be positive, got %d", c.MaxRetries)
	}
	switch strings.ToLower(c.Log.Backend) {
	case "zap", "logrus", "slog":
	default:
		return fmt.Errorf("unknown log backend %q", c.Log.Backend)
	}
	if strings.EqualFold(c.Cache.Provider, "redis") && c.Cache.RedisURL == "" {
		return errors.New("cache.redis_url is required for the redis provider")
	}
	return nil
}
