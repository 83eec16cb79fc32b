// Package config loads the application configuration from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "NUTRIGO"

// Cache backends.
const (
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
)

// Auth sources.
const (
	AuthLocal = "local"
	AuthOIDC  = "oidc"
)

type Config struct {
	App   AppConfig
	Cache CacheConfig
	DB    DBConfig
	OIDC  OIDCConfig
}

// Load reads the configuration from NUTRIGO_* environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Addr      string `envconfig:"NUTRIGO_ADDR" default:":8080"`
	WebDir    string `envconfig:"NUTRIGO_WEB_DIR" default:"web"`
	LogLevel  string `envconfig:"NUTRIGO_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"NUTRIGO_LOG_FORMAT" default:"console"`
	Timezone  string `envconfig:"NUTRIGO_TIMEZONE"`
	Auth      string `envconfig:"NUTRIGO_AUTH_SOURCE" default:"local"`
}

type CacheConfig struct {
	Backend       string `envconfig:"NUTRIGO_CACHE_BACKEND" default:"sqlite"`
	SQLitePath    string `envconfig:"NUTRIGO_CACHE_SQLITE_PATH" default:"data/nutrigo.db"`
	RedisAddr     string `envconfig:"NUTRIGO_CACHE_REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"NUTRIGO_CACHE_REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"NUTRIGO_CACHE_REDIS_DB" default:"0"`
}

type DBConfig struct {
	// DSN of the profile document store. Empty keeps profiles in memory,
	// which is enough for a single-device install.
	DSN string `envconfig:"NUTRIGO_DB_DSN"`
}

type OIDCConfig struct {
	IssuerURL    string `envconfig:"NUTRIGO_OIDC_ISSUER_URL"`
	ClientID     string `envconfig:"NUTRIGO_OIDC_CLIENT_ID"`
	ClientSecret string `envconfig:"NUTRIGO_OIDC_CLIENT_SECRET"`
	RedirectURL  string `envconfig:"NUTRIGO_OIDC_REDIRECT_URL"`
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Cache.Backend) {
	case CacheSQLite, CacheRedis:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	switch strings.ToLower(c.App.Auth) {
	case AuthLocal:
	case AuthOIDC:
		if c.OIDC.IssuerURL == "" || c.OIDC.ClientID == "" {
			return fmt.Errorf("oidc auth requires NUTRIGO_OIDC_ISSUER_URL and NUTRIGO_OIDC_CLIENT_ID")
		}
	default:
		return fmt.Errorf("unknown auth source %q", c.App.Auth)
	}
	return nil
}
