// Package config loads tooldex configuration from YAML with environment
// variable overrides. A .env file is loaded first when present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	defaultServiceName  = "tooldex"
	defaultVersion      = "0.1.0"
	defaultServicePort  = 8094
	defaultLoggingLevel = "info"

	defaultDBHost    = "localhost"
	defaultDBPort    = 5432
	defaultDBName    = "tooldex"
	defaultDBUser    = "postgres"
	defaultDBSSLMode = "disable"

	defaultRedisAddr     = "localhost:6379"
	defaultSearchCacheS  = 300
	defaultSearchIndex   = "tooldex-tools"
	defaultElasticsearch = "http://localhost:9200"

	defaultMaxRedirectsPerMinute = 30
	defaultWindowSeconds         = 60

	defaultClickBufferSize = 1000
	defaultFlushThreshold  = 200
	defaultFlushIntervalS  = 2
)

// Config holds the application configuration.
type Config struct {
	Service       ServiceConfig       `yaml:"service"`
	Auth          AuthConfig          `yaml:"auth"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Clicks        ClicksConfig        `yaml:"clicks"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `yaml:"port"`
	Debug   bool   `yaml:"debug"`
}

// AuthConfig holds identity-provider and authorization configuration.
type AuthConfig struct {
	// JWTSecret verifies bearer tokens. Required: every admin operation
	// depends on token verification.
	JWTSecret string `yaml:"jwt_secret"`
	// AdminEmails is the comma-separated allow-list of administrator
	// email addresses.
	AdminEmails string `yaml:"admin_emails"`
}

// AdminEmailList splits the configured allow-list into its entries.
// Normalization is the allow-list's job, not the config's.
func (a *AuthConfig) AdminEmailList() []string {
	if a.AdminEmails == "" {
		return nil
	}
	return strings.Split(a.AdminEmails, ",")
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// MigrateURL returns the PostgreSQL URL used by golang-migrate.
func (d *DatabaseConfig) MigrateURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

// RedisConfig holds Redis configuration for the search payload cache.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// ElasticsearchConfig holds the search index configuration.
type ElasticsearchConfig struct {
	URL   string `yaml:"url"`
	Index string `yaml:"index"`
}

// RateLimitConfig limits outbound redirects per client IP.
type RateLimitConfig struct {
	MaxRedirectsPerMinute int `yaml:"max_redirects_per_minute"`
	WindowSeconds         int `yaml:"window_seconds"`
}

// ClicksConfig tunes the buffered click-event writer.
type ClicksConfig struct {
	BufferSize     int           `yaml:"buffer_size"`
	FlushInterval  time.Duration `yaml:"flush_interval"`
	FlushThreshold int           `yaml:"flush_threshold"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads the YAML config at path, applies defaults, then applies
// environment variable overrides (env always wins). A missing config file
// is not an error; defaults plus environment cover it.
func Load(path string) (*Config, error) {
	// .env is optional and never overrides an already-set variable.
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if unmarshalErr := yaml.Unmarshal(data, &cfg); unmarshalErr != nil {
			return nil, fmt.Errorf("parse config: %w", unmarshalErr)
		}
	case os.IsNotExist(err):
		// fall through to defaults
	default:
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	setDefaults(&cfg)
	overrideFromEnv(&cfg)

	return &cfg, nil
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	svc := &cfg.Service
	if svc.Name == "" {
		svc.Name = defaultServiceName
	}
	if svc.Version == "" {
		svc.Version = defaultVersion
	}
	if svc.Port == 0 {
		svc.Port = defaultServicePort
	}

	db := &cfg.Database
	if db.Host == "" {
		db.Host = defaultDBHost
	}
	if db.Port == 0 {
		db.Port = defaultDBPort
	}
	if db.User == "" {
		db.User = defaultDBUser
	}
	if db.Database == "" {
		db.Database = defaultDBName
	}
	if db.SSLMode == "" {
		db.SSLMode = defaultDBSSLMode
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = defaultRedisAddr
	}
	if cfg.Redis.CacheTTL == 0 {
		cfg.Redis.CacheTTL = defaultSearchCacheS * time.Second
	}

	if cfg.Elasticsearch.URL == "" {
		cfg.Elasticsearch.URL = defaultElasticsearch
	}
	if cfg.Elasticsearch.Index == "" {
		cfg.Elasticsearch.Index = defaultSearchIndex
	}

	if cfg.RateLimit.MaxRedirectsPerMinute == 0 {
		cfg.RateLimit.MaxRedirectsPerMinute = defaultMaxRedirectsPerMinute
	}
	if cfg.RateLimit.WindowSeconds == 0 {
		cfg.RateLimit.WindowSeconds = defaultWindowSeconds
	}

	if cfg.Clicks.BufferSize == 0 {
		cfg.Clicks.BufferSize = defaultClickBufferSize
	}
	if cfg.Clicks.FlushInterval == 0 {
		cfg.Clicks.FlushInterval = defaultFlushIntervalS * time.Second
	}
	if cfg.Clicks.FlushThreshold == 0 {
		cfg.Clicks.FlushThreshold = defaultFlushThreshold
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultLoggingLevel
	}
}

// overrideFromEnv applies environment variable overrides.
func overrideFromEnv(cfg *Config) {
	setString(&cfg.Auth.JWTSecret, "AUTH_JWT_SECRET")
	setString(&cfg.Auth.AdminEmails, "ADMIN_EMAILS")

	setInt(&cfg.Service.Port, "TOOLDEX_PORT")
	if v := os.Getenv("APP_DEBUG"); v != "" {
		cfg.Service.Debug = parseBool(v)
	}

	setString(&cfg.Database.Host, "POSTGRES_TOOLDEX_HOST")
	setInt(&cfg.Database.Port, "POSTGRES_TOOLDEX_PORT")
	setString(&cfg.Database.User, "POSTGRES_TOOLDEX_USER")
	setString(&cfg.Database.Password, "POSTGRES_TOOLDEX_PASSWORD")
	setString(&cfg.Database.Database, "POSTGRES_TOOLDEX_DB")
	setString(&cfg.Database.SSLMode, "POSTGRES_TOOLDEX_SSLMODE")

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "REDIS_DB")

	setString(&cfg.Elasticsearch.URL, "ELASTICSEARCH_URL")
	setString(&cfg.Elasticsearch.Index, "ELASTICSEARCH_INDEX")

	setString(&cfg.Logging.Level, "LOG_LEVEL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes"
}

// Validate validates the configuration. A missing JWT secret is fatal:
// nothing that verifies credentials or mutates claims can run without it.
func (c *Config) Validate() error {
	if c.Service.Port <= 0 || c.Service.Port > 65535 {
		return fmt.Errorf("service.port: %d is out of range", c.Service.Port)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	return nil
}
