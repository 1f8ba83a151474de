package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Service.Name != "tooldex" {
		t.Errorf("service.name: got %q", cfg.Service.Name)
	}
	if cfg.Service.Port != 8094 {
		t.Errorf("service.port: got %d", cfg.Service.Port)
	}
	if cfg.Database.Host != "localhost" || cfg.Database.Port != 5432 {
		t.Errorf("database defaults: got %s:%d", cfg.Database.Host, cfg.Database.Port)
	}
	if cfg.Redis.CacheTTL != 300*time.Second {
		t.Errorf("redis.cache_ttl: got %s", cfg.Redis.CacheTTL)
	}
	if cfg.RateLimit.MaxRedirectsPerMinute != 30 {
		t.Errorf("rate_limit.max_redirects_per_minute: got %d", cfg.RateLimit.MaxRedirectsPerMinute)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("logging.level: got %q", cfg.Logging.Level)
	}
}

func TestLoad_FileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := []byte(`
service:
  name: tooldex-staging
  port: 9000
auth:
  jwt_secret: file-secret
  admin_emails: "a@x.com,b@x.com"
database:
  host: db.internal
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Service.Name != "tooldex-staging" {
		t.Errorf("service.name: got %q", cfg.Service.Name)
	}
	if cfg.Service.Port != 9000 {
		t.Errorf("service.port: got %d", cfg.Service.Port)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("database.host: got %q", cfg.Database.Host)
	}
	// Unset fields still receive defaults.
	if cfg.Database.Port != 5432 {
		t.Errorf("database.port: got %d", cfg.Database.Port)
	}
	if got := cfg.Auth.AdminEmailList(); len(got) != 2 {
		t.Errorf("admin email list: got %v", got)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := []byte(`
auth:
  jwt_secret: file-secret
service:
  port: 9000
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("AUTH_JWT_SECRET", "env-secret")
	t.Setenv("TOOLDEX_PORT", "9100")
	t.Setenv("POSTGRES_TOOLDEX_HOST", "env-db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Auth.JWTSecret != "env-secret" {
		t.Errorf("auth.jwt_secret: got %q", cfg.Auth.JWTSecret)
	}
	if cfg.Service.Port != 9100 {
		t.Errorf("service.port: got %d", cfg.Service.Port)
	}
	if cfg.Database.Host != "env-db" {
		t.Errorf("database.host: got %q", cfg.Database.Host)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing jwt secret",
			mutate:  func(c *Config) { c.Auth.JWTSecret = "" },
			wantErr: true,
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Service.Port = 70000 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			setDefaults(cfg)
			cfg.Auth.JWTSecret = "secret"
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := &DatabaseConfig{
		Host: "h", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable",
	}

	want := "host=h port=5432 user=u password=p dbname=d sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN: got %q, want %q", got, want)
	}

	wantURL := "postgres://u:p@h:5432/d?sslmode=disable"
	if got := d.MigrateURL(); got != wantURL {
		t.Errorf("MigrateURL: got %q, want %q", got, wantURL)
	}
}
