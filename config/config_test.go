package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsAndEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ServerPort != 9090 {
		t.Errorf("ServerPort = %d, want 9090", cfg.ServerPort)
	}
	if cfg.DatabaseDriver != "sqlite3" || cfg.DatabaseURL != "mytournaments.db" {
		t.Errorf("unexpected database defaults: %s %s", cfg.DatabaseDriver, cfg.DatabaseURL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example.com" {
		t.Errorf("unexpected origins: %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development environment by default")
	}
}

func TestLoadYAMLOverriddenByEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.yaml")
	yaml := `
environment: production
log_level: warn
server_port: 7000
database_driver: postgres
database_url: postgres://localhost/mytournaments?sslmode=disable
jwt_ttl: 2h
r2:
  bucket_name: logos
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("SERVER_PORT", "7100")
	t.Setenv("R2_ACCESS_KEY_ID", "key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Environment != EnvProduction || cfg.LogLevel != "warn" {
		t.Errorf("yaml values not applied: %+v", cfg)
	}
	if cfg.ServerPort != 7100 {
		t.Errorf("env should override yaml, ServerPort = %d", cfg.ServerPort)
	}
	if cfg.JWTTTL != 2*time.Hour {
		t.Errorf("JWTTTL = %v, want 2h", cfg.JWTTTL)
	}
	if cfg.R2.BucketName != "logos" || cfg.R2.AccessKeyID != "key" {
		t.Errorf("unexpected r2 config: %+v", cfg.R2)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing jwt secret", map[string]string{"JWT_SECRET_KEY": ""}},
		{"bad port", map[string]string{"SERVER_PORT": "abc"}},
		{"port out of range", map[string]string{"SERVER_PORT": "70000"}},
		{"unknown driver", map[string]string{"DATABASE_DRIVER": "mysql"}},
		{"bad rate limit", map[string]string{"RATE_LIMIT_PER_MINUTE": "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("CONFIG_FILE", "")
			t.Setenv("JWT_SECRET_KEY", "secret")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
