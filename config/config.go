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

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config хранит все конфигурационные параметры приложения.
// Значения из YAML-файла (CONFIG_FILE) служат значениями по умолчанию,
// переменные окружения их переопределяют.
type Config struct {
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
	ServerPort  int    `yaml:"server_port"`

	DatabaseDriver string        `yaml:"database_driver"`
	DatabaseURL    string        `yaml:"database_url"`
	DBConnTimeout  time.Duration `yaml:"db_conn_timeout"`

	JWTSecretKey string        `yaml:"-"`
	JWTTTL       time.Duration `yaml:"jwt_ttl"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute"`

	NATSURL   string `yaml:"nats_url"`
	NATSToken string `yaml:"-"`

	R2 R2Config `yaml:"r2"`

	StatusSchedule string `yaml:"status_schedule"`
}

type R2Config struct {
	AccountID       string `yaml:"account_id"`
	AccessKeyID     string `yaml:"-"`
	SecretAccessKey string `yaml:"-"`
	BucketName      string `yaml:"bucket_name"`
	PublicBaseURL   string `yaml:"public_base_url"`
}

func defaults() Config {
	return Config{
		Environment:        EnvDevelopment,
		LogLevel:           "info",
		ServerPort:         8080,
		DatabaseDriver:     "sqlite3",
		DatabaseURL:        "mytournaments.db",
		DBConnTimeout:      5 * time.Second,
		JWTTTL:             24 * time.Hour,
		CORSAllowedOrigins: []string{"*"},
		RateLimitPerMinute: 20,
		StatusSchedule:     "*/5 * * * *",
	}
}

// Load загружает конфигурацию: .env (если есть), YAML-файл из CONFIG_FILE (если задан)
// и переменные окружения.
func Load() (*Config, error) {
	// .env не обязателен
	_ = godotenv.Load()

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s environment variable: %w", key, err)
		}
		*dst = n
		return nil
	}

	setString("ENVIRONMENT", &cfg.Environment)
	setString("LOG_LEVEL", &cfg.LogLevel)
	setString("DATABASE_DRIVER", &cfg.DatabaseDriver)
	setString("DATABASE_URL", &cfg.DatabaseURL)
	setString("JWT_SECRET_KEY", &cfg.JWTSecretKey)
	setString("NATS_URL", &cfg.NATSURL)
	setString("NATS_TOKEN", &cfg.NATSToken)
	setString("R2_ACCOUNT_ID", &cfg.R2.AccountID)
	setString("R2_ACCESS_KEY_ID", &cfg.R2.AccessKeyID)
	setString("R2_SECRET_ACCESS_KEY", &cfg.R2.SecretAccessKey)
	setString("R2_BUCKET_NAME", &cfg.R2.BucketName)
	setString("R2_PUBLIC_BASE_URL", &cfg.R2.PublicBaseURL)
	setString("STATUS_SCHEDULE", &cfg.StatusSchedule)

	if err := setInt("SERVER_PORT", &cfg.ServerPort); err != nil {
		return err
	}
	if err := setInt("RATE_LIMIT_PER_MINUTE", &cfg.RateLimitPerMinute); err != nil {
		return err
	}

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORSAllowedOrigins = origins
	}
	return nil
}

func (c *Config) Validate() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	switch c.DatabaseDriver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.DatabaseDriver)
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWTSecretKey == "" {
		return errors.New("JWT_SECRET_KEY environment variable is not set")
	}
	// 0 отключает ограничение
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative, got %d", c.RateLimitPerMinute)
	}
	if c.JWTTTL <= 0 {
		return errors.New("jwt_ttl must be positive")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}
