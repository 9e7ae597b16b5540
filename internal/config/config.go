package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	Env              string        `yaml:"env"`
	ServerPort       int           `yaml:"port"`
	StoreDriver      string        `yaml:"store_driver"`
	DataDir          string        `yaml:"data_dir"`      // JSON collections
	DatabasePath     string        `yaml:"database_path"` // SQLite file
	JWTSecret        string        `yaml:"jwt_secret"`
	TokenTTL         time.Duration `yaml:"token_ttl"`
	InternalAPIKey   string        `yaml:"internal_api_key"`
	BcryptCost       int           `yaml:"bcrypt_cost"`
	AllowedOrigins   []string      `yaml:"cors_allowed_origins"`
	SummaryCron      string        `yaml:"summary_cron"` // empty disables the daily job
	SummaryOutputDir string        `yaml:"summary_output_dir"`
	LogLevel         string        `yaml:"log_level"`
	LogFormat        string        `yaml:"log_format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Env:            "development",
		ServerPort:     8080,
		StoreDriver:    DriverJSON,
		DataDir:        "./data",
		DatabasePath:   "./pulse.db",
		TokenTTL:       7 * 24 * time.Hour,
		BcryptCost:     10,
		AllowedOrigins: []string{"*"},
		SummaryCron:    "0 8 * * *",
		LogLevel:       "info",
		LogFormat:      "console",
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (or PULSE_CONFIG when path is empty), then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getEnv("PULSE_CONFIG", "")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	c.Env = getEnv("APP_ENV", c.Env)
	c.StoreDriver = getEnv("STORE_DRIVER", c.StoreDriver)
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.DatabasePath = getEnv("DATABASE_PATH", c.DatabasePath)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.InternalAPIKey = getEnv("INTERNAL_API_KEY", c.InternalAPIKey)
	c.SummaryCron = getEnv("SUMMARY_CRON", c.SummaryCron)
	c.SummaryOutputDir = getEnv("SUMMARY_OUTPUT_DIR", c.SummaryOutputDir)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)

	if v, ok := os.LookupEnv("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.ServerPort = port
	}
	if v, ok := os.LookupEnv("TOKEN_TTL"); ok {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TOKEN_TTL %q: %w", v, err)
		}
		c.TokenTTL = ttl
	}
	if v, ok := os.LookupEnv("BCRYPT_COST"); ok {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BCRYPT_COST %q: %w", v, err)
		}
		c.BcryptCost = cost
	}
	if v, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok {
		c.AllowedOrigins = splitList(v)
	}
	return nil
}

// Validate checks that the configuration can run a server.
func (c *Config) Validate() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("port %d out of range", c.ServerPort)
	}
	switch c.StoreDriver {
	case DriverJSON, DriverSQLite:
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive, got %s", c.TokenTTL)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost %d out of range", c.BcryptCost)
	}
	if c.SummaryCron != "" {
		if _, err := cron.ParseStandard(c.SummaryCron); err != nil {
			return fmt.Errorf("invalid SUMMARY_CRON %q: %w", c.SummaryCron, err)
		}
	}
	return nil
}

// IsProduction reports whether the server runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
