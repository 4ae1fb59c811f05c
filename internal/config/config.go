package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	// Postgres DSN for quote history; history is disabled when empty.
	DatabaseURL string `env:"DATABASE_URL"`
	Port        string `env:"PORT" envDefault:"8080"`
	// Tariff document path; the shipped document is used when empty.
	TariffsPath string `env:"TARIFFS_PATH"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogEncoding string `env:"LOG_ENCODING" envDefault:"json"`

	// Quote history pool
	DBMaxConns         int32         `env:"DB_MAX_CONNS" envDefault:"5"`
	DBMaxConnLifetime  time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"30m"`
	DBMaxConnIdleTime  time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"5m"`
	DBStatementTimeout time.Duration `env:"DB_STATEMENT_TIMEOUT" envDefault:"5s"`
}

// CLI is the environment of the quote command. Flags override it.
type CLI struct {
	TariffsPath string `env:"TARIFFS_PATH"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"warn"`
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadCLI reads the quote command's environment.
func LoadCLI() (CLI, error) {
	var cfg CLI
	if err := env.Parse(&cfg); err != nil {
		return CLI{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := ValidateLogLevel(cfg.LogLevel); err != nil {
		return CLI{}, fmt.Errorf("invalid config: LOG_LEVEL %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if err := ValidateLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL %w", err)
	}
	switch c.LogEncoding {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_ENCODING must be one of: json, console")
	}
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if c.DBMaxConnLifetime <= 0 || c.DBMaxConnIdleTime <= 0 {
		return fmt.Errorf("DB_MAX_CONN_LIFETIME and DB_MAX_CONN_IDLE_TIME must be positive")
	}
	if c.DBStatementTimeout < 0 {
		return fmt.Errorf("DB_STATEMENT_TIMEOUT must be non-negative")
	}
	return nil
}

// ValidateLogLevel accepts debug, info, warn and error.
func ValidateLogLevel(level string) error {
	switch level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("must be one of: debug, info, warn, error (got %q)", level)
	}
}
