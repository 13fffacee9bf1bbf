package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	DBDriver      string `envconfig:"DB_DRIVER" default:"postgres"`
	DBDSN         string `envconfig:"DB_DSN"`
	ServerPort    string `envconfig:"SERVER_PORT" default:"8080"`
	SessionSecret string `envconfig:"SESSION_SECRET" required:"true"`

	JWTSecret       string `envconfig:"JWT_SECRET" required:"true"`
	JWTExpiresHours int    `envconfig:"JWT_EXPIRES_HOURS" default:"168"`

	// дефолтный админ, создаётся если в базе нет ни одного
	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@platform.com"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"Admin@123"`
	AdminName     string `envconfig:"ADMIN_NAME" default:"System Administrator Account"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is not set")
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	if cfg.JWTExpiresHours <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRES_HOURS must be positive")
	}

	return &cfg, nil
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpiresHours) * time.Hour
}
