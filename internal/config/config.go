// Package config reads service configuration from the environment. A
// .env file in the working directory is loaded first when present, so
// local runs do not need exported variables.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL      string
	Port             string
	BindAddr         string
	Workers          int
	PushoverAppToken string
	PushoverUserKey  string
}

// Load reads configuration from environment variables
func Load() *Config {
	// Missing .env is the normal case in production
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		Port:             os.Getenv("PORT"),
		BindAddr:         os.Getenv("BIND_ADDR"),
		PushoverAppToken: os.Getenv("PUSHOVER_APP_TOKEN"),
		PushoverUserKey:  os.Getenv("PUSHOVER_USER_KEY"),
	}

	if cfg.Port == "" {
		cfg.Port = "8000"
	}
	if cfg.BindAddr == "" {
		cfg.BindAddr = "0.0.0.0"
	}
	if v := os.Getenv("WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}

	return cfg
}

// DemoMode reports whether the service runs without a real database.
func (c *Config) DemoMode() bool {
	return c.DatabaseURL == ""
}
