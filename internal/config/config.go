package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MigrationsPath  string
}

type Config struct {
	App struct {
		Port string
	}
	Postgres PostgresConfig
}

func NewConfig() (*Config, error) {
	// Missing .env is fine in environments configured through real env vars.
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.App.Port = getEnv("APP_PORT", "8080")

	cfg.Postgres.Host = os.Getenv("DB_HOST")
	if cfg.Postgres.Host == "" {
		return nil, fmt.Errorf("config: DB_HOST is required")
	}
	cfg.Postgres.Port = getEnv("DB_PORT", "5432")
	cfg.Postgres.User = os.Getenv("DB_USER")
	if cfg.Postgres.User == "" {
		return nil, fmt.Errorf("config: DB_USER is required")
	}
	cfg.Postgres.Password = os.Getenv("DB_PASSWORD")
	if cfg.Postgres.Password == "" {
		return nil, fmt.Errorf("config: DB_PASSWORD is required")
	}
	cfg.Postgres.DBName = os.Getenv("DB_NAME")
	if cfg.Postgres.DBName == "" {
		return nil, fmt.Errorf("config: DB_NAME is required")
	}
	cfg.Postgres.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Postgres.MaxConns = 10
	cfg.Postgres.MinConns = 2
	cfg.Postgres.MaxConnLifetime = 30 * time.Minute
	cfg.Postgres.MigrationsPath = getEnv("DB_MIGRATIONS_PATH", "migrations")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
