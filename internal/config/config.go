package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	POS      POSConfig
}

// ServerConfig deliberately has no write timeout: the session event
// stream keeps its response open indefinitely.
type ServerConfig struct {
	Addr        string
	ReadTimeout time.Duration
	IdleTimeout time.Duration
}

type DatabaseConfig struct {
	DSN string
}

type POSConfig struct {
	// DefaultPasscode is only used the very first time the till starts;
	// once a settings record exists the stored passcode wins.
	DefaultPasscode string
	ArchiveYearTag  string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        getEnv("LISTEN_ADDR", ":8080"),
			ReadTimeout: time.Duration(getEnvInt("READ_TIMEOUT_SECONDS", 15)) * time.Second,
			IdleTimeout: time.Duration(getEnvInt("IDLE_TIMEOUT_SECONDS", 60)) * time.Second,
		},
		Database: DatabaseConfig{
			DSN: getEnv("SQLITE_DSN", "file:kasse.db?cache=shared"),
		},
		POS: POSConfig{
			DefaultPasscode: getEnv("DEFAULT_PASSCODE", "1234"),
			ArchiveYearTag:  getEnv("ARCHIVE_YEAR_TAG", "2026"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
