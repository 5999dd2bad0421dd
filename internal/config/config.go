package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port           string
	DatabasePath   string
	CookieSecret   []byte
	LogLevel       string
	ExecuteTimeout time.Duration
}

// FromEnv builds the configuration from environment variables. The cookie
// secret has no default: records are scoped by a signed identity, so running
// without a key would make every deployment trivially forgeable.
func FromEnv() (Config, error) {
	secret := os.Getenv("COOKIE_SECRET")
	if secret == "" {
		return Config{}, fmt.Errorf("COOKIE_SECRET is required")
	}

	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		DatabasePath:   getEnv("DATABASE_PATH", "proxybin.db"),
		CookieSecret:   []byte(secret),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		ExecuteTimeout: time.Duration(getEnvInt("EXECUTE_TIMEOUT", 30)) * time.Second,
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
