package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DevJWTSecret is used when JWT_SECRET is unset. Fine for local use only.
const DevJWTSecret = "changeme"

type Config struct {
	Port          string
	DBPath        string
	DataDir       string
	LogLevel      string
	LogFormat     string
	JWTSecret     string
	SessionTTL    time.Duration
	SecureCookies bool
	ForecastDays  int
	CacheMaxItems int64
}

// Load reads configuration from the environment, after loading a .env file
// if one is present.
func Load() (Config, error) {
	_ = godotenv.Load()

	dbPath := getEnv("EXPENSES_DB_PATH", "./data/expenses.db")
	cfg := Config{
		Port:      getEnv("PORT", "8080"),
		DBPath:    dbPath,
		DataDir:   getEnv("EXPENSES_DATA_DIR", filepath.Join(filepath.Dir(dbPath), "files")),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		JWTSecret: getEnv("JWT_SECRET", DevJWTSecret),
	}

	var err error
	if cfg.SessionTTL, err = time.ParseDuration(getEnv("SESSION_TTL", "720h")); err != nil {
		return cfg, fmt.Errorf("parse SESSION_TTL: %w", err)
	}
	if cfg.SecureCookies, err = strconv.ParseBool(getEnv("SECURE_COOKIES", "false")); err != nil {
		return cfg, fmt.Errorf("parse SECURE_COOKIES: %w", err)
	}
	if cfg.ForecastDays, err = strconv.Atoi(getEnv("FORECAST_DAYS", "30")); err != nil {
		return cfg, fmt.Errorf("parse FORECAST_DAYS: %w", err)
	}
	if cfg.ForecastDays < 1 || cfg.ForecastDays > 365 {
		return cfg, fmt.Errorf("FORECAST_DAYS must be between 1 and 365, got %d", cfg.ForecastDays)
	}
	if cfg.CacheMaxItems, err = strconv.ParseInt(getEnv("CACHE_MAX_ITEMS", "10000"), 10, 64); err != nil {
		return cfg, fmt.Errorf("parse CACHE_MAX_ITEMS: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
