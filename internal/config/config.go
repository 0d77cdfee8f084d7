package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/Cheertaboi/restaurant-promo-engine/pkg/db"
)

type Config struct {
	ServerPort int

	Postgres      db.PostgresConfig
	MigrationsDir string

	Redis           db.RedisConfig
	CatalogCacheTTL time.Duration

	// CatalogFile, when set, serves a YAML catalog instead of Postgres.
	CatalogFile string

	Location             *time.Location
	DefaultMaxSelectable int
	MaxGiftUnits         int
}

// Load reads .env if present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	var err error

	if cfg.ServerPort, err = intEnv("PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.Postgres, err = db.LoadPostgresConfig(); err != nil {
		return nil, err
	}
	cfg.MigrationsDir = getEnvOrDefault("MIGRATIONS_DIR", "migrations")

	if cfg.Redis, err = db.LoadRedisConfig(); err != nil {
		return nil, err
	}
	if cfg.CatalogCacheTTL, err = time.ParseDuration(getEnvOrDefault("CATALOG_CACHE_TTL", "30s")); err != nil {
		return nil, fmt.Errorf("invalid CATALOG_CACHE_TTL: %w", err)
	}

	cfg.CatalogFile = os.Getenv("CATALOG_FILE")

	if cfg.Location, err = time.LoadLocation(getEnvOrDefault("PROMO_TIMEZONE", "UTC")); err != nil {
		return nil, fmt.Errorf("invalid PROMO_TIMEZONE: %w", err)
	}
	if cfg.DefaultMaxSelectable, err = intEnv("PROMO_DEFAULT_MAX_SELECTABLE", 1); err != nil {
		return nil, err
	}
	if cfg.DefaultMaxSelectable < 1 {
		return nil, fmt.Errorf("PROMO_DEFAULT_MAX_SELECTABLE must be positive, got %d", cfg.DefaultMaxSelectable)
	}
	if cfg.MaxGiftUnits, err = intEnv("PROMO_MAX_GIFT_UNITS", 100); err != nil {
		return nil, err
	}
	if cfg.MaxGiftUnits < 1 {
		return nil, fmt.Errorf("PROMO_MAX_GIFT_UNITS must be positive, got %d", cfg.MaxGiftUnits)
	}

	return cfg, nil
}

func intEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
