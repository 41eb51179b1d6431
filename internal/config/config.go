package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultDBPath   = "./dev.db"
	defaultPort     = "8080"
	defaultTimezone = "America/New_York"
)

// Config holds application configuration sourced from the environment and an optional config file.
type Config struct {
	Env                  string
	Port                 string
	DBPath               string
	MigrationsDir        string
	LogLevel             string
	AdminEmail           string
	AdminPassword        string
	SessionSecret        string
	Timezone             string
	SlotIntervalMinutes  int
	BookingBufferMinutes int
	BookingRatePerMinute int
	PriceTablePath       string
}

// Load reads .env (if present), config.yaml (if present) and the environment.
func Load() (Config, error) {
	return load(".env", ".", "./config")
}

func load(envFile string, configPaths ...string) (Config, error) {
	// A missing .env is fine; production injects real environment variables.
	// godotenv never overrides variables that are already set.
	_ = godotenv.Load(envFile)

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}
	v.AutomaticEnv()

	v.SetDefault("ENV", "development")
	v.SetDefault("PORT", defaultPort)
	v.SetDefault("DB_PATH", defaultDBPath)
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TIMEZONE", defaultTimezone)
	v.SetDefault("SLOT_INTERVAL_MINUTES", 60)
	v.SetDefault("BOOKING_BUFFER_MINUTES", 30)
	v.SetDefault("BOOKING_RATE_PER_MINUTE", 10)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		Env:                  v.GetString("ENV"),
		Port:                 v.GetString("PORT"),
		DBPath:               v.GetString("DB_PATH"),
		MigrationsDir:        v.GetString("MIGRATIONS_DIR"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		AdminEmail:           v.GetString("ADMIN_EMAIL"),
		AdminPassword:        v.GetString("ADMIN_PASSWORD"),
		SessionSecret:        v.GetString("SESSION_SECRET"),
		Timezone:             v.GetString("TIMEZONE"),
		SlotIntervalMinutes:  v.GetInt("SLOT_INTERVAL_MINUTES"),
		BookingBufferMinutes: v.GetInt("BOOKING_BUFFER_MINUTES"),
		BookingRatePerMinute: v.GetInt("BOOKING_RATE_PER_MINUTE"),
		PriceTablePath:       v.GetString("PRICE_TABLE_PATH"),
	}

	if _, err := cfg.Location(); err != nil {
		return Config{}, err
	}
	if cfg.SlotIntervalMinutes <= 0 {
		return Config{}, fmt.Errorf("SLOT_INTERVAL_MINUTES must be positive, got %d", cfg.SlotIntervalMinutes)
	}
	if cfg.BookingBufferMinutes < 0 {
		return Config{}, fmt.Errorf("BOOKING_BUFFER_MINUTES must not be negative, got %d", cfg.BookingBufferMinutes)
	}
	if !cfg.IsDev() && cfg.SessionSecret == "" {
		return Config{}, fmt.Errorf("SESSION_SECRET is required when ENV is %q", cfg.Env)
	}

	return cfg, nil
}

// IsDev reports whether the app runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == "" || c.Env == "development"
}

// Location resolves the business time zone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c Config) SlotInterval() time.Duration {
	return time.Duration(c.SlotIntervalMinutes) * time.Minute
}

func (c Config) BookingBuffer() time.Duration {
	return time.Duration(c.BookingBufferMinutes) * time.Minute
}

// Warnings lists settings that are missing but not fatal. SESSION_SECRET only shows up
// here in development; elsewhere load refuses to start without it.
func (c Config) Warnings() []string {
	var out []string
	if c.AdminEmail == "" {
		out = append(out, "ADMIN_EMAIL is not set")
	}
	if c.AdminPassword == "" {
		out = append(out, "ADMIN_PASSWORD is not set")
	}
	if c.SessionSecret == "" {
		out = append(out, "SESSION_SECRET is not set")
	}
	return out
}
