package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Storage  StorageConfig
	Import   ImportConfig
}

type DatabaseConfig struct {
	// Driver is either "postgres" or "sqlite"
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SSLMode    string
	MaxConns   int
	SQLitePath string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// StorageConfig holds the archive location of imported exports
type StorageConfig struct {
	BasePath string
}

// ImportConfig holds the attendance rules and the inbox poller settings
type ImportConfig struct {
	ScheduledStart   string
	LateGraceMinutes int
	FullDayHours     float64
	Mode             string
	Date1904         bool
	InboxDir         string
	InboxInterval    time.Duration
}

// Load reads the environment, after loading .env when one is present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
		slog.Debug("No .env file found, using environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Driver:     getEnv("DB_DRIVER", "postgres"),
		Host:       getEnv("DB_HOST", "localhost"),
		Port:       dbPort,
		User:       getEnv("DB_USER", "postgres"),
		Password:   getEnv("DB_PASSWORD", ""),
		Name:       getEnv("DB_NAME", "hris_timeclock"),
		SSLMode:    getEnv("DB_SSL_MODE", "disable"),
		MaxConns:   maxConns,
		SQLitePath: getEnv("DB_SQLITE_PATH", "timeclock.db"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	config.Storage = StorageConfig{
		BasePath: getEnv("STORAGE_BASE_PATH", "./uploads"),
	}

	// Import rules
	grace, err := strconv.Atoi(getEnv("IMPORT_LATE_GRACE_MINUTES", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid IMPORT_LATE_GRACE_MINUTES: %w", err)
	}
	fullDay, err := strconv.ParseFloat(getEnv("IMPORT_FULL_DAY_HOURS", "4"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid IMPORT_FULL_DAY_HOURS: %w", err)
	}
	date1904, err := strconv.ParseBool(getEnv("IMPORT_DATE_1904", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid IMPORT_DATE_1904: %w", err)
	}
	interval, err := time.ParseDuration(getEnv("IMPORT_INBOX_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid IMPORT_INBOX_INTERVAL: %w", err)
	}

	config.Import = ImportConfig{
		ScheduledStart:   getEnv("IMPORT_SCHEDULED_START", "08:00"),
		LateGraceMinutes: grace,
		FullDayHours:     fullDay,
		Mode:             getEnv("IMPORT_MODE", "overwrite"),
		Date1904:         date1904,
		InboxDir:         getEnv("IMPORT_INBOX_DIR", ""),
		InboxInterval:    interval,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("DB_SQLITE_PATH is required")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if c.Import.Mode != "overwrite" && c.Import.Mode != "merge" {
		return fmt.Errorf("IMPORT_MODE must be overwrite or merge, got %q", c.Import.Mode)
	}
	if c.Import.InboxDir != "" && c.Import.InboxInterval <= 0 {
		return fmt.Errorf("IMPORT_INBOX_INTERVAL must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string, fallback []string) []string {
	value := getEnv(env, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
