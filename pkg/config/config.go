package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/felixgeelhaar/meditrack/internal/shared/infrastructure/security"
	"github.com/joho/godotenv"
)

// ErrInvalidWorkday is returned when the working window is empty or malformed.
var ErrInvalidWorkday = errors.New("invalid working hours")

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string
	LogSource bool

	// Database. An empty DatabaseURL selects SQLite at SQLitePath.
	DatabaseURL string
	SQLitePath  string

	// Redis. Empty means in-process locking and no forecast cache.
	RedisURL string

	// RabbitMQ. Empty means the in-process event bus.
	RabbitMQURL string

	// NotesEncryptionKey is a base64 32-byte key. When set, appointment
	// notes are encrypted at rest.
	NotesEncryptionKey string

	// Scheduling. WorkdayStart and WorkdayEnd are offsets from midnight.
	WorkdayStart               time.Duration
	WorkdayEnd                 time.Duration
	SlotStride                 time.Duration
	DefaultAppointmentDuration time.Duration
	GapThreshold               time.Duration
	BookingLockTTL             time.Duration

	// Forecasting
	ForecastHorizonDays int
	ForecastMode        string
	ForecastCacheTTL    time.Duration

	// Publisher circuit breaker
	BreakerFailures int
	BreakerTimeout  time.Duration

	// Outbox
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxRetries   int

	// Worker
	WorkerHTTPAddr        string
	OutboxRetention       time.Duration
	OutboxCleanupInterval time.Duration
}

// Load reads configuration from the environment. Each of envFiles is loaded
// first and must exist; without any, an optional .env in the working
// directory is loaded.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) > 0 {
		paths := make([]string, len(envFiles))
		for i, f := range envFiles {
			p, err := security.CleanPath(f)
			if err != nil {
				return nil, fmt.Errorf("env file: %w", err)
			}
			paths[i] = p
		}
		if err := godotenv.Load(paths...); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	start, err := getClockEnv("WORKDAY_START", 9*time.Hour)
	if err != nil {
		return nil, err
	}
	end, err := getClockEnv("WORKDAY_END", 17*time.Hour)
	if err != nil {
		return nil, err
	}
	if start >= end {
		return nil, fmt.Errorf("%w: WORKDAY_START must be before WORKDAY_END", ErrInvalidWorkday)
	}

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		LogSource: getBoolEnv("LOG_SOURCE", false),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", getDefaultSQLitePath()),
		RedisURL:    getEnv("REDIS_URL", ""),
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		NotesEncryptionKey: getEnv("NOTES_ENCRYPTION_KEY", ""),

		WorkdayStart:               start,
		WorkdayEnd:                 end,
		SlotStride:                 getDurationEnv("SLOT_STRIDE", 30*time.Minute),
		DefaultAppointmentDuration: getDurationEnv("DEFAULT_APPOINTMENT_DURATION", 30*time.Minute),
		GapThreshold:               getDurationEnv("GAP_THRESHOLD", 30*time.Minute),
		BookingLockTTL:             getDurationEnv("BOOKING_LOCK_TTL", 10*time.Second),

		ForecastHorizonDays: getIntEnv("FORECAST_HORIZON_DAYS", 30),
		ForecastMode:        getEnv("FORECAST_MODE", "cumulative"),
		ForecastCacheTTL:    getDurationEnv("FORECAST_CACHE_TTL", 15*time.Minute),

		BreakerFailures: getIntEnv("PUBLISHER_BREAKER_FAILURES", 5),
		BreakerTimeout:  getDurationEnv("PUBLISHER_BREAKER_TIMEOUT", 30*time.Second),

		OutboxPollInterval: getDurationEnv("OUTBOX_POLL_INTERVAL", time.Second),
		OutboxBatchSize:    getIntEnv("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxRetries:   getIntEnv("OUTBOX_MAX_RETRIES", 5),

		WorkerHTTPAddr:        getEnv("WORKER_HTTP_ADDR", ":9090"),
		OutboxRetention:       getDurationEnv("OUTBOX_RETENTION", 7*24*time.Hour),
		OutboxCleanupInterval: getDurationEnv("OUTBOX_CLEANUP_INTERVAL", time.Hour),
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// IsLocalMode is true when data lives in the local SQLite file.
func (c *Config) IsLocalMode() bool {
	return c.DatabaseURL == ""
}

// DefaultAppointmentMinutes is DefaultAppointmentDuration in whole minutes.
func (c *Config) DefaultAppointmentMinutes() int {
	return int(c.DefaultAppointmentDuration / time.Minute)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getClockEnv parses an "HH:MM" wall-clock value into an offset from
// midnight. Malformed input is an error, not the default.
func getClockEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := ParseClock(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// ParseClock turns "09:30" into 9h30m. "24:00" is accepted as end of day.
func ParseClock(value string) (time.Duration, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		if value == "24:00" {
			return 24 * time.Hour, nil
		}
		return 0, fmt.Errorf("%w: %q is not HH:MM", ErrInvalidWorkday, value)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func getDefaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".meditrack", "data.db")
	}
	return filepath.Join(home, ".meditrack", "data.db")
}
