package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Roster        RosterConfig
	Storage       StorageConfig
	Calendar      CalendarConfig
	Observability ObservabilityConfig
	LogLevel      slog.Level
}

type ServerConfig struct {
	Host               string
	Port               int
	RateLimitPerSecond int
	RateLimitBurst     int
	MaxUploadBytes     int64
	AllowedOrigins     []string
	ShutdownTimeout    time.Duration
}

type RosterConfig struct {
	CodeMapPath string
	Timezone    string
}

type StorageConfig struct {
	ScratchPath   string
	RetentionTTL  time.Duration
	PurgeSchedule string
}

type CalendarConfig struct {
	WebhookURL string
	Token      string
	BatchSize  int
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 5),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 10),
			MaxUploadBytes:     int64(getEnvAsInt("SERVER_MAX_UPLOAD_BYTES", 20<<20)),
			AllowedOrigins:     getEnvAsList("SERVER_ALLOWED_ORIGINS", []string{"*"}),
			ShutdownTimeout:    getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Roster: RosterConfig{
			CodeMapPath: getEnv("ROSTER_CODEMAP_PATH", "shift_codes.csv"),
			Timezone:    getEnv("ROSTER_TIMEZONE", "Asia/Tokyo"),
		},
		Storage: StorageConfig{
			ScratchPath:   getEnv("STORAGE_SCRATCH_PATH", ""),
			RetentionTTL:  getEnvAsDuration("STORAGE_RETENTION_TTL", time.Hour),
			PurgeSchedule: getEnv("STORAGE_PURGE_SCHEDULE", "*/15 * * * *"),
		},
		Calendar: CalendarConfig{
			WebhookURL: getEnv("CALENDAR_WEBHOOK_URL", ""),
			Token:      getEnv("CALENDAR_TOKEN", ""),
			BatchSize:  getEnvAsInt("CALENDAR_BATCH_SIZE", 100),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
	}

	level, err := parseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if cfg.Roster.CodeMapPath == "" {
		return nil, errors.New("ROSTER_CODEMAP_PATH is required")
	}

	if _, err := time.LoadLocation(cfg.Roster.Timezone); err != nil {
		return nil, fmt.Errorf("invalid ROSTER_TIMEZONE %q: %w", cfg.Roster.Timezone, err)
	}

	if cfg.Server.MaxUploadBytes <= 0 {
		return nil, errors.New("SERVER_MAX_UPLOAD_BYTES must be positive")
	}

	return cfg, nil
}

// Location returns the roster time zone. Load has already validated it.
func (c *RosterConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Addr returns the listen address of the API server
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
