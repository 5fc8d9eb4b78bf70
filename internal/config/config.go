// Package config loads the service configuration from environment variables
// and an optional .env file.
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"log/slog"
)

// Config represents the service configuration.
type Config struct {
	Addr      string
	LogLevel  string
	LogFormat string

	// Seeding sources. At most one of DatabaseURL and SeedFile may be set;
	// DevSeed loads the built-in demo data when neither is.
	DatabaseURL string
	SeedFile    string
	DevSeed     bool

	CORSAllowedOrigins []string
	SessionIdleTTL     time.Duration
	EventBuffer        int
}

// Load loads configuration from environment variables.
// It loads .env from the current directory if present, or the given file,
// which must then exist.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	ttl, err := parseDurationEnv("SESSION_IDLE_TTL", 2*time.Hour)
	if err != nil {
		return nil, err
	}
	buffer, err := parseIntEnv("EVENT_BUFFER", 32)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Addr:               getEnvOrDefault("ACCTA_ADDR", ":8080"),
		LogLevel:           strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(getEnvOrDefault("LOG_FORMAT", "json")),
		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SeedFile:           strings.TrimSpace(os.Getenv("SEED_FILE")),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		SessionIdleTTL:     ttl,
		EventBuffer:        buffer,
	}
	dev, set := parseBoolEnv("DEV_SEED")
	if set {
		cfg.DevSeed = dev
	} else {
		cfg.DevSeed = cfg.DatabaseURL == "" && cfg.SeedFile == ""
	}
	return cfg, nil
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	var problems []string
	if c.Addr == "" {
		problems = append(problems, "ACCTA_ADDR must not be empty")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		problems = append(problems, fmt.Sprintf("LOG_FORMAT must be json or text, got %q", c.LogFormat))
	}
	if c.DatabaseURL != "" && c.SeedFile != "" {
		problems = append(problems, "DATABASE_URL and SEED_FILE are mutually exclusive")
	}
	if c.SessionIdleTTL < 0 {
		problems = append(problems, "SESSION_IDLE_TTL must not be negative")
	}
	if c.EventBuffer < 1 {
		problems = append(problems, "EVENT_BUFFER must be at least 1")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Logger builds the process logger: JSON by default, text when LOG_FORMAT=text.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLogLevel(c.LogLevel)}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// ParseLogLevel maps LOG_LEVEL values to a slog level, defaulting to info.
func ParseLogLevel(s string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %s", key, value)
	}
	return parsed, nil
}

// parseDurationEnv accepts Go durations ("90m") or a plain number of seconds.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration value for %s: %s", key, value)
	}
	return d, nil
}

func parseBoolEnv(key string) (value, set bool) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
