package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries process configuration. Security-sensitive values have
// no defaults: a missing auth secret or database DSN is a startup
// error, never a silent fallback.
type Config struct {
	HTTPAddr    string
	PostgresDSN string
	AuthSecret  string
	TokenTTL    time.Duration
	ResumeDir   string

	RedisAddr          string
	RateLimitBurst     int
	RateLimitPerSecond int
	MaxBodyBytes       int64
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:    getEnv("JOBDESK_HTTP_ADDR", ":8080"),
		PostgresDSN: strings.TrimSpace(os.Getenv("JOBDESK_PG_DSN")),
		AuthSecret:  strings.TrimSpace(os.Getenv("JOBDESK_AUTH_SECRET")),
		ResumeDir:   getEnv("JOBDESK_RESUME_DIR", "data/resumes"),
		RedisAddr:   strings.TrimSpace(os.Getenv("JOBDESK_REDIS_ADDR")),
	}

	var err error
	if cfg.TokenTTL, err = getDuration("JOBDESK_TOKEN_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getInt("JOBDESK_RATE_BURST", 20); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerSecond, err = getInt("JOBDESK_RATE_PER_SECOND", 10); err != nil {
		return nil, err
	}
	if cfg.MaxBodyBytes, err = getInt64("JOBDESK_MAX_BODY_BYTES", 6<<20); err != nil {
		return nil, err
	}

	if cfg.AuthSecret == "" {
		return nil, fmt.Errorf("config: JOBDESK_AUTH_SECRET is required")
	}
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("config: JOBDESK_PG_DSN is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return parsed, nil
}

func getInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return parsed, nil
}

func getInt64(key string, fallback int64) (int64, error) {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return parsed, nil
}
