package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the client module.
type Config struct {
	Environment string

	// APIBaseURL is the root of the Showgrid backend. Required.
	APIBaseURL string

	AppName string
	AppURL  string

	// AuthPublishableKey and PaymentPublishableKey are opaque keys for
	// the external auth and payment providers; they are passed through
	// to their SDKs untouched.
	AuthPublishableKey    string
	PaymentPublishableKey string

	// Cache tuning.
	CacheStaleTime time.Duration
	CacheGCTime    time.Duration
	CacheCapacity  int

	// Snapshot persistence. An empty PersistPath disables the file
	// store; RedisAddr selects the Redis store instead when set.
	PersistPath string
	CacheBuster string
	CacheMaxAge time.Duration
	RedisAddr   string
}

// Load loads configuration from environment variables. It attempts to
// load from a .env file if not in production; in production the .env
// file may not exist and system environment variables are relied on.
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	if env != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found or couldn't be loaded: %v", err)
		}
	}

	cfg := &Config{
		Environment:           env,
		APIBaseURL:            os.Getenv("API_BASE_URL"),
		AppName:               os.Getenv("APP_NAME"),
		AppURL:                os.Getenv("APP_URL"),
		AuthPublishableKey:    os.Getenv("AUTH_PUBLISHABLE_KEY"),
		PaymentPublishableKey: os.Getenv("PAYMENT_PUBLISHABLE_KEY"),
		PersistPath:           os.Getenv("CACHE_PERSIST_PATH"),
		CacheBuster:           os.Getenv("CACHE_BUSTER"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
	}

	// The base URL has no sensible default; refusing to start beats
	// pointing every request at the wrong host.
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("config: API_BASE_URL is required")
	}

	var err error
	if cfg.CacheStaleTime, err = durationEnv("CACHE_STALE_TIME", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.CacheGCTime, err = durationEnv("CACHE_GC_TIME", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.CacheMaxAge, err = durationEnv("CACHE_MAX_AGE", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CacheCapacity, err = intEnv("CACHE_CAPACITY", 10000); err != nil {
		return nil, err
	}

	if cfg.CacheBuster == "" {
		cfg.CacheBuster = "v1"
	}

	return cfg, nil
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", name, err)
	}
	return d, nil
}

func intEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", name, err)
	}
	return n, nil
}
