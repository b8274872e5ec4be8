package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName        = "Bankist"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultLogFormat      = "json"
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
	defaultSessionTimeout = 5 * time.Minute
	defaultSessionTick    = time.Second
	defaultLoanDelay      = 2500 * time.Millisecond
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName     string
	Env         string
	Port        string
	LogLevel    string
	LogFormat   string
	DatabaseURL string
	RedisURL    string
	SeedFile    string

	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration
	SessionTimeout time.Duration
	SessionTick    time.Duration
	LoanDelay      time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
// DATABASE_URL and REDIS_URL are optional in development and required elsewhere.
func Load() (Config, error) {
	cfg := Config{
		AppName:     getEnv("APP_NAME", defaultAppName),
		Env:         getEnv("APP_ENV", defaultAppEnv),
		Port:        getEnv("PORT", defaultPort),
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		LogFormat:   strings.ToLower(getEnv("LOG_FORMAT", defaultLogFormat)),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		SeedFile:    os.Getenv("SEED_FILE"),
	}

	var err error
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT", defaultShutdownDelay); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", defaultIdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.SessionTimeout, err = durationEnv("SESSION_TIMEOUT", defaultSessionTimeout); err != nil {
		return Config{}, err
	}
	if cfg.SessionTick, err = durationEnv("SESSION_TICK", defaultSessionTick); err != nil {
		return Config{}, err
	}
	if cfg.LoanDelay, err = durationEnv("LOAN_APPROVAL_DELAY", defaultLoanDelay); err != nil {
		return Config{}, err
	}

	if cfg.SessionTimeout < time.Second {
		return Config{}, fmt.Errorf("SESSION_TIMEOUT must be at least 1s, got %s", cfg.SessionTimeout)
	}
	if cfg.SessionTick <= 0 {
		return Config{}, fmt.Errorf("SESSION_TICK must be positive, got %s", cfg.SessionTick)
	}

	if !cfg.IsDev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.Env)
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.Env)
		}
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the environment runs without external backends.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.Env) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// SessionLength is the countdown length in whole seconds.
func (c Config) SessionLength() int {
	return int(c.SessionTimeout / time.Second)
}

// durationEnv reads KEY_SECONDS as an integer first and KEY as a Go
// duration second.
func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	secondsKey := key + "_SECONDS"
	if v := os.Getenv(secondsKey); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsKey, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return d, nil
	}
	return fallback, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
