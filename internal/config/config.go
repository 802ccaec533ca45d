package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	ServiceName = "inventory"

	defaultPort            = "80"
	defaultLogLevel        = "info"
	defaultShutdownTimeout = 10 * time.Second
)

type Config struct {
	Port     string
	LogLevel string

	MetricsEnabled bool
	MetricsToken   string

	// WriteRateLimitPerMin caps POST/PUT/DELETE per client IP; 0 disables it.
	WriteRateLimitPerMin int
	// TrustProxy keys the write limiter on X-Forwarded-For instead of the
	// peer address. Enable only behind a proxy that sets the header.
	TrustProxy bool

	ShutdownTimeout time.Duration
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:         getenv("PORT", getenv("FLASK_PORT", defaultPort)),
		LogLevel:     getenv("LOG_LEVEL", defaultLogLevel),
		MetricsToken: os.Getenv("METRICS_TOKEN"),
	}

	port, err := strconv.Atoi(cfg.Port)
	if err != nil || port < 1 || port > 65535 {
		return nil, fmt.Errorf("PORT must be a number in 1..65535, got %q", cfg.Port)
	}

	cfg.MetricsEnabled, err = strconv.ParseBool(getenv("METRICS_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("METRICS_ENABLED: %w", err)
	}

	cfg.WriteRateLimitPerMin, err = strconv.Atoi(getenv("WRITE_RATE_LIMIT_PER_MIN", "0"))
	if err != nil {
		return nil, fmt.Errorf("WRITE_RATE_LIMIT_PER_MIN: %w", err)
	}
	if cfg.WriteRateLimitPerMin < 0 {
		return nil, fmt.Errorf("WRITE_RATE_LIMIT_PER_MIN must not be negative, got %d", cfg.WriteRateLimitPerMin)
	}

	cfg.TrustProxy, err = strconv.ParseBool(getenv("TRUST_PROXY", "false"))
	if err != nil {
		return nil, fmt.Errorf("TRUST_PROXY: %w", err)
	}

	cfg.ShutdownTimeout = defaultShutdownTimeout
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", d)
		}
		cfg.ShutdownTimeout = d
	}

	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
