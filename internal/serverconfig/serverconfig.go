// Package serverconfig loads the gazetteer HTTP server's own runtime
// settings (listen address, logging, CORS, rate limiting) from
// environment variables, separately from the build configuration
// document loaded by internal/gazetteer/config.
package serverconfig

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config holds the settings the gazetteer server reads from its
// process environment.
type Config struct {
	ListenAddr string
	LogLevel   string

	RateLimitRPS              float64
	RateLimitBurst            int
	RateLimitCostDivisorBytes int

	CORSAllowedOrigins []string
}

// SlogLevel maps LogLevel to an slog.Level, defaulting to Info for an
// unrecognized or empty value.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoadFromEnv populates a Config from the process environment, applying
// defaults for anything unset.
func LoadFromEnv() Config {
	cfg := Config{
		ListenAddr:                getEnvDefault("GAZETTEER_LISTEN_ADDR", ":8080"),
		LogLevel:                  getEnvDefault("GAZETTEER_LOG_LEVEL", "info"),
		RateLimitRPS:              100,
		RateLimitBurst:            200,
		RateLimitCostDivisorBytes: 4096,
	}

	if v := os.Getenv("GAZETTEER_RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("GAZETTEER_RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}
	if v := os.Getenv("GAZETTEER_RATE_LIMIT_COST_DIVISOR_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitCostDivisorBytes = n
		}
	}

	origins := getEnvDefault("GAZETTEER_CORS_ALLOWED_ORIGINS", "*")
	cfg.CORSAllowedOrigins = strings.Split(origins, ",")

	return cfg
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
