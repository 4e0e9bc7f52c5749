package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Model configuration. An empty ModelPath runs the service on the
	// rule-based fallback only.
	ModelPath string

	// Route generation seed. Zero seeds from the wall clock.
	RouteSeed int64

	// API rate limiting.
	RateLimitRPS   float64
	RateLimitBurst int

	// Monitor loop configuration.
	MonitorEnabled      bool
	MonitorInterval     time.Duration
	MonitorErrorBackoff time.Duration

	KafkaBrokers       []string
	KafkaReadingsTopic string
	KafkaAlertsTopic   string
	KafkaGroupID       string
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is merged in first,
// without overriding variables already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	monitorInterval, err := parseDuration("MONITOR_INTERVAL", "0s")
	if err != nil {
		return nil, err
	}

	monitorBackoff, err := parseDuration("MONITOR_ERROR_BACKOFF", "5s")
	if err != nil {
		return nil, err
	}

	routeSeed, err := parseInt64("ROUTE_SEED", 0)
	if err != nil {
		return nil, err
	}

	rateLimitRPS, err := parseFloat("RATE_LIMIT_RPS", 50)
	if err != nil {
		return nil, err
	}

	rateLimitBurst, err := parseInt("RATE_LIMIT_BURST", 100)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ModelPath: os.Getenv("MODEL_PATH"),
		RouteSeed: routeSeed,

		RateLimitRPS:   rateLimitRPS,
		RateLimitBurst: rateLimitBurst,

		MonitorEnabled:      envOrDefault("MONITOR_ENABLED", "false") == "true",
		MonitorInterval:     monitorInterval,
		MonitorErrorBackoff: monitorBackoff,

		KafkaBrokers:       parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaReadingsTopic: envOrDefault("KAFKA_READINGS_TOPIC", "sensor-readings"),
		KafkaAlertsTopic:   envOrDefault("KAFKA_ALERTS_TOPIC", "threat-alerts"),
		KafkaGroupID:       envOrDefault("KAFKA_GROUP_ID", "coastal-threat-service"),
	}

	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if cfg.MonitorErrorBackoff <= 0 {
		return nil, errors.New("MONITOR_ERROR_BACKOFF must be positive")
	}
	if cfg.RateLimitRPS <= 0 {
		return nil, errors.New("RATE_LIMIT_RPS must be positive")
	}
	if cfg.RateLimitBurst <= 0 {
		return nil, errors.New("RATE_LIMIT_BURST must be positive")
	}
	if cfg.MonitorEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when the monitor is enabled")
		}
		if cfg.KafkaReadingsTopic == "" {
			return nil, errors.New("KAFKA_READINGS_TOPIC is required when the monitor is enabled")
		}
		if cfg.KafkaAlertsTopic == "" {
			return nil, errors.New("KAFKA_ALERTS_TOPIC is required when the monitor is enabled")
		}
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseBrokers splits a comma-separated broker list, dropping empty entries.
func parseBrokers(raw string) []string {
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	return brokers
}

func parseDuration(key, def string) (time.Duration, error) {
	raw := envOrDefault(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", key, raw)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}

func parseInt64(key string, def int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}

func parseFloat(key string, def float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return f, nil
}
