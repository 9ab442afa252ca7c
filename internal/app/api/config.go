package api

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	userapp "github.com/Apurer/go-gin-users-orders/internal/domains/users/application"
	platformobservability "github.com/Apurer/go-gin-users-orders/internal/platform/observability"
)

const defaultKafkaTopic = "users-orders.events"

// Config carries environment-driven settings for the API process.
type Config struct {
	Port            string
	PostgresDSN     string
	KafkaBrokers    []string
	KafkaTopic      string
	DeletePolicy    userapp.DeletePolicy
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	Environment     string
	LogLevel        slog.Level
	TraceExporter   string
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:          envDefault("PORT", "8080"),
		PostgresDSN:   strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		KafkaBrokers:  splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:    envDefault("KAFKA_TOPIC", defaultKafkaTopic),
		Environment:   envDefault("ENVIRONMENT", "local"),
		TraceExporter: envDefault("TRACE_EXPORTER", platformobservability.ExporterOTLP),
	}
	if _, err := strconv.ParseUint(cfg.Port, 10, 16); err != nil {
		return Config{}, fmt.Errorf("PORT must be a TCP port number, got %q", cfg.Port)
	}

	policy, err := userapp.ParseDeletePolicy(os.Getenv("USER_DELETE_POLICY"))
	if err != nil {
		return Config{}, fmt.Errorf("USER_DELETE_POLICY: %w", err)
	}
	cfg.DeletePolicy = policy

	if cfg.RequestTimeout, err = secondsEnv("REQUEST_TIMEOUT_SECONDS", 10); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = secondsEnv("SHUTDOWN_TIMEOUT_SECONDS", 5); err != nil {
		return Config{}, err
	}

	if cfg.LogLevel, err = platformobservability.ParseLevel(os.Getenv("LOG_LEVEL")); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	switch cfg.TraceExporter {
	case platformobservability.ExporterOTLP, platformobservability.ExporterStdout, platformobservability.ExporterNone:
	default:
		return Config{}, fmt.Errorf("TRACE_EXPORTER must be otlp, stdout or none, got %q", cfg.TraceExporter)
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// EventsEnabled reports whether resource events go to Kafka.
func (c Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func secondsEnv(key string, fallback int) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return time.Duration(fallback) * time.Second, nil
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return time.Duration(seconds) * time.Second, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
