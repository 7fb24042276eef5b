package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	OTel     OTelConfig
	Platform PlatformConfig
	Orch     OrchestrationConfig
	Env      string
	Port     string
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

// PlatformConfig configures the outbound connection to the remote
// scientific-task platform.
type PlatformConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

// OrchestrationConfig holds the timing policy for synchronous task
// execution. SyncWaitBudget bounds submission plus all polling for a single
// sync call; the poll interval starts at InitialPollInterval and doubles up
// to MaxPollInterval between status queries.
type OrchestrationConfig struct {
	SyncWaitBudget      time.Duration
	InitialPollInterval time.Duration
	MaxPollInterval     time.Duration
}

// Load loads configuration from environment variables. In development it
// first loads a local .env file if one exists.
func Load() (Config, error) {
	if getEnv("GATEWAY_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	cfg := Config{
		Env:  getEnv("GATEWAY_ENV", "development"),
		Port: getEnv("PORT", "8080"),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "gateway"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		Platform: PlatformConfig{
			BaseURL:        getEnv("PLATFORM_BASE_URL", ""),
			RequestTimeout: getEnvDuration("PLATFORM_REQUEST_TIMEOUT", 30*time.Second),
		},
		Orch: OrchestrationConfig{
			SyncWaitBudget:      getEnvDuration("SYNC_WAIT_BUDGET", 10*time.Minute),
			InitialPollInterval: getEnvDuration("POLL_INITIAL_INTERVAL", 2*time.Second),
			MaxPollInterval:     getEnvDuration("POLL_MAX_INTERVAL", 30*time.Second),
		},
	}

	if cfg.Platform.BaseURL == "" {
		return Config{}, fmt.Errorf("PLATFORM_BASE_URL is required")
	}

	if cfg.Orch.InitialPollInterval <= 0 || cfg.Orch.MaxPollInterval < cfg.Orch.InitialPollInterval {
		return Config{}, fmt.Errorf("poll intervals must satisfy 0 < POLL_INITIAL_INTERVAL <= POLL_MAX_INTERVAL")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}
