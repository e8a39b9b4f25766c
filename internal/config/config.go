package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/boddenberg/expense-feed-go/internal/domain"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Backend
	BackendURL   string
	BackendToken string // sent as a bearer token; also required by the mock API when set
	UseMockData  bool   // USE_MOCK_DATA=true serves the seeded in-memory store

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Cache
	CacheTTL time.Duration

	// Observability
	OTLPEndpoint string

	// Feed
	PageSize    int
	DefaultSort string
	MockLatency time.Duration
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		BackendURL:   getEnv("BACKEND_URL", "http://localhost:8080"),
		BackendToken: getEnv("BACKEND_TOKEN", ""),
		UseMockData:  getEnvBool("USE_MOCK_DATA", false),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 8),

		CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		PageSize:    getEnvInt("PAGE_SIZE", domain.DefaultPageSize),
		DefaultSort: getEnv("DEFAULT_SORT", "date,desc"),
		MockLatency: getEnvDuration("MOCK_LATENCY", 0),
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Port < 1 || c.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Port))
	}
	if !c.UseMockData {
		u, err := url.Parse(c.BackendURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			problems = append(problems, fmt.Sprintf("invalid backend url %q", c.BackendURL))
		}
	}
	if c.HTTPTimeout <= 0 {
		problems = append(problems, "http timeout must be positive")
	}
	if c.MaxRetries < 0 {
		problems = append(problems, "max retries must not be negative")
	}
	if c.MaxConcurrency < 1 {
		problems = append(problems, "max concurrency must be at least 1")
	}
	if c.CacheTTL <= 0 {
		problems = append(problems, "cache ttl must be positive")
	}
	if c.PageSize < 1 {
		problems = append(problems, fmt.Sprintf("invalid page size %d: must be at least 1", c.PageSize))
	}
	if c.MockLatency < 0 {
		problems = append(problems, "mock latency must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
