package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

// Config holds runtime configuration values for the name-variant server.
type Config struct {
	ServerPort    int
	LogLevel      string
	LLMEndpoint   string
	LLMAPIKey     string
	LLMModel      string
	LLMTimeout    time.Duration
	RedisURL      string
	CacheTTL      time.Duration
	MaxNameLength int
	ScrapeTimeout time.Duration
	SentryDSN     string
	Environment   string
	ShutdownGrace time.Duration
}

const (
	defaultServerPort    = 8080
	defaultLogLevel      = "info"
	defaultLLMModel      = "gemini-2.5-flash-preview-05-20"
	defaultLLMTimeout    = 30 * time.Second
	defaultCacheTTL      = 7 * 24 * time.Hour
	defaultMaxNameLength = 20
	defaultScrapeTimeout = 25 * time.Second
	defaultShutdownGrace = 10 * time.Second
)

// Load reads configuration values from environment variables, applying defaults where necessary.
// API_KEY is required: the generate-names endpoint cannot operate without the upstream service.
// REDIS_URL is optional; when absent, caching is disabled rather than failing startup.
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:      getEnv("LOG_LEVEL", defaultLogLevel),
		LLMEndpoint:   os.Getenv("LLM_ENDPOINT"),
		LLMAPIKey:     os.Getenv("API_KEY"),
		LLMModel:      getEnv("LLM_MODEL", defaultLLMModel),
		RedisURL:      os.Getenv("REDIS_URL"),
		SentryDSN:     os.Getenv("SENTRY_DSN"),
		Environment:   os.Getenv("ENV"),
		ShutdownGrace: defaultShutdownGrace,
	}

	if cfg.LLMAPIKey == "" {
		return nil, eris.New("API_KEY environment variable is required")
	}

	port, err := intEnv("SERVER_PORT", defaultServerPort)
	if err != nil {
		return nil, err
	}
	cfg.ServerPort = port

	ttlSeconds, err := intEnv("CACHE_TTL_SECONDS", int(defaultCacheTTL.Seconds()))
	if err != nil {
		return nil, err
	}
	if ttlSeconds <= 0 {
		return nil, eris.Errorf("CACHE_TTL_SECONDS must be positive, got %d", ttlSeconds)
	}
	cfg.CacheTTL = time.Duration(ttlSeconds) * time.Second

	maxName, err := intEnv("MAX_NAME_LENGTH", defaultMaxNameLength)
	if err != nil {
		return nil, err
	}
	if maxName < 0 {
		return nil, eris.Errorf("MAX_NAME_LENGTH must not be negative, got %d", maxName)
	}
	cfg.MaxNameLength = maxName

	cfg.LLMTimeout, err = durationEnv("LLM_TIMEOUT", defaultLLMTimeout)
	if err != nil {
		return nil, err
	}

	cfg.ScrapeTimeout, err = durationEnv("SCRAPE_TIMEOUT", defaultScrapeTimeout)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// CacheEnabled reports whether a cache backend has been configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisURL != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, eris.Wrapf(err, "invalid %s value: %s", key, raw)
	}
	return value, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}

	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, eris.Wrapf(err, "invalid %s value: %s", key, raw)
	}
	if value <= 0 {
		return 0, eris.Errorf("%s must be positive, got %s", key, value)
	}
	return value, nil
}
