package config

import (
	"strings"
	"testing"
	"time"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SERVER_PORT", "LOG_LEVEL", "LLM_ENDPOINT", "API_KEY", "LLM_MODEL",
		"LLM_TIMEOUT", "REDIS_URL", "CACHE_TTL_SECONDS", "MAX_NAME_LENGTH",
		"SCRAPE_TIMEOUT", "SENTRY_DSN", "ENV",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.ServerPort != defaultServerPort {
		t.Errorf("expected default server port %d, got %d", defaultServerPort, cfg.ServerPort)
	}

	if cfg.LogLevel != defaultLogLevel {
		t.Errorf("expected default log level %q, got %q", defaultLogLevel, cfg.LogLevel)
	}

	if cfg.LLMModel != defaultLLMModel {
		t.Errorf("expected default model %q, got %q", defaultLLMModel, cfg.LLMModel)
	}

	if cfg.CacheTTL != defaultCacheTTL {
		t.Errorf("expected default cache TTL %s, got %s", defaultCacheTTL, cfg.CacheTTL)
	}

	if cfg.MaxNameLength != defaultMaxNameLength {
		t.Errorf("expected default max name length %d, got %d", defaultMaxNameLength, cfg.MaxNameLength)
	}

	if cfg.CacheEnabled() {
		t.Error("expected caching disabled without REDIS_URL")
	}
}

func TestLoadFailsWithoutAPIKey(t *testing.T) {
	clearConfigEnv(t)

	if _, err := Load(); err == nil {
		t.Fatal("expected error when API_KEY is absent")
	} else if !strings.Contains(err.Error(), "API_KEY") {
		t.Fatalf("expected API_KEY mentioned in error, got %v", err)
	}
}

func TestLoadWithExplicitValues(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("API_KEY", "test-key")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CACHE_TTL_SECONDS", "3600")
	t.Setenv("MAX_NAME_LENGTH", "0")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.ServerPort != 9090 {
		t.Errorf("expected server port 9090, got %d", cfg.ServerPort)
	}

	if cfg.CacheTTL != time.Hour {
		t.Errorf("expected cache TTL 1h, got %s", cfg.CacheTTL)
	}

	if cfg.MaxNameLength != 0 {
		t.Errorf("expected max name length 0 (disabled), got %d", cfg.MaxNameLength)
	}

	if cfg.LLMTimeout != 5*time.Second {
		t.Errorf("expected LLM timeout 5s, got %s", cfg.LLMTimeout)
	}

	if !cfg.CacheEnabled() {
		t.Error("expected caching enabled with REDIS_URL set")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad port", key: "SERVER_PORT", value: "not-a-port"},
		{name: "bad ttl", key: "CACHE_TTL_SECONDS", value: "soon"},
		{name: "zero ttl", key: "CACHE_TTL_SECONDS", value: "0"},
		{name: "negative name cap", key: "MAX_NAME_LENGTH", value: "-1"},
		{name: "bad llm timeout", key: "LLM_TIMEOUT", value: "fast"},
		{name: "negative llm timeout", key: "LLM_TIMEOUT", value: "-3s"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv("API_KEY", "test-key")
			t.Setenv(tc.key, tc.value)

			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tc.key, tc.value)
			}
		})
	}
}
