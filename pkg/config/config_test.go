package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "prod" {
		t.Fatalf("expected App.Env to be prod, got %q", cfg.App.Env)
	}
	if !cfg.App.IsProd() || cfg.App.IsDev() {
		t.Fatalf("expected prod env helpers to agree")
	}
	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected Redis URL: %q", cfg.Redis.URL)
	}
	if cfg.Backend.BaseURL != "http://localhost:8080" {
		t.Fatalf("unexpected backend default %q", cfg.Backend.BaseURL)
	}
	if got := cfg.Session.TTL; got != 12*time.Hour {
		t.Fatalf("expected session ttl 12h, got %v", got)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected cors origins %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RejectsRelativeBackendURL(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvBackendBaseURL, "/api")

	if _, err := Load(); err == nil {
		t.Fatal("expected relative backend url to be rejected")
	}
}

func TestLoad_RejectsNonPositiveSessionTTL(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvSessionTTL, "0s")

	if _, err := Load(); err == nil {
		t.Fatal("expected zero session ttl to be rejected")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvAppEnv, "prod")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
}
