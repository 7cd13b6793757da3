package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.InsightTTLSeconds != 60 {
		t.Fatalf("expected default insight TTL 60, got %d", cfg.InsightTTLSeconds)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("unexpected address %s", cfg.Address())
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGIN", "https://dash.example.com")
	t.Setenv("REDIS_ADDR", "127.0.0.1:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("INSIGHT_TTL_SECONDS", "120")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Fatalf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.AllowedOrigin != "https://dash.example.com" {
		t.Fatalf("unexpected origin %s", cfg.AllowedOrigin)
	}
	if cfg.RedisAddr != "127.0.0.1:6379" || cfg.RedisDB != 3 {
		t.Fatalf("unexpected redis config %s/%d", cfg.RedisAddr, cfg.RedisDB)
	}
	if cfg.InsightTTLSeconds != 120 {
		t.Fatalf("expected TTL 120, got %d", cfg.InsightTTLSeconds)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected debug level, got %s", cfg.LogLevel)
	}
}

func TestLoadRejectsBadTTL(t *testing.T) {
	t.Setenv("INSIGHT_TTL_SECONDS", "not-a-number")

	cfg := Load()
	if cfg.InsightTTLSeconds != 60 {
		t.Fatalf("expected fallback TTL 60, got %d", cfg.InsightTTLSeconds)
	}
}
