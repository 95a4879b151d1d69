package config_test

import (
	"testing"
	"time"

	"github.com/campushub/api/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "PORT", "MONGO_URI", "MONGO_DB", "JWT_SECRET",
		"JWT_ACCESS_TTL_MINUTES", "RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW_SECONDS",
		"REDIS_ADDR", "ADMIN_EMAIL", "ADMIN_PASSWORD", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}

	cfg := config.Load()

	if cfg.Env != "dev" {
		t.Fatalf("Env = %q, want dev", cfg.Env)
	}

	if cfg.Port != 8080 {
		t.Fatalf("Port = %d, want 8080", cfg.Port)
	}

	if cfg.RateLimitMax != 10 {
		t.Fatalf("RateLimitMax = %d, want 10", cfg.RateLimitMax)
	}

	if cfg.RateLimitWindow() != time.Minute {
		t.Fatalf("RateLimitWindow = %v, want 1m", cfg.RateLimitWindow())
	}

	if cfg.AccessTTL() != time.Hour {
		t.Fatalf("AccessTTL = %v, want 1h", cfg.AccessTTL())
	}

	if cfg.RedisAddr != "" {
		t.Fatalf("RedisAddr = %q, want empty", cfg.RedisAddr)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PORT", "9090")
	t.Setenv("RATE_LIMIT_MAX", "25")
	t.Setenv("RATE_LIMIT_WINDOW_SECONDS", "120")
	t.Setenv("JWT_ACCESS_TTL_MINUTES", "15")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg := config.Load()

	if cfg.Env != "prod" {
		t.Fatalf("Env = %q, want prod", cfg.Env)
	}

	if cfg.Port != 9090 {
		t.Fatalf("Port = %d, want 9090", cfg.Port)
	}

	if cfg.RateLimitMax != 25 {
		t.Fatalf("RateLimitMax = %d, want 25", cfg.RateLimitMax)
	}

	if cfg.RateLimitWindow() != 2*time.Minute {
		t.Fatalf("RateLimitWindow = %v, want 2m", cfg.RateLimitWindow())
	}

	if cfg.AccessTTL() != 15*time.Minute {
		t.Fatalf("AccessTTL = %v, want 15m", cfg.AccessTTL())
	}

	want := []string{"https://a.example.com", "https://b.example.com"}

	if len(cfg.CORSAllowedOrigins) != len(want) {
		t.Fatalf("origins = %v, want %v", cfg.CORSAllowedOrigins, want)
	}

	for i := range want {
		if cfg.CORSAllowedOrigins[i] != want[i] {
			t.Fatalf("origins = %v, want %v", cfg.CORSAllowedOrigins, want)
		}
	}
}

func TestBadIntFallsBack(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	cfg := config.Load()

	if cfg.Port != 8080 {
		t.Fatalf("Port = %d, want fallback 8080", cfg.Port)
	}
}
