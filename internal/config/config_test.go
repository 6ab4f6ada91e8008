package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "TRANS_RATE", "DEBOUNCE_MS", "CACHE_BACKEND", "CACHE_TTL", "DEFAULT_LAYER",
		"RECENTER_ON_SRS_CHANGE", "SESSION_TTL", "MAX_SESSIONS"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("port = %q, want 8080", cfg.Port)
	}
	if cfg.DebounceDelay != 500*time.Millisecond {
		t.Fatalf("debounce = %v, want 500ms", cfg.DebounceDelay)
	}
	if cfg.CacheBackend != CacheSQLite || cfg.CacheTTL != 24*time.Hour {
		t.Fatalf("cache = %q ttl=%v", cfg.CacheBackend, cfg.CacheTTL)
	}
	if cfg.DefaultLayer != "mqosm" {
		t.Fatalf("default layer = %q", cfg.DefaultLayer)
	}
	if cfg.RecenterOnSRSChange {
		t.Fatalf("recenter should be off by default")
	}
	if cfg.SessionTTL != 30*time.Minute || cfg.MaxSessions != 1000 {
		t.Fatalf("session ttl/max = %v/%d, want 30m/1000", cfg.SessionTTL, cfg.MaxSessions)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DEBOUNCE_MS", "250")
	t.Setenv("CACHE_BACKEND", "REDIS")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("TRANS_RATE", "2.5")
	t.Setenv("RECENTER_ON_SRS_CHANGE", "true")
	t.Setenv("SESSION_TTL", "5m")
	t.Setenv("MAX_SESSIONS", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DebounceDelay != 250*time.Millisecond {
		t.Fatalf("debounce = %v, want 250ms", cfg.DebounceDelay)
	}
	if cfg.CacheBackend != CacheRedis || cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("cache = %q addr=%q", cfg.CacheBackend, cfg.RedisAddr)
	}
	if cfg.TransRate != 2.5 {
		t.Fatalf("rate = %v, want 2.5", cfg.TransRate)
	}
	if !cfg.RecenterOnSRSChange || cfg.SessionTTL != 5*time.Minute || cfg.MaxSessions != 0 {
		t.Fatalf("recenter=%v ttl=%v max=%d", cfg.RecenterOnSRSChange, cfg.SessionTTL, cfg.MaxSessions)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	for _, tc := range []struct {
		key   string
		value string
	}{
		{"DEBOUNCE_MS", "soon"},
		{"TRANS_BURST", "0"},
		{"CACHE_BACKEND", "memcached"},
		{"MAP_WIDTH", "-1"},
		{"RECENTER_ON_SRS_CHANGE", "sometimes"},
		{"SESSION_TTL", "-1m"},
		{"MAX_SESSIONS", "many"},
	} {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tc.key, tc.value)
			}
		})
	}
}

func TestValidateRequiresBackendAddress(t *testing.T) {
	cfg := Config{
		TransServiceURL: "https://epsg.io/trans",
		TransRate:       1,
		TransBurst:      1,
		MapWidth:        1,
		MapHeight:       1,
		CacheBackend:    CachePostgres,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected postgres without DATABASE_URL to fail")
	}
	cfg.DatabaseURL = "postgres://localhost/epsg"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
