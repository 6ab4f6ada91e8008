package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Cache backends understood by the server composition root.
const (
	CacheSQLite   = "sqlite"
	CachePostgres = "postgres"
	CacheRedis    = "redis"
	CacheNone     = "none"
)

// Config holds the runtime settings of the map service.
type Config struct {
	Port            string
	DBPath          string
	SeedPath        string
	TransServiceURL string
	TransRate       float64
	TransBurst      int
	DebounceDelay   time.Duration
	DefaultLayer    string

	CacheBackend string
	DatabaseURL  string
	RedisAddr    string
	CacheTTL     time.Duration

	MapWidth  int
	MapHeight int

	RecenterOnSRSChange bool
	SessionTTL          time.Duration
	MaxSessions         int
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load reads the configuration from the environment. Callers load .env first.
func Load() (Config, error) {
	cfg := Config{
		Port:            Get("PORT", "8080"),
		DBPath:          Get("DB_PATH", "data/app.db"),
		SeedPath:        Get("SEED_PATH", "data/seeds/srs.json"),
		TransServiceURL: Get("TRANS_SERVICE_URL", "https://epsg.io/trans"),
		DefaultLayer:    Get("DEFAULT_LAYER", "mqosm"),
		CacheBackend:    strings.ToLower(Get("CACHE_BACKEND", CacheSQLite)),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
	}

	var err error
	if cfg.TransRate, err = strconv.ParseFloat(Get("TRANS_RATE", "5"), 64); err != nil {
		return Config{}, fmt.Errorf("load config: TRANS_RATE: %w", err)
	}
	if cfg.TransBurst, err = strconv.Atoi(Get("TRANS_BURST", "2")); err != nil {
		return Config{}, fmt.Errorf("load config: TRANS_BURST: %w", err)
	}

	debounceMS, err := strconv.Atoi(Get("DEBOUNCE_MS", "500"))
	if err != nil {
		return Config{}, fmt.Errorf("load config: DEBOUNCE_MS: %w", err)
	}
	cfg.DebounceDelay = time.Duration(debounceMS) * time.Millisecond

	if cfg.CacheTTL, err = time.ParseDuration(Get("CACHE_TTL", "24h")); err != nil {
		return Config{}, fmt.Errorf("load config: CACHE_TTL: %w", err)
	}
	if cfg.MapWidth, err = strconv.Atoi(Get("MAP_WIDTH", "1024")); err != nil {
		return Config{}, fmt.Errorf("load config: MAP_WIDTH: %w", err)
	}
	if cfg.MapHeight, err = strconv.Atoi(Get("MAP_HEIGHT", "768")); err != nil {
		return Config{}, fmt.Errorf("load config: MAP_HEIGHT: %w", err)
	}

	if cfg.RecenterOnSRSChange, err = strconv.ParseBool(Get("RECENTER_ON_SRS_CHANGE", "false")); err != nil {
		return Config{}, fmt.Errorf("load config: RECENTER_ON_SRS_CHANGE: %w", err)
	}
	if cfg.SessionTTL, err = time.ParseDuration(Get("SESSION_TTL", "30m")); err != nil {
		return Config{}, fmt.Errorf("load config: SESSION_TTL: %w", err)
	}
	if cfg.MaxSessions, err = strconv.Atoi(Get("MAX_SESSIONS", "1000")); err != nil {
		return Config{}, fmt.Errorf("load config: MAX_SESSIONS: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration can be used to start the server.
func (c Config) Validate() error {
	if strings.TrimSpace(c.TransServiceURL) == "" {
		return errors.New("config: TRANS_SERVICE_URL must not be empty")
	}
	if c.TransRate <= 0 || c.TransBurst < 1 {
		return fmt.Errorf("config: transform rate must be positive (rate=%v burst=%d)", c.TransRate, c.TransBurst)
	}
	if c.DebounceDelay < 0 {
		return fmt.Errorf("config: DEBOUNCE_MS must not be negative, got %v", c.DebounceDelay)
	}
	if c.SessionTTL < 0 || c.MaxSessions < 0 {
		return fmt.Errorf("config: SESSION_TTL and MAX_SESSIONS must not be negative (ttl=%v max=%d)", c.SessionTTL, c.MaxSessions)
	}
	if c.MapWidth <= 0 || c.MapHeight <= 0 {
		return fmt.Errorf("config: map size must be positive, got %dx%d", c.MapWidth, c.MapHeight)
	}

	switch c.CacheBackend {
	case CacheSQLite, CacheNone:
	case CachePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("config: DATABASE_URL is required for the postgres cache")
		}
	case CacheRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			return errors.New("config: REDIS_ADDR is required for the redis cache")
		}
	default:
		return fmt.Errorf("config: unknown CACHE_BACKEND %q", c.CacheBackend)
	}

	return nil
}
