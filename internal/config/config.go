package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPBind string
	HTTPPort int
	APIKey   string
	RedisURL string

	CatalogPath string

	BreakerFailureThreshold int
	BreakerRecoveryTimeout  time.Duration

	HealthWindowSize int
	ProbeInterval    time.Duration
	ProbeIdleAfter   time.Duration

	RPCRotationSize int
	WhaleMinUSD     float64
}

func Load() *Config {
	cfg := &Config{
		APIKey:      os.Getenv("API_KEY"),
		RedisURL:    strings.TrimSpace(os.Getenv("REDIS_URL")),
		CatalogPath: strings.TrimSpace(os.Getenv("RESOURCE_CATALOG")),
	}

	if cfg.APIKey == "" {
		log.Println("Warning: API_KEY not set, API authentication disabled")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, running with in-memory cache only")
	}

	cfg.HTTPBind = strings.TrimSpace(os.Getenv("HTTP_BIND"))
	if cfg.HTTPBind == "" {
		cfg.HTTPBind = "0.0.0.0"
	}

	cfg.HTTPPort = 8080
	if v := strings.TrimSpace(os.Getenv("HTTP_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPPort = n
		}
	}

	cfg.BreakerFailureThreshold = 5
	if v := os.Getenv("BREAKER_FAILURE_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BreakerFailureThreshold = n
		}
	}

	cfg.BreakerRecoveryTimeout = 60 * time.Second
	if v := os.Getenv("BREAKER_RECOVERY_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BreakerRecoveryTimeout = time.Duration(n) * time.Second
		}
	}

	cfg.HealthWindowSize = 50
	if v := os.Getenv("HEALTH_WINDOW_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HealthWindowSize = n
		}
	}

	cfg.ProbeInterval = 60 * time.Second
	if v := os.Getenv("PROBE_INTERVAL_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ProbeInterval = time.Duration(n) * time.Second
		}
	}

	cfg.ProbeIdleAfter = 5 * time.Minute
	if v := os.Getenv("PROBE_IDLE_AFTER_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ProbeIdleAfter = time.Duration(n) * time.Second
		}
	}

	cfg.RPCRotationSize = 3
	if v := os.Getenv("RPC_ROTATION_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RPCRotationSize = n
		}
	}

	cfg.WhaleMinUSD = 1_000_000
	if v := os.Getenv("WHALE_MIN_USD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.WhaleMinUSD = f
		}
	}

	return cfg
}
