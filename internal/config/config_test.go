package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"coinboard/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"API_KEY", "REDIS_URL", "HTTP_BIND", "HTTP_PORT",
		"BREAKER_FAILURE_THRESHOLD", "BREAKER_RECOVERY_SECS",
		"HEALTH_WINDOW_SIZE", "PROBE_INTERVAL_SECS", "RPC_ROTATION_SIZE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()
	if cfg.HTTPPort != 8080 || cfg.HTTPBind != "0.0.0.0" {
		t.Fatalf("unexpected http defaults: %+v", cfg)
	}
	if cfg.BreakerFailureThreshold != 5 || cfg.BreakerRecoveryTimeout != 60*time.Second {
		t.Fatalf("unexpected breaker defaults: %+v", cfg)
	}
	if cfg.HealthWindowSize != 50 || cfg.RPCRotationSize != 3 {
		t.Fatalf("unexpected health defaults: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("BREAKER_FAILURE_THRESHOLD", "3")
	t.Setenv("BREAKER_RECOVERY_SECS", "30")
	t.Setenv("WHALE_MIN_USD", "500000")

	cfg := Load()
	if cfg.HTTPPort != 9999 {
		t.Fatalf("expected port override, got %d", cfg.HTTPPort)
	}
	if cfg.BreakerFailureThreshold != 3 || cfg.BreakerRecoveryTimeout != 30*time.Second {
		t.Fatalf("unexpected breaker overrides: %+v", cfg)
	}
	if cfg.WhaleMinUSD != 500000 {
		t.Fatalf("unexpected whale threshold: %f", cfg.WhaleMinUSD)
	}
}

func TestLoadIgnoresGarbageValues(t *testing.T) {
	t.Setenv("HTTP_PORT", "not-a-number")
	t.Setenv("BREAKER_FAILURE_THRESHOLD", "-2")

	cfg := Load()
	if cfg.HTTPPort != 8080 || cfg.BreakerFailureThreshold != 5 {
		t.Fatalf("garbage env values must fall back to defaults: %+v", cfg)
	}
}

func TestDefaultCatalogCoversEveryCategory(t *testing.T) {
	t.Parallel()

	byCategory := make(map[domain.Category]int)
	seen := make(map[string]bool)
	for _, d := range DefaultCatalog() {
		if seen[d.ID] {
			t.Fatalf("duplicate resource id %s", d.ID)
		}
		seen[d.ID] = true
		if d.Timeout <= 0 {
			t.Fatalf("resource %s has no timeout", d.ID)
		}
		byCategory[d.Category]++
	}
	for _, c := range domain.AllCategories {
		if byCategory[c] == 0 {
			t.Fatalf("category %s has no resources", c)
		}
	}
	if byCategory[domain.CategoryRPCNode] < 3 {
		t.Fatalf("rpc_node pool too small for rotation: %d", byCategory[domain.CategoryRPCNode])
	}
}

func TestLoadCatalogFromYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	body := `resources:
  - id: custom-prices
    category: market_data
    tier: critical
    base_endpoint: https://example.com
    rate_limit_hint: 10
  - id: custom-node
    category: rpc_node
    tier: high
    base_endpoint: https://node.example.com
    timeout_secs: 3
    chain: ethereum
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	descriptors, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(descriptors) != 2 {
		t.Fatalf("expected 2 descriptors, got %d", len(descriptors))
	}
	first := descriptors[0]
	if first.Tier != domain.TierCritical || first.Timeout != 5*time.Second {
		t.Fatalf("tier defaults not applied: %+v", first)
	}
	second := descriptors[1]
	if second.Timeout != 3*time.Second || second.Chain != "ethereum" {
		t.Fatalf("explicit timeout not applied: %+v", second)
	}
}

func TestLoadCatalogRejectsUnknownCategory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	body := `resources:
  - id: bad
    category: nonsense
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	if _, err := LoadCatalog(path); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestLoadCatalogEmptyPathUsesDefaults(t *testing.T) {
	t.Parallel()

	descriptors, err := LoadCatalog("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(descriptors) == 0 {
		t.Fatal("expected built-in catalog")
	}
}
