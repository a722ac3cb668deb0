package config

import (
	"fmt"
	"os"
	"time"

	"coinboard/internal/domain"

	"gopkg.in/yaml.v3"
)

// catalogEntry is one resource row in the YAML catalog. Tier and timeout are
// strings/seconds on the wire and converted on load.
type catalogEntry struct {
	ID            string `yaml:"id"`
	Category      string `yaml:"category"`
	Tier          string `yaml:"tier"`
	BaseEndpoint  string `yaml:"base_endpoint"`
	RequiresAuth  bool   `yaml:"requires_auth"`
	AuthKind      string `yaml:"auth_kind"`
	RateLimitHint int    `yaml:"rate_limit_hint"`
	TimeoutSecs   int    `yaml:"timeout_secs"`
	Chain         string `yaml:"chain"`
}

type catalogFile struct {
	Resources []catalogEntry `yaml:"resources"`
}

// LoadCatalog reads resource descriptors from a YAML file. An empty path
// returns the built-in catalog.
func LoadCatalog(path string) ([]domain.ResourceDescriptor, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resource catalog: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse resource catalog: %w", err)
	}
	if len(f.Resources) == 0 {
		return nil, fmt.Errorf("resource catalog %s has no resources", path)
	}

	known := make(map[domain.Category]bool, len(domain.AllCategories))
	for _, c := range domain.AllCategories {
		known[c] = true
	}

	descriptors := make([]domain.ResourceDescriptor, 0, len(f.Resources))
	for i, e := range f.Resources {
		if e.ID == "" {
			return nil, fmt.Errorf("resource catalog entry %d has no id", i)
		}
		category := domain.Category(e.Category)
		if !known[category] {
			return nil, fmt.Errorf("resource %s: unknown category %q", e.ID, e.Category)
		}
		tier := domain.ParseTier(e.Tier)
		timeout := domain.DefaultTimeoutForTier(tier)
		if e.TimeoutSecs > 0 {
			timeout = time.Duration(e.TimeoutSecs) * time.Second
		}
		authKind := domain.AuthKind(e.AuthKind)
		if authKind == "" {
			authKind = domain.AuthNone
		}
		descriptors = append(descriptors, domain.ResourceDescriptor{
			ID:            e.ID,
			Category:      category,
			Tier:          tier,
			BaseEndpoint:  e.BaseEndpoint,
			RequiresAuth:  e.RequiresAuth,
			AuthKind:      authKind,
			RateLimitHint: e.RateLimitHint,
			Timeout:       timeout,
			Chain:         e.Chain,
		})
	}
	return descriptors, nil
}

// DefaultCatalog is the built-in provider pool, used when no catalog file is
// configured.
func DefaultCatalog() []domain.ResourceDescriptor {
	entries := []struct {
		id       string
		category domain.Category
		tier     domain.Tier
		endpoint string
		rate     int
		chain    string
	}{
		{"coingecko-prices", domain.CategoryMarketData, domain.TierCritical, "https://api.coingecko.com/api/v3", 8, ""},
		{"binance-prices", domain.CategoryMarketData, domain.TierHigh, "https://api.binance.com/api/v3", 1200, ""},
		{"coincap-prices", domain.CategoryMarketData, domain.TierEmergency, "https://api.coincap.io/v2", 200, ""},

		{"binance-ohlc", domain.CategoryOHLCV, domain.TierCritical, "https://api.binance.com/api/v3", 1200, ""},
		{"coingecko-ohlc", domain.CategoryOHLCV, domain.TierHigh, "https://api.coingecko.com/api/v3", 8, ""},

		{"rss-coindesk", domain.CategoryNews, domain.TierHigh, "https://www.coindesk.com/arc/outboundfeeds/rss/", 30, ""},
		{"rss-cointelegraph", domain.CategoryNews, domain.TierMedium, "https://cointelegraph.com/rss", 30, ""},
		{"reddit-cryptocurrency", domain.CategoryNews, domain.TierLow, "https://www.reddit.com", 60, ""},

		{"feargreed", domain.CategorySentiment, domain.TierMedium, "https://api.alternative.me", 60, ""},

		{"mempool-stats", domain.CategoryBlockExplorer, domain.TierHigh, "https://mempool.space", 60, "bitcoin"},
		{"blockscout-stats", domain.CategoryBlockExplorer, domain.TierHigh, "https://eth.blockscout.com", 60, "ethereum"},

		{"eth-llamarpc", domain.CategoryRPCNode, domain.TierCritical, "https://eth.llamarpc.com", 120, "ethereum"},
		{"eth-publicnode", domain.CategoryRPCNode, domain.TierCritical, "https://ethereum-rpc.publicnode.com", 120, "ethereum"},
		{"eth-ankr", domain.CategoryRPCNode, domain.TierCritical, "https://rpc.ankr.com/eth", 120, "ethereum"},
		{"eth-cloudflare", domain.CategoryRPCNode, domain.TierHigh, "https://cloudflare-eth.com", 120, "ethereum"},

		{"blockscout-whales", domain.CategoryWhaleTracking, domain.TierMedium, "https://eth.blockscout.com", 60, "ethereum"},

		{"blockscout-analytics", domain.CategoryOnChainAnalytics, domain.TierMedium, "https://eth.blockscout.com", 60, "ethereum"},

		{"blockscout-gas", domain.CategoryGas, domain.TierHigh, "https://eth.blockscout.com", 60, "ethereum"},
		{"rpc-gas", domain.CategoryGas, domain.TierMedium, "https://eth.llamarpc.com", 120, "ethereum"},
		{"mempool-fees", domain.CategoryGas, domain.TierHigh, "https://mempool.space", 60, "bitcoin"},
	}

	out := make([]domain.ResourceDescriptor, 0, len(entries))
	for _, e := range entries {
		out = append(out, domain.ResourceDescriptor{
			ID:            e.id,
			Category:      e.category,
			Tier:          e.tier,
			BaseEndpoint:  e.endpoint,
			AuthKind:      domain.AuthNone,
			RateLimitHint: e.rate,
			Timeout:       domain.DefaultTimeoutForTier(e.tier),
			Chain:         e.chain,
		})
	}
	return out
}
