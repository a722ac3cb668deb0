package domain

import "time"

// Category is a logical kind of dashboard data. Each category has its own
// provider pool and cache TTL.
type Category string

const (
	CategoryMarketData       Category = "market_data"
	CategoryOHLCV            Category = "ohlcv"
	CategoryNews             Category = "news"
	CategorySentiment        Category = "sentiment"
	CategoryBlockExplorer    Category = "block_explorer"
	CategoryRPCNode          Category = "rpc_node"
	CategoryWhaleTracking    Category = "whale_tracking"
	CategoryOnChainAnalytics Category = "onchain_analytics"
	CategoryGas              Category = "gas"
)

// AllCategories lists every category the engine serves.
var AllCategories = []Category{
	CategoryMarketData, CategoryOHLCV, CategoryNews, CategorySentiment,
	CategoryBlockExplorer, CategoryRPCNode, CategoryWhaleTracking,
	CategoryOnChainAnalytics, CategoryGas,
}

// Tier is the priority class of a resource. Lower value means tried first.
type Tier int

const (
	TierCritical  Tier = 1
	TierHigh      Tier = 2
	TierMedium    Tier = 3
	TierLow       Tier = 4
	TierEmergency Tier = 5
)

func (t Tier) String() string {
	switch t {
	case TierCritical:
		return "critical"
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	case TierLow:
		return "low"
	case TierEmergency:
		return "emergency"
	default:
		return "unknown"
	}
}

// ParseTier maps a config string to a Tier, defaulting to medium.
func ParseTier(s string) Tier {
	switch s {
	case "critical":
		return TierCritical
	case "high":
		return TierHigh
	case "medium":
		return TierMedium
	case "low":
		return TierLow
	case "emergency":
		return TierEmergency
	default:
		return TierMedium
	}
}

// AuthKind describes how a resource authenticates outbound calls.
type AuthKind string

const (
	AuthNone   AuthKind = "none"
	AuthAPIKey AuthKind = "api_key"
	AuthBearer AuthKind = "bearer_token"
)

// Params are the logical request parameters for one fetch. Adapters own the
// translation to each provider's actual wire format.
type Params map[string]string

// ResourceDescriptor is one backing provider for one capability category.
// Descriptors are built at process start and immutable afterwards.
type ResourceDescriptor struct {
	ID            string        `json:"id" yaml:"id"`
	Category      Category      `json:"category" yaml:"category"`
	Tier          Tier          `json:"tier" yaml:"-"`
	BaseEndpoint  string        `json:"base_endpoint" yaml:"base_endpoint"`
	RequiresAuth  bool          `json:"requires_auth" yaml:"requires_auth"`
	AuthKind      AuthKind      `json:"auth_kind" yaml:"auth_kind"`
	RateLimitHint int           `json:"rate_limit_hint" yaml:"rate_limit_hint"` // requests per minute, advisory
	Timeout       time.Duration `json:"timeout" yaml:"-"`
	Chain         string        `json:"chain,omitempty" yaml:"chain"` // set for rpc_node descriptors
}

// DefaultTimeoutForTier is the tier→timeout budget table. Overridable via
// configuration; these are the defaults.
func DefaultTimeoutForTier(t Tier) time.Duration {
	switch t {
	case TierCritical:
		return 5 * time.Second
	case TierHigh:
		return 8 * time.Second
	case TierMedium:
		return 15 * time.Second
	case TierLow:
		return 25 * time.Second
	case TierEmergency:
		return 45 * time.Second
	default:
		return 15 * time.Second
	}
}
