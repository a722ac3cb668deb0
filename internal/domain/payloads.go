package domain

import "time"

// Canonical payload shapes per category. Adapters normalize every provider's
// response into one of these before it reaches the orchestrator's cache.

// PriceSnapshot represents the latest price data for an asset.
type PriceSnapshot struct {
	Symbol          string  `json:"symbol"`
	PriceUSD        float64 `json:"price_usd"`
	Volume24h       float64 `json:"volume_24h"`
	Change24hPct    float64 `json:"change_24h_pct"`
	LastUpdatedUnix int64   `json:"last_updated_unix"`
}

// Candle represents a single OHLCV candle for an asset at a given interval.
type Candle struct {
	Symbol   string    `json:"symbol"`
	Interval string    `json:"interval"`
	OpenTime time.Time `json:"open_time"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
}

// NewsItem is one normalized headline from a news feed.
type NewsItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// SentimentIndex is a normalized market sentiment reading (0-100).
type SentimentIndex struct {
	Value          int       `json:"value"`
	Classification string    `json:"classification"`
	Timestamp      time.Time `json:"timestamp"`
}

// ChainStats summarizes block-explorer level activity for one chain.
type ChainStats struct {
	Chain        string    `json:"chain"`
	BlockHeight  int64     `json:"block_height"`
	TxCount24h   float64   `json:"tx_count_24h"`
	AvgFee       float64   `json:"avg_fee"`
	FetchedAt    time.Time `json:"fetched_at"`
	ActivityNote string    `json:"activity_note,omitempty"`
}

// RPCStatus is the normalized answer from a blockchain RPC node.
type RPCStatus struct {
	Chain        string  `json:"chain"`
	BlockNumber  int64   `json:"block_number"`
	GasPriceGwei float64 `json:"gas_price_gwei"`
	NodeID       string  `json:"node_id"`
}

// GasEstimate is the normalized fee recommendation payload. Unit is
// chain-specific: gwei for ethereum, sat/vB for bitcoin.
type GasEstimate struct {
	Chain     string    `json:"chain"`
	Unit      string    `json:"unit"`
	Fast      float64   `json:"fast"`
	Avg       float64   `json:"avg"`
	Slow      float64   `json:"slow"`
	FetchedAt time.Time `json:"fetched_at"`
}

// WhaleTransfer is one large on-chain movement surfaced by whale tracking.
type WhaleTransfer struct {
	Chain     string    `json:"chain"`
	TxHash    string    `json:"tx_hash"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	AmountUSD float64   `json:"amount_usd"`
	Timestamp time.Time `json:"timestamp"`
}

// OnChainMetrics aggregates analytics-grade activity numbers for one chain.
type OnChainMetrics struct {
	Chain           string    `json:"chain"`
	ActiveAddresses int64     `json:"active_addresses"`
	TxThroughput    float64   `json:"tx_throughput"`
	FeesTotal24h    float64   `json:"fees_total_24h"`
	FetchedAt       time.Time `json:"fetched_at"`
}

// CoinGeckoID maps internal symbols to CoinGecko API identifiers.
var CoinGeckoID = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"DOGE":  "dogecoin",
	"DOT":   "polkadot",
	"AVAX":  "avalanche-2",
	"LINK":  "chainlink",
	"MATIC": "matic-network",
}

// CoinGeckoIDToSymbol is the reverse mapping.
var CoinGeckoIDToSymbol map[string]string

func init() {
	CoinGeckoIDToSymbol = make(map[string]string, len(CoinGeckoID))
	for sym, id := range CoinGeckoID {
		CoinGeckoIDToSymbol[id] = sym
	}
}

// SupportedSymbols lists all tracked crypto symbols.
var SupportedSymbols = []string{
	"BTC", "ETH", "SOL", "XRP", "ADA",
	"DOGE", "DOT", "AVAX", "LINK", "MATIC",
}

// SupportedIntervals defines the candle intervals we serve.
var SupportedIntervals = []string{"5m", "15m", "1h", "4h", "1d"}
