package provider

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"coinboard/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const coingeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoClient is the shared transport for the CoinGecko free API, with
// built-in rate limiting (the free tier allows roughly 8 requests/minute).
type CoinGeckoClient struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
}

func NewCoinGeckoClient(tracer trace.Tracer, baseURL string) *CoinGeckoClient {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = coingeckoBaseURL
	}
	return &CoinGeckoClient{
		client:  &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
		limiter: NewRateLimiter(8, 7500*time.Millisecond),
	}
}

// CoinGeckoPrices serves market_data: current prices for the requested
// symbols in a single batched API call.
type CoinGeckoPrices struct {
	*CoinGeckoClient
}

func NewCoinGeckoPrices(c *CoinGeckoClient) *CoinGeckoPrices { return &CoinGeckoPrices{c} }

func (p *CoinGeckoPrices) Call(ctx context.Context, params domain.Params) (any, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.prices")
	defer span.End()

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, domain.NewResourceError("coingecko", domain.FailTimeout, err)
	}

	symbols := symbolsFromParams(params)
	ids := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		if id, ok := domain.CoinGeckoID[sym]; ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, domain.NewResourceError("coingecko", domain.FailProvider,
			fmt.Errorf("no known symbols in %v", symbols))
	}

	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd&include_24hr_vol=true&include_24hr_change=true",
		p.baseURL, strings.Join(ids, ","))

	// Response shape: {"bitcoin": {"usd": 97000, "usd_24h_vol": 45000000000, "usd_24h_change": 2.34}, ...}
	var raw map[string]map[string]float64
	if err := getJSON(ctx, p.client, "coingecko", url, nil, &raw); err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	result := make(map[string]*domain.PriceSnapshot, len(raw))
	for cgID, data := range raw {
		symbol, ok := domain.CoinGeckoIDToSymbol[cgID]
		if !ok {
			continue
		}
		result[symbol] = &domain.PriceSnapshot{
			Symbol:          symbol,
			PriceUSD:        data["usd"],
			Volume24h:       data["usd_24h_vol"],
			Change24hPct:    data["usd_24h_change"],
			LastUpdatedUnix: now,
		}
	}
	return result, nil
}

// CoinGeckoOHLC serves ohlcv: candles constructed from market_chart data.
// days=1 gives ~5min granularity (5m/15m/1h candles); days=30 gives ~1h
// granularity (4h/1d candles).
type CoinGeckoOHLC struct {
	*CoinGeckoClient
}

func NewCoinGeckoOHLC(c *CoinGeckoClient) *CoinGeckoOHLC { return &CoinGeckoOHLC{c} }

func (p *CoinGeckoOHLC) Call(ctx context.Context, params domain.Params) (any, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.ohlc")
	defer span.End()

	symbol := strings.ToUpper(strings.TrimSpace(params["symbol"]))
	cgID, ok := domain.CoinGeckoID[symbol]
	if !ok {
		return nil, domain.NewResourceError("coingecko", domain.FailProvider,
			fmt.Errorf("unsupported symbol: %s", symbol))
	}
	interval := params["interval"]
	if interval == "" {
		interval = "1h"
	}

	days := 1
	if interval == "4h" || interval == "1d" {
		days = 30
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, domain.NewResourceError("coingecko", domain.FailTimeout, err)
	}

	url := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=usd&days=%d", p.baseURL, cgID, days)

	var raw struct {
		Prices       [][]float64 `json:"prices"`
		TotalVolumes [][]float64 `json:"total_volumes"`
	}
	if err := getJSON(ctx, p.client, "coingecko", url, nil, &raw); err != nil {
		return nil, err
	}

	return buildCandlesFromMarketChart(symbol, interval, raw.Prices, raw.TotalVolumes), nil
}

type volumePoint struct {
	ts  int64
	vol float64
}

// buildCandlesFromMarketChart constructs candles of the given interval from
// raw market_chart price/volume arrays.
func buildCandlesFromMarketChart(symbol, interval string, prices, volumes [][]float64) []*domain.Candle {
	if len(prices) == 0 {
		return nil
	}

	intervalDuration := intervalToDuration(interval)
	if intervalDuration == 0 {
		return nil
	}

	volPoints := make([]volumePoint, 0, len(volumes))
	for _, v := range volumes {
		if len(v) >= 2 {
			volPoints = append(volPoints, volumePoint{ts: int64(v[0]), vol: v[1]})
		}
	}

	sort.Slice(prices, func(i, j int) bool {
		return prices[i][0] < prices[j][0]
	})

	type bucket struct {
		open     float64
		high     float64
		low      float64
		close    float64
		openTime time.Time
	}

	buckets := make(map[int64]*bucket)
	for _, pt := range prices {
		if len(pt) < 2 {
			continue
		}
		tsMs := int64(pt[0])
		price := pt[1]
		t := time.UnixMilli(tsMs)

		bucketTS := t.Truncate(intervalDuration).UnixMilli()
		b, exists := buckets[bucketTS]
		if !exists {
			buckets[bucketTS] = &bucket{
				open:     price,
				high:     price,
				low:      price,
				close:    price,
				openTime: time.UnixMilli(bucketTS),
			}
		} else {
			b.high = math.Max(b.high, price)
			b.low = math.Min(b.low, price)
			b.close = price // last price in the bucket becomes the close
		}
	}

	sortedKeys := make([]int64, 0, len(buckets))
	for k := range buckets {
		sortedKeys = append(sortedKeys, k)
	}
	sort.Slice(sortedKeys, func(i, j int) bool { return sortedKeys[i] < sortedKeys[j] })

	candles := make([]*domain.Candle, 0, len(sortedKeys))
	for _, k := range sortedKeys {
		b := buckets[k]
		vol := findClosestVolume(volPoints, k+int64(intervalDuration/time.Millisecond))
		candles = append(candles, &domain.Candle{
			Symbol:   symbol,
			Interval: interval,
			OpenTime: b.openTime.UTC(),
			Open:     b.open,
			High:     b.high,
			Low:      b.low,
			Close:    b.close,
			Volume:   vol,
		})
	}
	return candles
}

func findClosestVolume(volumes []volumePoint, targetMs int64) float64 {
	if len(volumes) == 0 {
		return 0
	}
	closest := volumes[0]
	minDiff := int64(math.MaxInt64)
	for _, v := range volumes {
		diff := v.ts - targetMs
		if diff < 0 {
			diff = -diff
		}
		if diff < minDiff {
			minDiff = diff
			closest = v
		}
	}
	return closest.vol
}

func intervalToDuration(interval string) time.Duration {
	switch interval {
	case "5m":
		return 5 * time.Minute
	case "15m":
		return 15 * time.Minute
	case "1h":
		return time.Hour
	case "4h":
		return 4 * time.Hour
	case "1d":
		return 24 * time.Hour
	default:
		return 0
	}
}
