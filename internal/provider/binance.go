package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"coinboard/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const binanceBaseURL = "https://api.binance.com/api/v3"

// binanceTicker is one row of the /ticker/24hr response. Binance returns
// numbers as strings.
type binanceTicker struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	QuoteVolume        string `json:"quoteVolume"`
	PriceChangePercent string `json:"priceChangePercent"`
	CloseTime          int64  `json:"closeTime"`
}

// BinanceClient is the shared transport for the Binance public API.
type BinanceClient struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewBinanceClient(tracer trace.Tracer, baseURL string) *BinanceClient {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = binanceBaseURL
	}
	return &BinanceClient{
		client:  &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
	}
}

// BinancePrices serves market_data from the 24hr ticker endpoint, batching
// all requested symbols into a single call.
type BinancePrices struct {
	*BinanceClient
}

func NewBinancePrices(c *BinanceClient) *BinancePrices { return &BinancePrices{c} }

func (p *BinancePrices) Call(ctx context.Context, params domain.Params) (any, error) {
	ctx, span := p.tracer.Start(ctx, "binance.prices")
	defer span.End()

	symbols := symbolsFromParams(params)
	pairs := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		pairs = append(pairs, fmt.Sprintf("%q", sym+"USDT"))
	}
	url := fmt.Sprintf("%s/ticker/24hr?symbols=[%s]", p.baseURL, strings.Join(pairs, ","))

	var tickers []binanceTicker
	if err := getJSON(ctx, p.client, "binance", url, nil, &tickers); err != nil {
		return nil, err
	}

	result := make(map[string]*domain.PriceSnapshot, len(tickers))
	for _, t := range tickers {
		sym := strings.TrimSuffix(t.Symbol, "USDT")
		result[sym] = &domain.PriceSnapshot{
			Symbol:          sym,
			PriceUSD:        parseFloatString(t.LastPrice),
			Volume24h:       parseFloatString(t.QuoteVolume),
			Change24hPct:    parseFloatString(t.PriceChangePercent),
			LastUpdatedUnix: t.CloseTime / 1000,
		}
	}
	if len(result) == 0 {
		return nil, domain.NewResourceError("binance", domain.FailProvider,
			fmt.Errorf("no tickers returned for %v", symbols))
	}
	return result, nil
}

// BinanceOHLC serves ohlcv from the klines endpoint, which returns candles
// natively at every interval we support.
type BinanceOHLC struct {
	*BinanceClient
}

func NewBinanceOHLC(c *BinanceClient) *BinanceOHLC { return &BinanceOHLC{c} }

func (p *BinanceOHLC) Call(ctx context.Context, params domain.Params) (any, error) {
	ctx, span := p.tracer.Start(ctx, "binance.klines")
	defer span.End()

	symbol := strings.ToUpper(strings.TrimSpace(params["symbol"]))
	if symbol == "" {
		return nil, domain.NewResourceError("binance", domain.FailProvider,
			fmt.Errorf("missing symbol"))
	}
	interval := params["interval"]
	if interval == "" {
		interval = "1h"
	}

	url := fmt.Sprintf("%s/klines?symbol=%sUSDT&interval=%s&limit=200", p.baseURL, symbol, interval)

	// Each kline is a positional array:
	// [openTime, open, high, low, close, volume, closeTime, ...]
	var raw [][]any
	if err := getJSON(ctx, p.client, "binance", url, nil, &raw); err != nil {
		return nil, err
	}

	candles := make([]*domain.Candle, 0, len(raw))
	for _, k := range raw {
		if len(k) < 6 {
			continue
		}
		candles = append(candles, &domain.Candle{
			Symbol:   symbol,
			Interval: interval,
			OpenTime: time.UnixMilli(int64(asFloat(k[0]))).UTC(),
			Open:     asFloat(k[1]),
			High:     asFloat(k[2]),
			Low:      asFloat(k[3]),
			Close:    asFloat(k[4]),
			Volume:   asFloat(k[5]),
		})
	}
	return candles, nil
}
