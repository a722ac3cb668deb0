package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"coinboard/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

func TestBuildCandlesFromMarketChart(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	prices := [][]float64{
		{float64(base.UnixMilli()), 10},
		{float64(base.Add(2 * time.Minute).UnixMilli()), 12},
		{float64(base.Add(6 * time.Minute).UnixMilli()), 8},
		{float64(base.Add(8 * time.Minute).UnixMilli()), 9},
	}
	volumes := [][]float64{
		{float64(base.Add(5 * time.Minute).UnixMilli()), 100},
		{float64(base.Add(10 * time.Minute).UnixMilli()), 200},
	}

	candles := buildCandlesFromMarketChart("BTC", "5m", prices, volumes)
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(candles))
	}

	first := candles[0]
	if first.Open != 10 || first.High != 12 || first.Low != 10 || first.Close != 12 {
		t.Fatalf("unexpected first candle: %+v", first)
	}
	if first.Volume != 100 {
		t.Fatalf("expected volume 100, got %f", first.Volume)
	}

	second := candles[1]
	if !second.OpenTime.Equal(base.Add(5 * time.Minute)) {
		t.Fatalf("unexpected open time: %v", second.OpenTime)
	}
	if second.Open != 8 || second.Close != 9 {
		t.Fatalf("unexpected second candle: %+v", second)
	}
}

func TestFindClosestVolume(t *testing.T) {
	volumes := []volumePoint{
		{ts: 1000, vol: 1},
		{ts: 1500, vol: 5},
		{ts: 2000, vol: 10},
	}
	if vol := findClosestVolume(volumes, 1600); vol != 5 {
		t.Fatalf("expected volume 5, got %f", vol)
	}
}

func TestIntervalToDuration(t *testing.T) {
	tests := map[string]time.Duration{
		"5m":  5 * time.Minute,
		"15m": 15 * time.Minute,
		"1h":  time.Hour,
		"4h":  4 * time.Hour,
		"1d":  24 * time.Hour,
		"bad": 0,
	}
	for interval, expected := range tests {
		if got := intervalToDuration(interval); got != expected {
			t.Fatalf("%s expected %v, got %v", interval, expected, got)
		}
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(t *testing.T, status int, payload any) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(data)),
		Header:     make(http.Header),
	}
}

func newTestCoinGecko(t *testing.T, rt roundTripFunc) *CoinGeckoClient {
	t.Helper()
	c := NewCoinGeckoClient(trace.NewNoopTracerProvider().Tracer("test"), "http://example")
	c.client = &http.Client{Transport: rt}
	c.limiter = NewRateLimiter(10, time.Millisecond)
	return c
}

func TestCoinGeckoPrices(t *testing.T) {
	t.Parallel()

	c := newTestCoinGecko(t, func(req *http.Request) (*http.Response, error) {
		if !strings.Contains(req.URL.Path, "/simple/price") {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		return jsonResponse(t, http.StatusOK, map[string]map[string]float64{
			"bitcoin": {"usd": 100, "usd_24h_vol": 10, "usd_24h_change": 1.5},
		}), nil
	})

	result, err := NewCoinGeckoPrices(c).Call(context.Background(), domain.Params{"symbols": "btc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prices, ok := result.(map[string]*domain.PriceSnapshot)
	if !ok {
		t.Fatalf("unexpected payload type: %T", result)
	}
	snap, ok := prices["BTC"]
	if !ok || snap.PriceUSD != 100 {
		t.Fatalf("expected BTC snapshot, got %+v", snap)
	}
	if snap.Volume24h != 10 || snap.Change24hPct != 1.5 {
		t.Fatalf("unexpected snapshot values: %+v", snap)
	}
}

func TestCoinGeckoPricesRejectsUnknownSymbols(t *testing.T) {
	t.Parallel()

	c := newTestCoinGecko(t, func(req *http.Request) (*http.Response, error) {
		t.Fatalf("no request expected, got %s", req.URL)
		return nil, nil
	})

	_, err := NewCoinGeckoPrices(c).Call(context.Background(), domain.Params{"symbols": "NOPE"})
	if err == nil {
		t.Fatal("expected error for unknown symbols")
	}
	var re *domain.ResourceError
	if !errors.As(err, &re) || re.Kind != domain.FailProvider {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestCoinGeckoPricesClassifiesBadStatus(t *testing.T) {
	t.Parallel()

	c := newTestCoinGecko(t, func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusTooManyRequests,
			Body:       io.NopCloser(strings.NewReader("rate limited")),
			Header:     make(http.Header),
		}, nil
	})

	_, err := NewCoinGeckoPrices(c).Call(context.Background(), domain.Params{"symbols": "BTC"})
	var re *domain.ResourceError
	if !errors.As(err, &re) || re.Kind != domain.FailProvider {
		t.Fatalf("expected provider failure, got %v", err)
	}
}

func TestCoinGeckoOHLC(t *testing.T) {
	t.Parallel()

	c := newTestCoinGecko(t, func(req *http.Request) (*http.Response, error) {
		if !strings.Contains(req.URL.Path, "/coins/bitcoin/market_chart") {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		return jsonResponse(t, http.StatusOK, map[string]any{
			"prices": [][]float64{
				{float64(time.Now().Add(-10 * time.Minute).UnixMilli()), 10},
				{float64(time.Now().UnixMilli()), 12},
			},
			"total_volumes": [][]float64{
				{float64(time.Now().UnixMilli()), 100},
			},
		}), nil
	})

	result, err := NewCoinGeckoOHLC(c).Call(context.Background(), domain.Params{"symbol": "BTC", "interval": "5m"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	candles, ok := result.([]*domain.Candle)
	if !ok || len(candles) == 0 {
		t.Fatalf("expected candles, got %T %v", result, result)
	}
	if candles[0].Symbol != "BTC" || candles[0].Interval != "5m" {
		t.Fatalf("unexpected candle: %+v", candles[0])
	}
}
