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

const coincapBaseURL = "https://api.coincap.io/v2"

// CoinCapPrices serves market_data as the last line of defense behind
// CoinGecko and Binance. CoinCap keys assets by slug, which happens to match
// the CoinGecko identifiers for everything we track.
type CoinCapPrices struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewCoinCapPrices(tracer trace.Tracer, baseURL string) *CoinCapPrices {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = coincapBaseURL
	}
	return &CoinCapPrices{
		client:  &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
	}
}

func (p *CoinCapPrices) Call(ctx context.Context, params domain.Params) (any, error) {
	ctx, span := p.tracer.Start(ctx, "coincap.prices")
	defer span.End()

	symbols := symbolsFromParams(params)
	ids := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		if id, ok := domain.CoinGeckoID[sym]; ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, domain.NewResourceError("coincap", domain.FailProvider,
			fmt.Errorf("no known symbols in %v", symbols))
	}

	url := fmt.Sprintf("%s/assets?ids=%s", p.baseURL, strings.Join(ids, ","))

	var raw struct {
		Data []struct {
			ID                string `json:"id"`
			Symbol            string `json:"symbol"`
			PriceUSD          string `json:"priceUsd"`
			VolumeUSD24Hr     string `json:"volumeUsd24Hr"`
			ChangePercent24Hr string `json:"changePercent24Hr"`
		} `json:"data"`
		Timestamp int64 `json:"timestamp"`
	}
	if err := getJSON(ctx, p.client, "coincap", url, nil, &raw); err != nil {
		return nil, err
	}

	ts := raw.Timestamp / 1000
	if ts == 0 {
		ts = time.Now().Unix()
	}
	result := make(map[string]*domain.PriceSnapshot, len(raw.Data))
	for _, a := range raw.Data {
		sym := strings.ToUpper(a.Symbol)
		result[sym] = &domain.PriceSnapshot{
			Symbol:          sym,
			PriceUSD:        parseFloatString(a.PriceUSD),
			Volume24h:       parseFloatString(a.VolumeUSD24Hr),
			Change24hPct:    parseFloatString(a.ChangePercent24Hr),
			LastUpdatedUnix: ts,
		}
	}
	if len(result) == 0 {
		return nil, domain.NewResourceError("coincap", domain.FailProvider,
			fmt.Errorf("empty asset list for %v", ids))
	}
	return result, nil
}
