package main

import (
	"fmt"
	"strings"

	"coinboard/internal/config"
	"coinboard/internal/domain"
	"coinboard/internal/provider"
	"coinboard/internal/registry"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// bindAdapters registers every catalog descriptor with a concrete adapter.
// Adapter selection is by id prefix, so a custom catalog can add more feeds
// or nodes without code changes. Provider families share one client so rate
// limits apply across their adapters.
func bindAdapters(catalog *registry.Registry, descriptors []domain.ResourceDescriptor, tracer trace.Tracer, cfg *config.Config, logger zerolog.Logger) error {
	var (
		coingecko  *provider.CoinGeckoClient
		binance    *provider.BinanceClient
		mempool    *provider.MempoolClient
		blockscout *provider.BlockscoutClient
	)
	coingeckoClient := func(baseURL string) *provider.CoinGeckoClient {
		if coingecko == nil {
			coingecko = provider.NewCoinGeckoClient(tracer, baseURL)
		}
		return coingecko
	}
	binanceClient := func(baseURL string) *provider.BinanceClient {
		if binance == nil {
			binance = provider.NewBinanceClient(tracer, baseURL)
		}
		return binance
	}
	mempoolClient := func(baseURL string) *provider.MempoolClient {
		if mempool == nil {
			mempool = provider.NewMempoolClient(tracer, baseURL)
		}
		return mempool
	}
	blockscoutClient := func(baseURL string) *provider.BlockscoutClient {
		if blockscout == nil {
			blockscout = provider.NewBlockscoutClient(tracer, baseURL)
		}
		return blockscout
	}

	for _, desc := range descriptors {
		var adapter registry.Adapter

		switch {
		case desc.ID == "coingecko-prices":
			adapter = provider.NewCoinGeckoPrices(coingeckoClient(desc.BaseEndpoint))
		case desc.ID == "coingecko-ohlc":
			adapter = provider.NewCoinGeckoOHLC(coingeckoClient(desc.BaseEndpoint))
		case desc.ID == "binance-prices":
			adapter = provider.NewBinancePrices(binanceClient(desc.BaseEndpoint))
		case desc.ID == "binance-ohlc":
			adapter = provider.NewBinanceOHLC(binanceClient(desc.BaseEndpoint))
		case desc.ID == "coincap-prices":
			adapter = provider.NewCoinCapPrices(tracer, desc.BaseEndpoint)
		case desc.ID == "feargreed":
			adapter = provider.NewFearGreed(tracer, desc.BaseEndpoint)
		case strings.HasPrefix(desc.ID, "rss-"):
			adapter = provider.NewRSSNews(tracer, desc.ID, desc.BaseEndpoint)
		case strings.HasPrefix(desc.ID, "reddit-"):
			adapter = provider.NewRedditNews(tracer, desc.BaseEndpoint, strings.TrimPrefix(desc.ID, "reddit-"))
		case desc.ID == "mempool-stats":
			adapter = provider.NewMempoolStats(mempoolClient(desc.BaseEndpoint))
		case desc.ID == "mempool-fees":
			adapter = provider.NewMempoolFees(mempoolClient(desc.BaseEndpoint))
		case desc.ID == "blockscout-stats":
			adapter = provider.NewBlockscoutStats(blockscoutClient(desc.BaseEndpoint))
		case desc.ID == "blockscout-gas":
			adapter = provider.NewBlockscoutGas(blockscoutClient(desc.BaseEndpoint))
		case desc.ID == "blockscout-analytics":
			adapter = provider.NewBlockscoutAnalytics(blockscoutClient(desc.BaseEndpoint))
		case desc.ID == "blockscout-whales":
			adapter = provider.NewBlockscoutWhales(blockscoutClient(desc.BaseEndpoint), cfg.WhaleMinUSD)
		case desc.ID == "rpc-gas":
			adapter = provider.NewRPCGas(provider.NewRPCNode(tracer, desc.ID, desc.Chain, desc.BaseEndpoint))
		case desc.Category == domain.CategoryRPCNode:
			adapter = provider.NewRPCNode(tracer, desc.ID, desc.Chain, desc.BaseEndpoint)
		default:
			return fmt.Errorf("no adapter for resource %s", desc.ID)
		}

		if err := catalog.Register(desc, adapter); err != nil {
			return fmt.Errorf("register %s: %w", desc.ID, err)
		}
		logger.Debug().Str("resource", desc.ID).Str("category", string(desc.Category)).
			Str("tier", desc.Tier.String()).Msg("resource registered")
	}
	return nil
}
