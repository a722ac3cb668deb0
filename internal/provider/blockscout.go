package provider

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	"coinboard/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const (
	blockscoutBaseURL = "https://eth.blockscout.com"
	weiPerEth         = 1e18
)

// BlockscoutClient is the shared transport for the Blockscout v2 API,
// covering the ethereum side of the explorer, analytics and whale
// categories.
type BlockscoutClient struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewBlockscoutClient(tracer trace.Tracer, baseURL string) *BlockscoutClient {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = blockscoutBaseURL
	}
	return &BlockscoutClient{
		client:  &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
	}
}

// blockscoutStats is the subset of /api/v2/stats we consume. Blockscout
// returns most numbers as strings, so fields decode through any.
type blockscoutStats struct {
	TotalBlocks                  any `json:"total_blocks"`
	TotalAddresses               any `json:"total_addresses"`
	TransactionsToday            any `json:"transactions_today"`
	GasUsedToday                 any `json:"gas_used_today"`
	NetworkUtilizationPercentage any `json:"network_utilization_percentage"`
	GasPrices                    struct {
		Fast    any `json:"fast"`
		Average any `json:"average"`
		Slow    any `json:"slow"`
	} `json:"gas_prices"`
}

func (c *BlockscoutClient) fetchStats(ctx context.Context) (*blockscoutStats, error) {
	var stats blockscoutStats
	if err := getJSON(ctx, c.client, "blockscout", c.baseURL+"/api/v2/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// BlockscoutStats serves block_explorer for ethereum.
type BlockscoutStats struct {
	*BlockscoutClient
}

func NewBlockscoutStats(c *BlockscoutClient) *BlockscoutStats { return &BlockscoutStats{c} }

func (p *BlockscoutStats) Call(ctx context.Context, _ domain.Params) (any, error) {
	ctx, span := p.tracer.Start(ctx, "blockscout.stats")
	defer span.End()

	stats, err := p.fetchStats(ctx)
	if err != nil {
		return nil, err
	}

	utilization := asFloat(stats.NetworkUtilizationPercentage)
	note := "normal"
	if utilization > 80 {
		note = "congested"
	} else if utilization > 0 && utilization < 20 {
		note = "quiet"
	}

	return &domain.ChainStats{
		Chain:        "ethereum",
		BlockHeight:  int64(asFloat(stats.TotalBlocks)),
		TxCount24h:   asFloat(stats.TransactionsToday),
		AvgFee:       asFloat(stats.GasPrices.Average),
		FetchedAt:    time.Now().UTC(),
		ActivityNote: note,
	}, nil
}

// BlockscoutGas serves gas for ethereum from the same stats payload, in
// gwei.
type BlockscoutGas struct {
	*BlockscoutClient
}

func NewBlockscoutGas(c *BlockscoutClient) *BlockscoutGas { return &BlockscoutGas{c} }

func (p *BlockscoutGas) Call(ctx context.Context, _ domain.Params) (any, error) {
	ctx, span := p.tracer.Start(ctx, "blockscout.gas")
	defer span.End()

	stats, err := p.fetchStats(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.GasEstimate{
		Chain:     "ethereum",
		Unit:      "gwei",
		Fast:      asFloat(stats.GasPrices.Fast),
		Avg:       asFloat(stats.GasPrices.Average),
		Slow:      asFloat(stats.GasPrices.Slow),
		FetchedAt: time.Now().UTC(),
	}, nil
}

// BlockscoutAnalytics serves onchain_analytics for ethereum. Fees are
// derived from gas used today at the average gas price.
type BlockscoutAnalytics struct {
	*BlockscoutClient
}

func NewBlockscoutAnalytics(c *BlockscoutClient) *BlockscoutAnalytics {
	return &BlockscoutAnalytics{c}
}

func (p *BlockscoutAnalytics) Call(ctx context.Context, _ domain.Params) (any, error) {
	ctx, span := p.tracer.Start(ctx, "blockscout.analytics")
	defer span.End()

	stats, err := p.fetchStats(ctx)
	if err != nil {
		return nil, err
	}

	txToday := asFloat(stats.TransactionsToday)
	gasUsed := asFloat(stats.GasUsedToday)
	avgGwei := asFloat(stats.GasPrices.Average)

	return &domain.OnChainMetrics{
		Chain:           "ethereum",
		ActiveAddresses: int64(asFloat(stats.TotalAddresses)),
		TxThroughput:    txToday / 86400.0,
		FeesTotal24h:    gasUsed * avgGwei / 1e9,
		FetchedAt:       time.Now().UTC(),
	}, nil
}

// BlockscoutWhales serves whale_tracking: recent validated transactions
// above a USD threshold. Blockscout annotates each transaction with the
// exchange rate at indexing time, which is what prices the transfer.
type BlockscoutWhales struct {
	*BlockscoutClient
	minAmountUSD float64
}

func NewBlockscoutWhales(c *BlockscoutClient, minAmountUSD float64) *BlockscoutWhales {
	if minAmountUSD <= 0 {
		minAmountUSD = 1_000_000
	}
	return &BlockscoutWhales{BlockscoutClient: c, minAmountUSD: minAmountUSD}
}

func (p *BlockscoutWhales) Call(ctx context.Context, _ domain.Params) (any, error) {
	ctx, span := p.tracer.Start(ctx, "blockscout.whales")
	defer span.End()

	var payload struct {
		Items []struct {
			Hash      string `json:"hash"`
			Value     string `json:"value"`
			Timestamp string `json:"timestamp"`
			From      struct {
				Hash string `json:"hash"`
			} `json:"from"`
			To struct {
				Hash string `json:"hash"`
			} `json:"to"`
			ExchangeRate string `json:"exchange_rate"`
		} `json:"items"`
	}
	url := p.baseURL + "/api/v2/transactions?filter=validated&type=coin_transfer"
	if err := getJSON(ctx, p.client, "blockscout", url, nil, &payload); err != nil {
		return nil, err
	}

	transfers := make([]*domain.WhaleTransfer, 0, 8)
	for _, tx := range payload.Items {
		valueWei := parseFloatString(tx.Value)
		rate := parseFloatString(tx.ExchangeRate)
		if valueWei <= 0 || rate <= 0 {
			continue
		}
		amountUSD := valueWei / weiPerEth * rate
		if amountUSD < p.minAmountUSD || math.IsInf(amountUSD, 0) {
			continue
		}
		ts, err := time.Parse(time.RFC3339, tx.Timestamp)
		if err != nil {
			ts = time.Now().UTC()
		}
		transfers = append(transfers, &domain.WhaleTransfer{
			Chain:     "ethereum",
			TxHash:    tx.Hash,
			From:      tx.From.Hash,
			To:        tx.To.Hash,
			AmountUSD: amountUSD,
			Timestamp: ts.UTC(),
		})
	}

	return transfers, nil
}
