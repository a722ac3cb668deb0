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

const mempoolBaseURL = "https://mempool.space"

// MempoolClient is the shared transport for the mempool.space REST API,
// covering the bitcoin side of the explorer and fee categories.
type MempoolClient struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewMempoolClient(tracer trace.Tracer, baseURL string) *MempoolClient {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = mempoolBaseURL
	}
	return &MempoolClient{
		client:  &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
	}
}

// MempoolStats serves block_explorer for bitcoin: tip height plus 24h
// mempool statistics.
type MempoolStats struct {
	*MempoolClient
}

func NewMempoolStats(c *MempoolClient) *MempoolStats { return &MempoolStats{c} }

func (p *MempoolStats) Call(ctx context.Context, _ domain.Params) (any, error) {
	ctx, span := p.tracer.Start(ctx, "mempool.stats")
	defer span.End()

	var height int64
	if err := getJSON(ctx, p.client, "mempool", p.baseURL+"/api/blocks/tip/height", nil, &height); err != nil {
		return nil, err
	}

	var rows []struct {
		Count           float64 `json:"count"`
		VBytesPerSecond float64 `json:"vbytes_per_second"`
		MinFee          float64 `json:"min_fee"`
		TotalFee        float64 `json:"total_fee"`
	}
	if err := getJSON(ctx, p.client, "mempool", p.baseURL+"/api/v1/statistics/24h", nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.NewResourceError("mempool", domain.FailProvider,
			fmt.Errorf("statistics payload has no rows"))
	}

	r := rows[0]
	note := "normal"
	if r.VBytesPerSecond > 2400 {
		note = "congested"
	} else if r.VBytesPerSecond < 600 {
		note = "quiet"
	}

	return &domain.ChainStats{
		Chain:        "bitcoin",
		BlockHeight:  height,
		TxCount24h:   r.Count,
		AvgFee:       r.MinFee,
		FetchedAt:    time.Now().UTC(),
		ActivityNote: note,
	}, nil
}

// MempoolFees serves gas for bitcoin from the recommended-fees endpoint,
// in sat/vB.
type MempoolFees struct {
	*MempoolClient
}

func NewMempoolFees(c *MempoolClient) *MempoolFees { return &MempoolFees{c} }

func (p *MempoolFees) Call(ctx context.Context, _ domain.Params) (any, error) {
	ctx, span := p.tracer.Start(ctx, "mempool.fees")
	defer span.End()

	var fees struct {
		FastestFee  float64 `json:"fastestFee"`
		HalfHourFee float64 `json:"halfHourFee"`
		HourFee     float64 `json:"hourFee"`
	}
	if err := getJSON(ctx, p.client, "mempool", p.baseURL+"/api/v1/fees/recommended", nil, &fees); err != nil {
		return nil, err
	}

	return &domain.GasEstimate{
		Chain:     "bitcoin",
		Unit:      "sat/vB",
		Fast:      fees.FastestFee,
		Avg:       fees.HalfHourFee,
		Slow:      fees.HourFee,
		FetchedAt: time.Now().UTC(),
	}, nil
}
