package provider

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"coinboard/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const fearGreedBaseURL = "https://api.alternative.me"

// FearGreed serves sentiment from the alternative.me Fear & Greed index.
type FearGreed struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewFearGreed(tracer trace.Tracer, baseURL string) *FearGreed {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = fearGreedBaseURL
	}
	return &FearGreed{
		client:  &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
	}
}

func (p *FearGreed) Call(ctx context.Context, _ domain.Params) (any, error) {
	ctx, span := p.tracer.Start(ctx, "feargreed.latest")
	defer span.End()

	url := p.baseURL + "/fng/?limit=1"

	var payload struct {
		Data []struct {
			Value          string `json:"value"`
			Classification string `json:"value_classification"`
			Timestamp      string `json:"timestamp"`
		} `json:"data"`
	}
	if err := getJSON(ctx, p.client, "feargreed", url, nil, &payload); err != nil {
		return nil, err
	}
	if len(payload.Data) == 0 {
		return nil, domain.NewResourceError("feargreed", domain.FailProvider,
			fmt.Errorf("response has no rows"))
	}

	row := payload.Data[0]
	value, err := strconv.Atoi(strings.TrimSpace(row.Value))
	if err != nil {
		return nil, domain.NewResourceError("feargreed", domain.FailProvider,
			fmt.Errorf("parse index value: %w", err))
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(row.Timestamp), 10, 64)
	if err != nil {
		return nil, domain.NewResourceError("feargreed", domain.FailProvider,
			fmt.Errorf("parse index timestamp: %w", err))
	}
	if ts > 1_000_000_000_000 {
		ts = ts / 1000
	}

	return &domain.SentimentIndex{
		Value:          value,
		Classification: row.Classification,
		Timestamp:      time.Unix(ts, 0).UTC(),
	}, nil
}
