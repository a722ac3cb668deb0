package handler

import (
	"context"

	"coinboard/internal/breaker"
	"coinboard/internal/domain"
	"coinboard/internal/health"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// Fetcher resolves one logical data request through the provider pool.
type Fetcher interface {
	Fetch(ctx context.Context, category domain.Category, params domain.Params) domain.FetchResult
}

// HealthView exposes per-resource health records for diagnostics.
type HealthView interface {
	Snapshot() map[string]health.Record
}

// BreakerView exposes per-resource circuit state for diagnostics.
type BreakerView interface {
	Snapshot() map[string]breaker.CircuitInfo
}

type Handler struct {
	tracer   trace.Tracer
	engine   Fetcher
	health   HealthView
	breakers BreakerView
}

func New(tracer trace.Tracer, engine Fetcher, health HealthView, breakers BreakerView) *Handler {
	return &Handler{
		tracer:   tracer,
		engine:   engine,
		health:   health,
		breakers: breakers,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, apiKey string) {
	r.GET("/health", h.Health)

	api := r.Group("/api", APIKeyAuth(apiKey))
	api.GET("/prices", h.GetPrices)
	api.GET("/ohlcv/:symbol", h.GetOHLCV)
	api.GET("/news", h.GetNews)
	api.GET("/sentiment", h.GetSentiment)
	api.GET("/onchain/:chain", h.GetOnChain)
	api.GET("/gas", h.GetGas)
	api.GET("/whales", h.GetWhales)
	api.GET("/rpc/:chain", h.GetRPCStatus)
	api.GET("/summary", h.GetSummary)
	api.GET("/diagnostics", h.Diagnostics)
}
