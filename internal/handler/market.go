package handler

import (
	"errors"
	"net/http"
	"strings"

	"coinboard/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// respond maps a FetchResult to the HTTP contract shared by all data
// endpoints: data plus source attribution on success, 502 with the attempted
// list on exhaustion, 400 on caller errors.
func respond(c *gin.Context, result domain.FetchResult) {
	if result.OK() {
		c.JSON(http.StatusOK, gin.H{
			"data":      result.Data,
			"source":    result.SourceID,
			"served_at": result.ServedAt,
		})
		return
	}

	var exhausted *domain.ExhaustedError
	if errors.As(result.Err, &exhausted) {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     result.Err.Error(),
			"attempted": result.Attempted,
		})
		return
	}
	if errors.Is(result.Err, domain.ErrUnknownCategory) {
		c.JSON(http.StatusBadRequest, gin.H{"error": result.Err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": result.Err.Error()})
}

// GetPrices godoc
// @Summary      Get current prices
// @Description  Returns latest prices for the requested symbols, falling back across providers
// @Tags         market
// @Produce      json
// @Param        symbols  query  string  false  "Comma-separated symbols (default: all tracked)"
// @Success      200  {object}  map[string]interface{}
// @Failure      502  {object}  map[string]interface{}
// @Security     ApiKeyAuth
// @Router       /api/prices [get]
func (h *Handler) GetPrices(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-prices")
	defer span.End()

	params := domain.Params{}
	if symbols := strings.TrimSpace(c.Query("symbols")); symbols != "" {
		params["symbols"] = symbols
	}
	respond(c, h.engine.Fetch(ctx, domain.CategoryMarketData, params))
}

// GetOHLCV godoc
// @Summary      Get OHLCV candles
// @Description  Returns candle data for one asset and interval
// @Tags         market
// @Produce      json
// @Param        symbol    path   string  true   "Asset symbol (e.g., BTC, ETH)"
// @Param        interval  query  string  false  "Candle interval (5m, 15m, 1h, 4h, 1d)"  default(1h)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Security     ApiKeyAuth
// @Router       /api/ohlcv/{symbol} [get]
func (h *Handler) GetOHLCV(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-ohlcv")
	defer span.End()

	symbol := strings.ToUpper(c.Param("symbol"))
	span.SetAttributes(attribute.String("symbol", symbol))

	if _, ok := domain.CoinGeckoID[symbol]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "unsupported symbol: " + symbol,
			"supported_symbols": domain.SupportedSymbols,
		})
		return
	}

	interval := c.DefaultQuery("interval", "1h")
	valid := false
	for _, si := range domain.SupportedIntervals {
		if interval == si {
			valid = true
			break
		}
	}
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":               "unsupported interval: " + interval,
			"supported_intervals": domain.SupportedIntervals,
		})
		return
	}

	respond(c, h.engine.Fetch(ctx, domain.CategoryOHLCV, domain.Params{
		"symbol":   symbol,
		"interval": interval,
	}))
}
