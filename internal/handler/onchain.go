package handler

import (
	"net/http"
	"strings"

	"coinboard/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

var supportedChains = []string{"bitcoin", "ethereum"}

func chainParam(c *gin.Context) (string, bool) {
	chain := strings.ToLower(strings.TrimSpace(c.Param("chain")))
	for _, known := range supportedChains {
		if chain == known {
			return chain, true
		}
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"error":            "unsupported chain: " + chain,
		"supported_chains": supportedChains,
	})
	return "", false
}

// GetOnChain godoc
// @Summary      Get block explorer stats for a chain
// @Description  Returns tip height, 24h transaction count, and fee levels
// @Tags         onchain
// @Produce      json
// @Param        chain  path  string  true  "Chain name (bitcoin, ethereum)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Security     ApiKeyAuth
// @Router       /api/onchain/{chain} [get]
func (h *Handler) GetOnChain(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-onchain")
	defer span.End()

	chain, ok := chainParam(c)
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("chain", chain))

	respond(c, h.engine.Fetch(ctx, domain.CategoryBlockExplorer, domain.Params{"chain": chain}))
}

// GetGas godoc
// @Summary      Get fee recommendations
// @Description  Returns fast/avg/slow fee tiers for the requested chain
// @Tags         onchain
// @Produce      json
// @Param        chain  query  string  false  "Chain name (default ethereum)"
// @Success      200  {object}  map[string]interface{}
// @Failure      502  {object}  map[string]interface{}
// @Security     ApiKeyAuth
// @Router       /api/gas [get]
func (h *Handler) GetGas(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-gas")
	defer span.End()

	chain := strings.ToLower(c.DefaultQuery("chain", "ethereum"))
	respond(c, h.engine.Fetch(ctx, domain.CategoryGas, domain.Params{"chain": chain}))
}

// GetWhales godoc
// @Summary      Get recent whale transfers
// @Description  Returns large on-chain movements above the configured USD threshold
// @Tags         onchain
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      502  {object}  map[string]interface{}
// @Security     ApiKeyAuth
// @Router       /api/whales [get]
func (h *Handler) GetWhales(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-whales")
	defer span.End()

	respond(c, h.engine.Fetch(ctx, domain.CategoryWhaleTracking, domain.Params{}))
}

// GetRPCStatus godoc
// @Summary      Get RPC node status for a chain
// @Description  Returns latest block number and gas price from a rotated node pool
// @Tags         onchain
// @Produce      json
// @Param        chain  path  string  true  "Chain name (ethereum)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Security     ApiKeyAuth
// @Router       /api/rpc/{chain} [get]
func (h *Handler) GetRPCStatus(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-rpc-status")
	defer span.End()

	chain, ok := chainParam(c)
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("chain", chain))

	respond(c, h.engine.Fetch(ctx, domain.CategoryRPCNode, domain.Params{"chain": chain}))
}
