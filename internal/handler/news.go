package handler

import (
	"strings"

	"coinboard/internal/domain"

	"github.com/gin-gonic/gin"
)

// GetNews godoc
// @Summary      Get latest crypto headlines
// @Description  Returns normalized headlines from the first healthy news feed
// @Tags         news
// @Produce      json
// @Param        limit  query  int  false  "Max headlines (default 40, max 100)"
// @Success      200  {object}  map[string]interface{}
// @Failure      502  {object}  map[string]interface{}
// @Security     ApiKeyAuth
// @Router       /api/news [get]
func (h *Handler) GetNews(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-news")
	defer span.End()

	params := domain.Params{}
	if limit := strings.TrimSpace(c.Query("limit")); limit != "" {
		params["limit"] = limit
	}
	respond(c, h.engine.Fetch(ctx, domain.CategoryNews, params))
}

// GetSentiment godoc
// @Summary      Get market sentiment
// @Description  Returns the current fear & greed style sentiment index
// @Tags         news
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      502  {object}  map[string]interface{}
// @Security     ApiKeyAuth
// @Router       /api/sentiment [get]
func (h *Handler) GetSentiment(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-sentiment")
	defer span.End()

	respond(c, h.engine.Fetch(ctx, domain.CategorySentiment, domain.Params{}))
}
