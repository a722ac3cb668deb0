package handler

import (
	"net/http"
	"sync"

	"coinboard/internal/domain"

	"github.com/gin-gonic/gin"
)

// summarySection is one category's slot in the dashboard summary. Sections
// fail independently: a dead category yields an error note, not a dead
// endpoint.
type summarySection struct {
	Data   any    `json:"data,omitempty"`
	Source string `json:"source,omitempty"`
	Error  string `json:"error,omitempty"`
}

// GetSummary godoc
// @Summary      Get the dashboard summary
// @Description  Returns prices, sentiment, and gas in one response; sections degrade independently
// @Tags         summary
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Security     ApiKeyAuth
// @Router       /api/summary [get]
func (h *Handler) GetSummary(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-summary")
	defer span.End()

	sections := map[domain.Category]domain.Params{
		domain.CategoryMarketData: {},
		domain.CategorySentiment:  {},
		domain.CategoryGas:        {"chain": "ethereum"},
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = make(map[string]summarySection, len(sections))
	)
	for category, params := range sections {
		wg.Add(1)
		go func(category domain.Category, params domain.Params) {
			defer wg.Done()
			result := h.engine.Fetch(ctx, category, params)

			section := summarySection{}
			if result.OK() {
				section.Data = result.Data
				section.Source = result.SourceID
			} else {
				section.Error = result.Err.Error()
			}

			mu.Lock()
			out[string(category)] = section
			mu.Unlock()
		}(category, params)
	}
	wg.Wait()

	c.JSON(http.StatusOK, out)
}
