package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health godoc
// @Summary      Health check
// @Description  Returns the health status of the service
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Diagnostics godoc
// @Summary      Get per-resource diagnostics
// @Description  Returns health scores and circuit state for every registered resource
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Security     ApiKeyAuth
// @Router       /api/diagnostics [get]
func (h *Handler) Diagnostics(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.diagnostics")
	defer span.End()

	c.JSON(http.StatusOK, gin.H{
		"resources": h.health.Snapshot(),
		"circuits":  h.breakers.Snapshot(),
	})
}
