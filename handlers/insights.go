package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sfc-gh-echristensen/cortex-data-analysis-with-postgres/services"
)

type InsightsHandler struct {
	Insights *services.InsightsService
}

// SpendingOverview returns the dashboard spending aggregates.
func (h *InsightsHandler) SpendingOverview(c *gin.Context) {
	overview, err := h.Insights.SpendingOverview(c.Request.Context())
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}
