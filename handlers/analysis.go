package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sfc-gh-echristensen/cortex-data-analysis-with-postgres/services"
)

type AnalysisHandler struct {
	Analyzer *services.AnalyzerService
}

// AnalyzePending flags pending transactions worth a manual review and, when
// the AI assistant is configured, attaches a short narrative.
func (h *AnalysisHandler) AnalyzePending(c *gin.Context) {
	analysis, err := h.Analyzer.AnalyzePending(c.Request.Context())
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}
