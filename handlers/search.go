package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sfc-gh-echristensen/cortex-data-analysis-with-postgres/services"
)

type SearchHandler struct {
	Service *services.SearchService
}

// Search runs one of the three search tiers over merchant and notes.
// ?q= is the query text, ?method= is substring (default), fuzzy or semantic.
func (h *SearchHandler) Search(c *gin.Context) {
	resp, err := h.Service.Search(c.Request.Context(), c.Query("q"), c.Query("method"))
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
