package routes

import (
	"database/sql"

	"github.com/gin-gonic/gin"

	"github.com/sfc-gh-echristensen/cortex-data-analysis-with-postgres/handlers"
	"github.com/sfc-gh-echristensen/cortex-data-analysis-with-postgres/services"
)

// SetupTransactionRoutes wires the ledger endpoints. Every status mutation
// goes through these two POST routes and nowhere else.
func SetupTransactionRoutes(rg *gin.RouterGroup, db *sql.DB, ws *handlers.WSHandler) {
	ledger := services.NewLedgerService(db)
	h := &handlers.TransactionHandler{Ledger: ledger, WS: ws}

	rg.GET("/transactions/pending", h.ListPending)
	rg.GET("/transactions/stats", h.Stats)
	rg.GET("/transactions/cancelled/recent", h.RecentCancelled)
	rg.GET("/transactions/:id", h.Get)
	rg.POST("/transactions/:id/cancel", h.Cancel)
	rg.POST("/transactions/:id/approve", h.Approve)

	analyzer := services.NewAnalyzerService(ledger, services.NewClaudeAIService())
	analysisHandler := &handlers.AnalysisHandler{Analyzer: analyzer}
	rg.POST("/transactions/analyze", analysisHandler.AnalyzePending)
}

// SetupSearchRoutes wires the three-tier transaction search.
func SetupSearchRoutes(rg *gin.RouterGroup, db *sql.DB) {
	searchService := services.NewSearchService(db, services.NewEmbeddingsService())
	h := &handlers.SearchHandler{Service: searchService}

	rg.GET("/search", h.Search)
}

// SetupInsightsRoutes wires the spending dashboard aggregates.
func SetupInsightsRoutes(rg *gin.RouterGroup, db *sql.DB) {
	h := &handlers.InsightsHandler{Insights: services.NewInsightsService(db)}

	rg.GET("/insights/spending", h.SpendingOverview)
}
