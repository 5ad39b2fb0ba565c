package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sfc-gh-echristensen/cortex-data-analysis-with-postgres/models"
	"github.com/sfc-gh-echristensen/cortex-data-analysis-with-postgres/services"
	"github.com/sfc-gh-echristensen/cortex-data-analysis-with-postgres/utils"
)

type TransactionHandler struct {
	Ledger *services.LedgerService
	WS     *WSHandler
}

// ListPending returns all pending transactions, most recent first.
func (h *TransactionHandler) ListPending(c *gin.Context) {
	pending, err := h.Ledger.ListPending(c.Request.Context())
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":        len(pending),
		"transactions": pending,
	})
}

// Get returns one transaction by id, any status.
func (h *TransactionHandler) Get(c *gin.Context) {
	id, ok := parseTransactionID(c)
	if !ok {
		return
	}

	detail, err := h.Ledger.Get(c.Request.Context(), id)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// Cancel declines a pending transaction with an audit note.
func (h *TransactionHandler) Cancel(c *gin.Context) {
	h.changeStatus(c, h.Ledger.Cancel)
}

// Approve approves a pending transaction with an audit note.
func (h *TransactionHandler) Approve(c *gin.Context) {
	h.changeStatus(c, h.Ledger.Approve)
}

func (h *TransactionHandler) changeStatus(c *gin.Context, op func(ctx context.Context, id int64, reason string) (*models.StatusChange, error)) {
	id, ok := parseTransactionID(c)
	if !ok {
		return
	}

	// Missing body means an empty reason; the audit line is written either way.
	var req models.StatusChangeRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	requestID := uuid.New().String()
	log.Printf("📨 [%s] Status change requested for transaction %d", requestID, id)

	change, err := op(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	utils.SafeLog("✅ [%s] %s", requestID, change.Message)

	if h.WS != nil {
		h.WS.BroadcastStatusChange(change, requestID)
	}

	c.JSON(http.StatusOK, gin.H{
		"request_id":    requestID,
		"rows_affected": change.RowsAffected,
		"status":        change.NewStatus,
		"message":       change.Message,
	})
}

// Stats returns per-status count, total and average amount from one query.
func (h *TransactionHandler) Stats(c *gin.Context) {
	stats, err := h.Ledger.Stats(c.Request.Context())
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// RecentCancelled lists the latest transactions with a cancellation note.
func (h *TransactionHandler) RecentCancelled(c *gin.Context) {
	limit := 5
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	cancelled, err := h.Ledger.RecentCancelled(c.Request.Context(), limit)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":        len(cancelled),
		"transactions": cancelled,
	})
}

func parseTransactionID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction id"})
		return 0, false
	}
	return id, true
}

func respondLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrTransactionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrAlreadyProcessed):
		// Benign outcome, not a fault: the row already reached a terminal
		// status. 409 so callers can tell it apart from 404.
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "already_processed": true})
	case errors.Is(err, services.ErrConnectivity):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Database unreachable, retry later"})
	default:
		log.Printf("❌ Ledger operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
