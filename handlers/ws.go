package handlers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"

	"github.com/sfc-gh-echristensen/cortex-data-analysis-with-postgres/models"
)

// WSHandler pushes ledger status changes to connected dashboards so the
// pending list refreshes without polling.
type WSHandler struct {
	M *melody.Melody
}

func NewWSHandler() *WSHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 1024 * 1024

	// Keep-alive matters behind cloud load balancers.
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		log.Printf("✅ Ledger watcher connected: %s", s.Request.RemoteAddr)
	})

	m.HandleDisconnect(func(s *melody.Session) {
		log.Printf("🔌 Ledger watcher disconnected: %s", s.Request.RemoteAddr)
	})

	m.HandleError(func(s *melody.Session, err error) {
		log.Printf("❌ WebSocket error: %v", err)
	})

	return &WSHandler{M: m}
}

// HandleWS upgrades the request and registers the client for ledger events.
func (h *WSHandler) HandleWS(c *gin.Context) {
	if err := h.M.HandleRequest(c.Writer, c.Request); err != nil {
		log.Printf("❌ Failed to upgrade websocket: %v", err)
	}
}

type statusChangeEvent struct {
	Type          string `json:"type"`
	RequestID     string `json:"request_id"`
	TransactionID int64  `json:"transaction_id"`
	NewStatus     string `json:"new_status"`
}

// BroadcastStatusChange notifies every watcher that a transaction left the
// pending state.
func (h *WSHandler) BroadcastStatusChange(change *models.StatusChange, requestID string) {
	msg, err := json.Marshal(statusChangeEvent{
		Type:          "status_change",
		RequestID:     requestID,
		TransactionID: change.TransactionID,
		NewStatus:     change.NewStatus,
	})
	if err != nil {
		log.Printf("❌ Failed to marshal status change event: %v", err)
		return
	}

	if err := h.M.Broadcast(msg); err != nil {
		log.Printf("❌ Failed to broadcast status change: %v", err)
	}
}
