package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PendingAnalysis is the result of the rule-based review of pending
// transactions, optionally accompanied by an AI-written narrative.
type PendingAnalysis struct {
	PendingCount     int                  `json:"pending_count"`
	HighAmount       []PendingTransaction `json:"high_amount"`
	UnusualMerchants []PendingTransaction `json:"unusual_merchants"`
	Narrative        string               `json:"narrative,omitempty"`
}

// CancelledTransaction is one row from the recently-cancelled listing:
// a terminal transaction whose notes carry a CANCELLED: audit line.
type CancelledTransaction struct {
	TransactionID    int64           `json:"transaction_id"`
	Merchant         string          `json:"merchant"`
	Amount           decimal.Decimal `json:"amount"`
	Status           string          `json:"status"`
	Date             time.Time       `json:"date"`
	CancellationNote string          `json:"cancellation_note"`
}
