package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction statuses. A transaction starts as 'pending' and moves exactly
// once into a terminal status; terminal rows are never mutated again.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusCompleted = "completed"
	StatusDeclined  = "declined"
	StatusCancelled = "cancelled"
)

// TerminalStatuses are the states an administrative transition can land in.
var TerminalStatuses = []string{StatusApproved, StatusCompleted, StatusDeclined, StatusCancelled}

type Transaction struct {
	TransactionID int64           `json:"transaction_id"`
	Date          time.Time       `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	Merchant      string          `json:"merchant"`
	Category      string          `json:"category"`
	Notes         string          `json:"notes"`
	Status        string          `json:"status"`
	AccountID     int64           `json:"account_id"`
}

// PendingTransaction is a pending row joined with its account name for display.
type PendingTransaction struct {
	Transaction
	AccountName string `json:"account_name"`
}

// TransactionDetail is the full record plus denormalized account fields,
// returned for inspection of any transaction regardless of status.
type TransactionDetail struct {
	Transaction
	AccountName    string          `json:"account_name"`
	AccountBalance decimal.Decimal `json:"account_balance"`
}

// StatusChange reports the outcome of a successful approve/cancel.
type StatusChange struct {
	TransactionID int64           `json:"transaction_id"`
	NewStatus     string          `json:"new_status"`
	Merchant      string          `json:"merchant"`
	Amount        decimal.Decimal `json:"amount"`
	RowsAffected  int64           `json:"rows_affected"`
	Message       string          `json:"message"`
}

// StatusStats is one GROUP BY bucket from the stats query.
type StatusStats struct {
	Count       int64           `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	AvgAmount   decimal.Decimal `json:"avg_amount"`
}

type StatusChangeRequest struct {
	Reason string `json:"reason"`
}
