package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sfc-gh-echristensen/cortex-data-analysis-with-postgres/models"
	"github.com/sfc-gh-echristensen/cortex-data-analysis-with-postgres/utils"
)

// LedgerService owns the transaction status lifecycle. All status mutation
// in the application funnels through Cancel/Approve so the audit trail in
// notes stays intact; no other code path writes transactions.status.
type LedgerService struct {
	db      *sql.DB
	timeout time.Duration
}

func NewLedgerService(db *sql.DB) *LedgerService {
	return &LedgerService{db: db, timeout: 10 * time.Second}
}

// ListPending returns every pending transaction joined with its account
// name, most recent first.
func (s *LedgerService) ListPending(ctx context.Context) ([]models.PendingTransaction, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.transaction_id, t.date, t.amount, t.merchant, t.category,
		       COALESCE(t.notes, ''), t.status, t.account_id, a.account_name
		FROM transactions t
		JOIN accounts a ON t.account_id = a.account_id
		WHERE t.status = 'pending'
		ORDER BY t.date DESC
	`)
	if err != nil {
		return nil, classifyStoreErr(err)
	}
	defer rows.Close()

	pending := []models.PendingTransaction{}
	for rows.Next() {
		var txn models.PendingTransaction
		if err := rows.Scan(
			&txn.TransactionID, &txn.Date, &txn.Amount, &txn.Merchant,
			&txn.Category, &txn.Notes, &txn.Status, &txn.AccountID,
			&txn.AccountName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pending transaction: %w", err)
		}
		pending = append(pending, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyStoreErr(err)
	}

	return pending, nil
}

// Get returns the full record for any transaction regardless of status,
// with its account name and balance denormalized for display.
func (s *LedgerService) Get(ctx context.Context, transactionID int64) (*models.TransactionDetail, error) {
	if transactionID <= 0 {
		return nil, fmt.Errorf("%w: transaction id must be positive", ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var detail models.TransactionDetail
	err := s.db.QueryRowContext(ctx, `
		SELECT t.transaction_id, t.date, t.amount, t.merchant, t.category,
		       COALESCE(t.notes, ''), t.status, t.account_id,
		       a.account_name, a.current_balance
		FROM transactions t
		JOIN accounts a ON t.account_id = a.account_id
		WHERE t.transaction_id = $1
	`, transactionID).Scan(
		&detail.TransactionID, &detail.Date, &detail.Amount, &detail.Merchant,
		&detail.Category, &detail.Notes, &detail.Status, &detail.AccountID,
		&detail.AccountName, &detail.AccountBalance,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transaction %d", ErrTransactionNotFound, transactionID)
	}
	if err != nil {
		return nil, classifyStoreErr(err)
	}

	return &detail, nil
}

// Cancel declines a pending transaction and appends a CANCELLED: audit line
// to its notes. Only pending rows can be cancelled; a second attempt on the
// same id reports ErrAlreadyProcessed and changes nothing.
func (s *LedgerService) Cancel(ctx context.Context, transactionID int64, reason string) (*models.StatusChange, error) {
	return s.transition(ctx, transactionID, reason, models.StatusDeclined, "CANCELLED", "cancelled")
}

// Approve marks a pending transaction approved and appends an APPROVED:
// audit line. Same contract and atomicity as Cancel.
func (s *LedgerService) Approve(ctx context.Context, transactionID int64, reason string) (*models.StatusChange, error) {
	return s.transition(ctx, transactionID, reason, models.StatusApproved, "APPROVED", "approved")
}

// transition is the one conditional write in the system. The status change
// and the notes append travel in a single UPDATE whose WHERE clause
// re-checks status = 'pending', so concurrent callers cannot both succeed
// and a crash cannot leave the row half-updated. The preceding SELECT only
// classifies failures (absent vs already terminal); correctness never
// depends on it.
func (s *LedgerService) transition(ctx context.Context, transactionID int64, reason, targetStatus, auditPrefix, verb string) (*models.StatusChange, error) {
	if transactionID <= 0 {
		return nil, fmt.Errorf("%w: transaction id must be positive", ErrValidation)
	}
	reason = strings.TrimSpace(reason)
	auditLine := auditPrefix + ": " + reason

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var change *models.StatusChange
	err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		var merchant, status string
		err := tx.QueryRowContext(ctx, `
			SELECT merchant, status
			FROM transactions
			WHERE transaction_id = $1
		`, transactionID).Scan(&merchant, &status)

		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: transaction %d", ErrTransactionNotFound, transactionID)
		}
		if err != nil {
			return classifyStoreErr(err)
		}

		if status != models.StatusPending {
			return fmt.Errorf("%w: transaction %d is already %s", ErrAlreadyProcessed, transactionID, status)
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE transactions
			SET status = $2,
			    notes = CASE WHEN COALESCE(notes, '') = '' THEN $3
			                 ELSE notes || E'\n' || $3 END
			WHERE transaction_id = $1 AND status = 'pending'
		`, transactionID, targetStatus, auditLine)
		if err != nil {
			return classifyStoreErr(err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return classifyStoreErr(err)
		}
		if rows == 0 {
			// Lost a race: another caller moved the row out of pending
			// between our SELECT and UPDATE.
			return fmt.Errorf("%w: transaction %d was processed concurrently", ErrAlreadyProcessed, transactionID)
		}

		detail, err := s.scanChange(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		detail.RowsAffected = rows
		detail.Message = fmt.Sprintf("Transaction %d (%s: $%s) successfully %s",
			transactionID, merchant, detail.Amount.StringFixed(2), verb)
		change = detail
		return nil
	})

	if err != nil {
		return nil, err
	}
	return change, nil
}

func (s *LedgerService) scanChange(ctx context.Context, tx *sql.Tx, transactionID int64) (*models.StatusChange, error) {
	var change models.StatusChange
	err := tx.QueryRowContext(ctx, `
		SELECT transaction_id, status, merchant, amount
		FROM transactions
		WHERE transaction_id = $1
	`, transactionID).Scan(&change.TransactionID, &change.NewStatus, &change.Merchant, &change.Amount)
	if err != nil {
		return nil, classifyStoreErr(err)
	}
	return &change, nil
}

// Stats aggregates the whole ledger grouped by status in a single query,
// so the buckets are a consistent snapshot and partition the table exactly.
func (s *LedgerService) Stats(ctx context.Context) (map[string]models.StatusStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT status,
		       COUNT(*) AS count,
		       COALESCE(SUM(amount), 0) AS total_amount,
		       COALESCE(AVG(amount), 0) AS avg_amount
		FROM transactions
		GROUP BY status
		ORDER BY count DESC
	`)
	if err != nil {
		return nil, classifyStoreErr(err)
	}
	defer rows.Close()

	stats := map[string]models.StatusStats{}
	for rows.Next() {
		var status string
		var bucket models.StatusStats
		if err := rows.Scan(&status, &bucket.Count, &bucket.TotalAmount, &bucket.AvgAmount); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		stats[status] = bucket
	}
	if err := rows.Err(); err != nil {
		return nil, classifyStoreErr(err)
	}

	return stats, nil
}

// RecentCancelled lists the latest terminal transactions whose notes carry a
// CANCELLED: audit line, with that line extracted for display.
func (s *LedgerService) RecentCancelled(ctx context.Context, limit int) ([]models.CancelledTransaction, error) {
	if limit <= 0 {
		limit = 5
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT transaction_id, merchant, amount, status, date, COALESCE(notes, '')
		FROM transactions
		WHERE status IN ('declined', 'cancelled')
		  AND notes LIKE '%CANCELLED:%'
		ORDER BY date DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, classifyStoreErr(err)
	}
	defer rows.Close()

	cancelled := []models.CancelledTransaction{}
	for rows.Next() {
		var txn models.CancelledTransaction
		var notes string
		if err := rows.Scan(&txn.TransactionID, &txn.Merchant, &txn.Amount, &txn.Status, &txn.Date, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan cancelled transaction: %w", err)
		}
		txn.CancellationNote = extractCancellationNote(notes)
		cancelled = append(cancelled, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyStoreErr(err)
	}

	return cancelled, nil
}

func extractCancellationNote(notes string) string {
	for _, line := range strings.Split(notes, "\n") {
		if strings.Contains(line, "CANCELLED:") {
			return strings.TrimSpace(line)
		}
	}
	return ""
}
