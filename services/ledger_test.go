package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfc-gh-echristensen/cortex-data-analysis-with-postgres/models"
)

func newLedgerMock(t *testing.T) (*LedgerService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewLedgerService(db), mock
}

func TestListPending_ReturnsOnlyPendingRows(t *testing.T) {
	svc, mock := newLedgerMock(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"transaction_id", "date", "amount", "merchant", "category",
		"notes", "status", "account_id", "account_name",
	}).
		AddRow(7, now, "412.50", "Delta Airlines", "Travel", "Weekend trip", "pending", 2, "Credit Card").
		AddRow(5, now.Add(-24*time.Hour), "350.00", "Gadget Store", "Electronics", "", "pending", 2, "Credit Card")

	mock.ExpectQuery(`WHERE t\.status = 'pending'`).WillReturnRows(rows)

	pending, err := svc.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 2)

	for _, txn := range pending {
		assert.Equal(t, models.StatusPending, txn.Status)
	}
	assert.Equal(t, "Delta Airlines", pending[0].Merchant)
	assert.Equal(t, "Credit Card", pending[0].AccountName)
	assert.True(t, pending[0].Amount.Equal(decimal.RequireFromString("412.50")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListPending_EmptyLedger(t *testing.T) {
	svc, mock := newLedgerMock(t)

	mock.ExpectQuery(`WHERE t\.status = 'pending'`).
		WillReturnRows(sqlmock.NewRows([]string{
			"transaction_id", "date", "amount", "merchant", "category",
			"notes", "status", "account_id", "account_name",
		}))

	pending, err := svc.ListPending(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.NotNil(t, pending)
}

func TestGet_ReturnsAnyStatus(t *testing.T) {
	svc, mock := newLedgerMock(t)

	mock.ExpectQuery(`WHERE t\.transaction_id = \$1`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{
			"transaction_id", "date", "amount", "merchant", "category",
			"notes", "status", "account_id", "account_name", "current_balance",
		}).AddRow(9, time.Now(), "45.00", "Shell Gas Station", "Transportation", "", "approved", 2, "Credit Card", "-1320.45"))

	detail, err := svc.Get(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, int64(9), detail.TransactionID)
	assert.Equal(t, models.StatusApproved, detail.Status)
	assert.Equal(t, "Credit Card", detail.AccountName)
	assert.True(t, detail.AccountBalance.Equal(decimal.RequireFromString("-1320.45")))
}

func TestGet_NotFound(t *testing.T) {
	svc, mock := newLedgerMock(t)

	mock.ExpectQuery(`WHERE t\.transaction_id = \$1`).
		WithArgs(int64(9999)).
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id"}))

	_, err := svc.Get(context.Background(), 9999)
	require.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestGet_RejectsInvalidID(t *testing.T) {
	svc, _ := newLedgerMock(t)

	_, err := svc.Get(context.Background(), 0)
	require.ErrorIs(t, err, ErrValidation)
}

func TestCancel_PendingTransaction(t *testing.T) {
	svc, mock := newLedgerMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT merchant, status`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"merchant", "status"}).
			AddRow("Gadget Store", "pending"))
	mock.ExpectExec(`UPDATE transactions`).
		WithArgs(int64(5), models.StatusDeclined, "CANCELLED: duplicate purchase").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT transaction_id, status, merchant, amount`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id", "status", "merchant", "amount"}).
			AddRow(5, "declined", "Gadget Store", "350.00"))
	mock.ExpectCommit()

	change, err := svc.Cancel(context.Background(), 5, "duplicate purchase")
	require.NoError(t, err)

	assert.Equal(t, int64(5), change.TransactionID)
	assert.Equal(t, models.StatusDeclined, change.NewStatus)
	assert.Equal(t, int64(1), change.RowsAffected)
	assert.Equal(t, "Transaction 5 (Gadget Store: $350.00) successfully cancelled", change.Message)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancel_TrimsReason(t *testing.T) {
	svc, mock := newLedgerMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT merchant, status`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"merchant", "status"}).
			AddRow("Gadget Store", "pending"))
	mock.ExpectExec(`UPDATE transactions`).
		WithArgs(int64(5), models.StatusDeclined, "CANCELLED: duplicate purchase").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT transaction_id, status, merchant, amount`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id", "status", "merchant", "amount"}).
			AddRow(5, "declined", "Gadget Store", "350.00"))
	mock.ExpectCommit()

	_, err := svc.Cancel(context.Background(), 5, "  duplicate purchase  ")
	require.NoError(t, err)
}

func TestCancel_EmptyReasonStillAudited(t *testing.T) {
	svc, mock := newLedgerMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT merchant, status`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"merchant", "status"}).
			AddRow("Netflix", "pending"))
	mock.ExpectExec(`UPDATE transactions`).
		WithArgs(int64(3), models.StatusDeclined, "CANCELLED: ").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT transaction_id, status, merchant, amount`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id", "status", "merchant", "amount"}).
			AddRow(3, "declined", "Netflix", "24.99"))
	mock.ExpectCommit()

	change, err := svc.Cancel(context.Background(), 3, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeclined, change.NewStatus)
}

func TestCancel_AlreadyProcessed(t *testing.T) {
	svc, mock := newLedgerMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT merchant, status`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"merchant", "status"}).
			AddRow("Gadget Store", "declined"))
	mock.ExpectRollback()

	_, err := svc.Cancel(context.Background(), 5, "again")
	require.ErrorIs(t, err, ErrAlreadyProcessed)
	assert.NotErrorIs(t, err, ErrTransactionNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancel_NotFound(t *testing.T) {
	svc, mock := newLedgerMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT merchant, status`).
		WithArgs(int64(9999)).
		WillReturnRows(sqlmock.NewRows([]string{"merchant", "status"}))
	mock.ExpectRollback()

	_, err := svc.Cancel(context.Background(), 9999, "x")
	require.ErrorIs(t, err, ErrTransactionNotFound)
	assert.NotErrorIs(t, err, ErrAlreadyProcessed)
}

func TestCancel_LostRaceReportsAlreadyProcessed(t *testing.T) {
	svc, mock := newLedgerMock(t)

	// Row is pending at check time but another caller wins the conditional
	// write; zero rows affected must not read as success.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT merchant, status`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"merchant", "status"}).
			AddRow("Gadget Store", "pending"))
	mock.ExpectExec(`UPDATE transactions`).
		WithArgs(int64(5), models.StatusDeclined, "CANCELLED: dup").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.Cancel(context.Background(), 5, "dup")
	require.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestCancel_RejectsInvalidID(t *testing.T) {
	svc, _ := newLedgerMock(t)

	_, err := svc.Cancel(context.Background(), -1, "x")
	require.ErrorIs(t, err, ErrValidation)
}

func TestApprove_PendingTransaction(t *testing.T) {
	svc, mock := newLedgerMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT merchant, status`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"merchant", "status"}).
			AddRow("Best Buy Electronics", "pending"))
	mock.ExpectExec(`UPDATE transactions`).
		WithArgs(int64(2), models.StatusApproved, "APPROVED: looks legitimate").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT transaction_id, status, merchant, amount`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id", "status", "merchant", "amount"}).
			AddRow(2, "approved", "Best Buy Electronics", "89.99"))
	mock.ExpectCommit()

	change, err := svc.Approve(context.Background(), 2, "looks legitimate")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, change.NewStatus)
	assert.Equal(t, "Transaction 2 (Best Buy Electronics: $89.99) successfully approved", change.Message)
}

func TestApprove_AlreadyDeclined(t *testing.T) {
	svc, mock := newLedgerMock(t)

	// Approve and cancel are mutually exclusive terminal outcomes.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT merchant, status`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"merchant", "status"}).
			AddRow("Gadget Store", "declined"))
	mock.ExpectRollback()

	_, err := svc.Approve(context.Background(), 5, "changed my mind")
	require.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestStats_PartitionsLedger(t *testing.T) {
	svc, mock := newLedgerMock(t)

	mock.ExpectQuery(`GROUP BY status`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count", "total_amount", "avg_amount"}).
			AddRow("approved", 5, "500.00", "100.00").
			AddRow("pending", 3, "100.00", "33.33"))

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, int64(3), stats["pending"].Count)
	assert.True(t, stats["pending"].TotalAmount.Equal(decimal.RequireFromString("100.00")))
	assert.Equal(t, int64(5), stats["approved"].Count)
	assert.True(t, stats["approved"].TotalAmount.Equal(decimal.RequireFromString("500.00")))

	var total int64
	for _, bucket := range stats {
		total += bucket.Count
	}
	assert.Equal(t, int64(8), total)
}

func TestStats_EmptyLedger(t *testing.T) {
	svc, mock := newLedgerMock(t)

	mock.ExpectQuery(`GROUP BY status`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count", "total_amount", "avg_amount"}))

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestListPending_Connectivity(t *testing.T) {
	svc, mock := newLedgerMock(t)

	mock.ExpectQuery(`WHERE t\.status = 'pending'`).
		WillReturnError(assert.AnError)

	_, err := svc.ListPending(context.Background())
	require.ErrorIs(t, err, ErrConnectivity)
}

func TestRecentCancelled_ExtractsAuditLine(t *testing.T) {
	svc, mock := newLedgerMock(t)

	mock.ExpectQuery(`WHERE status IN \('declined', 'cancelled'\)`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id", "merchant", "amount", "status", "date", "notes"}).
			AddRow(5, "Gadget Store", "350.00", "declined", time.Now(), "Original note\nCANCELLED: duplicate purchase"))

	cancelled, err := svc.RecentCancelled(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, "CANCELLED: duplicate purchase", cancelled[0].CancellationNote)
	assert.Equal(t, "declined", cancelled[0].Status)
}

func TestExtractCancellationNote(t *testing.T) {
	assert.Equal(t, "CANCELLED: dup", extractCancellationNote("CANCELLED: dup"))
	assert.Equal(t, "CANCELLED: dup", extractCancellationNote("keep this\nCANCELLED: dup"))
	assert.Equal(t, "", extractCancellationNote("just a note"))
	assert.Equal(t, "", extractCancellationNote(""))
}
