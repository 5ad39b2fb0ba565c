package migration

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCancelledLines(t *testing.T) {
	tests := []struct {
		name  string
		notes string
		want  string
	}{
		{"only audit line", "CANCELLED: duplicate purchase", ""},
		{"audit after note", "Weekend trip\nCANCELLED: too expensive", "Weekend trip"},
		{"multiple audit lines", "note\nCANCELLED: a\nCANCELLED: b", "note"},
		{"no audit line", "plain note", "plain note"},
		{"audit between notes", "first\nCANCELLED: x\nsecond", "first\nsecond"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCancelledLines(tt.notes))
		})
	}
}

func TestCleanupCancelledNotes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`WHERE notes LIKE '%CANCELLED:%'`).
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id", "notes"}).
			AddRow(5, "Weekend trip\nCANCELLED: too expensive").
			AddRow(7, "CANCELLED: dup"))
	mock.ExpectExec(`UPDATE transactions SET notes = \$2`).
		WithArgs(int64(5), "Weekend trip").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE transactions SET notes = \$2`).
		WithArgs(int64(7), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, CleanupCancelledNotes(db))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanupCancelledNotes_NothingToClean(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`WHERE notes LIKE '%CANCELLED:%'`).
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id", "notes"}))
	mock.ExpectCommit()

	require.NoError(t, CleanupCancelledNotes(db))
}
