// migration/cleanup_cancelled_notes.go
// Maintenance routine to strip CANCELLED: audit lines from transaction
// notes, restoring the original note text. Intended for resetting demo
// data; set CLEANUP_CANCELLED_NOTES=true to run it at startup.
package migration

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/sfc-gh-echristensen/cortex-data-analysis-with-postgres/utils"
)

// CleanupCancelledNotes removes every CANCELLED: line from notes while
// preserving the remaining content. Statuses are left untouched.
func CleanupCancelledNotes(db *sql.DB) error {
	log.Println("🧹 Cleaning CANCELLED audit lines from transaction notes...")

	return utils.WithTransaction(db, func(tx *sql.Tx) error {
		rows, err := tx.Query(`
			SELECT transaction_id, notes
			FROM transactions
			WHERE notes LIKE '%CANCELLED:%'
			ORDER BY transaction_id
		`)
		if err != nil {
			return fmt.Errorf("failed to find cancelled notes: %w", err)
		}

		type noteFix struct {
			id    int64
			notes string
		}
		var fixes []noteFix
		for rows.Next() {
			var fix noteFix
			if err := rows.Scan(&fix.id, &fix.notes); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan notes row: %w", err)
			}
			fixes = append(fixes, fix)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		if len(fixes) == 0 {
			log.Println("✅ No CANCELLED notes found, nothing to clean")
			return nil
		}

		cleaned := 0
		for _, fix := range fixes {
			newNotes := StripCancelledLines(fix.notes)

			var value any
			if newNotes != "" {
				value = newNotes
			}
			if _, err := tx.Exec(`
				UPDATE transactions SET notes = $2 WHERE transaction_id = $1
			`, fix.id, value); err != nil {
				return fmt.Errorf("failed to clean notes for transaction %d: %w", fix.id, err)
			}
			cleaned++
		}

		log.Printf("✅ Cleaned notes on %d transactions", cleaned)
		return nil
	})
}

// StripCancelledLines drops lines carrying a CANCELLED: marker and trims
// the leftover whitespace.
func StripCancelledLines(notes string) string {
	var kept []string
	for _, line := range strings.Split(notes, "\n") {
		if strings.Contains(line, "CANCELLED:") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
