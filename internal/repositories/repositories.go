package repositories

import (
	"database/sql"
	"fmt"
)

// sequenceTables are the tables with a "<table>_sequence" counter row.
var sequenceTables = map[string]bool{"runs": true}

// NextSequence increments and returns the counter for table in one statement.
//
// Sequence numbers are the short run numbers shown by `history list` and accepted by `history show`.
func NextSequence(db *sql.DB, table string) (int, error) {
	if !sequenceTables[table] {
		return 0, fmt.Errorf("no sequence for table %q", table)
	}

	var sequence int
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)
	if err := db.QueryRow(query).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to increment %s sequence: %w", table, err)
	}
	return sequence, nil
}
